package colex

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectionTypeRequiresObjectType(t *testing.T) {
	schema := MustSchema(Field{Name: "a", Kind: KindInt})
	_, err := NewCollectionTypeInRegistry("colltest", "NoInternal", schema, nil, NewRegistry())
	assert.ErrorIs(t, err, ErrInternalNotDefined)
}

func TestLoadRecordsRoundTripsThroughData(t *testing.T) {
	reg := NewRegistry()
	typ := newTestType(t, reg, "RoundTrip", "a", "b")
	coll := typ.New()

	in := []Record{
		{"a": int64(1), "b": int64(2)},
		{"a": int64(3), "b": nil},
	}
	require.NoError(t, coll.LoadRecords(in))
	assert.Equal(t, in, coll.Data())
	assert.Equal(t, 2, coll.Len())
}

func TestLoadRecordsAppendsAcrossCalls(t *testing.T) {
	reg := NewRegistry()
	typ := newTestType(t, reg, "Append", "a")
	coll := typ.New()

	require.NoError(t, coll.LoadRecords([]Record{{"a": 1}}))
	require.NoError(t, coll.LoadRecords([]Record{{"a": 2}}))

	assert.Equal(t, []Record{{"a": int64(1)}, {"a": int64(2)}}, coll.Data())
}

func TestFailedLoadLeavesCollectionUnchanged(t *testing.T) {
	reg := NewRegistry()
	typ := newTestType(t, reg, "NoPartial", "a")
	coll := typ.New()
	require.NoError(t, coll.LoadRecords([]Record{{"a": 1}}))

	before := coll.Data()
	err := coll.LoadRecords([]Record{{"a": 2}, {"a": "bad"}})
	require.Error(t, err)

	var cve *CollectionValidationError
	require.True(t, errors.As(err, &cve))
	assert.Equal(t, "regtest.NoPartial", cve.Collection)
	assert.Contains(t, cve.Errors.Row(1), "a")

	assert.Equal(t, before, coll.Data())
}

func TestLoadDataDispatch(t *testing.T) {
	reg := NewRegistry()
	typ := newTestType(t, reg, "Dispatch", "a")

	t.Run("records", func(t *testing.T) {
		coll := typ.New()
		require.NoError(t, coll.LoadData([]Record{{"a": 1}}))
		assert.Equal(t, 1, coll.Len())
	})

	t.Run("plain maps", func(t *testing.T) {
		coll := typ.New()
		require.NoError(t, coll.LoadData([]map[string]interface{}{{"a": 1}}))
		assert.Equal(t, 1, coll.Len())
	})

	t.Run("wrong shape", func(t *testing.T) {
		coll := typ.New()
		err := coll.LoadData("not records")
		var cle *CollectionLoadError
		require.True(t, errors.As(err, &cle))
	})
}

func TestEmptyCollectionData(t *testing.T) {
	reg := NewRegistry()
	typ := newTestType(t, reg, "Empty", "a")
	coll := typ.New()

	data := coll.Data()
	assert.NotNil(t, data)
	assert.Empty(t, data)
}

func TestConcatSameType(t *testing.T) {
	reg := NewRegistry()
	typ := newTestType(t, reg, "ConcatOK", "a")

	left := typ.New()
	require.NoError(t, left.LoadRecords([]Record{{"a": 1}, {"a": 2}}))
	right := typ.New()
	require.NoError(t, right.LoadRecords([]Record{{"a": 3}}))

	combined, err := left.Concat(right)
	require.NoError(t, err)
	assert.Equal(t, []Record{{"a": int64(1)}, {"a": int64(2)}, {"a": int64(3)}}, combined.Data())

	// operands untouched
	assert.Equal(t, 2, left.Len())
	assert.Equal(t, 1, right.Len())
}

func TestConcatMismatchedTypesFails(t *testing.T) {
	reg := NewRegistry()
	typeA := newTestType(t, reg, "ConcatA", "a")
	typeB := newTestType(t, reg, "ConcatB", "a")

	_, err := typeA.New().Concat(typeB.New())
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestToJSONDeclaredFieldOrder(t *testing.T) {
	reg := NewRegistry()
	schema := MustSchema(
		Field{Name: "z", Kind: KindInt},
		Field{Name: "a", Kind: KindString},
	)
	internal := NewObjectType("colltest", "OrderInternal", schema.FieldNames())
	typ, err := NewCollectionTypeInRegistry("colltest", "Order", schema, internal, reg)
	require.NoError(t, err)

	coll := typ.New()
	require.NoError(t, coll.LoadRecords([]Record{{"z": 1, "a": "x"}, {"z": 2}}))

	out, err := coll.ToJSON()
	require.NoError(t, err)
	assert.Equal(t, `[{"z":1,"a":"x"},{"z":2,"a":null}]`, out)
}

func TestLoadJSONRoundTrip(t *testing.T) {
	reg := NewRegistry()
	typ := newTestType(t, reg, "JSONRT", "a", "b")
	coll := typ.New()
	require.NoError(t, coll.LoadRecords([]Record{{"a": 1, "b": 2}, {"a": 3, "b": nil}}))

	encoded, err := coll.ToJSON()
	require.NoError(t, err)

	other := typ.New()
	require.NoError(t, other.LoadJSON(encoded))
	assert.Equal(t, coll.Data(), other.Data())
}

func TestEachStopsOnError(t *testing.T) {
	reg := NewRegistry()
	typ := newTestType(t, reg, "EachStop", "a")
	coll := typ.New()
	require.NoError(t, coll.LoadRecords([]Record{{"a": 1}, {"a": 2}, {"a": 3}}))

	seen := 0
	stop := errors.New("stop")
	err := coll.Each(func(rec Record) error {
		seen++
		if seen == 2 {
			return stop
		}
		return nil
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 2, seen)
}

func TestRegistryEntryFromType(t *testing.T) {
	reg := NewRegistry()
	typ := newTestType(t, reg, "SelfEntry", "a")

	entry, err := typ.RegistryEntry()
	require.NoError(t, err)
	assert.Same(t, typ, entry.Type)
}

func TestLoadMetricsRecorded(t *testing.T) {
	reg := NewRegistry()
	typ := newTestType(t, reg, "Metered", "a")
	metrics := NewInMemoryMetrics()
	typ.SetMetrics(metrics)

	coll := typ.New()
	require.NoError(t, coll.LoadRecords([]Record{{"a": 1}}))
	assert.Equal(t, 1, metrics.Counters[MetricLoadSuccess])
	assert.Equal(t, []float64{1}, metrics.Histograms[MetricRecordsLoaded])

	_ = coll.LoadRecords([]Record{{"a": "bad"}})
	assert.Equal(t, 1, metrics.Counters[MetricLoadError])
}
