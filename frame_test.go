package colex

import (
	"testing"

	"github.com/apache/arrow/go/v7/arrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frameTestType(t *testing.T, reg *Registry) *CollectionType {
	t.Helper()
	schema := MustSchema(
		Field{Name: "i", Kind: KindInt},
		Field{Name: "f", Kind: KindFloat},
		Field{Name: "s", Kind: KindString},
		Field{Name: "b", Kind: KindBool},
		Field{Name: "d", Kind: KindDate},
		Field{Name: "ts", Kind: KindDateTime},
		Field{Name: "amount", Kind: KindDecimal},
		Field{Name: "tags", Kind: KindList},
	)
	internal := NewObjectType("frametest", t.Name()+"Internal", schema.FieldNames())
	typ, err := NewCollectionTypeInRegistry("frametest", t.Name(), schema, internal, reg)
	require.NoError(t, err)
	return typ
}

func TestToFrameColumnTypesFromSchema(t *testing.T) {
	typ := frameTestType(t, NewRegistry())
	coll := typ.New()
	require.NoError(t, coll.LoadRecords([]Record{
		{"i": 1, "f": 1.5, "s": "x", "b": true, "d": "2024-03-15", "ts": "2024-03-15T10:30:00Z", "amount": "9.75", "tags": []interface{}{"a"}},
	}))

	frame, err := coll.ToFrame()
	require.NoError(t, err)
	defer frame.Release()

	schema := frame.Schema()
	assert.Equal(t, 8, int(frame.NumCols()))
	assert.Equal(t, int64(1), frame.NumRows())

	assert.True(t, arrow.TypeEqual(arrow.PrimitiveTypes.Int64, schema.Field(0).Type))
	assert.True(t, arrow.TypeEqual(arrow.PrimitiveTypes.Float64, schema.Field(1).Type))
	assert.True(t, arrow.TypeEqual(arrow.BinaryTypes.String, schema.Field(2).Type))
	assert.True(t, arrow.TypeEqual(arrow.FixedWidthTypes.Boolean, schema.Field(3).Type))
	assert.True(t, arrow.TypeEqual(arrow.FixedWidthTypes.Date32, schema.Field(4).Type))
	assert.True(t, arrow.TypeEqual(&arrow.TimestampType{Unit: arrow.Millisecond, TimeZone: "UTC"}, schema.Field(5).Type))
	assert.True(t, arrow.TypeEqual(arrow.BinaryTypes.String, schema.Field(6).Type))
	assert.True(t, arrow.TypeEqual(arrow.BinaryTypes.String, schema.Field(7).Type))
}

func TestToFrameAllNullColumnKeepsDeclaredType(t *testing.T) {
	reg := NewRegistry()
	typ := newTestType(t, reg, "AllNull", "a", "b")
	coll := typ.New()
	require.NoError(t, coll.LoadRecords([]Record{{"a": 1}, {"a": 2}}))

	frame, err := coll.ToFrame()
	require.NoError(t, err)
	defer frame.Release()

	// column b never saw a value but is still int64
	assert.True(t, arrow.TypeEqual(arrow.PrimitiveTypes.Int64, frame.Schema().Field(1).Type))
	assert.Equal(t, 2, frame.Column(1).NullN())
}

func TestFrameRoundTrip(t *testing.T) {
	reg := NewRegistry()
	typ := frameTestType(t, reg)
	coll := typ.New()

	in := []Record{
		{"i": int64(1), "f": 1.5, "s": "x", "b": true, "d": "2024-03-15", "ts": "2024-03-15T10:30:00Z", "amount": "9.75", "tags": []interface{}{"a", "b"}},
		{"i": nil, "f": nil, "s": nil, "b": nil, "d": nil, "ts": nil, "amount": nil, "tags": nil},
	}
	require.NoError(t, coll.LoadRecords(in))

	frame, err := coll.ToFrame()
	require.NoError(t, err)
	defer frame.Release()

	other := typ.New()
	require.NoError(t, other.LoadFrame(frame))
	assert.Equal(t, coll.Data(), other.Data())
}

func TestLoadFrameTranslatesNulls(t *testing.T) {
	reg := NewRegistry()
	typ := newTestType(t, reg, "FrameNulls", "a", "b")

	source := typ.New()
	require.NoError(t, source.LoadRecords([]Record{{"a": 1, "b": nil}, {"a": nil, "b": 2}}))
	frame, err := source.ToFrame()
	require.NoError(t, err)
	defer frame.Release()

	dest := typ.New()
	require.NoError(t, dest.LoadFrame(frame))
	assert.Equal(t, []Record{
		{"a": int64(1), "b": nil},
		{"a": nil, "b": int64(2)},
	}, dest.Data())
}

func TestLoadFrameViaLoadData(t *testing.T) {
	reg := NewRegistry()
	typ := newTestType(t, reg, "FrameDispatch", "a")

	source := typ.New()
	require.NoError(t, source.LoadRecords([]Record{{"a": 7}}))
	frame, err := source.ToFrame()
	require.NoError(t, err)
	defer frame.Release()

	dest := typ.New()
	require.NoError(t, dest.LoadData(frame))
	assert.Equal(t, source.Data(), dest.Data())
}

func TestLoadFrameUnknownColumnFailsValidation(t *testing.T) {
	reg := NewRegistry()
	wide := newTestType(t, reg, "FrameWide", "a", "b")
	narrow := newTestType(t, reg, "FrameNarrow", "a")

	source := wide.New()
	require.NoError(t, source.LoadRecords([]Record{{"a": 1, "b": 2}}))
	frame, err := source.ToFrame()
	require.NoError(t, err)
	defer frame.Release()

	err = narrow.New().LoadFrame(frame)
	require.Error(t, err)
	var cve *CollectionValidationError
	assert.ErrorAs(t, err, &cve)
}
