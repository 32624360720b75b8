package colex

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBFSShortestPath(t *testing.T) {
	graph := map[string][]string{
		"A": {"B", "C"},
		"B": {"A", "D", "E"},
		"C": {"A", "F"},
		"D": {"B"},
		"E": {"B", "F"},
		"F": {"C", "E"},
	}

	tests := []struct {
		name  string
		start string
		end   string
		want  []string
	}{
		{"two hops", "A", "F", []string{"A", "C", "F"}},
		{"other branch", "A", "D", []string{"A", "B", "D"}},
		{"identity", "A", "A", []string{"A"}},
		{"unreachable", "A", "Z", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := bfsShortestPath(graph, tt.start, tt.end)
			assert.Equal(t, tt.want, got)
		})
	}
}

// chainFixture registers A -> B -> C with one adapter per hop. The A->B hop
// adds b=42, the B->C hop adds c=1.
type chainFixture struct {
	reg                 *Registry
	typeA, typeB, typeC *CollectionType
	ab, bc              *AdapterFunc
}

func newChainFixture(t *testing.T) *chainFixture {
	t.Helper()
	reg := NewRegistry()
	f := &chainFixture{
		reg:   reg,
		typeA: newTestType(t, reg, "ChainA", "a"),
		typeB: newTestType(t, reg, "ChainB", "a", "b"),
		typeC: newTestType(t, reg, "ChainC", "a", "b", "c"),
	}
	f.ab = newTestAdapter("a-to-b", f.typeA, f.typeB, Record{"b": 42})
	f.bc = newTestAdapter("b-to-c", f.typeB, f.typeC, Record{"c": 1})
	require.NoError(t, reg.RegisterAdapter(f.ab))
	require.NoError(t, reg.RegisterAdapter(f.bc))
	return f
}

func TestAdapterPathThreeNodeChain(t *testing.T) {
	f := newChainFixture(t)
	resolver := NewResolver(f.reg)

	// Locks in the edge direction: adaptable-from edges are searched from
	// the target back to the source, and each hop's adapter is the one
	// registered on the hop's from-type.
	path, err := resolver.AdapterPath(f.typeA, f.typeC)
	require.NoError(t, err)
	require.Len(t, path, 2)
	assert.Equal(t, "a-to-b", path[0].Name())
	assert.Equal(t, "b-to-c", path[1].Name())
}

func TestAdapterPathSingleHop(t *testing.T) {
	f := newChainFixture(t)
	resolver := NewResolver(f.reg)

	path, err := resolver.AdapterPath(f.typeB, f.typeC)
	require.NoError(t, err)
	require.Len(t, path, 1)
	assert.Equal(t, "b-to-c", path[0].Name())
}

func TestAdapterPathIdentityIsEmpty(t *testing.T) {
	f := newChainFixture(t)
	resolver := NewResolver(f.reg)

	path, err := resolver.AdapterPath(f.typeA, f.typeA)
	require.NoError(t, err)
	assert.Empty(t, path)
}

func TestAdapterPathUnreachable(t *testing.T) {
	f := newChainFixture(t)
	resolver := NewResolver(f.reg)

	// edges only run toward C; C cannot reach A
	_, err := resolver.AdapterPath(f.typeC, f.typeA)
	assert.True(t, IsNoAdapterPath(err))
}

func TestAdapterPathUnregisteredEndpoint(t *testing.T) {
	f := newChainFixture(t)
	other := newTestType(t, NewRegistry(), "Elsewhere", "a")
	resolver := NewResolver(f.reg)

	_, err := resolver.AdapterPath(f.typeA, other)
	assert.True(t, IsNotRegistered(err))
}

func TestAdaptEndToEnd(t *testing.T) {
	f := newChainFixture(t)

	collA := f.typeA.New()
	require.NoError(t, collA.LoadRecords([]Record{{"a": 1}, {"a": 2}, {"a": 3}}))

	adapted, ctx, err := f.typeC.Adapt(collA, Context{"seed": true})
	require.NoError(t, err)

	assert.Same(t, f.typeC, adapted.Type())
	assert.Equal(t, []Record{
		{"a": int64(1), "b": int64(42), "c": int64(1)},
		{"a": int64(2), "b": int64(42), "c": int64(1)},
		{"a": int64(3), "b": int64(42), "c": int64(1)},
	}, adapted.Data())

	// context accumulated across hops; last writer wins
	assert.Equal(t, true, ctx["seed"])
	assert.Equal(t, "b-to-c", ctx["last_adapter"])

	// input untouched
	assert.Equal(t, []Record{{"a": int64(1)}, {"a": int64(2)}, {"a": int64(3)}}, collA.Data())
}

func TestAdaptSingleHopExampleFromDocs(t *testing.T) {
	reg := NewRegistry()
	typeA := newTestType(t, reg, "TestA", "a")
	typeB := newTestType(t, reg, "TestB", "a", "b")
	require.NoError(t, reg.RegisterAdapter(newTestAdapter("a-to-b", typeA, typeB, Record{"b": 42})))

	collA := typeA.New()
	require.NoError(t, collA.LoadRecords([]Record{{"a": 1}, {"a": 2}, {"a": 3}}))

	adapted, ctx, err := typeB.Adapt(collA, nil)
	require.NoError(t, err)
	assert.Equal(t, []Record{
		{"a": int64(1), "b": int64(42)},
		{"a": int64(2), "b": int64(42)},
		{"a": int64(3), "b": int64(42)},
	}, adapted.Data())
	assert.Contains(t, ctx, "last_adapter")
}

func TestAdaptNoPathIsDistinctFromExecutionFailure(t *testing.T) {
	f := newChainFixture(t)

	collC := f.typeC.New()
	require.NoError(t, collC.LoadRecords([]Record{{"a": 1, "b": 2, "c": 3}}))

	_, _, err := f.typeA.Adapt(collC, nil)
	require.Error(t, err)

	var chainErr *AdapterChainError
	require.True(t, errors.As(err, &chainErr))
	assert.True(t, IsNoAdapterPath(err))
	assert.Equal(t, -1, chainErr.Hop)
}

func TestAdaptSameTypeFailsWithNoPath(t *testing.T) {
	f := newChainFixture(t)
	collA := f.typeA.New()
	require.NoError(t, collA.LoadRecords([]Record{{"a": 1}}))

	_, _, err := f.typeA.Adapt(collA, nil)
	assert.True(t, IsNoAdapterPath(err))
}

func TestAdaptFailingHopIdentified(t *testing.T) {
	reg := NewRegistry()
	typeA := newTestType(t, reg, "FailA", "a")
	typeB := newTestType(t, reg, "FailB", "a", "b")
	typeC := newTestType(t, reg, "FailC", "a", "b", "c")

	boom := errors.New("boom")
	require.NoError(t, reg.RegisterAdapter(newTestAdapter("a-to-b", typeA, typeB, Record{"b": 1})))
	require.NoError(t, reg.RegisterAdapter(&AdapterFunc{
		AdapterName: "b-to-c",
		From:        typeB,
		Target:      typeC,
		Fn: func(in *Collection, ctx Context) (*AdapterOutput, error) {
			return nil, boom
		},
	}))

	collA := typeA.New()
	require.NoError(t, collA.LoadRecords([]Record{{"a": 1}}))

	_, _, err := typeC.Adapt(collA, nil)
	require.Error(t, err)

	var chainErr *AdapterChainError
	require.True(t, errors.As(err, &chainErr))
	assert.Equal(t, 1, chainErr.Hop)
	assert.Equal(t, "b-to-c", chainErr.Adapter)
	assert.ErrorIs(t, err, boom)
	assert.False(t, IsNoAdapterPath(err))
}

func TestAdaptContextLastWriterWins(t *testing.T) {
	reg := NewRegistry()
	typeA := newTestType(t, reg, "CtxA", "a")
	typeB := newTestType(t, reg, "CtxB", "a")
	typeC := newTestType(t, reg, "CtxC", "a")

	hop := func(name string, from, target *CollectionType) *AdapterFunc {
		return &AdapterFunc{
			AdapterName: name,
			From:        from,
			Target:      target,
			Fn: func(in *Collection, ctx Context) (*AdapterOutput, error) {
				return Render(target, in.Data(), Context{"writer": name})
			},
		}
	}
	require.NoError(t, reg.RegisterAdapter(hop("first", typeA, typeB)))
	require.NoError(t, reg.RegisterAdapter(hop("second", typeB, typeC)))

	collA := typeA.New()
	require.NoError(t, collA.LoadRecords([]Record{{"a": 1}}))

	_, ctx, err := typeC.Adapt(collA, Context{"writer": "caller"})
	require.NoError(t, err)
	assert.Equal(t, "second", ctx["writer"])
}

func TestAdaptTieBreaksByRegistrationOrder(t *testing.T) {
	// two single-hop routes A->C; the first registered must win
	reg := NewRegistry()
	typeA := newTestType(t, reg, "TieA", "a")
	typeC := newTestType(t, reg, "TieC", "a")

	require.NoError(t, reg.RegisterAdapter(newTestAdapter("first-route", typeA, typeC, nil)))
	require.NoError(t, reg.RegisterAdapter(&AdapterFunc{
		AdapterName: "second-route",
		From:        typeA,
		Target:      typeC,
		Fn: func(in *Collection, ctx Context) (*AdapterOutput, error) {
			return Render(typeC, in.Data(), Context{"last_adapter": "second-route"})
		},
	}))

	resolver := NewResolver(reg)
	path, err := resolver.AdapterPath(typeA, typeC)
	require.NoError(t, err)
	require.Len(t, path, 1)
	assert.Equal(t, "first-route", path[0].Name())
}

func TestAdaptMetricsRecorded(t *testing.T) {
	f := newChainFixture(t)
	metrics := NewInMemoryMetrics()
	f.typeC.SetMetrics(metrics)

	collA := f.typeA.New()
	require.NoError(t, collA.LoadRecords([]Record{{"a": 1}}))

	_, _, err := f.typeC.Adapt(collA, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, metrics.Counters[MetricAdaptSuccess])
	assert.Equal(t, []float64{2}, metrics.Histograms[MetricAdaptHops])
}
