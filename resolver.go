package colex

import (
	"time"
)

// Resolver finds and runs adapter chains. Each resolution builds an
// ephemeral directed graph from the registry's adaptable-from relation:
// edges point from a collection type to the types that can feed it, the
// reverse of the adaptation direction. The BFS therefore starts at the
// target and searches toward the source; the node path is reversed before
// adapters are matched so each hop (current, next) selects the adapter
// registered on current whose target type is next.
type Resolver struct {
	registry *Registry
	logger   Logger
	metrics  Metrics
}

// NewResolver creates a resolver over a registry
func NewResolver(registry *Registry) *Resolver {
	return &Resolver{
		registry: registry,
		logger:   &NoOpLogger{},
		metrics:  &NoOpMetrics{},
	}
}

// SetLogger updates the resolver's logger
func (r *Resolver) SetLogger(logger Logger) {
	r.logger = logger
}

// SetMetrics updates the resolver's metrics collector
func (r *Resolver) SetMetrics(metrics Metrics) {
	r.metrics = metrics
}

// bfsShortestPath searches the unweighted graph breadth-first and returns
// the first minimal-hop node path from start to end, inclusive. Neighbor
// order is the registration order preserved in the graph, so results are
// deterministic. Returns nil if no path exists; start == end returns the
// single-node path.
func bfsShortestPath(graph map[string][]string, start, end string) []string {
	if start == end {
		return []string{start}
	}
	visited := map[string]bool{start: true}
	queue := [][]string{{start}}

	for len(queue) > 0 {
		path := queue[0]
		queue = queue[1:]
		node := path[len(path)-1]

		for _, next := range graph[node] {
			if visited[next] {
				continue
			}
			visited[next] = true
			extended := make([]string, len(path), len(path)+1)
			copy(extended, path)
			extended = append(extended, next)
			if next == end {
				return extended
			}
			queue = append(queue, extended)
		}
	}
	return nil
}

// AdapterPath resolves the shortest chain of adapters converting from into
// to. A same-type request resolves to an empty path. An unreachable target
// fails with ErrNoAdapterPath; unregistered endpoints fail with
// ErrNotRegistered. A graph edge with no matching adapter is a registry
// inconsistency, reported as an internal error rather than skipped.
func (r *Resolver) AdapterPath(from, to *CollectionType) ([]Adapter, error) {
	fromKey := from.FullName()
	toKey := to.FullName()
	for _, key := range []string{fromKey, toKey} {
		if _, ok := r.registry.collectionByName(key); !ok {
			return nil, WithContext(ErrNotRegistered, map[string]interface{}{
				"collection": key,
			})
		}
	}
	if fromKey == toKey {
		return []Adapter{}, nil
	}

	// Reverse-adjacency graph: search target -> ... -> source, then flip.
	nodes := bfsShortestPath(r.registry.graph(), toKey, fromKey)
	if nodes == nil {
		return nil, WithContext(ErrNoAdapterPath, map[string]interface{}{
			"from": fromKey,
			"to":   toKey,
		})
	}
	for i, j := 0, len(nodes)-1; i < j; i, j = i+1, j-1 {
		nodes[i], nodes[j] = nodes[j], nodes[i]
	}

	adapters := make([]Adapter, 0, len(nodes)-1)
	for i := 0; i < len(nodes)-1; i++ {
		current, _ := r.registry.collectionByName(nodes[i])
		next, _ := r.registry.collectionByName(nodes[i+1])
		adapter, ok := r.registry.adapterFor(current, next)
		if !ok {
			return nil, WithContext(ErrRegistryInconsistent, map[string]interface{}{
				"from": nodes[i],
				"to":   nodes[i+1],
			})
		}
		adapters = append(adapters, adapter)
	}
	return adapters, nil
}

// Adapt resolves the adapter path from the input's type to the target type
// and runs it, threading the accumulated context through each hop. Context
// collisions are last-writer-wins. Any failure surfaces as a single
// AdapterChainError identifying the failing hop; earlier hops' results are
// discarded. An empty path (including a same-type request) fails with a
// chain error wrapping ErrNoAdapterPath: callers wanting identity should
// check the input's type before calling.
func (r *Resolver) Adapt(input *Collection, to *CollectionType, initial Context) (*AdapterOutput, error) {
	runID := NewRunID()
	fromKey := input.Type().FullName()
	toKey := to.FullName()
	start := time.Now()

	adapters, err := r.AdapterPath(input.Type(), to)
	if err != nil {
		r.metrics.Increment(MetricAdaptError, "from", fromKey, "to", toKey)
		return nil, &AdapterChainError{RunID: runID, From: fromKey, To: toKey, Hop: -1, Err: err}
	}
	if len(adapters) == 0 {
		r.metrics.Increment(MetricAdaptError, "from", fromKey, "to", toKey)
		return nil, &AdapterChainError{RunID: runID, From: fromKey, To: toKey, Hop: -1, Err: ErrNoAdapterPath}
	}

	current := input
	ctx := initial.Clone()
	var out *AdapterOutput

	for i, adapter := range adapters {
		r.logger.Debug("running adapter hop",
			"run_id", runID,
			"hop", i,
			"adapter", adapter.Name(),
			"from", adapter.FromType().FullName(),
			"to", adapter.TargetType().FullName(),
		)
		out, err = invokeAdapter(adapter, current, ctx)
		if err != nil {
			r.logger.Error("adapter hop failed",
				"run_id", runID,
				"hop", i,
				"adapter", adapter.Name(),
				"error", err,
			)
			r.metrics.Increment(MetricAdaptError, "from", fromKey, "to", toKey)
			return nil, &AdapterChainError{
				RunID:   runID,
				From:    fromKey,
				To:      toKey,
				Hop:     i,
				Adapter: adapter.Name(),
				Err:     err,
			}
		}
		ctx = ctx.Merge(out.Context)
		current = out.Collection
	}

	r.metrics.Increment(MetricAdaptSuccess, "from", fromKey, "to", toKey)
	r.metrics.Histogram(MetricAdaptHops, float64(len(adapters)), "from", fromKey, "to", toKey)
	r.metrics.Timing(MetricAdaptDuration, time.Since(start), "from", fromKey, "to", toKey)
	return &AdapterOutput{Collection: current, Context: ctx}, nil
}
