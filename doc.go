// Package colex provides typed, schema-validated collections of records with
// conversion between record-list, JSON, and columnar (Apache Arrow)
// representations, and adapter chains that transform one collection type into
// another through a registered graph of user-supplied adapters.
//
// # Overview
//
// A collection type pairs a schema with an object type under a
// fully-qualified name. Raw records loaded into a collection are validated
// and coerced field by field; only passing batches produce objects, and a
// failing batch reports every violation keyed by row and field. Loaded
// collections can be exported as records, as a JSON array, or as an Arrow
// record batch whose column types come from the schema rather than the data.
//
// # Quick Start
//
//	schema := colex.MustSchema(
//	    colex.Field{Name: "a", Kind: colex.KindInt},
//	)
//	internal := colex.NewObjectType("example", "RowAInternal", schema.FieldNames())
//	typeA, err := colex.NewCollectionType("example", "RowACollection", schema, internal)
//	if err != nil {
//	    // duplicate fully-qualified name, invalid schema, ...
//	}
//
//	coll := typeA.New()
//	err = coll.LoadRecords([]colex.Record{{"a": 1}, {"a": 2}})
//	records := coll.Data()
//	frame, _ := coll.ToFrame() // arrow.Record, caller releases
//
// Or let the builder derive both types from the schema:
//
//	builder := colex.CollectionBuilder{Name: "RowA", Namespace: "example"}
//	typeA, err := builder.Build(schema)
//
// # Adapters
//
// An adapter declares its from and target collection types and transforms
// data between them:
//
//	adapter := &colex.AdapterFunc{
//	    AdapterName: "a-to-b",
//	    From:        typeA,
//	    Target:      typeB,
//	    Fn: func(in *colex.Collection, ctx colex.Context) (*colex.AdapterOutput, error) {
//	        records := in.Data()
//	        for _, rec := range records {
//	            rec["b"] = int64(42)
//	        }
//	        return colex.Render(typeB, records, colex.Context{"source": "a-to-b"})
//	    },
//	}
//	colex.RegisterAdapter(adapter)
//
//	out, finalCtx, err := typeB.Adapt(collA, colex.Context{})
//
// Adapt resolves the shortest chain of registered adapters from the input's
// type to the target with a breadth-first search and runs it hop by hop,
// threading an accumulating context (last-writer-wins on key collisions).
// Any hop failure surfaces as a single AdapterChainError naming the hop; no
// partial result is returned.
//
// # Registries
//
// Types register in a Registry under module-style fully-qualified names.
// Most programs use the package-level DefaultRegistry; tests construct
// isolated registries with NewRegistry and register through
// NewCollectionTypeInRegistry. Registration is expected during process
// startup; it is mutex-guarded, but registration order determines
// adapter-path tie-breaking, so register from one goroutine when
// determinism matters.
//
// # Observability
//
// Loading and adaptation accept pluggable logging and metrics:
//
//	logger, _ := colex.NewProductionZapLogger()
//	metrics := colex.NewPrometheusMetrics(nil)
//	typeA.SetLogger(logger)
//	typeA.SetMetrics(metrics)
//
// # Error Handling
//
// Library failures are always wrapped in a colex error type so callers can
// discriminate them from arbitrary errors while the original cause is
// preserved: ValidationError (field-level messages),
// CollectionValidationError and CollectionLoadError (load path),
// AdapterChainError (chain resolution or execution), and sentinel errors
// such as ErrNoAdapterPath, ErrNotRegistered, and ErrDuplicateRegistration
// checked with errors.Is.
package colex
