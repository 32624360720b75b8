package colex

import "fmt"

// Adapter is a user-supplied transformation from one collection type's data
// to another's. From and target are static metadata declared by the adapter,
// not inspected from instances at runtime. Adapt must not mutate the input
// collection and must build its result via Render (or an equivalent load
// into a fresh target instance).
type Adapter interface {
	// Name identifies the adapter for registration and chain errors
	Name() string

	// FromType is the collection type this adapter consumes
	FromType() *CollectionType

	// TargetType is the collection type this adapter produces
	TargetType() *CollectionType

	// Adapt transforms the input into a collection of the target type,
	// optionally contributing side-channel context values
	Adapt(input *Collection, ctx Context) (*AdapterOutput, error)
}

// AdapterOutput carries the result of one adapter invocation: the produced
// collection plus any context values for later hops or the caller. It lives
// for one hop; the resolver merges its context into the running context and
// hands its collection to the next adapter.
type AdapterOutput struct {
	Collection *Collection
	Context    Context
}

// Value returns a context value by key
func (o *AdapterOutput) Value(key string) (interface{}, bool) {
	v, ok := o.Context[key]
	return v, ok
}

// Render loads records into a fresh instance of the target type and wraps it
// with the given context values. Adapters use this to build their return.
func Render(target *CollectionType, records []Record, ctx Context) (*AdapterOutput, error) {
	coll := target.New()
	if err := coll.LoadRecords(records); err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = Context{}
	}
	return &AdapterOutput{Collection: coll, Context: ctx}, nil
}

// RegisterAdapter links the adapter into DefaultRegistry's graph
func RegisterAdapter(a Adapter) error {
	return DefaultRegistry.RegisterAdapter(a)
}

// invokeAdapter wraps a user adapter call with the invocation contract:
// input whose runtime type is not the adapter's from-type is rejected before
// the user logic runs, and a missing or mistyped output is rejected after.
func invokeAdapter(a Adapter, input *Collection, ctx Context) (*AdapterOutput, error) {
	if input == nil || input.Type() != a.FromType() {
		return nil, WithContext(ErrTypeMismatch, map[string]interface{}{
			"adapter":  a.Name(),
			"expected": a.FromType().FullName(),
			"got":      collectionTypeName(input),
		})
	}

	out, err := a.Adapt(input, ctx)
	if err != nil {
		return nil, err
	}
	if out == nil || out.Collection == nil {
		return nil, fmt.Errorf("adapter %s returned no output container", a.Name())
	}
	if out.Collection.Type() != a.TargetType() {
		return nil, WithContext(ErrTypeMismatch, map[string]interface{}{
			"adapter":  a.Name(),
			"expected": a.TargetType().FullName(),
			"got":      out.Collection.Type().FullName(),
		})
	}
	return out, nil
}

func collectionTypeName(c *Collection) string {
	if c == nil {
		return "<nil>"
	}
	return c.Type().FullName()
}

// AdapterFunc adapts a function into an Adapter. Useful for simple
// transformations that do not need their own type.
type AdapterFunc struct {
	AdapterName string
	From        *CollectionType
	Target      *CollectionType
	Fn          func(input *Collection, ctx Context) (*AdapterOutput, error)
}

func (a *AdapterFunc) Name() string                { return a.AdapterName }
func (a *AdapterFunc) FromType() *CollectionType   { return a.From }
func (a *AdapterFunc) TargetType() *CollectionType { return a.Target }

func (a *AdapterFunc) Adapt(input *Collection, ctx Context) (*AdapterOutput, error) {
	return a.Fn(input, ctx)
}
