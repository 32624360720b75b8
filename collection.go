package colex

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/apache/arrow/go/v7/arrow"
)

// CollectionType pairs exactly one schema/serializer with one object type
// under a fully-qualified name. It is the runtime handle for registration,
// adapter declarations, and instance construction.
type CollectionType struct {
	namespace string
	name      string
	schema    *Schema
	internal  *ObjectType
	registry  *Registry

	logger  Logger
	metrics Metrics
}

// NewCollectionType declares and registers a collection type in
// DefaultRegistry. The object type is registered alongside it; duplicate
// fully-qualified names fail for either.
func NewCollectionType(namespace, name string, schema *Schema, internal *ObjectType) (*CollectionType, error) {
	return NewCollectionTypeInRegistry(namespace, name, schema, internal, DefaultRegistry)
}

// NewCollectionTypeInRegistry declares and registers a collection type in an
// explicit registry. Tests use this with isolated registries.
func NewCollectionTypeInRegistry(namespace, name string, schema *Schema, internal *ObjectType, reg *Registry) (*CollectionType, error) {
	if internal == nil {
		return nil, ErrInternalNotDefined
	}
	// Fail construction the way a serializer would, before touching the registry.
	if _, err := NewSerializer(schema, internal); err != nil {
		return nil, err
	}

	t := &CollectionType{
		namespace: namespace,
		name:      name,
		schema:    schema,
		internal:  internal,
		registry:  reg,
		logger:    &NoOpLogger{},
		metrics:   &NoOpMetrics{},
	}
	if err := reg.RegisterObject(internal); err != nil {
		return nil, err
	}
	if err := reg.RegisterCollection(t); err != nil {
		return nil, err
	}
	return t, nil
}

// FullName returns the fully-qualified registry key for the type
func (t *CollectionType) FullName() string {
	return t.namespace + "." + t.name
}

// Name returns the bare type name
func (t *CollectionType) Name() string {
	return t.name
}

// Schema returns the declared schema
func (t *CollectionType) Schema() *Schema {
	return t.schema
}

// ObjectType returns the paired object type
func (t *CollectionType) ObjectType() *ObjectType {
	return t.internal
}

// Registry returns the registry this type is registered in
func (t *CollectionType) Registry() *Registry {
	return t.registry
}

// RegistryEntry returns the complete registry entry for this type
func (t *CollectionType) RegistryEntry() (*Entry, error) {
	return t.registry.Lookup(t.FullName())
}

// SetLogger updates the logger used by instances of this type
func (t *CollectionType) SetLogger(logger Logger) {
	t.logger = logger
}

// SetMetrics updates the metrics collector used by instances of this type
func (t *CollectionType) SetMetrics(metrics Metrics) {
	t.metrics = metrics
}

// New creates an empty collection instance of this type
func (t *CollectionType) New() *Collection {
	serializer, err := NewSerializer(t.schema, t.internal)
	if err != nil {
		// NewCollectionTypeInRegistry already proved this pair constructs.
		panic(err)
	}
	return &Collection{typ: t, serializer: serializer}
}

// Adapt resolves the adapter chain from the input collection's type to this
// type and runs it, threading the accumulated context through each hop. It
// returns the adapted collection and the final context. Callers adapting a
// collection that is already of this type should not call Adapt: an identity
// adaptation has no path and fails with ErrNoAdapterPath.
func (t *CollectionType) Adapt(input *Collection, initial Context) (*Collection, Context, error) {
	resolver := NewResolver(t.registry)
	resolver.SetLogger(t.logger)
	resolver.SetMetrics(t.metrics)

	out, err := resolver.Adapt(input, t, initial)
	if err != nil {
		return nil, nil, err
	}
	return out.Collection, out.Context, nil
}

// Collection is an ordered, homogeneous set of validated Objects. Instances
// start empty and grow via Load*; a failed load leaves previously loaded
// records intact and appends nothing.
type Collection struct {
	typ        *CollectionType
	serializer *Serializer
	objects    []*Object
}

// Type returns the collection's declared type
func (c *Collection) Type() *CollectionType {
	return c.typ
}

// Serializer returns the bound serializer instance
func (c *Collection) Serializer() *Serializer {
	return c.serializer
}

// Len returns the number of held records
func (c *Collection) Len() int {
	return len(c.objects)
}

// At returns the validated object at index i
func (c *Collection) At(i int) *Object {
	return c.objects[i]
}

// Objects returns the held objects in insertion order
func (c *Collection) Objects() []*Object {
	out := make([]*Object, len(c.objects))
	copy(out, c.objects)
	return out
}

// Data returns the current records as plain mappings, obtained by dumping
// all held objects through the serializer. Empty collections return an
// empty, non-nil slice.
func (c *Collection) Data() []Record {
	return c.serializer.Dump(c.objects)
}

// Each calls fn for every record in insertion order, stopping on error
func (c *Collection) Each(fn func(Record) error) error {
	for _, rec := range c.Data() {
		if err := fn(rec); err != nil {
			return err
		}
	}
	return nil
}

// LoadData accepts either a record batch ([]Record or []map[string]any) or a
// tabular value (arrow.Record) and loads it. Any other input shape fails
// with a CollectionLoadError.
func (c *Collection) LoadData(data interface{}) error {
	switch v := data.(type) {
	case []Record:
		return c.LoadRecords(v)
	case []map[string]interface{}:
		records := make([]Record, len(v))
		for i, m := range v {
			records[i] = Record(m)
		}
		return c.LoadRecords(records)
	case arrow.Record:
		return c.LoadFrame(v)
	}
	return &CollectionLoadError{
		Collection: c.typ.FullName(),
		Err:        fmt.Errorf("unsupported input type %T", data),
	}
}

// LoadRecords validates the records and appends the resulting objects.
// Field validation failures surface as a CollectionValidationError carrying
// the serializer's structured messages; the collection is left unchanged.
func (c *Collection) LoadRecords(records []Record) error {
	start := time.Now()
	objects, err := c.serializer.Load(NormalizeNulls(records))
	if err != nil {
		if verr, ok := err.(*ValidationError); ok {
			c.typ.logger.Error("validation failed while loading records",
				"collection", c.typ.FullName(),
				"rows", len(records),
				"errors", verr.count(),
			)
			c.typ.metrics.Increment(MetricLoadError, "collection", c.typ.FullName())
			return &CollectionValidationError{Collection: c.typ.FullName(), Errors: verr}
		}
		c.typ.metrics.Increment(MetricLoadError, "collection", c.typ.FullName())
		return &CollectionLoadError{Collection: c.typ.FullName(), Err: err}
	}

	c.objects = append(c.objects, objects...)
	c.typ.metrics.Increment(MetricLoadSuccess, "collection", c.typ.FullName())
	c.typ.metrics.Histogram(MetricRecordsLoaded, float64(len(objects)), "collection", c.typ.FullName())
	c.typ.metrics.Timing(MetricLoadDuration, time.Since(start), "collection", c.typ.FullName())
	return nil
}

// LoadJSON parses a JSON array of records and loads it
func (c *Collection) LoadJSON(data string) error {
	var records []Record
	dec := json.NewDecoder(bytes.NewReader([]byte(data)))
	dec.UseNumber()
	if err := dec.Decode(&records); err != nil {
		return &CollectionLoadError{Collection: c.typ.FullName(), Err: err}
	}
	for _, rec := range records {
		for k, v := range rec {
			if n, ok := v.(json.Number); ok {
				rec[k] = normalizeNumber(n)
			}
		}
	}
	return c.LoadRecords(records)
}

func normalizeNumber(n json.Number) interface{} {
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}

// ToJSON serializes the collection's records to a JSON array string via the
// serializer's dump path. Fields appear in declared order.
func (c *Collection) ToJSON() (string, error) {
	var b bytes.Buffer
	b.WriteByte('[')
	for i, rec := range c.Data() {
		if i > 0 {
			b.WriteByte(',')
		}
		if err := writeOrderedRecord(&b, rec, c.typ.schema); err != nil {
			return "", err
		}
	}
	b.WriteByte(']')
	return b.String(), nil
}

func writeOrderedRecord(b *bytes.Buffer, rec Record, schema *Schema) error {
	b.WriteByte('{')
	for i, f := range schema.fields {
		if i > 0 {
			b.WriteByte(',')
		}
		key, err := json.Marshal(f.Name)
		if err != nil {
			return err
		}
		b.Write(key)
		b.WriteByte(':')
		val, err := json.Marshal(rec[f.Name])
		if err != nil {
			return err
		}
		b.Write(val)
	}
	b.WriteByte('}')
	return nil
}

// Concat returns a new collection holding this collection's records followed
// by the other's, re-validated as one batch. Only collections of the exact
// same type can be concatenated.
func (c *Collection) Concat(other *Collection) (*Collection, error) {
	if other == nil || other.typ != c.typ {
		return nil, WithContext(ErrTypeMismatch, map[string]interface{}{
			"reason": "only collections of the same type can be concatenated",
		})
	}
	combined := append(c.Data(), other.Data()...)
	out := c.typ.New()
	if err := out.LoadRecords(combined); err != nil {
		return nil, err
	}
	return out, nil
}
