package colex

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Serializer binds a Schema to an ObjectType. Load validates and coerces raw
// records into Objects; Dump is the inverse. All validation failures for a
// batch are collected into a single ValidationError and no Objects are
// constructed for a failing batch.
type Serializer struct {
	schema   *Schema
	internal *ObjectType
	opts     Options
}

// NewSerializer creates a serializer for the schema and object type pair.
// A nil object type fails with ErrInternalNotDefined: objects are the only
// output medium of a serializer and must be declared up front.
func NewSerializer(schema *Schema, internal *ObjectType) (*Serializer, error) {
	return NewSerializerWithOptions(schema, internal, DefaultOptions())
}

// NewSerializerWithOptions creates a serializer with explicit options
func NewSerializerWithOptions(schema *Schema, internal *ObjectType, opts Options) (*Serializer, error) {
	if internal == nil {
		return nil, ErrInternalNotDefined
	}
	if schema == nil {
		return nil, WithContext(ErrInvalidSchema, map[string]interface{}{
			"reason": "serializer requires a schema",
		})
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Serializer{schema: schema, internal: internal, opts: opts}, nil
}

// Schema returns the bound schema
func (s *Serializer) Schema() *Schema {
	return s.schema
}

// ObjectType returns the bound object type
func (s *Serializer) ObjectType() *ObjectType {
	return s.internal
}

// FieldKinds returns the declared-field-name to Kind map. Collections use
// this to assign tabular column types instead of inferring them from data.
func (s *Serializer) FieldKinds() map[string]Kind {
	return s.schema.Kinds()
}

// Load validates each record against the schema and returns one Object per
// record, in input order. Any violation fails the whole batch with a
// ValidationError keyed by row index and field name.
func (s *Serializer) Load(records []Record) ([]*Object, error) {
	verr := newValidationError()
	objects := make([]*Object, 0, len(records))

	for i, rec := range records {
		values := s.loadOne(rec, i, verr)
		if values != nil {
			objects = append(objects, &Object{typ: s.internal, fields: values})
		}
	}
	if !verr.empty() {
		return nil, verr
	}
	return objects, nil
}

func (s *Serializer) loadOne(rec Record, row int, verr *ValidationError) map[string]interface{} {
	ok := true
	for name := range rec {
		if _, declared := s.schema.Field(name); !declared {
			verr.add(row, name, "unknown field")
			ok = false
		}
	}

	values := make(map[string]interface{}, s.schema.Len())
	for _, f := range s.schema.fields {
		raw, present := rec[f.Name]
		if !present || isNull(raw) {
			if f.Required {
				verr.add(row, f.Name, "missing data for required field")
				ok = false
				continue
			}
			values[f.Name] = nil
			continue
		}
		v, err := s.coerce(f, raw)
		if err != nil {
			verr.add(row, f.Name, err.Error())
			ok = false
			continue
		}
		values[f.Name] = v
	}
	if !ok {
		return nil
	}
	return values
}

func (s *Serializer) coerce(f Field, raw interface{}) (interface{}, error) {
	switch f.Kind {
	case KindInt:
		return coerceInt(raw)
	case KindFloat:
		return coerceFloat(raw)
	case KindString:
		if v, ok := raw.(string); ok {
			return v, nil
		}
		return nil, fmt.Errorf("not a valid string: %v", raw)
	case KindBool:
		if v, ok := raw.(bool); ok {
			return v, nil
		}
		return nil, fmt.Errorf("not a valid boolean: %v", raw)
	case KindDate:
		return s.coerceDate(f, raw)
	case KindDateTime:
		return s.coerceDateTime(f, raw)
	case KindDecimal:
		return coerceDecimal(raw)
	case KindList:
		return coerceList(raw)
	case KindMap:
		if v, ok := toStringMap(raw); ok {
			return v, nil
		}
		return nil, fmt.Errorf("not a valid mapping: %v", raw)
	case KindNested:
		return s.coerceNested(f, raw)
	}
	return nil, fmt.Errorf("unsupported kind %s", f.Kind)
}

func coerceInt(raw interface{}) (interface{}, error) {
	switch v := raw.(type) {
	case int:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case uint:
		return int64(v), nil
	case uint8:
		return int64(v), nil
	case uint16:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case uint64:
		if v > math.MaxInt64 {
			return nil, fmt.Errorf("integer overflow: %d", v)
		}
		return int64(v), nil
	case float32:
		return floatToInt(float64(v))
	case float64:
		return floatToInt(v)
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("not a valid integer: %q", v)
		}
		return n, nil
	}
	return nil, fmt.Errorf("not a valid integer: %v", raw)
}

func floatToInt(f float64) (interface{}, error) {
	if f != math.Trunc(f) {
		return nil, fmt.Errorf("not a valid integer: %v", f)
	}
	return int64(f), nil
}

func coerceFloat(raw interface{}) (interface{}, error) {
	switch v := raw.(type) {
	case float32:
		return float64(v), nil
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("not a valid float: %q", v)
		}
		return f, nil
	}
	return nil, fmt.Errorf("not a valid float: %v", raw)
}

func coerceDecimal(raw interface{}) (interface{}, error) {
	switch v := raw.(type) {
	case decimal.Decimal:
		return v, nil
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return nil, fmt.Errorf("not a valid decimal: %q", v)
		}
		return d, nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case float64:
		return decimal.NewFromFloat(v), nil
	}
	return nil, fmt.Errorf("not a valid decimal: %v", raw)
}

func (s *Serializer) coerceDate(f Field, raw interface{}) (interface{}, error) {
	layout := f.Format
	if layout == "" {
		layout = s.opts.DateFormat
	}
	switch v := raw.(type) {
	case time.Time:
		return truncateToDate(v), nil
	case string:
		t, err := time.Parse(layout, v)
		if err != nil {
			return nil, fmt.Errorf("not a valid date: %q", v)
		}
		return truncateToDate(t), nil
	}
	return nil, fmt.Errorf("not a valid date: %v", raw)
}

func truncateToDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (s *Serializer) coerceDateTime(f Field, raw interface{}) (interface{}, error) {
	switch v := raw.(type) {
	case time.Time:
		return v.UTC(), nil
	case string:
		if f.Format != "" {
			t, err := time.Parse(f.Format, v)
			if err != nil {
				return nil, fmt.Errorf("not a valid datetime: %q", v)
			}
			return t.UTC(), nil
		}
		for _, layout := range s.opts.DateTimeFormats {
			if t, err := time.Parse(layout, v); err == nil {
				return t.UTC(), nil
			}
		}
		return nil, fmt.Errorf("not a valid datetime: %q", v)
	}
	return nil, fmt.Errorf("not a valid datetime: %v", raw)
}

func coerceList(raw interface{}) (interface{}, error) {
	if v, ok := raw.([]interface{}); ok {
		return v, nil
	}
	rv := reflect.ValueOf(raw)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("not a valid list: %v", raw)
	}
	out := make([]interface{}, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		out[i] = rv.Index(i).Interface()
	}
	return out, nil
}

func toStringMap(raw interface{}) (map[string]interface{}, bool) {
	switch v := raw.(type) {
	case map[string]interface{}:
		return v, true
	case Record:
		return v, true
	}
	return nil, false
}

func (s *Serializer) coerceNested(f Field, raw interface{}) (interface{}, error) {
	m, ok := toStringMap(raw)
	if !ok {
		return nil, fmt.Errorf("not a valid nested record: %v", raw)
	}
	out := make(map[string]interface{}, f.Schema.Len())
	for name := range m {
		if _, declared := f.Schema.Field(name); !declared {
			return nil, fmt.Errorf("unknown nested field %q", name)
		}
	}
	nested := &Serializer{schema: f.Schema, internal: s.internal, opts: s.opts}
	for _, sub := range f.Schema.fields {
		raw, present := m[sub.Name]
		if !present || isNull(raw) {
			if sub.Required {
				return nil, fmt.Errorf("missing data for required nested field %q", sub.Name)
			}
			out[sub.Name] = nil
			continue
		}
		v, err := nested.coerce(sub, raw)
		if err != nil {
			return nil, fmt.Errorf("nested field %q: %v", sub.Name, err)
		}
		out[sub.Name] = v
	}
	return out, nil
}

// Dump converts Objects back into plain records. It never fails on objects
// produced by this serializer's Load. Every declared field is present in the
// output, null where absent.
func (s *Serializer) Dump(objects []*Object) []Record {
	records := make([]Record, len(objects))
	for i, obj := range objects {
		rec := make(Record, s.schema.Len())
		for _, f := range s.schema.fields {
			v, _ := obj.Get(f.Name)
			rec[f.Name] = s.dumpValue(f, v)
		}
		records[i] = rec
	}
	return records
}

func (s *Serializer) dumpValue(f Field, v interface{}) interface{} {
	if v == nil {
		return nil
	}
	switch f.Kind {
	case KindDate:
		if t, ok := v.(time.Time); ok {
			layout := f.Format
			if layout == "" {
				layout = s.opts.DateFormat
			}
			return t.Format(layout)
		}
	case KindDateTime:
		if t, ok := v.(time.Time); ok {
			if f.Format != "" {
				return t.Format(f.Format)
			}
			return t.Format(DefaultDateTimeFormat)
		}
	case KindDecimal:
		if d, ok := v.(decimal.Decimal); ok {
			return d.String()
		}
	}
	return v
}
