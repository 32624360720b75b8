package colex

import "fmt"

// Kind is the semantic scalar type of a declared field. Tabular column types
// are assigned from the Kind map, never inferred from data.
type Kind int

const (
	KindInvalid Kind = iota
	KindInt
	KindFloat
	KindString
	KindBool
	KindDate
	KindDateTime
	KindDecimal
	KindList
	KindMap
	KindNested
)

var kindNames = map[Kind]string{
	KindInvalid:  "invalid",
	KindInt:      "integer",
	KindFloat:    "float",
	KindString:   "string",
	KindBool:     "boolean",
	KindDate:     "date",
	KindDateTime: "datetime",
	KindDecimal:  "decimal",
	KindList:     "list",
	KindMap:      "map",
	KindNested:   "nested",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Field declares one named, typed field in a schema.
type Field struct {
	// Name is the field identifier
	Name string

	// Kind specifies the semantic scalar type
	Kind Kind

	// Required rejects records where the field is absent or null
	Required bool

	// Format optionally overrides the time layout for Date/DateTime fields
	Format string

	// Schema declares the sub-structure for Nested fields
	Schema *Schema
}

// Schema is an ordered set of field declarations. Declaration order is
// preserved and drives record dump order and tabular column order.
type Schema struct {
	fields []Field
	byName map[string]int
}

// NewSchema builds a schema from the given field declarations.
// Duplicate names, invalid kinds, and Nested fields without a sub-schema
// are rejected.
func NewSchema(fields ...Field) (*Schema, error) {
	if len(fields) == 0 {
		return nil, WithContext(ErrInvalidSchema, map[string]interface{}{
			"reason": "schema must declare at least one field",
		})
	}
	s := &Schema{
		fields: make([]Field, 0, len(fields)),
		byName: make(map[string]int, len(fields)),
	}
	for _, f := range fields {
		if f.Name == "" {
			return nil, WithContext(ErrInvalidSchema, map[string]interface{}{
				"reason": "field name must not be empty",
			})
		}
		if _, dup := s.byName[f.Name]; dup {
			return nil, WithContext(ErrInvalidSchema, map[string]interface{}{
				"field":  f.Name,
				"reason": "duplicate field name",
			})
		}
		if _, known := kindNames[f.Kind]; !known || f.Kind == KindInvalid {
			return nil, WithContext(ErrInvalidSchema, map[string]interface{}{
				"field":  f.Name,
				"reason": "unknown field kind",
			})
		}
		if f.Kind == KindNested && f.Schema == nil {
			return nil, WithContext(ErrInvalidSchema, map[string]interface{}{
				"field":  f.Name,
				"reason": "nested field requires a sub-schema",
			})
		}
		s.byName[f.Name] = len(s.fields)
		s.fields = append(s.fields, f)
	}
	return s, nil
}

// MustSchema is like NewSchema but panics on error. Intended for
// package-level schema declarations.
func MustSchema(fields ...Field) *Schema {
	s, err := NewSchema(fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// Fields returns the declared fields in declaration order
func (s *Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Field returns the declaration for a name
func (s *Schema) Field(name string) (Field, bool) {
	i, ok := s.byName[name]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}

// Len returns the number of declared fields
func (s *Schema) Len() int {
	return len(s.fields)
}

// FieldNames returns the declared names in declaration order
func (s *Schema) FieldNames() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.Name
	}
	return names
}

// Kinds returns the declared-field-name to Kind map, used to assign
// tabular column types.
func (s *Schema) Kinds() map[string]Kind {
	out := make(map[string]Kind, len(s.fields))
	for _, f := range s.fields {
		out[f.Name] = f.Kind
	}
	return out
}
