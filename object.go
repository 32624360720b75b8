package colex

import "fmt"

// ObjectType is the registered marker for a validated-record type. It is
// identified by its fully-qualified name (namespace + "." + name) and carries
// the declared field set so ad-hoc construction can reject unknown fields.
type ObjectType struct {
	namespace string
	name      string
	fields    map[string]struct{}
}

// NewObjectType declares an object type over the given field names.
// The type is not usable with a serializer until registered.
func NewObjectType(namespace, name string, fieldNames []string) *ObjectType {
	fields := make(map[string]struct{}, len(fieldNames))
	for _, f := range fieldNames {
		fields[f] = struct{}{}
	}
	return &ObjectType{namespace: namespace, name: name, fields: fields}
}

// FullName returns the fully-qualified registry key for the type
func (t *ObjectType) FullName() string {
	return t.namespace + "." + t.name
}

// Name returns the bare type name
func (t *ObjectType) Name() string {
	return t.name
}

// Declares reports whether the type declares a field name
func (t *ObjectType) Declares(field string) bool {
	_, ok := t.fields[field]
	return ok
}

// New constructs an Object directly from already-validated values, rejecting
// any field the type does not declare. Untrusted input should go through a
// Serializer instead.
func (t *ObjectType) New(values map[string]interface{}) (*Object, error) {
	for k := range values {
		if !t.Declares(k) {
			return nil, fmt.Errorf("field %q not valid for %s", k, t.FullName())
		}
	}
	obj := &Object{typ: t, fields: make(map[string]interface{}, len(values))}
	for k, v := range values {
		obj.fields[k] = v
	}
	return obj, nil
}

// Object is the validated in-memory representation of one record. Objects
// are produced by a passing Serializer.Load; the collection layer exposes
// their dumped Record form at the API boundary.
type Object struct {
	typ    *ObjectType
	fields map[string]interface{}
}

// Type returns the object's registered type
func (o *Object) Type() *ObjectType {
	return o.typ
}

// Get returns a field value; ok is false for undeclared fields.
// Declared-but-null fields return (nil, true).
func (o *Object) Get(name string) (interface{}, bool) {
	if !o.typ.Declares(name) {
		return nil, false
	}
	return o.fields[name], true
}

// Set assigns a field value. Assignment is permitted but objects are
// immutable in spirit: nothing in the library mutates them after load.
func (o *Object) Set(name string, value interface{}) {
	o.fields[name] = value
}
