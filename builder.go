package colex

// CollectionBuilder cuts down on declarations when many generic collection
// types share the same shape: given a schema it derives, registers, and
// returns a <Name>Collection type paired with a <Name>Internal object type.
// There is no dynamic type synthesis; the built types are ordinary
// CollectionType/ObjectType values whose object constructor rejects
// undeclared fields at runtime.
type CollectionBuilder struct {
	// Name is the base identifier; "TestA" builds "TestACollection"
	// and "TestAInternal"
	Name string

	// Namespace qualifies the registered names
	Namespace string

	// Registry receives the built types; nil uses DefaultRegistry
	Registry *Registry
}

func (b *CollectionBuilder) registry() *Registry {
	if b.Registry == nil {
		return DefaultRegistry
	}
	return b.Registry
}

// Build derives and registers a collection type from the schema
func (b *CollectionBuilder) Build(schema *Schema) (*CollectionType, error) {
	internal := NewObjectType(b.Namespace, b.Name+"Internal", schema.FieldNames())
	return NewCollectionTypeInRegistry(b.Namespace, b.Name+"Collection", schema, internal, b.registry())
}

// BuildInternal derives and registers only the object type. Useful when the
// caller declares the collection type itself but wants the derived internal.
func (b *CollectionBuilder) BuildInternal(schema *Schema) (*ObjectType, error) {
	internal := NewObjectType(b.Namespace, b.Name+"Internal", schema.FieldNames())
	if err := b.registry().RegisterObject(internal); err != nil {
		return nil, err
	}
	return internal, nil
}
