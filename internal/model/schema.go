package model

// TypeRef is a recursive reference to a GraphQL type as returned by
// introspection. NonNull and List wrappers nest through OfType until a
// named type (OBJECT, SCALAR, ENUM, INTERFACE, UNION) is reached.
type TypeRef struct {
	Kind   string   `json:"kind"`
	Name   string   `json:"name"`
	OfType *TypeRef `json:"ofType"`
}

// UnwrapName walks through NonNull/List wrappers and returns the innermost
// named type, along with whether a LIST wrapper was seen anywhere in the
// chain.
func (t *TypeRef) UnwrapName() (name string, isList bool) {
	cur := t
	for cur != nil {
		if cur.Kind == "LIST" {
			isList = true
		}
		if cur.Name != "" {
			name = cur.Name
		}
		cur = cur.OfType
	}
	return name, isList
}

// InputValue describes a field or directive argument.
type InputValue struct {
	Name string  `json:"name"`
	Type TypeRef `json:"type"`
}

// FieldDefinition describes one field of an OBJECT or INTERFACE type.
type FieldDefinition struct {
	Name string       `json:"name"`
	Args []InputValue `json:"args"`
	Type TypeRef      `json:"type"`
}

// TypeDefinition is one entry of __schema.types.
type TypeDefinition struct {
	Kind   string            `json:"kind"`
	Name   string            `json:"name"`
	Fields []FieldDefinition `json:"fields"`
}

// Schema is the in-memory model built from a successful introspection
// response, sized down to what the DoS and BOLA probers need.
type Schema struct {
	QueryType    string
	MutationType string
	Types        map[string]*TypeDefinition
}

// LookupType returns the type definition for name, or nil if unknown.
func (s *Schema) LookupType(name string) *TypeDefinition {
	if s == nil {
		return nil
	}
	return s.Types[name]
}

// QueryFields returns the root query type's fields, or nil if the schema
// has no query type or it is missing from Types.
func (s *Schema) QueryFields() []FieldDefinition {
	t := s.LookupType(s.QueryType)
	if t == nil {
		return nil
	}
	return t.Fields
}
