package model

// PrimitiveType is the closed set of scalar types a value can take.
type PrimitiveType string

const (
	PrimitiveInteger PrimitiveType = "integer"
	PrimitiveFloat   PrimitiveType = "float"
	PrimitiveBoolean PrimitiveType = "boolean"
	PrimitiveString  PrimitiveType = "string"
	PrimitiveObject  PrimitiveType = "object"
	PrimitiveAny     PrimitiveType = "any"  // no type declared
	PrimitiveNone    PrimitiveType = "none" // bodiless responses
)

// TypeExpr is the type of a value anywhere it appears: a property, a
// parameter, a request body or a response. The variants are PrimitiveType,
// *ArrayType, *UnionType and *SchemaRef.
type TypeExpr interface {
	typeExpr()
}

func (PrimitiveType) typeExpr() {}

// ArrayType wraps the element type. Arrays of arrays are legal.
type ArrayType struct {
	Items TypeExpr
}

func (*ArrayType) typeExpr() {}

// UnionType lists alternatives in declaration order, duplicates included.
type UnionType struct {
	AnyOf []TypeExpr
}

func (*UnionType) typeExpr() {}

// SchemaRef points at a Schema. For named schemas the pointer is the single
// instance held by the Model, never a copy.
type SchemaRef struct {
	Schema Schema
}

func (*SchemaRef) typeExpr() {}

// Named reports whether the referenced schema is a named component.
func (r *SchemaRef) Named() bool {
	return r.Schema != nil && r.Schema.SchemaName() != ""
}

// Schema is a referenceable data shape: *SimpleSchema, *ComplexSchema or
// *EnumSchema.
type Schema interface {
	// SchemaName is the component name, or "" for an anonymous schema.
	SchemaName() string
	SchemaTitle() string
	schema()
}

// SimpleSchema is a type expression carrying format or literal hints. Named
// simple schemas are aliases declared under components.schemas.
type SimpleSchema struct {
	Name        string
	Title       string
	Description string
	Type        TypeExpr
	Format      string
	Enum        []any
}

func (s *SimpleSchema) SchemaName() string  { return s.Name }
func (s *SimpleSchema) SchemaTitle() string { return s.Title }
func (*SimpleSchema) schema()               {}

// ComplexSchema is a record with ordered properties.
type ComplexSchema struct {
	Name        string
	Title       string
	Description string
	Properties  []Property
	Required    []string
}

func (s *ComplexSchema) SchemaName() string  { return s.Name }
func (s *ComplexSchema) SchemaTitle() string { return s.Title }
func (*ComplexSchema) schema()               {}

// Property returns the named property.
func (s *ComplexSchema) Property(name string) (Property, bool) {
	for _, p := range s.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return Property{}, false
}

// IsRequired reports whether name is listed as a required property.
func (s *ComplexSchema) IsRequired(name string) bool {
	for _, r := range s.Required {
		if r == name {
			return true
		}
	}
	return false
}

type Property struct {
	Name        string
	Description string
	Type        TypeExpr
}

// EnumSchema is a fixed set of string values.
type EnumSchema struct {
	Name        string
	Title       string
	Description string
	Values      []string
}

func (s *EnumSchema) SchemaName() string  { return s.Name }
func (s *EnumSchema) SchemaTitle() string { return s.Title }
func (*EnumSchema) schema()               {}
