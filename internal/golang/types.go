package golang

import (
	"fmt"
	"maps"
	"slices"

	"github.com/kolah/irgen/internal/config"
	"github.com/kolah/irgen/internal/model"
)

// GoType maps a type expression to a Go type with default settings.
func GoType(t model.TypeExpr) string {
	return NewTypeResolver(nil).ResolveType(t, "", "")
}

func goPrimitiveType(p model.PrimitiveType) string {
	switch p {
	case model.PrimitiveInteger:
		return "int"
	case model.PrimitiveFloat:
		return "float64"
	case model.PrimitiveBoolean:
		return "bool"
	case model.PrimitiveString:
		return "string"
	case model.PrimitiveObject:
		return "map[string]any"
	default:
		return "any"
	}
}

func goIntegerType(format string) string {
	switch format {
	case "int32":
		return "int32"
	case "int64":
		return "int64"
	default:
		return "int"
	}
}

func goNumberType(format string) string {
	switch format {
	case "float":
		return "float32"
	default:
		return "float64"
	}
}

// GoZeroValue returns the literal zero value for the mapped Go type.
func GoZeroValue(t model.TypeExpr) string {
	switch x := t.(type) {
	case model.PrimitiveType:
		switch x {
		case model.PrimitiveString:
			return `""`
		case model.PrimitiveInteger, model.PrimitiveFloat:
			return "0"
		case model.PrimitiveBoolean:
			return "false"
		}
	case *model.SchemaRef:
		if s, ok := x.Schema.(*model.SimpleSchema); ok && s.Name == "" && s.Format == "" {
			return GoZeroValue(s.Type)
		}
	}
	return "nil"
}

func JSONTag(name string, required bool) string {
	if required {
		return fmt.Sprintf("`json:\"%s\"`", name)
	}
	return fmt.Sprintf("`json:\"%s,omitempty\"`", name)
}

// FieldTag is JSONTag with an optional matching yaml key.
func FieldTag(name string, required, withYAML bool) string {
	if !withYAML {
		return JSONTag(name, required)
	}
	if required {
		return fmt.Sprintf("`json:\"%s\" yaml:\"%s\"`", name, name)
	}
	return fmt.Sprintf("`json:\"%s,omitempty\" yaml:\"%s,omitempty\"`", name, name)
}

// NestedEnum is a string enumeration declared inline on a property. It is
// emitted as its own named type.
type NestedEnum struct {
	Name   string
	Values []string
}

// TypeResolver maps type expressions to Go types. It collects inline enum
// types and the imports the mapped types need.
type TypeResolver struct {
	cfg      *config.TypesConfig
	registry *EnumRegistry
	nested   []NestedEnum
	seen     map[string]bool
	imports  map[string]bool
}

// NewTypeResolver creates a new TypeResolver with the given configuration.
func NewTypeResolver(cfg *config.TypesConfig) *TypeResolver {
	return NewTypeResolverWithRegistry(cfg, nil)
}

// NewTypeResolverWithRegistry creates a TypeResolver with a shared EnumRegistry.
// The registry enables stable, context-aware enum naming.
func NewTypeResolverWithRegistry(cfg *config.TypesConfig, registry *EnumRegistry) *TypeResolver {
	return &TypeResolver{
		cfg:      cfg,
		registry: registry,
		seen:     make(map[string]bool),
		imports:  make(map[string]bool),
	}
}

// NestedTypes returns inline enums collected during resolution.
func (r *TypeResolver) NestedTypes() []NestedEnum {
	return r.nested
}

// Imports returns the import paths required by resolved types, sorted.
func (r *TypeResolver) Imports() []string {
	return slices.Sorted(maps.Keys(r.imports))
}

// ResolveType maps t to a Go type. parentName and fieldName name inline
// enums; pass empty strings outside a record.
func (r *TypeResolver) ResolveType(t model.TypeExpr, parentName, fieldName string) string {
	return model.VisitType[string](t, goTypeVisitor{r: r, parent: parentName, field: fieldName})
}

type goTypeVisitor struct {
	r      *TypeResolver
	parent string
	field  string
}

func (v goTypeVisitor) VisitPrimitive(p model.PrimitiveType) string {
	return goPrimitiveType(p)
}

func (v goTypeVisitor) VisitArray(a *model.ArrayType) string {
	return "[]" + v.r.ResolveType(a.Items, v.parent, v.field+"Item")
}

// Unions have no Go counterpart and map to any, except the nullable form
// of a single type.
func (v goTypeVisitor) VisitUnion(u *model.UnionType) string {
	if inner, ok := NullableInner(u); ok {
		return v.r.ResolveType(inner, v.parent, v.field)
	}
	return "any"
}

func (v goTypeVisitor) VisitSchema(ref *model.SchemaRef) string {
	switch s := ref.Schema.(type) {
	case nil:
		return "any"
	case *model.SimpleSchema:
		if s.Name != "" {
			return ToGoIdentifier(s.Name)
		}
		return v.r.resolveSimple(s, v.parent, v.field)
	default:
		if name := s.SchemaName(); name != "" {
			return ToGoIdentifier(name)
		}
		return "string"
	}
}

func (r *TypeResolver) resolveSimple(s *model.SimpleSchema, parentName, fieldName string) string {
	p, ok := s.Type.(model.PrimitiveType)
	if !ok {
		return r.ResolveType(s.Type, parentName, fieldName)
	}
	if p == model.PrimitiveString && parentName != "" && stringValues(s.Enum) != nil {
		return r.resolveEnum(s, parentName, fieldName)
	}
	switch p {
	case model.PrimitiveString:
		return r.goStringType(s.Format)
	case model.PrimitiveInteger:
		return goIntegerType(s.Format)
	case model.PrimitiveFloat:
		return goNumberType(s.Format)
	default:
		return goPrimitiveType(p)
	}
}

func (r *TypeResolver) goStringType(format string) string {
	switch format {
	case "date-time", "date":
		r.imports["time"] = true
		return "time.Time"
	case "uuid":
		if imp := r.UUIDImport(); imp != "" {
			r.imports[imp] = true
		}
		return r.uuidType()
	case "byte", "binary":
		return "[]byte"
	default:
		return "string"
	}
}

func (r *TypeResolver) uuidType() string {
	if r.cfg == nil {
		return "string"
	}
	switch r.cfg.UUIDPackage {
	case "google", "gofrs":
		return "uuid.UUID"
	default:
		return "string"
	}
}

// UUIDImport returns the import path for UUID if needed.
func (r *TypeResolver) UUIDImport() string {
	if r.cfg == nil {
		return ""
	}
	switch r.cfg.UUIDPackage {
	case "google":
		return "github.com/google/uuid"
	case "gofrs":
		return "github.com/gofrs/uuid"
	default:
		return ""
	}
}

func (r *TypeResolver) resolveEnum(s *model.SimpleSchema, parentName, fieldName string) string {
	values := stringValues(s.Enum)
	name := ""
	if r.registry != nil {
		name, _ = r.registry.GetCanonicalName(s.Enum)
	}
	if name == "" {
		name = parentName + PascalCase(fieldName)
	}
	if r.seen[name] {
		return name
	}
	r.seen[name] = true
	r.nested = append(r.nested, NestedEnum{Name: name, Values: values})
	return name
}

// stringValues returns the enum values when all of them are strings.
func stringValues(enum []any) []string {
	if len(enum) == 0 {
		return nil
	}
	out := make([]string, 0, len(enum))
	for _, v := range enum {
		s, ok := v.(string)
		if !ok {
			return nil
		}
		out = append(out, s)
	}
	return out
}

// NullableInner reports whether u is T|null and returns T.
func NullableInner(u *model.UnionType) (model.TypeExpr, bool) {
	if len(u.AnyOf) != 2 {
		return nil, false
	}
	i := slices.IndexFunc(u.AnyOf, func(t model.TypeExpr) bool { return t == model.PrimitiveNone })
	if i < 0 {
		return nil, false
	}
	return u.AnyOf[1-i], true
}

// NeedsPointer reports whether a field of type t is emitted as a pointer.
// Optional scalars and records are pointers so absence is distinguishable;
// slices, maps and any already have a nil value.
func NeedsPointer(t model.TypeExpr, required bool) bool {
	nullable := false
	if u, ok := t.(*model.UnionType); ok {
		inner, isNullable := NullableInner(u)
		if !isNullable {
			return false
		}
		t, nullable = inner, true
	}
	if required && !nullable {
		return false
	}
	switch x := t.(type) {
	case model.PrimitiveType:
		switch x {
		case model.PrimitiveInteger, model.PrimitiveFloat, model.PrimitiveBoolean, model.PrimitiveString:
			return true
		}
		return false
	case *model.SchemaRef:
		switch s := x.Schema.(type) {
		case *model.ComplexSchema, *model.EnumSchema:
			return true
		case *model.SimpleSchema:
			if s.Name != "" {
				return isScalarAlias(s)
			}
			if s.Format == "byte" || s.Format == "binary" {
				return false
			}
			return NeedsPointer(s.Type, false)
		}
	}
	return false
}

func isScalarAlias(s *model.SimpleSchema) bool {
	switch t := s.Type.(type) {
	case model.PrimitiveType:
		return NeedsPointer(t, false)
	case *model.SchemaRef:
		return NeedsPointer(t, false)
	}
	return false
}

// EnumLiteral formats an enum value as a Go literal.
func EnumLiteral(v any) string {
	switch x := v.(type) {
	case string:
		return fmt.Sprintf("%q", x)
	case nil:
		return "nil"
	default:
		return fmt.Sprintf("%v", x)
	}
}
