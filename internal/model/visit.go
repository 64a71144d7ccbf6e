package model

import (
	"fmt"
	"strings"
)

// TypeVisitor handles each TypeExpr variant. Emitters implement it to map
// types onto target-language tokens.
type TypeVisitor[T any] interface {
	VisitPrimitive(p PrimitiveType) T
	VisitArray(a *ArrayType) T
	VisitUnion(u *UnionType) T
	VisitSchema(r *SchemaRef) T
}

// VisitType dispatches t to the matching visitor method. A nil TypeExpr is
// visited as PrimitiveNone.
func VisitType[T any](t TypeExpr, v TypeVisitor[T]) T {
	switch x := t.(type) {
	case nil:
		return v.VisitPrimitive(PrimitiveNone)
	case PrimitiveType:
		return v.VisitPrimitive(x)
	case *ArrayType:
		return v.VisitArray(x)
	case *UnionType:
		return v.VisitUnion(x)
	case *SchemaRef:
		return v.VisitSchema(x)
	default:
		panic(fmt.Sprintf("model: unknown type expression %T", t))
	}
}

// Describe renders t in a compact canonical form, e.g.
// "array<union<string, integer, Pet>>".
func Describe(t TypeExpr) string {
	return VisitType[string](t, describer{})
}

type describer struct{}

func (describer) VisitPrimitive(p PrimitiveType) string {
	return string(p)
}

func (d describer) VisitArray(a *ArrayType) string {
	return "array<" + Describe(a.Items) + ">"
}

func (d describer) VisitUnion(u *UnionType) string {
	parts := make([]string, len(u.AnyOf))
	for i, alt := range u.AnyOf {
		parts[i] = Describe(alt)
	}
	return "union<" + strings.Join(parts, ", ") + ">"
}

func (d describer) VisitSchema(r *SchemaRef) string {
	if r.Schema == nil {
		return "invalid"
	}
	if name := r.Schema.SchemaName(); name != "" {
		return name
	}
	switch s := r.Schema.(type) {
	case *SimpleSchema:
		return Describe(s.Type) + describeHints(s)
	case *EnumSchema:
		return "enum(" + strings.Join(s.Values, "|") + ")"
	default:
		return "object"
	}
}

func describeHints(s *SimpleSchema) string {
	var hints []string
	if s.Format != "" {
		hints = append(hints, "format="+s.Format)
	}
	if len(s.Enum) > 0 {
		vals := make([]string, len(s.Enum))
		for i, v := range s.Enum {
			vals[i] = fmt.Sprint(v)
		}
		hints = append(hints, "enum="+strings.Join(vals, "|"))
	}
	if len(hints) == 0 {
		return ""
	}
	return "(" + strings.Join(hints, ", ") + ")"
}

// SchemaKind names the variant of s: "enum", "record" or "alias".
func SchemaKind(s Schema) string {
	switch s.(type) {
	case *EnumSchema:
		return "enum"
	case *ComplexSchema:
		return "record"
	case *SimpleSchema:
		return "alias"
	default:
		return "unknown"
	}
}
