package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDescribe(t *testing.T) {
	pet := &ComplexSchema{Name: "Pet"}
	tests := []struct {
		name     string
		expr     TypeExpr
		expected string
	}{
		{"nil", nil, "none"},
		{"primitive", PrimitiveInteger, "integer"},
		{"array", &ArrayType{Items: PrimitiveString}, "array<string>"},
		{"named", &SchemaRef{Schema: pet}, "Pet"},
		{
			"union",
			&UnionType{AnyOf: []TypeExpr{PrimitiveString, &ArrayType{Items: &SchemaRef{Schema: pet}}}},
			"union<string, array<Pet>>",
		},
		{
			"anonymous simple",
			&SchemaRef{Schema: &SimpleSchema{Type: PrimitiveString, Format: "uuid"}},
			"string(format=uuid)",
		},
		{
			"anonymous simple with enum",
			&SchemaRef{Schema: &SimpleSchema{Type: PrimitiveString, Enum: []any{"a", "b"}}},
			"string(enum=a|b)",
		},
		{
			"anonymous enum",
			&SchemaRef{Schema: &EnumSchema{Values: []string{"x", "y"}}},
			"enum(x|y)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, Describe(tt.expr))
		})
	}
}

func TestModelAccessors(t *testing.T) {
	color := &EnumSchema{Name: "Color", Values: []string{"red"}}
	pet := &ComplexSchema{Name: "Pet", Properties: []Property{{Name: "id", Type: PrimitiveInteger}}, Required: []string{"id"}}
	id := &SimpleSchema{Name: "Id", Type: PrimitiveString, Format: "uuid"}

	m := &Model{
		Schemas:     map[string]Schema{"Color": color, "Pet": pet, "Id": id},
		SchemaOrder: []string{"Pet", "Color", "Id"},
		Endpoints: []Endpoint{
			{Path: "/pets", Operations: []Operation{{ID: "list", Tags: []string{"pets"}}, {ID: "ping"}}},
		},
	}

	names := m.SchemaNames()
	require.Equal(t, []string{"Pet", "Color", "Id"}, names)
	names[0] = "changed"
	require.Equal(t, "Pet", m.SchemaOrder[0])

	require.Equal(t, []*EnumSchema{color}, m.EnumSchemas())
	require.Equal(t, []*ComplexSchema{pet}, m.RecordSchemas())
	require.Equal(t, []*SimpleSchema{id}, m.AliasSchemas())

	_, ok := pet.Property("id")
	require.True(t, ok)
	require.True(t, pet.IsRequired("id"))
	require.False(t, pet.IsRequired("name"))

	ops := m.Operations()
	require.Len(t, ops, 2)
	require.Same(t, &m.Endpoints[0].Operations[0], ops[0])

	groups := m.OperationsByTag()
	require.Len(t, groups, 2)
	require.Equal(t, "pets", groups[0].Tag)
	require.Equal(t, DefaultTag, groups[1].Tag)
	require.Equal(t, "ping", groups[1].Operations[0].ID)

	require.Equal(t, "enum", SchemaKind(color))
	require.Equal(t, "record", SchemaKind(pet))
	require.Equal(t, "alias", SchemaKind(id))
}

type countingVisitor struct{}

func (countingVisitor) VisitPrimitive(PrimitiveType) int { return 1 }
func (c countingVisitor) VisitArray(a *ArrayType) int    { return 1 + VisitType[int](a.Items, c) }
func (c countingVisitor) VisitUnion(u *UnionType) int {
	n := 1
	for _, alt := range u.AnyOf {
		n += VisitType[int](alt, c)
	}
	return n
}
func (countingVisitor) VisitSchema(*SchemaRef) int { return 1 }

func TestVisitType(t *testing.T) {
	expr := &ArrayType{Items: &UnionType{AnyOf: []TypeExpr{PrimitiveString, &SchemaRef{}, &ArrayType{Items: PrimitiveAny}}}}
	require.Equal(t, 6, VisitType[int](expr, countingVisitor{}))
}
