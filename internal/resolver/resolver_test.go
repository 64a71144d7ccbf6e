package resolver

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"
	"testing"

	"github.com/kolah/irgen/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadPetstore(t *testing.T) *model.Model {
	t.Helper()
	data, err := os.ReadFile("testdata/petstore.yaml")
	require.NoError(t, err)
	m, err := ResolveBytes(data)
	require.NoError(t, err)
	return m
}

// doc builds a minimal document around a components.schemas block and an
// optional paths block, both given as indented YAML.
func doc(schemas, paths string) []byte {
	if paths == "" {
		paths = "  {}"
	}
	return []byte(fmt.Sprintf(`openapi: 3.1.0
info:
  title: Test
  version: "1"
components:
  schemas:
%s
paths:
%s
`, schemas, paths))
}

func TestResolve_EndToEndPet(t *testing.T) {
	m, err := ResolveBytes([]byte(`
openapi: 3.0.0
info: {title: Pets, version: "1"}
components:
  schemas:
    Pet:
      properties:
        id: {type: integer}
        tags: {type: array, items: {type: string}}
      required: [id]
paths:
  /pets:
    get:
      operationId: listPets
      responses:
        "200":
          description: ok
          content:
            application/json:
              schema:
                type: array
                items: {$ref: "#/components/schemas/Pet"}
`))
	require.NoError(t, err)

	require.Equal(t, []string{"Pet"}, m.SchemaNames())
	pet, ok := m.Schema("Pet")
	require.True(t, ok)
	record, ok := pet.(*model.ComplexSchema)
	require.True(t, ok)
	require.Equal(t, []string{"id"}, record.Required)

	idProp, ok := record.Property("id")
	require.True(t, ok)
	require.Equal(t, model.PrimitiveInteger, idProp.Type)
	tagsProp, ok := record.Property("tags")
	require.True(t, ok)
	require.Equal(t, &model.ArrayType{Items: model.PrimitiveString}, tagsProp.Type)

	ops := m.Operations()
	require.Len(t, ops, 1)
	resp, ok := ops[0].Response(200)
	require.True(t, ok)
	arr, ok := resp.Type.(*model.ArrayType)
	require.True(t, ok)
	ref, ok := arr.Items.(*model.SchemaRef)
	require.True(t, ok)
	require.Same(t, record, ref.Schema)
}

func TestResolve_Petstore(t *testing.T) {
	m := loadPetstore(t)

	require.Equal(t, "Petstore", m.Title)
	require.Equal(t, "A sample pet store.", m.Description)
	require.Equal(t, "1.0.0", m.Version)
	require.Equal(t, []string{"https://petstore.example.com/v1"}, m.BaseURLs)
	require.Equal(t, []string{"Pet", "PetStatus", "Owner", "NewPet", "Error", "Timestamp"}, m.SchemaNames())

	enums := m.EnumSchemas()
	require.Len(t, enums, 1)
	require.Equal(t, "PetStatus", enums[0].Name)
	require.Equal(t, []string{"available", "pending", "sold"}, enums[0].Values)

	alias := m.AliasSchemas()
	require.Len(t, alias, 1)
	require.Equal(t, "Timestamp", alias[0].Name)
	require.Equal(t, model.PrimitiveString, alias[0].Type)
	require.Equal(t, "date-time", alias[0].Format)

	require.Len(t, m.RecordSchemas(), 4)

	require.Len(t, m.Endpoints, 3)
	require.Equal(t, "/pets", m.Endpoints[0].Path)
	require.Equal(t, model.MethodGet, m.Endpoints[0].Operations[0].Method)
	require.Equal(t, model.MethodPost, m.Endpoints[0].Operations[1].Method)

	list := m.Endpoints[0].Operations[0]
	require.Equal(t, "listPets", list.ID)
	require.Equal(t, []string{"pets"}, list.Tags)
	require.Len(t, list.Parameters, 1)
	limit := list.Parameters[0]
	require.Equal(t, "limit", limit.Name)
	require.Equal(t, model.PositionQuery, limit.In)
	require.False(t, limit.Required)
	require.Equal(t, "integer(format=int32)", model.Describe(limit.Type))
	require.NotNil(t, list.DefaultResponse)
	require.Equal(t, "Error", model.Describe(list.DefaultResponse.Type))

	create := m.Endpoints[0].Operations[1]
	require.NotNil(t, create.RequestBody)
	require.True(t, create.RequestBody.Required)
	require.Equal(t, model.EncodingJSON, create.RequestBody.Encoding)
	require.Equal(t, "NewPet", model.Describe(create.RequestBody.Type))

	show := m.Endpoints[1].Operations[0]
	require.Equal(t, "showPetById", show.ID)
	require.Len(t, show.Parameters, 1)
	require.Equal(t, "petId", show.Parameters[0].Name)
	require.Equal(t, model.PositionPath, show.Parameters[0].In)
	require.True(t, show.Parameters[0].Required)
	notFound, ok := show.Response(404)
	require.True(t, ok)
	require.False(t, notFound.HasBody())

	del := m.Endpoints[1].Operations[1]
	require.True(t, del.Deprecated)
	require.Equal(t, []string{"pets", "admin"}, del.Tags)

	health := m.Endpoints[2].Operations[0]
	resp, ok := health.Response(200)
	require.True(t, ok)
	require.Equal(t, model.PrimitiveString, resp.Type)
}

func TestResolve_Deterministic(t *testing.T) {
	first := loadPetstore(t)
	second := loadPetstore(t)

	require.Equal(t, first.SchemaNames(), second.SchemaNames())
	for _, name := range first.SchemaNames() {
		a, _ := first.Schema(name)
		b, _ := second.Schema(name)
		require.Equal(t, model.SchemaKind(a), model.SchemaKind(b), name)
		if ra, ok := a.(*model.ComplexSchema); ok {
			rb := b.(*model.ComplexSchema)
			require.Equal(t, propertyNames(ra), propertyNames(rb), name)
			require.Equal(t, ra.Required, rb.Required, name)
		}
	}

	var idsA, idsB []string
	for _, op := range first.Operations() {
		idsA = append(idsA, op.ID)
	}
	for _, op := range second.Operations() {
		idsB = append(idsB, op.ID)
	}
	require.Equal(t, idsA, idsB)
}

func TestResolve_SharedIdentity(t *testing.T) {
	m := loadPetstore(t)

	pet, _ := m.Schema("Pet")
	status, _ := m.Schema("PetStatus")
	newPet, _ := m.Schema("NewPet")

	for _, s := range []model.Schema{pet, newPet} {
		prop, ok := s.(*model.ComplexSchema).Property("status")
		require.True(t, ok)
		ref, ok := prop.Type.(*model.SchemaRef)
		require.True(t, ok)
		require.Same(t, status, ref.Schema)
	}

	show := m.Endpoints[1].Operations[0]
	resp, _ := show.Response(200)
	require.Same(t, pet, resp.Type.(*model.SchemaRef).Schema)

	// One registry entry per distinct name, not per reference site.
	require.Len(t, m.Schemas, 6)
}

func TestResolve_MutualRecursion(t *testing.T) {
	m, err := ResolveBytes(doc(`
    A:
      properties:
        b: {$ref: "#/components/schemas/B"}
        name: {type: string}
    B:
      properties:
        a: {$ref: "#/components/schemas/A"}
        self: {$ref: "#/components/schemas/B"}`, ""))
	require.NoError(t, err)

	a, _ := m.Schema("A")
	b, _ := m.Schema("B")
	recA := a.(*model.ComplexSchema)
	recB := b.(*model.ComplexSchema)

	toB, _ := recA.Property("b")
	require.Same(t, recB, toB.Type.(*model.SchemaRef).Schema)
	toA, _ := recB.Property("a")
	require.Same(t, recA, toA.Type.(*model.SchemaRef).Schema)
	self, _ := recB.Property("self")
	require.Same(t, recB, self.Type.(*model.SchemaRef).Schema)

	// Both ends are fully populated once resolution returns.
	require.Len(t, toB.Type.(*model.SchemaRef).Schema.(*model.ComplexSchema).Properties, 2)
	require.Len(t, toA.Type.(*model.SchemaRef).Schema.(*model.ComplexSchema).Properties, 2)
}

func TestResolve_ArrayOfUnion(t *testing.T) {
	m, err := ResolveBytes(doc(`
    C:
      properties:
        x: {type: string}
    Holder:
      properties:
        mixed:
          type: array
          items:
            anyOf:
              - type: string
              - type: integer
              - $ref: "#/components/schemas/C"`, ""))
	require.NoError(t, err)

	holder, _ := m.Schema("Holder")
	c, _ := m.Schema("C")
	prop, ok := holder.(*model.ComplexSchema).Property("mixed")
	require.True(t, ok)

	arr, ok := prop.Type.(*model.ArrayType)
	require.True(t, ok)
	union, ok := arr.Items.(*model.UnionType)
	require.True(t, ok)
	require.Len(t, union.AnyOf, 3)
	require.Equal(t, model.PrimitiveString, union.AnyOf[0])
	require.Equal(t, model.PrimitiveInteger, union.AnyOf[1])
	require.Same(t, c, union.AnyOf[2].(*model.SchemaRef).Schema)
	require.Equal(t, "array<union<string, integer, C>>", model.Describe(prop.Type))
}

func TestResolve_TypeExpressions(t *testing.T) {
	tests := []struct {
		name     string
		property string
		expected string
	}{
		{"no type", `{}`, "any"},
		{"no type with description", `{description: anything}`, "any"},
		{"number", `{type: number}`, "float"},
		{"boolean", `{type: boolean}`, "boolean"},
		{"free-form object", `{type: object}`, "object"},
		{"array without items", `{type: array}`, "array<any>"},
		{"nested arrays", `{type: array, items: {type: array, items: {type: integer}}}`, "array<array<integer>>"},
		{"format hint", `{type: string, format: uuid}`, "string(format=uuid)"},
		{"enum hint", `{type: integer, enum: [1, 2]}`, "integer(enum=1|2)"},
		{"format without type", `{format: binary}`, "any(format=binary)"},
		{"oneOf", `{oneOf: [{type: string}, {type: boolean}]}`, "union<string, boolean>"},
		{"anyOf wins over oneOf", `{anyOf: [{type: string}], oneOf: [{type: integer}]}`, "union<string>"},
		{"union alternative with hints", `{anyOf: [{type: string, format: date-time}, {type: integer}]}`, "union<string(format=date-time), integer>"},
		{"type list", `{type: [string, integer]}`, "union<string, integer>"},
		{"nullable type list", `{type: [string, "null"], format: email}`, "union<string(format=email), none>"},
		{"single entry type list", `{type: [boolean]}`, "boolean"},
		{"boolean schema", `true`, "any"},
		{"escaped reference", `{$ref: "#/components/schemas/a~1b"}`, "a/b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ResolveBytes(doc(`
    a/b:
      type: string
    Holder:
      properties:
        p: `+tt.property, ""))
			require.NoError(t, err)
			holder, _ := m.Schema("Holder")
			prop, ok := holder.(*model.ComplexSchema).Property("p")
			require.True(t, ok)
			require.Equal(t, tt.expected, model.Describe(prop.Type))
		})
	}
}

func TestResolve_NamedSchemaKinds(t *testing.T) {
	m, err := ResolveBytes(doc(`
    Color:
      title: Colour
      enum: [red, green]
    Level:
      type: integer
      enum: [1, 2, 3]
    Id:
      type: string
      format: uuid
    Ids:
      type: array
      items: {$ref: "#/components/schemas/Id"}
    Empty: {}
    Labels:
      type: object
      additionalProperties: {type: string}
    Either:
      oneOf:
        - $ref: "#/components/schemas/Color"
        - $ref: "#/components/schemas/Level"
    Switch:
      enum: ["on", "off"]
      properties:
        label: {type: string}`, ""))
	require.NoError(t, err)

	kinds := make(map[string]string)
	for _, name := range m.SchemaNames() {
		s, _ := m.Schema(name)
		kinds[name] = model.SchemaKind(s)
	}
	require.Equal(t, map[string]string{
		"Color":  "enum",
		"Level":  "alias",
		"Id":     "alias",
		"Ids":    "alias",
		"Empty":  "record",
		"Labels": "alias",
		"Either": "alias",
		"Switch": "enum",
	}, kinds)

	color, _ := m.Schema("Color")
	require.Equal(t, "Colour", color.SchemaTitle())
	id, _ := m.Schema("Id")
	require.Equal(t, "Id", id.SchemaTitle())

	level, _ := m.Schema("Level")
	require.Equal(t, []any{1, 2, 3}, level.(*model.SimpleSchema).Enum)

	ids, _ := m.Schema("Ids")
	require.Equal(t, "array<Id>", model.Describe(ids.(*model.SimpleSchema).Type))
	either, _ := m.Schema("Either")
	require.Equal(t, "union<Color, Level>", model.Describe(either.(*model.SimpleSchema).Type))
	labels, _ := m.Schema("Labels")
	require.Equal(t, model.PrimitiveObject, labels.(*model.SimpleSchema).Type)
}

func TestResolve_RequiredSubset(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	for round := range 50 {
		var b strings.Builder
		var declared []string
		for i := range 1 + rng.IntN(8) {
			name := fmt.Sprintf("p%d", i)
			declared = append(declared, name)
		}
		fmt.Fprintf(&b, "    R:\n      properties:\n")
		for _, name := range declared {
			fmt.Fprintf(&b, "        %s: {type: string}\n", name)
		}
		fmt.Fprintf(&b, "      required: [")
		var required []string
		for i := range 12 {
			if rng.IntN(2) == 0 {
				required = append(required, fmt.Sprintf("p%d", i))
			}
		}
		b.WriteString(strings.Join(required, ", "))
		b.WriteString("]")

		m, err := ResolveBytes(doc(b.String(), ""))
		require.NoError(t, err, "round %d", round)

		r, _ := m.Schema("R")
		record := r.(*model.ComplexSchema)
		for _, name := range record.Required {
			_, ok := record.Property(name)
			require.True(t, ok, "round %d: required %q has no property", round, name)
		}
		for _, name := range required {
			_, declaredProp := record.Property(name)
			require.Equal(t, declaredProp, record.IsRequired(name), "round %d: %q", round, name)
		}
	}
}

func TestResolve_NoRequiredList(t *testing.T) {
	m, err := ResolveBytes(doc(`
    R:
      properties:
        a: {type: string}
        b: {type: string}`, ""))
	require.NoError(t, err)
	r, _ := m.Schema("R")
	require.Empty(t, r.(*model.ComplexSchema).Required)
}

func TestResolve_UnknownReference(t *testing.T) {
	m, err := ResolveBytes(doc(`
    Pet:
      properties:
        owner: {$ref: "#/components/schemas/Owner"}`, ""))
	require.Nil(t, m)
	require.ErrorIs(t, err, ErrUnresolvedSchemaReference)

	var refErr *ReferenceError
	require.True(t, errors.As(err, &refErr))
	require.Equal(t, "Owner", refErr.Name)
	require.Equal(t, "#/components/schemas/Pet/properties/owner/$ref", refErr.Location.Pointer)
	require.Contains(t, err.Error(), `"Owner"`)
}

func TestResolve_Errors(t *testing.T) {
	tests := []struct {
		name        string
		document    []byte
		target      error
		errContains string
	}{
		{
			name:        "unsupported primitive",
			document:    doc("    Bad: {properties: {x: {type: decimal}}}", ""),
			target:      ErrUnsupportedPrimitiveType,
			errContains: `"decimal"`,
		},
		{
			name:        "remote reference",
			document:    doc(`    Bad: {properties: {x: {$ref: "other.yaml#/Pet"}}}`, ""),
			target:      ErrUnresolvedSchemaReference,
			errContains: "only local",
		},
		{
			name:        "deep pointer reference",
			document:    doc(`    Bad: {properties: {x: {$ref: "#/components/schemas/Bad/properties/y"}}}`, ""),
			target:      ErrUnresolvedSchemaReference,
			errContains: "only local",
		},
		{
			name:        "empty union",
			document:    doc("    Bad: {properties: {x: {anyOf: []}}}", ""),
			target:      ErrAmbiguousUnion,
			errContains: "non-empty",
		},
		{
			name:        "union alternative not a schema",
			document:    doc("    Bad: {properties: {x: {oneOf: [string]}}}", ""),
			target:      ErrAmbiguousUnion,
			errContains: "/oneOf/0",
		},
		{
			name:        "properties not a mapping",
			document:    doc("    Bad: {properties: [a, b]}", ""),
			target:      ErrMalformedSchema,
			errContains: "properties must be a mapping",
		},
		{
			name:        "enum not a list",
			document:    doc("    Bad: {properties: {x: {type: string, enum: red}}}", ""),
			target:      ErrMalformedSchema,
			errContains: "enum must be a list",
		},
		{
			name: "alias cycle",
			document: doc(`    A: {$ref: "#/components/schemas/B"}
    B: {$ref: "#/components/schemas/A"}
    Holder:
      properties:
        a: {$ref: "#/components/schemas/A"}`, ""),
			target:      ErrMalformedSchema,
			errContains: `malformed schema "A": alias refers back to itself through A -> B -> A`,
		},
		{
			name:        "alias of itself",
			document:    doc(`    Loop: {$ref: "#/components/schemas/Loop"}`, ""),
			target:      ErrMalformedSchema,
			errContains: "through Loop -> Loop",
		},
		{
			name: "missing title",
			document: []byte(`
info: {version: "1"}
components: {schemas: {}}
paths: {}`),
			target:      ErrMalformedOperation,
			errContains: `"info.title"`,
		},
		{
			name: "missing version",
			document: []byte(`
info: {title: T}
components: {schemas: {}}
paths: {}`),
			target:      ErrMalformedOperation,
			errContains: `"info.version"`,
		},
		{
			name: "missing schemas",
			document: []byte(`
info: {title: T, version: "1"}
paths: {}`),
			target:      ErrMalformedOperation,
			errContains: `"components.schemas"`,
		},
		{
			name: "missing paths",
			document: []byte(`
info: {title: T, version: "1"}
components: {schemas: {}}`),
			target:      ErrMalformedOperation,
			errContains: `"paths"`,
		},
		{
			name:        "document not a mapping",
			document:    []byte(`[1, 2]`),
			target:      ErrMalformedOperation,
			errContains: "malformed document",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ResolveBytes(tt.document)
			require.Nil(t, m)
			require.Error(t, err)
			require.ErrorIs(t, err, tt.target)
			require.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestResolve_AliasChains(t *testing.T) {
	m, err := ResolveBytes(doc(`    A: {$ref: "#/components/schemas/B"}
    B: {type: string}
    Tree:
      type: array
      items: {$ref: "#/components/schemas/Tree"}`, ""))
	require.NoError(t, err)

	a, _ := m.Schema("A")
	b, _ := m.Schema("B")
	require.Same(t, b, a.(*model.SimpleSchema).Type.(*model.SchemaRef).Schema)

	tree, _ := m.Schema("Tree")
	require.Equal(t, "array<Tree>", model.Describe(tree.(*model.SimpleSchema).Type))
}

func TestResolve_DefaultBaseURL(t *testing.T) {
	m, err := ResolveBytes(doc("    A: {}", ""))
	require.NoError(t, err)
	require.Equal(t, []string{DefaultBaseURL}, m.BaseURLs)
}

func TestResolve_FreshRegistryPerCall(t *testing.T) {
	first := loadPetstore(t)
	second := loadPetstore(t)

	a, _ := first.Schema("Pet")
	b, _ := second.Schema("Pet")
	assert.NotSame(t, a, b)
}

func TestResolve_Logging(t *testing.T) {
	logger := &recordingLogger{}
	_, err := ResolveBytes(doc(`
    R:
      properties:
        a: {type: string}
      required: [a, ghost]`, ""), WithLogger(logger))
	require.NoError(t, err)
	require.Contains(t, logger.warnings, "dropping required name with no matching property")
	require.Contains(t, logger.debug, "resolved schema")
}

type recordingLogger struct {
	debug    []string
	warnings []string
}

func (l *recordingLogger) Debug(msg string, _ ...any) { l.debug = append(l.debug, msg) }
func (l *recordingLogger) Info(string, ...any)        {}
func (l *recordingLogger) Warn(msg string, _ ...any)  { l.warnings = append(l.warnings, msg) }
func (l *recordingLogger) Error(string, ...any)       {}
func (l *recordingLogger) With(...any) Logger         { return l }

func propertyNames(c *model.ComplexSchema) []string {
	out := make([]string, len(c.Properties))
	for i, p := range c.Properties {
		out[i] = p.Name
	}
	return out
}
