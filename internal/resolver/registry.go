package resolver

import (
	"strings"

	"github.com/kolah/irgen/internal/model"
	"go.yaml.in/yaml/v4"
)

// registry maps schema names to their raw declarations and to the single
// Schema instance resolved for each. A slot is reserved before a
// declaration's body is walked, so references back to a schema that is
// still being resolved see the same instance.
type registry struct {
	decls     map[string]*yaml.Node
	declOrder []string
	slots     map[string]model.Schema
	order     []string
}

func newRegistry(schemas *yaml.Node) *registry {
	g := &registry{
		decls: make(map[string]*yaml.Node),
		slots: make(map[string]model.Schema),
	}
	for name, decl := range pairs(schemas) {
		if _, dup := g.decls[name]; !dup {
			g.declOrder = append(g.declOrder, name)
		}
		g.decls[name] = deref(decl)
	}
	return g
}

func (g *registry) lookup(name string) (model.Schema, bool) {
	s, ok := g.slots[name]
	return s, ok
}

func (g *registry) declaration(name string) (*yaml.Node, bool) {
	d, ok := g.decls[name]
	return d, ok
}

func (g *registry) reserve(name string, s model.Schema) {
	g.slots[name] = s
	g.order = append(g.order, name)
}

type declKind int

const (
	declRecord declKind = iota
	declEnum
	declAlias
)

// classify decides which Schema variant a named declaration becomes.
// A string enumeration wins over declared properties.
func classify(decl *yaml.Node) declKind {
	if enum := lookup(decl, "enum"); enum != nil && allStrings(enum) {
		return declEnum
	}
	if has(decl, "properties") {
		return declRecord
	}
	typeNode := lookup(decl, "type")
	if typeNode == nil {
		for _, key := range []string{"$ref", "anyOf", "oneOf", "enum", "format"} {
			if has(decl, key) {
				return declAlias
			}
		}
		return declRecord
	}
	if name, ok := scalar(typeNode); ok && name == "object" && !has(decl, "additionalProperties") {
		return declRecord
	}
	return declAlias
}

func allStrings(n *yaml.Node) bool {
	vals := items(n)
	if len(vals) == 0 {
		return false
	}
	for _, v := range vals {
		if !isStringScalar(v) {
			return false
		}
	}
	return true
}

// resolveNamed returns the shared Schema for name, resolving it on first use.
// from locates the reference that asked for it.
func (r *resolver) resolveNamed(name string, from Location) (model.Schema, error) {
	if s, ok := r.registry.lookup(name); ok {
		return s, nil
	}
	decl, ok := r.registry.declaration(name)
	if !ok {
		return nil, &ReferenceError{
			Ref:      string(componentPointer("schemas", name)),
			Name:     name,
			Location: from,
			Message:  "no such schema in components.schemas",
		}
	}
	at := componentPointer("schemas", name)
	if decl != nil && decl.Kind != yaml.MappingNode {
		return nil, &SchemaError{Name: name, Location: at.at(decl), Message: "declaration must be a mapping"}
	}

	title := stringOr(decl, "title", name)
	description := stringOr(decl, "description", "")

	var s model.Schema
	switch classify(decl) {
	case declEnum:
		e := &model.EnumSchema{Name: name, Title: title, Description: description}
		for _, v := range items(lookup(decl, "enum")) {
			e.Values = append(e.Values, v.Value)
		}
		r.registry.reserve(name, e)
		s = e
	case declRecord:
		c := &model.ComplexSchema{Name: name, Title: title, Description: description}
		r.registry.reserve(name, c)
		if err := r.fillRecord(c, decl, at); err != nil {
			return nil, err
		}
		s = c
	default:
		a := &model.SimpleSchema{Name: name, Title: title, Description: description}
		r.registry.reserve(name, a)
		if err := r.fillAlias(a, decl, at); err != nil {
			return nil, err
		}
		s = a
	}
	r.logger.Debug("resolved schema", "name", name, "kind", model.SchemaKind(s))
	return s, nil
}

func (r *resolver) fillRecord(c *model.ComplexSchema, decl *yaml.Node, at pointer) error {
	props := lookup(decl, "properties")
	if props != nil && props.Kind != yaml.MappingNode {
		return &SchemaError{Name: c.Name, Location: at.child("properties").at(props), Message: "properties must be a mapping"}
	}
	for pname, pnode := range pairs(props) {
		t, err := r.resolveTypeExpression(pnode, at.child("properties", pname))
		if err != nil {
			return err
		}
		c.Properties = append(c.Properties, model.Property{
			Name:        pname,
			Description: stringOr(pnode, "description", ""),
			Type:        t,
		})
	}

	req := lookup(decl, "required")
	if req == nil {
		return nil
	}
	if req.Kind != yaml.SequenceNode {
		return &SchemaError{Name: c.Name, Location: at.child("required").at(req), Message: "required must be a list"}
	}
	for i, rn := range items(req) {
		pname, ok := scalar(rn)
		if !ok {
			return &SchemaError{Name: c.Name, Location: at.child("required").index(i).at(rn), Message: "required entry must be a string"}
		}
		if _, declared := c.Property(pname); !declared {
			r.logger.Warn("dropping required name with no matching property", "schema", c.Name, "property", pname)
			continue
		}
		if c.IsRequired(pname) {
			continue
		}
		c.Required = append(c.Required, pname)
	}
	return nil
}

// fillAlias resolves a named declaration that is neither a record nor a
// string enumeration. Scalar hints land on the named schema itself instead
// of a nested anonymous one.
func (r *resolver) fillAlias(a *model.SimpleSchema, decl *yaml.Node, at pointer) error {
	typeNode := lookup(decl, "type")
	typeName, scalarType := scalar(typeNode)
	composite := has(decl, "$ref") || has(decl, "anyOf") || has(decl, "oneOf") ||
		(typeNode != nil && !scalarType) || typeName == "array"
	if composite {
		t, err := r.resolveTypeExpression(decl, at)
		if err != nil {
			return err
		}
		a.Type = t
		if chain, loops := aliasLoop(a); loops {
			return &SchemaError{
				Name:     a.Name,
				Location: at.at(decl),
				Message:  "alias refers back to itself through " + strings.Join(chain, " -> "),
			}
		}
		return nil
	}

	p := model.PrimitiveAny
	if scalarType {
		var err error
		if p, err = primitiveAt(typeName, at.child("type"), typeNode); err != nil {
			return err
		}
	}
	enum, err := literals(lookup(decl, "enum"), at.child("enum"))
	if err != nil {
		return err
	}
	a.Type = p
	a.Format = stringOr(decl, "format", "")
	a.Enum = enum
	return nil
}

// aliasLoop follows a's type through references to other named aliases and
// reports the chain of names when it comes back to a. Records and arrays
// end the walk, so recursion through them is allowed.
func aliasLoop(a *model.SimpleSchema) ([]string, bool) {
	chain := []string{a.Name}
	seen := make(map[*model.SimpleSchema]bool)
	t := a.Type
	for {
		ref, ok := t.(*model.SchemaRef)
		if !ok {
			return nil, false
		}
		next, ok := ref.Schema.(*model.SimpleSchema)
		if !ok || next.Name == "" || seen[next] {
			return nil, false
		}
		chain = append(chain, next.Name)
		if next == a {
			return chain, true
		}
		seen[next] = true
		t = next.Type
	}
}
