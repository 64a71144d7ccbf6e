package resolver

import (
	"errors"

	"github.com/kolah/irgen/internal/model"
	"go.yaml.in/yaml/v4"
)

// resolveTypeExpression resolves one type-bearing node: a property schema,
// a parameter or body schema, an array's items, or a union alternative.
//
// Dispatch order: $ref, anyOf/oneOf, array, scalar type, no type (Any).
// Scalars carrying format or enum hints are wrapped in an anonymous
// SimpleSchema, in every context.
func (r *resolver) resolveTypeExpression(n *yaml.Node, at pointer) (model.TypeExpr, error) {
	n = deref(n)
	if n == nil {
		return model.PrimitiveAny, nil
	}
	if n.Kind == yaml.ScalarNode {
		// JSON Schema allows `true` as the schema that accepts anything.
		var b bool
		if err := n.Decode(&b); err == nil && b {
			return model.PrimitiveAny, nil
		}
	}
	if n.Kind != yaml.MappingNode {
		return nil, &SchemaError{Location: at.at(n), Message: "type expression must be a mapping"}
	}

	if refNode := lookup(n, "$ref"); refNode != nil {
		ref, ok := scalar(refNode)
		if !ok {
			return nil, &SchemaError{Location: at.child("$ref").at(refNode), Message: "$ref must be a string"}
		}
		return r.resolveReference(ref, at.child("$ref").at(refNode))
	}

	for _, key := range []string{"anyOf", "oneOf"} {
		if alts := lookup(n, key); alts != nil {
			return r.resolveUnion(alts, at.child(key))
		}
	}

	typeNode := lookup(n, "type")
	switch {
	case typeNode == nil:
		return r.withHints(n, model.PrimitiveAny, at)
	case typeNode.Kind == yaml.SequenceNode:
		return r.resolveTypeList(n, typeNode, at)
	case typeNode.Kind == yaml.ScalarNode:
		return r.resolveTyped(n, typeNode.Value, at)
	default:
		return nil, &SchemaError{
			Location: at.child("type").at(typeNode),
			Message:  "type must be a string or a list of strings",
		}
	}
}

// resolveReference hands a local schema reference to the registry and wraps
// the shared instance it returns.
func (r *resolver) resolveReference(ref string, from Location) (model.TypeExpr, error) {
	name, ok := componentName(ref, "schemas")
	if !ok {
		return nil, &ReferenceError{
			Ref:      ref,
			Location: from,
			Message:  "only local #/components/schemas/ references are supported",
		}
	}
	s, err := r.resolveNamed(name, from)
	if err != nil {
		return nil, err
	}
	return &model.SchemaRef{Schema: s}, nil
}

func (r *resolver) resolveUnion(alts *yaml.Node, at pointer) (model.TypeExpr, error) {
	if alts.Kind != yaml.SequenceNode || len(alts.Content) == 0 {
		return nil, &UnionError{Location: at.at(alts), Message: "alternatives must be a non-empty list"}
	}
	list := items(alts)
	u := &model.UnionType{AnyOf: make([]model.TypeExpr, 0, len(list))}
	for i, alt := range list {
		altAt := at.index(i)
		if alt == nil || alt.Kind != yaml.MappingNode {
			return nil, &UnionError{Location: altAt.at(alt), Message: "alternative is not a schema object"}
		}
		t, err := r.resolveTypeExpression(alt, altAt)
		if err != nil {
			return nil, err
		}
		u.AnyOf = append(u.AnyOf, t)
	}
	return u, nil
}

// resolveTypeList handles `type: [string, "null"]`. Each entry is resolved
// as if it were the node's only type.
func (r *resolver) resolveTypeList(n, list *yaml.Node, at pointer) (model.TypeExpr, error) {
	entries := items(list)
	if len(entries) == 0 {
		return nil, &SchemaError{Location: at.child("type").at(list), Message: "type list is empty"}
	}
	alts := make([]model.TypeExpr, 0, len(entries))
	for i, e := range entries {
		name, ok := scalar(e)
		if !ok {
			return nil, &SchemaError{Location: at.child("type").index(i).at(e), Message: "type entry must be a string"}
		}
		t, err := r.resolveTyped(n, name, at)
		if err != nil {
			return nil, err
		}
		alts = append(alts, t)
	}
	if len(alts) == 1 {
		return alts[0], nil
	}
	return &model.UnionType{AnyOf: alts}, nil
}

func (r *resolver) resolveTyped(n *yaml.Node, typeName string, at pointer) (model.TypeExpr, error) {
	if typeName == "array" {
		elem, err := r.resolveTypeExpression(lookup(n, "items"), at.child("items"))
		if err != nil {
			return nil, err
		}
		return &model.ArrayType{Items: elem}, nil
	}
	p, err := primitiveAt(typeName, at.child("type"), lookup(n, "type"))
	if err != nil {
		return nil, err
	}
	return r.withHints(n, p, at)
}

// withHints wraps p in an anonymous SimpleSchema when n carries a format or
// a literal enumeration.
func (r *resolver) withHints(n *yaml.Node, p model.PrimitiveType, at pointer) (model.TypeExpr, error) {
	format, _ := stringField(n, "format")
	enumNode := lookup(n, "enum")
	if p == model.PrimitiveNone || (format == "" && enumNode == nil) {
		return p, nil
	}
	enum, err := literals(enumNode, at.child("enum"))
	if err != nil {
		return nil, err
	}
	return &model.SchemaRef{Schema: &model.SimpleSchema{
		Title:       stringOr(n, "title", ""),
		Description: stringOr(n, "description", ""),
		Type:        p,
		Format:      format,
		Enum:        enum,
	}}, nil
}

func primitiveAt(typeName string, at pointer, n *yaml.Node) (model.PrimitiveType, error) {
	p, err := mapPrimitive(typeName)
	if err != nil {
		var pe *PrimitiveTypeError
		if errors.As(err, &pe) {
			pe.Location = at.at(n)
		}
		return "", err
	}
	return p, nil
}

// literals decodes an enum list into plain Go values.
func literals(n *yaml.Node, at pointer) ([]any, error) {
	if n == nil {
		return nil, nil
	}
	if n.Kind != yaml.SequenceNode {
		return nil, &SchemaError{Location: at.at(n), Message: "enum must be a list"}
	}
	out := make([]any, 0, len(n.Content))
	for i, item := range n.Content {
		var v any
		if err := item.Decode(&v); err != nil {
			return nil, &SchemaError{Location: at.index(i).at(item), Message: "enum value: " + err.Error()}
		}
		out = append(out, v)
	}
	return out, nil
}
