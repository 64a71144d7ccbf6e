package resolver

import "github.com/kolah/irgen/internal/model"

var wirePrimitives = map[string]model.PrimitiveType{
	"integer": model.PrimitiveInteger,
	"number":  model.PrimitiveFloat,
	"boolean": model.PrimitiveBoolean,
	"string":  model.PrimitiveString,
	"object":  model.PrimitiveObject,
	"null":    model.PrimitiveNone,
}

// mapPrimitive maps a wire-level scalar type name onto a PrimitiveType.
// Unknown names are an error; PrimitiveAny is never produced here, it is
// reserved for nodes that declare no type at all.
func mapPrimitive(wire string) (model.PrimitiveType, error) {
	p, ok := wirePrimitives[wire]
	if !ok {
		return "", &PrimitiveTypeError{Type: wire}
	}
	return p, nil
}
