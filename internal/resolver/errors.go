package resolver

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is. Every resolution error wraps
// exactly one of them.
var (
	ErrUnsupportedPrimitiveType  = errors.New("unsupported primitive type")
	ErrUnresolvedSchemaReference = errors.New("unresolved schema reference")
	ErrMalformedOperation        = errors.New("malformed operation")
	ErrMalformedSchema           = errors.New("malformed schema")
	ErrAmbiguousUnion            = errors.New("ambiguous union")
)

// Location points at a node inside the source document.
type Location struct {
	// Pointer is a JSON pointer fragment, e.g. "#/components/schemas/Pet".
	Pointer string
	Line    int
	Column  int
}

func (l Location) String() string {
	if l.Pointer == "" {
		return ""
	}
	if l.Line > 0 {
		return fmt.Sprintf("%s (line %d)", l.Pointer, l.Line)
	}
	return l.Pointer
}

func withLocation(msg string, loc Location) string {
	if s := loc.String(); s != "" {
		return msg + " at " + s
	}
	return msg
}

// PrimitiveTypeError reports a wire-level type name outside the supported set.
type PrimitiveTypeError struct {
	Type     string
	Location Location
}

func (e *PrimitiveTypeError) Error() string {
	return withLocation(fmt.Sprintf("unsupported primitive type %q", e.Type), e.Location)
}

func (e *PrimitiveTypeError) Is(target error) bool {
	return target == ErrUnsupportedPrimitiveType
}

// ReferenceError reports a $ref that does not name a declared component.
type ReferenceError struct {
	Ref string
	// Name is the component name extracted from Ref, empty when Ref is not a
	// local component reference.
	Name     string
	Location Location
	Message  string
}

func (e *ReferenceError) Error() string {
	msg := "unresolved schema reference"
	if e.Name != "" {
		msg += fmt.Sprintf(" %q", e.Name)
	} else if e.Ref != "" {
		msg += fmt.Sprintf(" %q", e.Ref)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return withLocation(msg, e.Location)
}

func (e *ReferenceError) Is(target error) bool {
	return target == ErrUnresolvedSchemaReference
}

// OperationError reports a malformed operation or a missing required
// top-level field. Path and Method are empty for document-level problems.
type OperationError struct {
	Path     string
	Method   string
	Location Location
	Message  string
}

func (e *OperationError) Error() string {
	msg := "malformed operation"
	if e.Method != "" {
		msg += " " + e.Method
	}
	if e.Path != "" {
		msg += " " + e.Path
	}
	if e.Path == "" && e.Method == "" {
		msg = "malformed document"
	}
	return withLocation(msg+": "+e.Message, e.Location)
}

func (e *OperationError) Is(target error) bool {
	return target == ErrMalformedOperation
}

// SchemaError reports a schema declaration whose structure cannot be read,
// such as a properties value that is not a mapping.
type SchemaError struct {
	Name     string
	Location Location
	Message  string
}

func (e *SchemaError) Error() string {
	msg := "malformed schema"
	if e.Name != "" {
		msg += fmt.Sprintf(" %q", e.Name)
	}
	return withLocation(msg+": "+e.Message, e.Location)
}

func (e *SchemaError) Is(target error) bool {
	return target == ErrMalformedSchema
}

// UnionError reports a union whose alternatives cannot be classified.
type UnionError struct {
	Location Location
	Message  string
}

func (e *UnionError) Error() string {
	return withLocation("ambiguous union: "+e.Message, e.Location)
}

func (e *UnionError) Is(target error) bool {
	return target == ErrAmbiguousUnion
}
