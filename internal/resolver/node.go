package resolver

import (
	"iter"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v4"
)

// The raw document is a go.yaml.in/yaml/v4 node tree. Mapping nodes keep
// declaration order, which drives schema and endpoint ordering.

// deref unwraps document and alias nodes. Explicit nulls read as absent.
func deref(n *yaml.Node) *yaml.Node {
	for n != nil {
		switch n.Kind {
		case yaml.DocumentNode:
			if len(n.Content) == 0 {
				return nil
			}
			n = n.Content[0]
		case yaml.AliasNode:
			n = n.Alias
		case yaml.ScalarNode:
			if n.ShortTag() == "!!null" {
				return nil
			}
			return n
		default:
			return n
		}
	}
	return nil
}

func isMapping(n *yaml.Node) bool {
	n = deref(n)
	return n != nil && n.Kind == yaml.MappingNode
}

// lookup returns the value stored under key in a mapping node.
func lookup(n *yaml.Node, key string) *yaml.Node {
	n = deref(n)
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return deref(n.Content[i+1])
		}
	}
	return nil
}

func has(n *yaml.Node, key string) bool {
	return lookup(n, key) != nil
}

// pairs iterates a mapping node in declaration order.
func pairs(n *yaml.Node) iter.Seq2[string, *yaml.Node] {
	return func(yield func(string, *yaml.Node) bool) {
		n = deref(n)
		if n == nil || n.Kind != yaml.MappingNode {
			return
		}
		for i := 0; i+1 < len(n.Content); i += 2 {
			if !yield(n.Content[i].Value, n.Content[i+1]) {
				return
			}
		}
	}
}

// items returns the elements of a sequence node, or nil.
func items(n *yaml.Node) []*yaml.Node {
	n = deref(n)
	if n == nil || n.Kind != yaml.SequenceNode {
		return nil
	}
	out := make([]*yaml.Node, len(n.Content))
	for i, c := range n.Content {
		out[i] = deref(c)
	}
	return out
}

func scalar(n *yaml.Node) (string, bool) {
	n = deref(n)
	if n == nil || n.Kind != yaml.ScalarNode {
		return "", false
	}
	return n.Value, true
}

func stringField(n *yaml.Node, key string) (string, bool) {
	return scalar(lookup(n, key))
}

func stringOr(n *yaml.Node, key, fallback string) string {
	if s, ok := stringField(n, key); ok {
		return s
	}
	return fallback
}

func boolField(n *yaml.Node, key string) bool {
	v := lookup(n, key)
	if v == nil || v.Kind != yaml.ScalarNode {
		return false
	}
	var b bool
	if err := v.Decode(&b); err != nil {
		return false
	}
	return b
}

// isStringScalar reports whether n is a scalar that decodes to a string.
func isStringScalar(n *yaml.Node) bool {
	n = deref(n)
	return n != nil && n.Kind == yaml.ScalarNode && n.ShortTag() == "!!str"
}

// pointer is a JSON pointer fragment used to report where an error occurred.
type pointer string

const rootPointer pointer = "#"

var (
	pointerEscaper   = strings.NewReplacer("~", "~0", "/", "~1")
	pointerUnescaper = strings.NewReplacer("~1", "/", "~0", "~")
)

func (p pointer) child(tokens ...string) pointer {
	var b strings.Builder
	b.WriteString(string(p))
	for _, t := range tokens {
		b.WriteByte('/')
		b.WriteString(pointerEscaper.Replace(t))
	}
	return pointer(b.String())
}

func (p pointer) index(i int) pointer {
	return p.child(strconv.Itoa(i))
}

func (p pointer) at(n *yaml.Node) Location {
	loc := Location{Pointer: string(p)}
	if n != nil {
		loc.Line = n.Line
		loc.Column = n.Column
	}
	return loc
}

// componentName extracts <Name> from a local "#/components/<kind>/<Name>"
// reference. Remote references and deeper pointers are rejected.
func componentName(ref, kind string) (string, bool) {
	prefix := "#/components/" + kind + "/"
	if !strings.HasPrefix(ref, prefix) {
		return "", false
	}
	name := strings.TrimPrefix(ref, prefix)
	if name == "" || strings.Contains(name, "/") {
		return "", false
	}
	return pointerUnescaper.Replace(name), true
}

func componentPointer(kind, name string) pointer {
	return rootPointer.child("components", kind, name)
}
