package model

// DefaultTag groups operations that declare no tags.
const DefaultTag = "default"

// Model is the fully resolved representation of one API document. It is
// built once and read-only afterwards.
type Model struct {
	Title       string
	Description string
	Version     string
	BaseURLs    []string
	Endpoints   []Endpoint

	// Schemas holds every named schema by component name. SchemaOrder lists
	// the same names in first-resolution order.
	Schemas     map[string]Schema
	SchemaOrder []string
}

// Endpoint is a URL path template and the operations declared on it.
type Endpoint struct {
	Path       string
	Operations []Operation
}

// Schema returns the named schema instance.
func (m *Model) Schema(name string) (Schema, bool) {
	s, ok := m.Schemas[name]
	return s, ok
}

// SchemaNames returns schema names in first-resolution order.
func (m *Model) SchemaNames() []string {
	out := make([]string, len(m.SchemaOrder))
	copy(out, m.SchemaOrder)
	return out
}

// EnumSchemas returns the named enums in first-resolution order.
func (m *Model) EnumSchemas() []*EnumSchema {
	var out []*EnumSchema
	for _, name := range m.SchemaOrder {
		if s, ok := m.Schemas[name].(*EnumSchema); ok {
			out = append(out, s)
		}
	}
	return out
}

// RecordSchemas returns the named records in first-resolution order.
func (m *Model) RecordSchemas() []*ComplexSchema {
	var out []*ComplexSchema
	for _, name := range m.SchemaOrder {
		if s, ok := m.Schemas[name].(*ComplexSchema); ok {
			out = append(out, s)
		}
	}
	return out
}

// AliasSchemas returns the named simple schemas in first-resolution order.
func (m *Model) AliasSchemas() []*SimpleSchema {
	var out []*SimpleSchema
	for _, name := range m.SchemaOrder {
		if s, ok := m.Schemas[name].(*SimpleSchema); ok {
			out = append(out, s)
		}
	}
	return out
}

// Operations returns every operation in endpoint order.
func (m *Model) Operations() []*Operation {
	var out []*Operation
	for i := range m.Endpoints {
		for j := range m.Endpoints[i].Operations {
			out = append(out, &m.Endpoints[i].Operations[j])
		}
	}
	return out
}

// TagGroup is the set of operations sharing a tag.
type TagGroup struct {
	Tag        string
	Operations []*Operation
}

// OperationsByTag groups operations by tag, in order of first appearance.
// An operation with several tags appears in each group; untagged operations
// fall under DefaultTag.
func (m *Model) OperationsByTag() []TagGroup {
	var groups []TagGroup
	index := make(map[string]int)

	add := func(tag string, op *Operation) {
		i, ok := index[tag]
		if !ok {
			i = len(groups)
			index[tag] = i
			groups = append(groups, TagGroup{Tag: tag})
		}
		groups[i].Operations = append(groups[i].Operations, op)
	}

	for _, op := range m.Operations() {
		if len(op.Tags) == 0 {
			add(DefaultTag, op)
			continue
		}
		for _, tag := range op.Tags {
			add(tag, op)
		}
	}
	return groups
}
