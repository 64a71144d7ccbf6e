// Package inspect summarizes a resolved model for humans and tools.
package inspect

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/kolah/irgen/internal/model"
)

type Document struct {
	Title       string      `json:"title"`
	Version     string      `json:"version"`
	Description string      `json:"description,omitempty"`
	BaseURLs    []string    `json:"base_urls"`
	Schemas     []Schema    `json:"schemas"`
	Operations  []Operation `json:"operations"`
}

type Schema struct {
	Name        string     `json:"name"`
	Kind        string     `json:"kind"`
	Title       string     `json:"title,omitempty"`
	Description string     `json:"description,omitempty"`
	Type        string     `json:"type,omitempty"`
	Values      []string   `json:"values,omitempty"`
	Properties  []Property `json:"properties,omitempty"`
}

type Property struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
}

type Operation struct {
	ID         string      `json:"id,omitempty"`
	Method     string      `json:"method"`
	Path       string      `json:"path"`
	Tags       []string    `json:"tags,omitempty"`
	Deprecated bool        `json:"deprecated,omitempty"`
	Parameters []Parameter `json:"parameters,omitempty"`
	Body       *Body       `json:"body,omitempty"`
	Responses  []Response  `json:"responses,omitempty"`
}

type Parameter struct {
	Name     string `json:"name"`
	In       string `json:"in"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
}

type Body struct {
	Encoding string `json:"encoding"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
}

type Response struct {
	Status string `json:"status"`
	Type   string `json:"type,omitempty"`
}

// Summarize flattens m into plain data, with every type rendered by
// model.Describe. Schemas keep their resolution order.
func Summarize(m *model.Model) Document {
	doc := Document{
		Title:       m.Title,
		Version:     m.Version,
		Description: m.Description,
		BaseURLs:    m.BaseURLs,
		Schemas:     []Schema{},
		Operations:  []Operation{},
	}
	for _, name := range m.SchemaNames() {
		s, _ := m.Schema(name)
		doc.Schemas = append(doc.Schemas, SummarizeSchema(s))
	}
	for _, op := range m.Operations() {
		doc.Operations = append(doc.Operations, summarizeOperation(op))
	}
	return doc
}

// SummarizeSchema describes one named schema.
func SummarizeSchema(s model.Schema) Schema {
	out := Schema{
		Name:  s.SchemaName(),
		Kind:  model.SchemaKind(s),
		Title: s.SchemaTitle(),
	}
	switch x := s.(type) {
	case *model.EnumSchema:
		out.Description = x.Description
		out.Values = x.Values
	case *model.ComplexSchema:
		out.Description = x.Description
		for _, p := range x.Properties {
			out.Properties = append(out.Properties, Property{
				Name:     p.Name,
				Type:     model.Describe(p.Type),
				Required: x.IsRequired(p.Name),
			})
		}
	case *model.SimpleSchema:
		out.Description = x.Description
		out.Type = model.Describe(&model.SchemaRef{Schema: &model.SimpleSchema{
			Type:   x.Type,
			Format: x.Format,
			Enum:   x.Enum,
		}})
	}
	return out
}

func summarizeOperation(op *model.Operation) Operation {
	out := Operation{
		ID:         op.ID,
		Method:     string(op.Method),
		Path:       op.Path,
		Tags:       op.Tags,
		Deprecated: op.Deprecated,
	}
	for _, p := range op.Parameters {
		out.Parameters = append(out.Parameters, Parameter{
			Name:     p.Name,
			In:       string(p.In),
			Type:     model.Describe(p.Type),
			Required: p.Required,
		})
	}
	if rb := op.RequestBody; rb != nil {
		out.Body = &Body{
			Encoding: string(rb.Encoding),
			Type:     model.Describe(rb.Type),
			Required: rb.Required,
		}
	}
	for _, r := range op.Responses {
		out.Responses = append(out.Responses, summarizeResponse(strconv.Itoa(r.StatusCode), r))
	}
	if op.DefaultResponse != nil {
		out.Responses = append(out.Responses, summarizeResponse("default", *op.DefaultResponse))
	}
	return out
}

func summarizeResponse(status string, r model.Response) Response {
	out := Response{Status: status}
	if r.HasBody() {
		out.Type = model.Describe(r.Type)
	}
	return out
}

// WriteText prints doc as aligned plain text.
func WriteText(w io.Writer, doc Document) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "%s %s\n", doc.Title, doc.Version)
	if len(doc.BaseURLs) > 0 {
		fmt.Fprintf(tw, "Base URLs: %s\n", strings.Join(doc.BaseURLs, ", "))
	}

	fmt.Fprintf(tw, "\nSchemas (%d):\n", len(doc.Schemas))
	for _, s := range doc.Schemas {
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", s.Name, s.Kind, schemaDetail(s))
	}

	fmt.Fprintf(tw, "\nOperations (%d):\n", len(doc.Operations))
	for _, op := range doc.Operations {
		id := op.ID
		if id == "" {
			id = "-"
		}
		var flags []string
		if len(op.Tags) > 0 {
			flags = append(flags, "tags="+strings.Join(op.Tags, ","))
		}
		if op.Deprecated {
			flags = append(flags, "deprecated")
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", op.Method, op.Path, id, strings.Join(flags, " "))
	}

	return tw.Flush()
}

func schemaDetail(s Schema) string {
	switch s.Kind {
	case "enum":
		return strings.Join(s.Values, "|")
	case "record":
		parts := make([]string, len(s.Properties))
		for i, p := range s.Properties {
			marker := "?"
			if p.Required {
				marker = ""
			}
			parts[i] = p.Name + marker + ": " + p.Type
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return s.Type
	}
}
