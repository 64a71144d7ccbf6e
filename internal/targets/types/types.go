package types

import (
	"fmt"
	"slices"

	"github.com/kolah/irgen/internal/config"
	"github.com/kolah/irgen/internal/golang"
	"github.com/kolah/irgen/internal/model"
	"github.com/kolah/irgen/internal/templates"
)

type Target struct{}

func New() *Target {
	return &Target{}
}

func (t *Target) Name() string {
	return "types"
}

type templateData struct {
	Package string
	Title   string
	Version string
	Imports []string
	Enums   []enumData
	Records []recordData
	Aliases []aliasData
}

type enumData struct {
	Name        string
	Description string
	Values      []enumValue
}

type enumValue struct {
	ConstName string
	Value     string
}

type recordData struct {
	Name        string
	Description string
	Fields      []fieldData
}

type fieldData struct {
	Name        string
	Type        string
	Tag         string
	Description string
}

type aliasData struct {
	Name        string
	Description string
	Type        string
	Values      []string
}

// Generate renders the named schemas of m as Go declarations: enums first,
// then records, then aliases. Schemas listed in exclude are skipped.
func (t *Target) Generate(engine templates.Engine, m *model.Model, pkg string, cfg *config.GoConfig, exclude []string) (string, error) {
	var records []*model.ComplexSchema
	for _, rec := range m.RecordSchemas() {
		if !slices.Contains(exclude, rec.Name) {
			records = append(records, rec)
		}
	}

	registry := golang.NewEnumRegistry(m.SchemaNames()...)
	registry.CollectModel(records)
	registry.ResolveNames()
	resolver := golang.NewTypeResolverWithRegistry(&cfg.Types, registry)
	yamlTags := cfg.OutputOptions.EnableYAMLTags

	data := templateData{
		Package: pkg,
		Title:   m.Title,
		Version: m.Version,
	}

	for _, e := range m.EnumSchemas() {
		if slices.Contains(exclude, e.Name) {
			continue
		}
		data.Enums = append(data.Enums, newEnum(golang.ToGoIdentifier(e.Name), e.Description, e.Values))
	}

	for _, rec := range records {
		data.Records = append(data.Records, newRecord(resolver, rec, yamlTags))
	}

	for _, s := range m.AliasSchemas() {
		if slices.Contains(exclude, s.Name) {
			continue
		}
		data.Aliases = append(data.Aliases, newAlias(resolver, s))
	}

	// Inline enums are discovered while resolving record fields.
	for _, nested := range resolver.NestedTypes() {
		data.Enums = append(data.Enums, newEnum(nested.Name, "", nested.Values))
	}
	data.Imports = resolver.Imports()

	return engine.Execute("go/types.tmpl", data)
}

func newEnum(name, description string, values []string) enumData {
	e := enumData{Name: name, Description: description}
	used := make(map[string]bool)
	seen := make(map[string]bool)
	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		constName := name + enumSuffix(v)
		for i := 2; used[constName]; i++ {
			constName = fmt.Sprintf("%s%s%d", name, enumSuffix(v), i)
		}
		used[constName] = true
		e.Values = append(e.Values, enumValue{ConstName: constName, Value: v})
	}
	return e
}

func enumSuffix(v string) string {
	if v == "" {
		return "Empty"
	}
	return golang.ToGoIdentifier(v)
}

func newRecord(resolver *golang.TypeResolver, rec *model.ComplexSchema, yamlTags bool) recordData {
	name := golang.ToGoIdentifier(rec.Name)
	r := recordData{Name: name, Description: rec.Description}
	used := make(map[string]bool)
	for _, p := range rec.Properties {
		required := rec.IsRequired(p.Name)
		goType := resolver.ResolveType(p.Type, name, p.Name)
		if golang.NeedsPointer(p.Type, required) {
			goType = "*" + goType
		}
		fieldName := golang.ToGoIdentifier(p.Name)
		for i := 2; used[fieldName]; i++ {
			fieldName = fmt.Sprintf("%s%d", golang.ToGoIdentifier(p.Name), i)
		}
		used[fieldName] = true
		r.Fields = append(r.Fields, fieldData{
			Name:        fieldName,
			Type:        goType,
			Tag:         golang.FieldTag(p.Name, required, yamlTags),
			Description: p.Description,
		})
	}
	return r
}

func newAlias(resolver *golang.TypeResolver, s *model.SimpleSchema) aliasData {
	underlying := s.Type
	if p, ok := s.Type.(model.PrimitiveType); ok && s.Format != "" {
		underlying = &model.SchemaRef{Schema: &model.SimpleSchema{Type: p, Format: s.Format}}
	}
	a := aliasData{
		Name:        golang.ToGoIdentifier(s.Name),
		Description: s.Description,
		Type:        resolver.ResolveType(underlying, "", ""),
	}
	a.Values = aliasLiterals(a.Type, s.Enum)
	return a
}

// aliasLiterals returns Go literals for the enum values of an alias, or nil
// when one of them does not fit the alias type.
func aliasLiterals(goType string, values []any) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if !literalFits(goType, v) {
			return nil
		}
		out = append(out, golang.EnumLiteral(v))
	}
	return out
}

func literalFits(goType string, v any) bool {
	switch v.(type) {
	case string:
		return goType == "string" || goType == "any"
	case bool:
		return goType == "bool" || goType == "any"
	case int, int64, uint64:
		switch goType {
		case "int", "int32", "int64", "float32", "float64", "any":
			return true
		}
	case float64:
		switch goType {
		case "float32", "float64", "any":
			return true
		}
	}
	return false
}
