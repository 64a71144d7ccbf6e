package golang

import (
	"slices"
	"strings"
	"text/template"

	"github.com/kolah/irgen/internal/config"
	"github.com/kolah/irgen/internal/model"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TemplateFuncsWithResolver returns template functions with a resolver for context-aware type resolution.
func TemplateFuncsWithResolver(cfg *config.TypesConfig) template.FuncMap {
	resolver := NewTypeResolver(cfg)

	funcs := TemplateFuncs()
	funcs["resolveType"] = func(t model.TypeExpr, parentName, fieldName string) string {
		return resolver.ResolveType(t, parentName, fieldName)
	}
	return funcs
}

func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"pascalCase":    PascalCase,
		"camelCase":     CamelCase,
		"snakeCase":     SnakeCase,
		"goType":        GoType,
		"goName":        ToGoIdentifier,
		"goZeroValue":   GoZeroValue,
		"jsonTag":       JSONTag,
		"escapeKeyword": EscapeKeyword,
		"goComment":     GoComment,
		"isRequired":    IsRequired,
		"needsPointer":  NeedsPointer,
		"enumLiteral":   EnumLiteral,
		"describe":      model.Describe,
		"lower":         strings.ToLower,
		"upper":         strings.ToUpper,
		"join":          strings.Join,
		"hasPrefix":     strings.HasPrefix,
		"hasSuffix":     strings.HasSuffix,
		"trimPrefix":    strings.TrimPrefix,
		"trimSuffix":    strings.TrimSuffix,
		"dict":          Dict,
		"title":         Title,
	}
}

// Dict creates a map from key-value pairs for use in templates.
func Dict(values ...any) map[string]any {
	if len(values)%2 != 0 {
		return nil
	}
	dict := make(map[string]any, len(values)/2)
	for i := 0; i < len(values); i += 2 {
		key, ok := values[i].(string)
		if !ok {
			continue
		}
		dict[key] = values[i+1]
	}
	return dict
}

func GoComment(s string) string {
	if s == "" {
		return ""
	}
	lines := strings.Split(strings.TrimSpace(s), "\n")
	var result strings.Builder
	for i, line := range lines {
		if i > 0 {
			result.WriteString("\n")
		}
		result.WriteString("// ")
		result.WriteString(strings.TrimSpace(line))
	}
	return result.String()
}

func IsRequired(name string, required []string) bool {
	return slices.Contains(required, name)
}

// Title returns s in title case, e.g. "pet store" becomes "Pet Store".
func Title(s string) string {
	return cases.Title(language.English).String(s)
}
