package golang

import (
	"maps"
	"slices"
	"strings"

	"github.com/kolah/irgen/internal/model"
)

// EnumUsage records where an inline enum is used in the model.
type EnumUsage struct {
	FieldName  string
	ParentName string
	Values     []string
	ValuesKey  string
}

// EnumRegistry collects inline enum usages and resolves canonical names.
// Usages with the same value set share one type, named after the most
// common field name.
type EnumRegistry struct {
	usages       []EnumUsage
	valueToName  map[string]string
	nameToValues map[string]string
	reserved     map[string]bool
}

// NewEnumRegistry creates a new EnumRegistry. Reserved names, typically the
// named schemas, are never handed out.
func NewEnumRegistry(reserved ...string) *EnumRegistry {
	r := &EnumRegistry{
		valueToName:  make(map[string]string),
		nameToValues: make(map[string]string),
		reserved:     make(map[string]bool),
	}
	for _, name := range reserved {
		r.reserved[ToGoIdentifier(name)] = true
	}
	return r
}

// CollectModel records every inline string enum declared on a record
// property, including inside arrays and nullable unions.
func (r *EnumRegistry) CollectModel(records []*model.ComplexSchema) {
	for _, rec := range records {
		parent := ToGoIdentifier(rec.Name)
		for _, p := range rec.Properties {
			if values := inlineEnum(p.Type); values != nil {
				r.CollectEnum(p.Name, parent, values)
			}
		}
	}
}

func inlineEnum(t model.TypeExpr) []any {
	switch x := t.(type) {
	case *model.ArrayType:
		return inlineEnum(x.Items)
	case *model.UnionType:
		if inner, ok := NullableInner(x); ok {
			return inlineEnum(inner)
		}
	case *model.SchemaRef:
		s, ok := x.Schema.(*model.SimpleSchema)
		if ok && s.Name == "" && s.Type == model.PrimitiveString && stringValues(s.Enum) != nil {
			return s.Enum
		}
	}
	return nil
}

// CollectEnum records an enum usage for later name resolution.
func (r *EnumRegistry) CollectEnum(fieldName, parentName string, values []any) {
	strs := toStringSlice(values)
	r.usages = append(r.usages, EnumUsage{
		FieldName:  fieldName,
		ParentName: parentName,
		Values:     strs,
		ValuesKey:  canonicalKey(strs),
	})
}

// ResolveNames processes all collected usages and assigns canonical names.
func (r *EnumRegistry) ResolveNames() {
	groups := make(map[string][]EnumUsage)
	for _, u := range r.usages {
		groups[u.ValuesKey] = append(groups[u.ValuesKey], u)
	}

	for _, valuesKey := range slices.Sorted(maps.Keys(groups)) {
		usages := groups[valuesKey]
		name := r.determineName(usages, valuesKey)
		r.valueToName[valuesKey] = name
		r.nameToValues[name] = valuesKey
	}
}

func (r *EnumRegistry) determineName(usages []EnumUsage, valuesKey string) string {
	fieldCounts := make(map[string]int)
	for _, u := range usages {
		fieldCounts[u.FieldName]++
	}

	// Most common field name, alphabetical tie-break.
	var bestField string
	var bestCount int
	for field, count := range fieldCounts {
		if count > bestCount || (count == bestCount && field < bestField) {
			bestField = field
			bestCount = count
		}
	}

	baseName := PascalCase(bestField)
	if r.reserved[baseName] {
		baseName = usages[0].ParentName + baseName
	}

	if existingKey, taken := r.nameToValues[baseName]; (taken && existingKey != valuesKey) || r.reserved[baseName] {
		return baseName + valueSuffix(usages[0].Values)
	}

	return baseName
}

// GetCanonicalName returns the predetermined name for enum values.
func (r *EnumRegistry) GetCanonicalName(values []any) (string, bool) {
	key := canonicalKey(toStringSlice(values))
	name, ok := r.valueToName[key]
	return name, ok
}

// canonicalKey identifies a value set regardless of declaration order.
func canonicalKey(values []string) string {
	return strings.Join(slices.Sorted(slices.Values(values)), "|")
}

func toStringSlice(values []any) []string {
	strs := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			strs = append(strs, s)
		}
	}
	return strs
}

// valueSuffix disambiguates a taken name with the first two values in
// sorted order.
func valueSuffix(values []string) string {
	var suffix strings.Builder
	for _, v := range slices.Sorted(slices.Values(values))[:min(2, len(values))] {
		suffix.WriteString(PascalCase(v))
	}
	return suffix.String()
}
