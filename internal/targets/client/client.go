package client

import (
	"fmt"
	"strconv"
	"strings"

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
	return "client"
}

type templateData struct {
	Package        string
	Title          string
	Version        string
	DefaultBaseURL string
	Imports        []string
	Services       []serviceData
	Params         []paramsData
}

type serviceData struct {
	Tag        string
	Field      string
	Type       string
	Operations []operationData
}

type operationData struct {
	Name          string
	Method        string
	Path          string
	PathExpr      string
	Summary       string
	Description   string
	Deprecated    bool
	PathParams    []parameterData
	ParamsType    string
	QueryParams   []parameterData
	Body          *bodyData
	Result        string
	ResultPointer bool
}

type paramsData struct {
	Type   string
	Fields []parameterData
}

type parameterData struct {
	Name     string
	GoName   string
	ArgName  string
	Type     string
	Required bool
	// Encode is how a query value is written: pointer, nilable, slice or value.
	Encode string
}

type bodyData struct {
	Type string
	Form bool
}

// Generate renders a client with one service per tag. An operation tagged
// twice is reachable from both services.
func (t *Target) Generate(engine templates.Engine, m *model.Model, pkg string, cfg *config.TypesConfig, includeTags, excludeTags []string) (string, error) {
	resolver := golang.NewTypeResolver(cfg)
	data := templateData{
		Package: pkg,
		Title:   m.Title,
		Version: m.Version,
	}
	if len(m.BaseURLs) > 0 {
		data.DefaultBaseURL = m.BaseURLs[0]
	}

	names := operationNames(m.Operations())
	built := make(map[*model.Operation]operationData)

	for _, group := range m.OperationsByTag() {
		if !tagSelected(group.Tag, includeTags, excludeTags) {
			continue
		}
		svc := serviceData{
			Tag:   group.Tag,
			Field: golang.ToGoIdentifier(group.Tag),
			Type:  golang.ToGoIdentifier(group.Tag) + "Service",
		}
		for _, op := range group.Operations {
			opData, ok := built[op]
			if !ok {
				opData = newOperation(resolver, op, names[op])
				built[op] = opData
				if opData.ParamsType != "" {
					data.Params = append(data.Params, paramsData{Type: opData.ParamsType, Fields: opData.QueryParams})
				}
			}
			svc.Operations = append(svc.Operations, opData)
		}
		data.Services = append(data.Services, svc)
	}
	data.Imports = resolver.Imports()

	return engine.Execute("go/client.tmpl", data)
}

func tagSelected(tag string, include, exclude []string) bool {
	for _, t := range exclude {
		if t == tag {
			return false
		}
	}
	if len(include) == 0 {
		return true
	}
	for _, t := range include {
		if t == tag {
			return true
		}
	}
	return false
}

// operationNames assigns each operation a unique Go method name, from its
// identifier when present and from method and path otherwise.
func operationNames(ops []*model.Operation) map[*model.Operation]string {
	names := make(map[*model.Operation]string, len(ops))
	used := make(map[string]bool, len(ops))
	for _, op := range ops {
		base := golang.ToGoIdentifier(op.ID)
		if op.ID == "" {
			base = golang.ToGoIdentifier(strings.ToLower(string(op.Method)) + " " + op.Path)
		}
		name := base
		for i := 2; used[name]; i++ {
			name = base + strconv.Itoa(i)
		}
		used[name] = true
		names[op] = name
	}
	return names
}

// reservedLocals are identifiers used inside generated method bodies.
var reservedLocals = []string{"s", "ctx", "params", "body", "path", "query", "out", "data", "form", "err", "reqBody", "contentType"}

func newOperation(resolver *golang.TypeResolver, op *model.Operation, name string) operationData {
	opData := operationData{
		Name:        name,
		Method:      string(op.Method),
		Path:        op.Path,
		Summary:     op.Summary,
		Description: op.Description,
		Deprecated:  op.Deprecated,
	}

	args := make(map[string]string)
	usedArgs := make(map[string]bool)
	for _, local := range reservedLocals {
		usedArgs[local] = true
	}
	for _, p := range op.ParametersIn(model.PositionPath) {
		argName := golang.EscapeKeyword(golang.CamelCase(golang.ToGoIdentifier(p.Name)))
		for i := 2; usedArgs[argName]; i++ {
			argName = fmt.Sprintf("%s%d", golang.CamelCase(golang.ToGoIdentifier(p.Name)), i)
		}
		usedArgs[argName] = true
		args[p.Name] = argName
		opData.PathParams = append(opData.PathParams, parameterData{
			Name:     p.Name,
			ArgName:  argName,
			Type:     resolver.ResolveType(p.Type, "", ""),
			Required: true,
		})
	}
	opData.PathExpr = pathExpr(op.Path, args)

	if query := op.ParametersIn(model.PositionQuery); len(query) > 0 {
		opData.ParamsType = name + "Params"
		used := make(map[string]bool)
		for _, p := range query {
			goName := golang.ToGoIdentifier(p.Name)
			for i := 2; used[goName]; i++ {
				goName = fmt.Sprintf("%s%d", golang.ToGoIdentifier(p.Name), i)
			}
			used[goName] = true
			opData.QueryParams = append(opData.QueryParams, newQueryParam(resolver, p, goName))
		}
	}

	if op.RequestBody != nil {
		opData.Body = &bodyData{
			Type: resolver.ResolveType(op.RequestBody.Type, "", ""),
			Form: op.RequestBody.Encoding == model.EncodingForm,
		}
	}

	if resp, ok := successResponse(op); ok {
		opData.Result = resolver.ResolveType(resp.Type, "", "")
		if ref, isRef := resp.Type.(*model.SchemaRef); isRef {
			_, opData.ResultPointer = ref.Schema.(*model.ComplexSchema)
		}
	}

	return opData
}

func newQueryParam(resolver *golang.TypeResolver, p model.Parameter, goName string) parameterData {
	goType := resolver.ResolveType(p.Type, "", "")
	pd := parameterData{
		Name:     p.Name,
		GoName:   goName,
		Required: p.Required,
		Encode:   "value",
	}
	switch {
	case strings.HasPrefix(goType, "[]") && goType != "[]byte":
		pd.Encode = "slice"
	case golang.NeedsPointer(p.Type, p.Required):
		pd.Encode = "pointer"
		goType = "*" + goType
	case goType == "any" || goType == "[]byte" || strings.HasPrefix(goType, "map["):
		pd.Encode = "nilable"
	}
	pd.Type = goType
	return pd
}

// successResponse returns the first 2xx response that carries a body.
func successResponse(op *model.Operation) (model.Response, bool) {
	for _, r := range op.Responses {
		if r.IsSuccess() && r.HasBody() {
			return r, true
		}
	}
	return model.Response{}, false
}

// pathExpr builds a Go string expression for path, substituting each
// {name} placeholder with its escaped argument.
func pathExpr(path string, args map[string]string) string {
	var parts []string
	rest := path
	for rest != "" {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			break
		}
		end := strings.IndexByte(rest[open:], '}')
		if end < 0 {
			break
		}
		end += open
		arg, ok := args[rest[open+1:end]]
		if !ok {
			parts = append(parts, strconv.Quote(rest[:end+1]))
			rest = rest[end+1:]
			continue
		}
		if open > 0 {
			parts = append(parts, strconv.Quote(rest[:open]))
		}
		parts = append(parts, "url.PathEscape(formatParam("+arg+"))")
		rest = rest[end+1:]
	}
	if rest != "" || len(parts) == 0 {
		parts = append(parts, strconv.Quote(rest))
	}
	return strings.Join(parts, " + ")
}
