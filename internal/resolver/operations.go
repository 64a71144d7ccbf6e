package resolver

import (
	"fmt"
	"mime"
	"strconv"
	"strings"

	"github.com/kolah/irgen/internal/model"
	"go.yaml.in/yaml/v4"
)

// maxRefDepth bounds chains of component references such as a parameter
// that refers to another parameter.
const maxRefDepth = 32

var httpMethods = map[string]model.Method{
	"get":     model.MethodGet,
	"put":     model.MethodPut,
	"post":    model.MethodPost,
	"delete":  model.MethodDelete,
	"options": model.MethodOptions,
	"head":    model.MethodHead,
	"patch":   model.MethodPatch,
	"trace":   model.MethodTrace,
}

// Path item fields that are not operations and are skipped quietly.
var pathItemFields = map[string]bool{
	"summary":     true,
	"description": true,
	"servers":     true,
	"parameters":  true,
}

// operationScope carries what every error inside one operation reports.
type operationScope struct {
	path   string
	method model.Method
}

func (s operationScope) fail(at pointer, n *yaml.Node, format string, args ...any) error {
	return &OperationError{
		Path:     s.path,
		Method:   string(s.method),
		Location: at.at(n),
		Message:  fmt.Sprintf(format, args...),
	}
}

func (r *resolver) resolveEndpoint(path string, item *yaml.Node, at pointer) (model.Endpoint, error) {
	item, at, err := r.derefComponent(item, "pathItems", at)
	if err != nil {
		return model.Endpoint{}, err
	}
	if item == nil || item.Kind != yaml.MappingNode {
		return model.Endpoint{}, &OperationError{Path: path, Location: at.at(item), Message: "path item must be a mapping"}
	}

	var ops []model.Operation
	for key, raw := range pairs(item) {
		method, ok := httpMethods[strings.ToLower(key)]
		if !ok {
			if !pathItemFields[key] && !strings.HasPrefix(key, "x-") {
				r.logger.Warn("skipping unknown path item field", "path", path, "field", key)
			}
			continue
		}
		op, err := r.resolveOperation(operationScope{path: path, method: method}, item, raw, at)
		if err != nil {
			return model.Endpoint{}, err
		}
		ops = append(ops, op)
	}
	r.logger.Debug("resolved endpoint", "path", path, "operations", len(ops))
	return model.Endpoint{Path: path, Operations: ops}, nil
}

func (r *resolver) resolveOperation(scope operationScope, item, raw *yaml.Node, itemAt pointer) (model.Operation, error) {
	at := itemAt.child(strings.ToLower(string(scope.method)))
	raw = deref(raw)
	if raw == nil || raw.Kind != yaml.MappingNode {
		return model.Operation{}, scope.fail(at, raw, "operation must be a mapping")
	}

	op := model.Operation{
		ID:          stringOr(raw, "operationId", ""),
		Method:      scope.method,
		Path:        scope.path,
		Summary:     stringOr(raw, "summary", ""),
		Description: stringOr(raw, "description", ""),
		Deprecated:  boolField(raw, "deprecated"),
	}

	if op.ID != "" {
		where := string(scope.method) + " " + scope.path
		if first, dup := r.operationIDs[op.ID]; dup {
			return model.Operation{}, scope.fail(at.child("operationId"), lookup(raw, "operationId"),
				"duplicate operationId %q, first declared on %s", op.ID, first)
		}
		r.operationIDs[op.ID] = where
	}

	if tags := lookup(raw, "tags"); tags != nil {
		if tags.Kind != yaml.SequenceNode {
			return model.Operation{}, scope.fail(at.child("tags"), tags, "tags must be a list")
		}
		for i, t := range items(tags) {
			tag, ok := scalar(t)
			if !ok {
				return model.Operation{}, scope.fail(at.child("tags").index(i), t, "tag must be a string")
			}
			op.Tags = append(op.Tags, tag)
		}
	}

	params, err := r.resolveParameters(scope,
		lookup(item, "parameters"), itemAt.child("parameters"),
		lookup(raw, "parameters"), at.child("parameters"))
	if err != nil {
		return model.Operation{}, err
	}
	op.Parameters = params

	if body := lookup(raw, "requestBody"); body != nil {
		rb, err := r.resolveRequestBody(scope, body, at.child("requestBody"))
		if err != nil {
			return model.Operation{}, err
		}
		op.RequestBody = rb
	}

	responses, def, err := r.resolveResponses(scope, lookup(raw, "responses"), at.child("responses"))
	if err != nil {
		return model.Operation{}, err
	}
	op.Responses = responses
	op.DefaultResponse = def

	r.logger.Debug("resolved operation",
		"method", op.Method, "path", op.Path, "operationId", op.ID,
		"parameters", len(op.Parameters), "responses", len(op.Responses))
	return op, nil
}

type rawParameter struct {
	node *yaml.Node
	at   pointer
	key  string
}

func (r *resolver) collectParameters(scope operationScope, list *yaml.Node, at pointer) ([]rawParameter, error) {
	if list == nil {
		return nil, nil
	}
	if list.Kind != yaml.SequenceNode {
		return nil, scope.fail(at, list, "parameters must be a list")
	}
	var out []rawParameter
	for i, p := range items(list) {
		node, loc, err := r.derefComponent(p, "parameters", at.index(i))
		if err != nil {
			return nil, err
		}
		name, _ := stringField(node, "name")
		if name == "" {
			return nil, scope.fail(loc, node, "parameter has no name")
		}
		in, _ := stringField(node, "in")
		out = append(out, rawParameter{node: node, at: loc, key: in + ":" + name})
	}
	return out, nil
}

// resolveParameters merges path-level and operation-level parameters. An
// operation parameter replaces a path-level one with the same name and
// position.
func (r *resolver) resolveParameters(scope operationScope, shared *yaml.Node, sharedAt pointer, own *yaml.Node, ownAt pointer) ([]model.Parameter, error) {
	inherited, err := r.collectParameters(scope, shared, sharedAt)
	if err != nil {
		return nil, err
	}
	declared, err := r.collectParameters(scope, own, ownAt)
	if err != nil {
		return nil, err
	}

	overridden := make(map[string]bool, len(declared))
	for _, p := range declared {
		overridden[p.key] = true
	}
	merged := make([]rawParameter, 0, len(inherited)+len(declared))
	for _, p := range inherited {
		if !overridden[p.key] {
			merged = append(merged, p)
		}
	}
	merged = append(merged, declared...)

	var out []model.Parameter
	for _, p := range merged {
		param, err := r.resolveParameter(scope, p.node, p.at)
		if err != nil {
			return nil, err
		}
		out = append(out, param)
	}
	return out, nil
}

func (r *resolver) resolveParameter(scope operationScope, node *yaml.Node, at pointer) (model.Parameter, error) {
	name, _ := stringField(node, "name")
	in, _ := stringField(node, "in")

	var pos model.ParameterPosition
	switch in {
	case "query":
		pos = model.PositionQuery
	case "path":
		pos = model.PositionPath
	default:
		return model.Parameter{}, scope.fail(at.child("in"), lookup(node, "in"),
			"parameter %q has unsupported position %q, only query and path are supported", name, in)
	}

	schema, schemaAt := lookup(node, "schema"), at.child("schema")
	if schema == nil {
		for mt, media := range pairs(lookup(node, "content")) {
			schema, schemaAt = lookup(media, "schema"), at.child("content", mt, "schema")
			break
		}
	}
	t, err := r.resolveTypeExpression(schema, schemaAt)
	if err != nil {
		return model.Parameter{}, err
	}

	return model.Parameter{
		Name:        name,
		In:          pos,
		Description: stringOr(node, "description", ""),
		Required:    boolField(node, "required"),
		Type:        t,
	}, nil
}

func (r *resolver) resolveRequestBody(scope operationScope, body *yaml.Node, at pointer) (*model.RequestBody, error) {
	node, at, err := r.derefComponent(body, "requestBodies", at)
	if err != nil {
		return nil, err
	}

	content := lookup(node, "content")
	var (
		found    int
		encoding model.BodyEncoding
		media    *yaml.Node
		mediaAt  pointer
	)
	for mt, m := range pairs(content) {
		enc, ok := bodyEncoding(mt)
		if !ok {
			continue
		}
		found++
		encoding, media, mediaAt = enc, m, at.child("content", mt)
	}
	if found != 1 {
		return nil, scope.fail(at.child("content"), content,
			"request body must declare exactly one of %s or %s content, found %d",
			model.EncodingJSON, model.EncodingForm, found)
	}

	t, err := r.resolveTypeExpression(lookup(media, "schema"), mediaAt.child("schema"))
	if err != nil {
		return nil, err
	}
	return &model.RequestBody{
		Description: stringOr(node, "description", ""),
		Required:    boolField(node, "required"),
		Encoding:    encoding,
		Type:        t,
	}, nil
}

func bodyEncoding(mediaType string) (model.BodyEncoding, bool) {
	mt, _, err := mime.ParseMediaType(mediaType)
	if err != nil {
		return "", false
	}
	switch mt {
	case string(model.EncodingJSON):
		return model.EncodingJSON, true
	case string(model.EncodingForm):
		return model.EncodingForm, true
	}
	return "", false
}

func (r *resolver) resolveResponses(scope operationScope, n *yaml.Node, at pointer) ([]model.Response, *model.Response, error) {
	if n == nil {
		return nil, nil, nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, nil, scope.fail(at, n, "responses must be a mapping")
	}

	var (
		out []model.Response
		def *model.Response
	)
	for code, raw := range pairs(n) {
		respAt := at.child(code)
		status := 0
		if code != "default" {
			var err error
			status, err = strconv.Atoi(code)
			if err != nil || status < 100 || status > 599 {
				return nil, nil, scope.fail(respAt, raw, "unsupported response status %q", code)
			}
		}
		resp, err := r.resolveResponse(raw, respAt)
		if err != nil {
			return nil, nil, err
		}
		if code == "default" {
			def = &resp
			continue
		}
		resp.StatusCode = status
		out = append(out, resp)
	}
	return out, def, nil
}

func (r *resolver) resolveResponse(raw *yaml.Node, at pointer) (model.Response, error) {
	node, at, err := r.derefComponent(raw, "responses", at)
	if err != nil {
		return model.Response{}, err
	}
	resp := model.Response{Description: stringOr(node, "description", "")}

	mt, media, ok := responseMedia(lookup(node, "content"))
	if !ok {
		return resp, nil
	}
	t, err := r.resolveTypeExpression(lookup(media, "schema"), at.child("content", mt, "schema"))
	if err != nil {
		return model.Response{}, err
	}
	resp.Type = t
	return resp, nil
}

// responseMedia prefers a JSON media type and otherwise takes the first one
// declared.
func responseMedia(content *yaml.Node) (string, *yaml.Node, bool) {
	var (
		firstKey string
		first    *yaml.Node
		seen     bool
	)
	for mt, media := range pairs(content) {
		if !seen {
			firstKey, first, seen = mt, media, true
		}
		if parsed, _, err := mime.ParseMediaType(mt); err == nil &&
			(parsed == string(model.EncodingJSON) || strings.HasSuffix(parsed, "+json")) {
			return mt, media, true
		}
	}
	return firstKey, first, seen
}

// derefComponent follows local references into components.<kind> until it
// reaches an inline object. The returned pointer locates that object.
func (r *resolver) derefComponent(n *yaml.Node, kind string, at pointer) (*yaml.Node, pointer, error) {
	for depth := 0; ; depth++ {
		n = deref(n)
		refNode := lookup(n, "$ref")
		if refNode == nil {
			return n, at, nil
		}
		ref, _ := scalar(refNode)
		from := at.child("$ref").at(refNode)
		if depth >= maxRefDepth {
			return nil, at, &ReferenceError{Ref: ref, Location: from, Message: "reference chain too deep"}
		}
		name, ok := componentName(ref, kind)
		if !ok {
			return nil, at, &ReferenceError{
				Ref:      ref,
				Location: from,
				Message:  "only local #/components/" + kind + "/ references are supported here",
			}
		}
		target := lookup(lookup(lookup(r.root, "components"), kind), name)
		if target == nil {
			return nil, at, &ReferenceError{
				Ref:      ref,
				Name:     name,
				Location: from,
				Message:  "no such entry in components." + kind,
			}
		}
		n, at = target, componentPointer(kind, name)
	}
}
