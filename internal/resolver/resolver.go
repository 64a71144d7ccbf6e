// Package resolver turns a parsed OpenAPI document tree into a model.Model.
//
// Named schemas are resolved first, in declaration order, then every path
// and operation. Each named schema is resolved exactly once; every
// reference to it shares the same instance, which is what lets recursive
// and mutually recursive schemas terminate.
package resolver

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/kolah/irgen/internal/model"
	"go.yaml.in/yaml/v4"
)

// DefaultBaseURL is used when a document declares no servers.
const DefaultBaseURL = "/"

type options struct {
	logger Logger
}

// Option configures a resolution pass.
type Option func(*options)

// WithLogger routes diagnostics to l.
func WithLogger(l Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

type resolver struct {
	root         *yaml.Node
	registry     *registry
	logger       Logger
	operationIDs map[string]string
}

// ResolveBytes parses a JSON or YAML document and resolves it.
func ResolveBytes(data []byte, opts ...Option) (*model.Model, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}
	return Resolve(&root, opts...)
}

// Resolve builds the model for a parsed document. On error no partial
// model is returned.
func Resolve(root *yaml.Node, opts ...Option) (*model.Model, error) {
	o := options{logger: NopLogger{}}
	for _, opt := range opts {
		opt(&o)
	}

	root = deref(root)
	if root == nil || root.Kind != yaml.MappingNode {
		return nil, &OperationError{Location: rootPointer.at(root), Message: "document must be a mapping"}
	}

	info := lookup(root, "info")
	title, ok := stringField(info, "title")
	if !ok {
		return nil, missingField("info", "title")
	}
	version, ok := stringField(info, "version")
	if !ok {
		return nil, missingField("info", "version")
	}
	schemas := lookup(lookup(root, "components"), "schemas")
	if schemas == nil {
		return nil, missingField("components", "schemas")
	}
	if schemas.Kind != yaml.MappingNode {
		return nil, &OperationError{
			Location: rootPointer.child("components", "schemas").at(schemas),
			Message:  "components.schemas must be a mapping",
		}
	}
	paths := lookup(root, "paths")
	if paths == nil {
		return nil, missingField("paths")
	}
	if paths.Kind != yaml.MappingNode {
		return nil, &OperationError{Location: rootPointer.child("paths").at(paths), Message: "paths must be a mapping"}
	}

	r := &resolver{
		root:         root,
		registry:     newRegistry(schemas),
		logger:       o.logger,
		operationIDs: make(map[string]string),
	}

	m := &model.Model{
		Title:       title,
		Description: stringOr(info, "description", ""),
		Version:     version,
		BaseURLs:    baseURLs(lookup(root, "servers")),
	}

	for _, name := range r.registry.declOrder {
		if _, err := r.resolveNamed(name, componentPointer("schemas", name).at(nil)); err != nil {
			return nil, err
		}
	}
	r.logger.Info("resolved schemas", "count", len(r.registry.order))

	for path, item := range pairs(paths) {
		ep, err := r.resolveEndpoint(path, item, rootPointer.child("paths", path))
		if err != nil {
			return nil, err
		}
		m.Endpoints = append(m.Endpoints, ep)
	}
	r.logger.Info("resolved endpoints", "count", len(m.Endpoints), "operations", len(m.Operations()))

	m.Schemas = maps.Clone(r.registry.slots)
	m.SchemaOrder = slices.Clone(r.registry.order)
	return m, nil
}

func missingField(path ...string) error {
	return &OperationError{
		Location: rootPointer.child(path...).at(nil),
		Message:  fmt.Sprintf("missing required field %q", strings.Join(path, ".")),
	}
}

func baseURLs(servers *yaml.Node) []string {
	var out []string
	for _, s := range items(servers) {
		if url, ok := stringField(s, "url"); ok && url != "" {
			out = append(out, url)
		}
	}
	if len(out) == 0 {
		return []string{DefaultBaseURL}
	}
	return out
}
