// Package mcpserver exposes the document resolver as MCP (Model Context
// Protocol) tools over stdio.
package mcpserver

import (
	"context"
	"errors"
	"fmt"

	"github.com/kolah/irgen/internal/inspect"
	"github.com/kolah/irgen/internal/loader"
	"github.com/kolah/irgen/internal/model"
	"github.com/kolah/irgen/internal/resolver"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `irgen MCP server: resolves OpenAPI documents (3.x, and Swagger 2.0 after conversion) into a typed model of named schemas and operations.

Provide a document either inline through "content" or as a "file" path. Types are rendered compactly: primitives (integer, float, boolean, string, object, any, none), array<T>, union<A, B>, schema names, and anonymous hints such as string(format=uuid).`

// Run starts the MCP server over stdio and blocks until the client
// disconnects or the context is cancelled.
func Run(ctx context.Context, version string, logger resolver.Logger) error {
	server := mcp.NewServer(
		&mcp.Implementation{Name: "irgen", Version: version},
		&mcp.ServerOptions{
			Instructions: serverInstructions,
		},
	)
	registerTools(server, logger)
	return server.Run(ctx, &mcp.StdioTransport{})
}

func registerTools(server *mcp.Server, logger resolver.Logger) {
	h := &handlers{logger: logger}

	mcp.AddTool(server, &mcp.Tool{
		Name:        "resolve_document",
		Description: "Resolve an OpenAPI document into its typed model. Returns title, version, base URLs, every named schema (kind enum, record or alias, with property types) in resolution order, and every operation with parameters, request body and responses. Resolution errors are reported with the JSON pointer and line of the offending node.",
	}, h.resolveDocument)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "describe_schema",
		Description: "Resolve an OpenAPI document and describe a single named schema from components/schemas. Returns its kind and, for records, each property type and whether it is required.",
	}, h.describeSchema)
}

type handlers struct {
	logger resolver.Logger
}

// documentInput is an OpenAPI document given inline or by path. Exactly
// one of File and Content must be set.
type documentInput struct {
	File    string `json:"file,omitempty"    jsonschema:"Path to an OpenAPI file on disk"`
	Content string `json:"content,omitempty" jsonschema:"Inline OpenAPI document content (JSON or YAML)"`
}

type resolveInput struct {
	Document documentInput `json:"document" jsonschema:"The OpenAPI document to resolve"`
}

type resolveOutput struct {
	Model          inspect.Document `json:"model"`
	OpenAPIVersion string           `json:"openapi_version"`
	Warnings       []string         `json:"warnings,omitempty"`
}

type describeInput struct {
	Document documentInput `json:"document" jsonschema:"The OpenAPI document containing the schema"`
	Name     string        `json:"name"     jsonschema:"Schema name as declared under components/schemas"`
}

func (h *handlers) resolveDocument(_ context.Context, _ *mcp.CallToolRequest, input resolveInput) (*mcp.CallToolResult, resolveOutput, error) {
	m, result, err := h.resolve(input.Document)
	if err != nil {
		return errResult(err), resolveOutput{}, nil
	}
	return nil, resolveOutput{
		Model:          inspect.Summarize(m),
		OpenAPIVersion: result.Version,
		Warnings:       result.Warnings,
	}, nil
}

func (h *handlers) describeSchema(_ context.Context, _ *mcp.CallToolRequest, input describeInput) (*mcp.CallToolResult, inspect.Schema, error) {
	if input.Name == "" {
		return errResult(errors.New("name is required")), inspect.Schema{}, nil
	}
	m, _, err := h.resolve(input.Document)
	if err != nil {
		return errResult(err), inspect.Schema{}, nil
	}
	s, ok := m.Schema(input.Name)
	if !ok {
		return errResult(fmt.Errorf("schema %q not found", input.Name)), inspect.Schema{}, nil
	}
	return nil, inspect.SummarizeSchema(s), nil
}

func (h *handlers) resolve(in documentInput) (*model.Model, *loader.Result, error) {
	var (
		result *loader.Result
		err    error
	)
	switch {
	case in.File != "" && in.Content != "":
		return nil, nil, errors.New("set exactly one of file or content")
	case in.File != "":
		result, err = loader.LoadFile(in.File)
	case in.Content != "":
		result, err = loader.Load([]byte(in.Content))
	default:
		return nil, nil, errors.New("a document is required: set file or content")
	}
	if err != nil {
		return nil, nil, err
	}

	m, err := resolver.Resolve(result.Root, resolver.WithLogger(h.logger))
	if err != nil {
		return nil, nil, err
	}
	return m, result, nil
}

// errResult reports err to the client as a tool failure rather than a
// protocol error.
func errResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
	}
}
