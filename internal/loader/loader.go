package loader

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi2conv"
	"github.com/pb33f/libopenapi"
	"github.com/pb33f/libopenapi/datamodel"
	"go.yaml.in/yaml/v4"
)

// Result is a parsed document ready for resolution. Root is the raw node
// tree; for Swagger 2.0 input it is the upconverted 3.0 document.
type Result struct {
	Root     *yaml.Node
	Version  string
	Warnings []string
	RawData  []byte
}

func LoadFile(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading spec file: %w", err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving absolute path: %w", err)
	}

	config := &datamodel.DocumentConfiguration{
		BasePath: filepath.Dir(absPath),
	}

	return loadWithConfig(data, config)
}

// Load parses an in-memory JSON or YAML document.
func Load(data []byte) (*Result, error) {
	return loadWithConfig(data, nil)
}

func loadWithConfig(data []byte, config *datamodel.DocumentConfiguration) (*Result, error) {
	var doc libopenapi.Document
	var err error

	if config != nil {
		doc, err = libopenapi.NewDocumentWithConfiguration(data, config)
	} else {
		doc, err = libopenapi.NewDocument(data)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing OpenAPI document: %w", err)
	}

	version := doc.GetVersion()
	result := &Result{
		Version: version,
		RawData: data,
	}

	switch {
	case strings.HasPrefix(version, "3."):
		info := doc.GetSpecInfo()
		if info == nil || info.RootNode == nil {
			return nil, fmt.Errorf("parsing OpenAPI document: empty document")
		}
		result.Root = info.RootNode
		if strings.HasPrefix(version, "3.0") {
			result.Warnings = append(result.Warnings, "OpenAPI 3.0.x detected; type lists are a 3.1 feature")
		}
	case strings.HasPrefix(version, "2."):
		root, err := upconvert(data)
		if err != nil {
			return nil, fmt.Errorf("converting Swagger %s document: %w", version, err)
		}
		result.Root = root
		result.Warnings = append(result.Warnings,
			"Swagger 2.0 document converted to OpenAPI 3.0; schema and path order is alphabetical")
	default:
		return nil, fmt.Errorf("unsupported OpenAPI version: %q (only 2.0 and 3.x supported)", version)
	}

	return result, nil
}

// upconvert rewrites a Swagger 2.0 document as OpenAPI 3.0 and returns it
// as a node tree.
func upconvert(data []byte) (*yaml.Node, error) {
	var generic any
	if err := yaml.Unmarshal(data, &generic); err != nil {
		return nil, fmt.Errorf("decoding document: %w", err)
	}
	asJSON, err := json.Marshal(stringKeys(generic))
	if err != nil {
		return nil, fmt.Errorf("re-encoding document as JSON: %w", err)
	}

	var v2 openapi2.T
	if err := json.Unmarshal(asJSON, &v2); err != nil {
		return nil, fmt.Errorf("decoding Swagger document: %w", err)
	}
	v3, err := openapi2conv.ToV3(&v2)
	if err != nil {
		return nil, err
	}
	converted, err := json.Marshal(v3)
	if err != nil {
		return nil, fmt.Errorf("encoding converted document: %w", err)
	}

	var root yaml.Node
	if err := yaml.Unmarshal(converted, &root); err != nil {
		return nil, fmt.Errorf("reading converted document: %w", err)
	}
	return &root, nil
}

// stringKeys rewrites mappings with non-string keys, such as unquoted
// response codes, so they can be encoded as JSON.
func stringKeys(v any) any {
	switch x := v.(type) {
	case map[any]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[fmt.Sprint(k)] = stringKeys(val)
		}
		return out
	case map[string]any:
		for k, val := range x {
			x[k] = stringKeys(val)
		}
		return x
	case []any:
		for i, val := range x {
			x[i] = stringKeys(val)
		}
		return x
	default:
		return v
	}
}
