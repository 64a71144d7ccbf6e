package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/kolah/irgen/internal/inspect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const petstore = "../resolver/testdata/petstore.yaml"

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := RootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestInspect_Text(t *testing.T) {
	stdout, stderr, err := execute(t, "inspect", "--spec", petstore)
	require.NoError(t, err)

	assert.Contains(t, stderr, "Loaded OpenAPI 3.0.3: Petstore v1.0.0")
	assert.Contains(t, stdout, "Petstore 1.0.0")
	assert.Contains(t, stdout, "Schemas (6):")
	assert.Regexp(t, `PetStatus\s+enum\s+available\|pending\|sold`, stdout)
	assert.Regexp(t, `DELETE\s+/pets/\{petId\}\s+deletePet\s+tags=pets,admin deprecated`, stdout)
}

func TestInspect_JSON(t *testing.T) {
	stdout, _, err := execute(t, "inspect", "--spec", petstore, "--format", "json")
	require.NoError(t, err)

	var doc inspect.Document
	require.NoError(t, json.Unmarshal([]byte(stdout), &doc))
	assert.Equal(t, "Petstore", doc.Title)
	assert.Equal(t, []string{"https://petstore.example.com/v1"}, doc.BaseURLs)

	names := make([]string, len(doc.Schemas))
	for i, s := range doc.Schemas {
		names[i] = s.Name
	}
	assert.Equal(t, []string{"Pet", "PetStatus", "Owner", "NewPet", "Error", "Timestamp"}, names)
}

func TestInspect_Errors(t *testing.T) {
	_, _, err := execute(t, "inspect", "--spec", petstore, "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format: xml")

	_, _, err = execute(t, "inspect")
	require.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("openapi: 3.1.0\ninfo: {version: '1'}\npaths: {}\ncomponents: {schemas: {}}\n"), 0o644))
	_, _, err = execute(t, "inspect", "--spec", bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `resolving spec: malformed document: missing required field "info.title"`)
}

func TestGenerateGo_DryRun(t *testing.T) {
	stdout, _, err := execute(t, "generate", "go", "all", "--spec", petstore, "-p", "petstore", "-o", t.TempDir(), "--dry-run")
	require.NoError(t, err)

	assert.Contains(t, stdout, "// types.go\n")
	assert.Contains(t, stdout, "// client.go\n")
	assert.Contains(t, stdout, "// spec.go\n")
	assert.Contains(t, stdout, "type Pet struct")
}

func TestGenerateGo_WritesFiles(t *testing.T) {
	out := t.TempDir()
	_, stderr, err := execute(t, "generate", "go", "types", "--spec", petstore, "-p", "petstore", "-o", out)
	require.NoError(t, err)

	assert.Contains(t, stderr, "Written: "+filepath.Join(out, "types.go"))
	data, err := os.ReadFile(filepath.Join(out, "types.go"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "package petstore")
	assert.NoFileExists(t, filepath.Join(out, "client.go"))
}

func TestGenerateGo_Verbose(t *testing.T) {
	_, stderr, err := execute(t, "generate", "go", "spec", "--spec", petstore, "-p", "petstore", "-o", t.TempDir(), "--dry-run", "--verbose")
	require.NoError(t, err)
	assert.Contains(t, stderr, "level=DEBUG")
	assert.Contains(t, stderr, "resolved schema")
}

func TestGenerateGo_ConfigErrors(t *testing.T) {
	_, _, err := execute(t, "generate", "go", "types", "--spec", petstore, "-o", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "package name is required")
}
