package templates

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// Engine renders a named template with the given data.
type Engine interface {
	Execute(name string, data any) (string, error)
}

// TextTemplateEngine holds one template set. Template names are slash
// separated paths relative to the tree they were loaded from, such as
// "go/types.tmpl".
type TextTemplateEngine struct {
	set *template.Template
}

// NewEngine parses every *.tmpl file in embedded, then the ones under
// customDir when it is set and exists. A custom template replaces the
// embedded one with the same name. funcs take precedence over sprig's.
func NewEngine(embedded fs.FS, customDir string, funcs template.FuncMap) (*TextTemplateEngine, error) {
	set := template.New("").Funcs(sprig.TxtFuncMap()).Funcs(funcs)

	if err := parseTree(set, embedded, "embedded"); err != nil {
		return nil, fmt.Errorf("loading embedded templates: %w", err)
	}
	if customDir != "" {
		err := parseTree(set, os.DirFS(customDir), "custom")
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading custom templates: %w", err)
		}
	}
	return &TextTemplateEngine{set: set}, nil
}

func parseTree(set *template.Template, fsys fs.FS, origin string) error {
	return fs.WalkDir(fsys, ".", func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path.Ext(name) != ".tmpl" {
			return nil
		}
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading %s template %s: %w", origin, name, err)
		}
		if _, err := set.New(name).Parse(string(content)); err != nil {
			return fmt.Errorf("parsing %s template %s: %w", origin, name, err)
		}
		return nil
	})
}

func (e *TextTemplateEngine) Execute(name string, data any) (string, error) {
	tmpl := e.set.Lookup(name)
	if tmpl == nil {
		return "", fmt.Errorf("template not found: %s", name)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing template %s: %w", name, err)
	}
	return buf.String(), nil
}
