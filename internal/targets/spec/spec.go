package spec

import (
	"encoding/base64"

	"github.com/kolah/irgen/internal/templates"
)

type Target struct{}

func New() *Target {
	return &Target{}
}

func (t *Target) Name() string {
	return "spec"
}

type templateData struct {
	Package  string
	Title    string
	SpecData string
}

// Generate embeds the raw source document so generated packages can serve it.
func (t *Target) Generate(engine templates.Engine, specData []byte, title, pkg string) (string, error) {
	data := templateData{
		Package:  pkg,
		Title:    title,
		SpecData: base64.StdEncoding.EncodeToString(specData),
	}

	return engine.Execute("go/spec.tmpl", data)
}
