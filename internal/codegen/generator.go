package codegen

import (
	"fmt"

	"github.com/kolah/irgen/internal/config"
	"github.com/kolah/irgen/internal/golang"
	"github.com/kolah/irgen/internal/model"
	"github.com/kolah/irgen/internal/targets/client"
	spectarget "github.com/kolah/irgen/internal/targets/spec"
	"github.com/kolah/irgen/internal/targets/types"
	"github.com/kolah/irgen/internal/templates"
	embeddedtmpl "github.com/kolah/irgen/templates"
)

type Generator struct {
	config *config.Config
	engine templates.Engine
}

type Output struct {
	Filename string
	Content  string
}

func New(cfg *config.Config) (*Generator, error) {
	if len(cfg.Go.OutputOptions.AdditionalInitialisms) > 0 {
		golang.SetAdditionalInitialisms(cfg.Go.OutputOptions.AdditionalInitialisms)
	}

	engine, err := templates.NewEngine(embeddedtmpl.FS, cfg.Templates.Dir, golang.TemplateFuncsWithResolver(&cfg.Go.Types))
	if err != nil {
		return nil, fmt.Errorf("creating template engine: %w", err)
	}

	return &Generator{
		config: cfg,
		engine: engine,
	}, nil
}

// Generate runs the configured targets over m in a fixed order: types,
// client, spec. specData is the raw source document for the spec target.
func (g *Generator) Generate(m *model.Model, specData []byte) ([]Output, error) {
	var outputs []Output
	goCfg := &g.config.Go

	if g.config.HasTarget("types") {
		content, err := types.New().Generate(g.engine, m, goCfg.Package, goCfg, g.config.ExcludeSchemas)
		if err != nil {
			return nil, fmt.Errorf("generating types: %w", err)
		}
		out, err := format("types.go", content)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, out)
	}

	if g.config.HasTarget("client") {
		content, err := client.New().Generate(g.engine, m, goCfg.Package, &goCfg.Types, g.config.IncludeTags, g.config.ExcludeTags)
		if err != nil {
			return nil, fmt.Errorf("generating client: %w", err)
		}
		out, err := format("client.go", content)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, out)
	}

	if g.config.HasTarget("spec") {
		content, err := spectarget.New().Generate(g.engine, specData, m.Title, goCfg.Package)
		if err != nil {
			return nil, fmt.Errorf("generating spec: %w", err)
		}
		out, err := format("spec.go", content)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, out)
	}

	return outputs, nil
}

func format(filename, content string) (Output, error) {
	formatted, err := golang.Format([]byte(content))
	if err != nil {
		return Output{}, fmt.Errorf("formatting %s: %w", filename, err)
	}
	return Output{Filename: filename, Content: string(formatted)}, nil
}
