package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kolah/irgen/internal/codegen"
	"github.com/kolah/irgen/internal/config"
	"github.com/kolah/irgen/internal/loader"
	"github.com/kolah/irgen/internal/model"
	"github.com/kolah/irgen/internal/resolver"
	"github.com/spf13/cobra"
)

func NewGoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "go",
		Short: "Generate Go code from an OpenAPI document",
	}

	flags := cmd.PersistentFlags()
	flags.StringP("output-dir", "o", "", "Output directory for generated Go code")
	flags.StringP("package", "p", "", "Go package name")
	flags.String("uuid-package", "", "UUID type: string, google, gofrs")
	flags.Bool("enable-yaml-tags", false, "Generate yaml tags")
	flags.StringSlice("additional-initialisms", nil, "Additional initialisms")

	cmd.AddCommand(
		newGoTypesCmd(),
		newGoClientCmd(),
		newGoSpecCmd(),
		newGoAllCmd(),
	)

	return cmd
}

func newGoTypesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "Generate Go type definitions for the named schemas",
		RunE:  runGoGenerate("types"),
	}
}

func newGoClientCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "client",
		Short: "Generate a Go HTTP client with one service per tag",
		RunE:  runGoGenerate("client"),
	}
}

func newGoSpecCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "spec",
		Short: "Generate the embedded source document",
		RunE:  runGoGenerate("spec"),
	}
}

func newGoAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "Generate all Go targets (types, client, spec)",
		RunE:  runGoGenerate("all"),
	}
}

func runGoGenerate(target string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cmd, []string{target})
		if err != nil {
			return err
		}

		m, result, err := resolveFile(cmd, cfg.Spec)
		if err != nil {
			return err
		}

		gen, err := codegen.New(cfg)
		if err != nil {
			return fmt.Errorf("creating generator: %w", err)
		}

		outputs, err := gen.Generate(m, result.RawData)
		if err != nil {
			return fmt.Errorf("generating code: %w", err)
		}

		dryRun, _ := cmd.Flags().GetBool("dry-run")
		if dryRun {
			for _, out := range outputs {
				cmd.Printf("// %s\n%s\n", out.Filename, out.Content)
			}
			return nil
		}

		if err := os.MkdirAll(cfg.Go.OutputDir, 0755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}

		for _, out := range outputs {
			path := filepath.Join(cfg.Go.OutputDir, out.Filename)
			if err := os.WriteFile(path, []byte(out.Content), 0644); err != nil {
				return fmt.Errorf("writing %s: %w", path, err)
			}
			cmd.PrintErrf("Written: %s\n", path)
		}

		return nil
	}
}

// resolveFile loads and resolves the document at path, reporting loader
// warnings and a short summary on stderr.
func resolveFile(cmd *cobra.Command, path string) (*model.Model, *loader.Result, error) {
	result, err := loader.LoadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("loading spec: %w", err)
	}

	for _, w := range result.Warnings {
		cmd.PrintErrf("Warning: %s\n", w)
	}

	m, err := resolver.Resolve(result.Root, resolver.WithLogger(newLogger(cmd)))
	if err != nil {
		return nil, nil, fmt.Errorf("resolving spec: %w", err)
	}

	cmd.PrintErrf("Loaded OpenAPI %s: %s v%s\n", result.Version, m.Title, m.Version)
	cmd.PrintErrf("  Schemas: %d\n", len(m.SchemaNames()))
	cmd.PrintErrf("  Operations: %d\n", len(m.Operations()))

	return m, result, nil
}
