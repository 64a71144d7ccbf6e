package cli

import (
	"encoding/json"
	"fmt"

	"github.com/kolah/irgen/internal/inspect"
	"github.com/spf13/cobra"
)

func InspectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print the resolved model of an OpenAPI document",
		RunE:  runInspect,
	}

	cmd.Flags().StringP("spec", "s", "", "OpenAPI spec file path")
	cmd.Flags().StringP("format", "f", "text", "Output format: text, json")
	_ = cmd.MarkFlagRequired("spec")

	return cmd
}

func runInspect(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("spec")
	format, _ := cmd.Flags().GetString("format")
	if format != "text" && format != "json" {
		return fmt.Errorf("invalid format: %s (valid: text, json)", format)
	}

	m, _, err := resolveFile(cmd, path)
	if err != nil {
		return err
	}
	doc := inspect.Summarize(m)

	if format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	}
	return inspect.WriteText(cmd.OutOrStdout(), doc)
}
