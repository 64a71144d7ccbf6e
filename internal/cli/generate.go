package cli

import (
	"github.com/kolah/irgen/internal/config"
	"github.com/spf13/cobra"
)

func GenerateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate code from an OpenAPI document",
	}

	config.BindCommonFlags(cmd)
	cmd.AddCommand(NewGoCmd())

	return cmd
}
