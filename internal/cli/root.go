package cli

import (
	"log/slog"

	"github.com/kolah/irgen/internal/resolver"
	"github.com/spf13/cobra"
)

// Version is reported by --version and the MCP server.
const Version = "0.1.0"

func RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "irgen",
		Short:         "irgen - resolve OpenAPI documents into a typed model and generate Go code",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,

		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	root.PersistentFlags().BoolP("verbose", "v", false, "Log resolver diagnostics at debug level")

	root.AddCommand(
		GenerateCommand(),
		InspectCommand(),
		MCPCommand(),
	)

	return root
}

// newLogger writes resolver diagnostics to the command's stderr. Only
// warnings are shown unless --verbose is set.
func newLogger(cmd *cobra.Command) resolver.Logger {
	level := slog.LevelWarn
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})
	return resolver.NewSlogAdapter(slog.New(handler))
}
