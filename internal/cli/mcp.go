package cli

import (
	"github.com/kolah/irgen/internal/mcpserver"
	"github.com/spf13/cobra"
)

func MCPCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the resolver as MCP tools over stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			return mcpserver.Run(cmd.Context(), Version, newLogger(cmd))
		},
	}
}
