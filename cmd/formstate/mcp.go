package main

import (
	"github.com/aretw0/formstate/internal/cli"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes form sessions as MCP tools (create_form, get_form, change_value,
reset_form, reinitialize_form, list_forms, delete_form).

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")
		dir, _ := cmd.Flags().GetString("definitions")

		watch, _ := cmd.Flags().GetBool("watch")
		logger := serverLogger(cmd)

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		reg, err := cli.LoadDefinitions(sigCtx, dir, watch, logger)
		if err != nil {
			return err
		}

		backend, err := openBackend(cmd)
		if err != nil {
			return err
		}
		defer backend.Close()

		// Logs go to Stderr so they never corrupt JSON-RPC on Stdout.
		return cli.RunMCP(sigCtx, backend, transport, port, reg, logger)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
	mcpCmd.Flags().String("definitions", "", "Directory of form definitions usable as create_form templates")
	mcpCmd.Flags().Bool("watch", false, "Reload --definitions when a file changes")
}
