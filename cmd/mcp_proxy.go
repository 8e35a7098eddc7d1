package cmd

import (
	"github.com/spf13/cobra"
)

var mcpProxyCmd = &cobra.Command{
	Use:   "mcp-proxy <service>",
	Short: "Bridge stdio to an MCP server running in the project's stack",
	Long: `mcp-proxy runs a throwaway container on the project's compose network
that connects stdin/stdout to the service's SSE endpoint on port 8000.
Use it as the command of an MCP client entry, for example:

  vivarium mcp-proxy postgres-mcp`,
	Args: cobra.ExactArgs(1),
	RunE: runMCPProxy,
}

func init() {
	rootCmd.AddCommand(mcpProxyCmd)
}

func runMCPProxy(cmd *cobra.Command, args []string) error {
	return manager().MCPProxy(cmd.Context(), projectRoot(), args[0])
}
