package cmd

import (
	"github.com/spf13/cobra"
)

var composeCmd = &cobra.Command{
	Use:   "compose -- <args>...",
	Short: "Run docker compose against the project's generated files",
	Example: `  vivarium compose -- logs -f postgres
  vivarium compose -- exec postgres psql -U shop`,
	DisableFlagParsing: true,
	RunE:               runCompose,
}

func init() {
	rootCmd.AddCommand(composeCmd)
}

func runCompose(cmd *cobra.Command, args []string) error {
	if len(args) > 0 && args[0] == "--" {
		args = args[1:]
	}
	if len(args) == 1 && (args[0] == "-h" || args[0] == "--help") {
		return cmd.Help()
	}
	return manager().Passthrough(cmd.Context(), projectRoot(), args)
}
