package cmd

import (
	"github.com/spf13/cobra"

	"github.com/firefly-engineering/vivarium/internal/stack"
)

var teardownCmd = &cobra.Command{
	Use:   "teardown",
	Short: "Stop the services, delete their data and release the slot",
	Args:  cobra.NoArgs,
	RunE:  runTeardown,
}

var teardownKeepVolumes bool

func init() {
	teardownCmd.Flags().BoolVar(&teardownKeepVolumes, "keep-volumes", false, "Keep the named volumes (database contents)")
	rootCmd.AddCommand(teardownCmd)
}

func runTeardown(cmd *cobra.Command, args []string) error {
	_, err := manager().Teardown(cmd.Context(), projectRoot(), stack.TeardownOptions{
		KeepVolumes: teardownKeepVolumes,
	})
	return err
}
