package cmd

import (
	"github.com/spf13/cobra"

	"github.com/firefly-engineering/vivarium/internal/stack"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Claim a slot and start the project's services",
	Long: `Setup reads the project config, claims a free slot, renders compose.yaml
and .env into the registry, starts the services and writes the package .env
files. Running it again reuses the project's slot.`,
	Args: cobra.NoArgs,
	RunE: runSetup,
}

var (
	setupSkipPull      bool
	setupSkipPostSetup bool
)

func init() {
	setupCmd.Flags().BoolVar(&setupSkipPull, "skip-pull", false, "Do not pull images before starting")
	setupCmd.Flags().BoolVar(&setupSkipPostSetup, "skip-post-setup", false, "Do not run the packages' postSetup commands")
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	_, err := manager().Setup(cmd.Context(), stack.SetupOptions{
		ProjectRoot:   projectRoot(),
		SkipPull:      setupSkipPull,
		SkipPostSetup: setupSkipPostSetup,
	})
	return err
}
