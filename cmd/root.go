package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/firefly-engineering/vivarium/internal/app"
	"github.com/firefly-engineering/vivarium/internal/config"
	"github.com/firefly-engineering/vivarium/internal/logging"
)

var (
	verbose     bool
	jsonOutput  bool
	configFile  string
	registryDir string
	projectDir  string
)

var rootCmd = &cobra.Command{
	Use:   "vivarium",
	Short: "Local development stack manager",
	Long: `vivarium runs the backing services of a project (PostgreSQL, Valkey,
an S3-compatible object store) with docker compose.

Each project gets its own slot, so several projects can run side by side:
  - A non-conflicting block of host ports
  - A claim in the user registry (~/.local/share/vivarium)
  - Generated compose.yaml and .env files
  - Per-package .env files wired to the slot's ports`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Setup(verbose, jsonOutput, os.Stderr)

		settings, err := config.LoadSettings(configFile, cmd.Root().PersistentFlags())
		if err != nil {
			return err
		}
		logging.Debug("settings loaded", "registry", settings.RegistryDir, "file", settings.ConfigFile)
		app.SetDefault(newApp(settings))
		return nil
	},
}

// newApp builds the application for the loaded settings. Tests replace it.
var newApp = func(settings *config.Settings) *app.App {
	return app.New(app.WithSettings(settings))
}

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output logs in JSON format")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Settings file (default ~/.config/vivarium/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&registryDir, "registry-dir", "", "Registry directory (default ~/.local/share/vivarium)")
	rootCmd.PersistentFlags().StringVarP(&projectDir, "project-dir", "C", ".", "Project root directory")
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// Helper aliases for user-facing output (delegates to logging package)
var (
	logInfo    = logging.UserInfo
	logSuccess = logging.UserSuccess
	logWarning = logging.UserWarning
	logDim     = logging.UserDim
)
