package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/firefly-engineering/vivarium/internal/health"
	"github.com/firefly-engineering/vivarium/internal/logging"
	"github.com/firefly-engineering/vivarium/internal/monitor"
)

var (
	watchInterval    time.Duration
	watchAutoRestart bool
	watchOnce        bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Periodically check the services of every set-up project",
	Long: `Watch probes the backing services of every project in the registry on
an interval and prints status changes. With --auto-restart, projects whose
services stopped are brought back up with compose up.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 30*time.Second, "Time between checks")
	watchCmd.Flags().BoolVar(&watchAutoRestart, "auto-restart", false, "Start projects whose services are down")
	watchCmd.Flags().BoolVar(&watchOnce, "once", false, "Check every project once and exit")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	mgr := manager()

	checker := mgr.Health
	if checker == nil {
		checker = health.NewChecker()
	}

	opts := []monitor.Option{
		monitor.WithAuditLogger(mgr.History),
		monitor.WithResultHandler(printCheck),
	}
	if watchAutoRestart {
		opts = append(opts, monitor.WithAutoRestart(mgr.Start))
	}
	m := monitor.New(watchInterval, mgr.Registry, checker, opts...)

	if watchOnce {
		if len(m.CheckAll(cmd.Context())) == 0 {
			logInfo("No projects set up.")
		}
		return nil
	}

	logInfo("Watching projects every %s (Ctrl-C to stop)", watchInterval)
	err := m.Run(cmd.Context())
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func printCheck(r monitor.CheckResult) {
	fmt.Fprintf(logging.Stdout(), "%-20s index %-3d %s\n", r.Project, r.Index, formatStatus(r.Status))
	for _, res := range r.Results {
		if !res.Healthy() {
			logDim("  %s (port %d): %s", res.Service, res.Port, res.Detail)
		}
	}
	if r.Restarted {
		logSuccess("Restarted %s", r.Project)
	}
}
