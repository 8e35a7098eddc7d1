package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/firefly-engineering/vivarium/internal/logging"
	"github.com/firefly-engineering/vivarium/internal/stack"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the slot, containers and service health of the project",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	report, err := manager().Status(cmd.Context(), projectRoot())
	if err != nil {
		return err
	}

	if !report.SetUp() {
		logInfo("%s is not set up. Run `vivarium setup` to start it.", report.ProjectName)
		return nil
	}

	printStatus(logging.Stdout(), report)
	return nil
}

func printStatus(w io.Writer, r *stack.StatusReport) {
	c := r.Claim
	fmt.Fprintf(w, "Project: %s\n", c.ProjectName)
	fmt.Fprintf(w, "Index: %d\n", c.Index)
	fmt.Fprintf(w, "Compose Project: %s\n", c.ComposeName)
	fmt.Fprintf(w, "Root: %s\n", c.ProjectRoot)
	fmt.Fprintln(w)

	ports := newTable("SERVICE", "PORT")
	for _, p := range c.Ports.Named() {
		ports.Row(p.Name, formatPort(p.Port))
	}
	fmt.Fprintln(w, ports.Render())
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Containers:")
	switch {
	case r.ContainersErr != nil && r.Ps != "":
		fmt.Fprint(w, r.Ps)
	case r.ContainersErr != nil:
		logWarning("Could not query the container engine: %v", r.ContainersErr)
	case len(r.Containers) == 0:
		logDim("No containers. Run `vivarium start`.")
	default:
		t := newTable("NAME", "SERVICE", "STATE", "UPTIME")
		for _, ct := range r.Containers {
			uptime := "-"
			if ct.Running() && !ct.StartedAt.IsZero() {
				uptime = formatUptime(ct.StartedAt)
			}
			t.Row(ct.Name, ct.Service, ct.State, uptime)
		}
		fmt.Fprintln(w, t.Render())
	}

	if len(r.Health) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Health Checks:")
	for _, h := range r.Health {
		line := fmt.Sprintf("  %s (:%d): %s", h.Service, h.Port, formatStatus(h.Status))
		if h.Healthy() {
			line += fmt.Sprintf(" in %s", h.Latency.Round(time.Microsecond))
		} else if h.Detail != "" {
			line += " - " + h.Detail
		}
		fmt.Fprintln(w, line)
	}
}
