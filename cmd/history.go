package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/firefly-engineering/vivarium/internal/logging"
)

var historyCmd = &cobra.Command{
	Use:   "history [project]",
	Short: "Display the lifecycle events of a project",
	Long: `history prints setup, start, stop, teardown and error events. Without an
argument it shows the project in the current (or --project-dir) directory.
Events are kept after teardown.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

var historyJSON bool

func init() {
	historyCmd.Flags().BoolVar(&historyJSON, "json-lines", false, "Output events as JSON lines")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	project := ""
	if len(args) == 1 {
		project = args[0]
	}

	name, events, err := manager().Events(projectRoot(), project)
	if err != nil {
		return err
	}

	if len(events) == 0 {
		logInfo("No events found for project %s", name)
		return nil
	}

	w := logging.Stdout()
	for _, e := range events {
		if historyJSON {
			data, err := json.Marshal(e)
			if err != nil {
				return fmt.Errorf("failed to marshal event: %w", err)
			}
			fmt.Fprintln(w, string(data))
			continue
		}

		ts := e.Timestamp.Local().Format("2006-01-02 15:04:05")
		line := fmt.Sprintf("[%s] %-8s %s", ts, e.Type, e.Project)
		if e.Index != nil {
			line += fmt.Sprintf(" index=%d", *e.Index)
		}
		if e.Details != "" {
			line += fmt.Sprintf(" (%s)", e.Details)
		}
		fmt.Fprintln(w, line)
	}

	return nil
}
