package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/firefly-engineering/vivarium/internal/config"
	"github.com/firefly-engineering/vivarium/internal/health"
	"github.com/firefly-engineering/vivarium/internal/logging"
	"github.com/firefly-engineering/vivarium/internal/stack"
	"github.com/firefly-engineering/vivarium/internal/tui"
)

var pickCmd = &cobra.Command{
	Use:   "pick",
	Short: "Interactively pick a project and act on it",
	Long: `Pick lists every project holding a slot and runs status, start, stop or
teardown on the one you select. Without a terminal it prints the list.`,
	Args: cobra.NoArgs,
	RunE: runPick,
}

// interactive reports whether the picker can take over the terminal.
var interactive = func() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd())
}

// runPicker is replaced in tests.
var runPicker = tui.RunPicker

func init() {
	rootCmd.AddCommand(pickCmd)
}

func runPick(cmd *cobra.Command, args []string) error {
	entries, err := pickEntries(cmd.Context())
	if err != nil {
		return err
	}

	if !interactive() {
		fmt.Fprint(logging.Stdout(), tui.SimplePicker(entries))
		return nil
	}

	result, err := runPicker(entries)
	if err != nil {
		return err
	}
	return runPickAction(cmd.Context(), result)
}

// pickEntries loads every claim with a summarized health status.
func pickEntries(ctx context.Context) ([]*tui.Entry, error) {
	mgr := manager()
	claims, err := mgr.List()
	if err != nil {
		return nil, err
	}

	checker := mgr.Health
	if checker == nil {
		checker = health.NewChecker()
	}

	entries := make([]*tui.Entry, 0, len(claims))
	for _, c := range claims {
		entry := &tui.Entry{Claim: c}
		if project, err := config.ReadProject(c.ProjectRoot); err == nil {
			entry.Status = health.Summarize(checker.CheckProject(ctx, project.Services, c.Ports))
		} else {
			logging.Debug("pick: project config unavailable", "project", c.ProjectName, "error", err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func runPickAction(ctx context.Context, result tui.PickerResult) error {
	if result.Entry == nil {
		return nil
	}
	root := result.Entry.Claim.ProjectRoot
	mgr := manager()

	switch result.Action {
	case tui.ActionStatus:
		report, err := mgr.Status(ctx, root)
		if err != nil {
			return err
		}
		printStatus(logging.Stdout(), report)
		return nil
	case tui.ActionStart:
		return mgr.Start(ctx, root)
	case tui.ActionStop:
		return mgr.Stop(ctx, root)
	case tui.ActionTeardown:
		_, err := mgr.Teardown(ctx, root, stack.TeardownOptions{})
		return err
	default:
		return nil
	}
}
