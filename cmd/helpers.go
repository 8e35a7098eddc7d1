package cmd

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/firefly-engineering/vivarium/internal/app"
	"github.com/firefly-engineering/vivarium/internal/health"
	"github.com/firefly-engineering/vivarium/internal/stack"
)

// manager returns the lifecycle manager of the current app.
func manager() *stack.Manager {
	return app.Default.Stack
}

// projectRoot returns the directory given by --project-dir.
func projectRoot() string {
	if projectDir == "" {
		return "."
	}
	return projectDir
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// newTable returns a table in the CLI's house style.
func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...)
}

func formatStatus(status health.Status) string {
	switch status {
	case health.StatusHealthy:
		return "✓ healthy"
	case health.StatusUnhealthy:
		return "⚠ unhealthy"
	case health.StatusStopped:
		return "● stopped"
	default:
		return string(status)
	}
}

func formatUptime(since time.Time) string {
	if since.IsZero() {
		return "-"
	}
	return health.FormatDuration(time.Since(since))
}

func formatPort(p int) string {
	return fmt.Sprintf("%d", p)
}
