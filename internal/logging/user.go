package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

// User-facing output, separate from the structured debug logging.

var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr

	infoStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("4"))
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
	warnStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("3"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))
	stepStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	dimStyle     = lipgloss.NewStyle().Faint(true)
)

// SetOutput redirects user output. Nil arguments restore the process streams.
func SetOutput(out, errOut io.Writer) {
	if out == nil {
		out = os.Stdout
	}
	if errOut == nil {
		errOut = os.Stderr
	}
	stdout, stderr = out, errOut
}

// UserInfo prints an info message to stdout.
func UserInfo(format string, args ...any) {
	fmt.Fprintf(stdout, "%s %s\n", infoStyle.Render("info"), fmt.Sprintf(format, args...))
}

// UserStep prints a step being performed to stdout.
func UserStep(format string, args ...any) {
	fmt.Fprintf(stdout, "%s %s\n", stepStyle.Render("  ->"), fmt.Sprintf(format, args...))
}

// UserSuccess prints a success message to stdout.
func UserSuccess(format string, args ...any) {
	fmt.Fprintf(stdout, "%s %s\n", successStyle.Render("done"), fmt.Sprintf(format, args...))
}

// UserDim prints a low-emphasis message to stdout.
func UserDim(format string, args ...any) {
	fmt.Fprintf(stdout, "     %s\n", dimStyle.Render(fmt.Sprintf(format, args...)))
}

// UserWarning prints a warning message to stderr.
func UserWarning(format string, args ...any) {
	fmt.Fprintf(stderr, "%s %s\n", warnStyle.Render("warn"), fmt.Sprintf(format, args...))
}

// UserError prints an error message to stderr.
func UserError(format string, args ...any) {
	fmt.Fprintf(stderr, "%s %s\n", errorStyle.Render("err!"), fmt.Sprintf(format, args...))
}

// Blank prints an empty line to stdout.
func Blank() {
	fmt.Fprintln(stdout)
}

// Stdout returns the writer used for user output.
func Stdout() io.Writer {
	return stdout
}
