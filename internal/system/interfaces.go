// Package system provides abstractions for OS operations to enable testing.
package system

import (
	"context"
	"errors"
)

// RunOptions configures where and with what environment a command runs.
type RunOptions struct {
	// Dir is the working directory. Empty means the current directory.
	Dir string

	// Env holds extra KEY=VALUE pairs appended to the process environment.
	Env []string
}

// CommandExecutor abstracts command execution for testability.
type CommandExecutor interface {
	// Execute runs a command and returns its combined output.
	Execute(ctx context.Context, name string, args ...string) ([]byte, error)

	// ExecuteWith runs a command with the given options and returns its combined output.
	ExecuteWith(ctx context.Context, opts RunOptions, name string, args ...string) ([]byte, error)

	// ExecuteInteractive runs a command with stdin/stdout/stderr connected to the terminal.
	ExecuteInteractive(ctx context.Context, opts RunOptions, name string, args ...string) error

	// LookPath searches PATH for the named executable.
	LookPath(name string) (string, error)
}

// ExitCoder is implemented by errors that carry a process exit status,
// such as *exec.ExitError.
type ExitCoder interface {
	ExitCode() int
}

// ExitCode returns the exit status carried by err, or -1 if err did not come
// from a process that ran to completion.
func ExitCode(err error) int {
	var ec ExitCoder
	if errors.As(err, &ec) {
		return ec.ExitCode()
	}
	return -1
}

var defaultExecutor CommandExecutor = &osExecutor{}

// DefaultExecutor returns the default CommandExecutor implementation.
func DefaultExecutor() CommandExecutor {
	return defaultExecutor
}

// SetDefaultExecutor sets the default CommandExecutor (useful for testing).
func SetDefaultExecutor(exec CommandExecutor) {
	defaultExecutor = exec
}

// ResetDefaults restores the default OS implementations.
func ResetDefaults() {
	defaultExecutor = &osExecutor{}
}
