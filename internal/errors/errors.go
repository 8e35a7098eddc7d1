package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Exit codes for vivarium
const (
	ExitSuccess             = 0
	ExitGeneralError        = 1
	ExitProjectNotFound     = 2
	ExitConfigError         = 3
	ExitSlotsExhausted      = 4
	ExitComposeFailed       = 5
	ExitPrerequisiteMissing = 6
	ExitRegistryError       = 7
)

// VivariumError is the base error type for vivarium
type VivariumError struct {
	Code    int
	Message string
	Cause   error
}

func (e *VivariumError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *VivariumError) Unwrap() error {
	return e.Cause
}

// ExitCode returns the exit code for this error
func (e *VivariumError) ExitCode() int {
	return e.Code
}

// New creates a new VivariumError
func New(code int, message string) *VivariumError {
	return &VivariumError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with a VivariumError
func Wrap(code int, message string, cause error) *VivariumError {
	return &VivariumError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// ProjectNotFound returns an error for a project with no registry claim
func ProjectNotFound(name string) *VivariumError {
	return New(ExitProjectNotFound,
		fmt.Sprintf("no claim found for project %s; run `vivarium setup` first", name))
}

// SlotsExhausted returns an error when no slot in [lo, hi] is free for the project
func SlotsExhausted(name string, lo, hi int) *VivariumError {
	return New(ExitSlotsExhausted,
		fmt.Sprintf("no free slot in range %d-%d for project %s; tear down another project to free one", lo, hi, name))
}

// ConfigError returns an error for configuration issues
func ConfigError(message string, cause error) *VivariumError {
	return Wrap(ExitConfigError, message, cause)
}

// ComposeFailed returns an error for docker compose operations
func ComposeFailed(op string, cause error) *VivariumError {
	return Wrap(ExitComposeFailed, fmt.Sprintf("compose %s failed", op), cause)
}

// PrerequisiteMissing returns an error listing tools that are not installed
func PrerequisiteMissing(tools []string) *VivariumError {
	return New(ExitPrerequisiteMissing,
		fmt.Sprintf("missing required tools: %s", strings.Join(tools, ", ")))
}

// RegistryError returns an error for registry storage operations
func RegistryError(op string, cause error) *VivariumError {
	return Wrap(ExitRegistryError, fmt.Sprintf("registry %s failed", op), cause)
}

// ValidationError returns an error for input validation failures
func ValidationError(message string) *VivariumError {
	return New(ExitGeneralError, message)
}

// GetExitCode extracts the exit code from an error
func GetExitCode(err error) int {
	var vErr *VivariumError
	if errors.As(err, &vErr) {
		return vErr.ExitCode()
	}
	return ExitGeneralError
}

// HasCode reports whether err carries the given exit code.
func HasCode(err error, code int) bool {
	var vErr *VivariumError
	return errors.As(err, &vErr) && vErr.Code == code
}

// Is checks if an error is of a specific type
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target any) bool {
	return errors.As(err, target)
}
