// Package errors provides typed errors with exit codes for vivarium.
//
// # Error Types
//
// VivariumError wraps an error with an exit code:
//
//	type VivariumError struct {
//	    Code    int    // Exit code
//	    Message string // User-facing message
//	    Cause   error  // Wrapped error
//	}
//
// # Exit Codes
//
//	ExitSuccess             = 0 // Success
//	ExitGeneralError        = 1 // General/unknown errors
//	ExitProjectNotFound     = 2 // No claim in the registry for the project
//	ExitConfigError         = 3 // Project config or settings are invalid
//	ExitSlotsExhausted      = 4 // Every slot index is taken
//	ExitComposeFailed       = 5 // docker compose returned an error
//	ExitPrerequisiteMissing = 6 // Required tool not on PATH
//	ExitRegistryError       = 7 // Registry storage could not be written
//
// Corrupt registry records never surface here: the registry treats them as
// absent. An inconclusive port probe is not an error either; it is resolved by
// the probe policy in package port.
//
// # Extracting Exit Codes
//
//	if err != nil {
//	    os.Exit(errors.GetExitCode(err))
//	}
package errors
