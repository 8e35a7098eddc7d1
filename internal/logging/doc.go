// Package logging provides logging utilities for vivarium.
//
// This package provides two categories of output:
//   - Debug logging: Structured logs for debugging (via slog)
//   - User output: Styled messages for the person running the command
//
// # Debug Logging
//
// Debug logs are written using slog and controlled by verbosity settings:
//
//	logging.Debug("scanning slot", "index", i, "project", name)
//	logging.Warn("could not parse claim", "path", path, "error", err)
//
// # User Output
//
// User-facing messages carry a short colored prefix:
//
//	logging.UserInfo("Setting up %s", name)     // "info"
//	logging.UserStep("Generated compose.yaml")  // "  ->"
//	logging.UserSuccess("Services running")     // "done"
//	logging.UserWarning("Could not update %s", path) // "warn"
//	logging.UserError("No free slot")           // "err!"
//	logging.UserDim("Reusing existing claim: index %d", i)
//
// UserWarning and UserError write to stderr, everything else to stdout.
// Colors are dropped when NO_COLOR is set or the output is not a terminal.
package logging
