package stack

import (
	"github.com/firefly-engineering/vivarium/internal/config"
	"github.com/firefly-engineering/vivarium/internal/health"
	"github.com/firefly-engineering/vivarium/internal/registry"
	"github.com/firefly-engineering/vivarium/internal/runtime"
)

// SetupOptions holds options for setting up a project.
type SetupOptions struct {
	// ProjectRoot is the directory holding the project config (required)
	ProjectRoot string

	// SkipPull starts services with whatever images are cached locally
	SkipPull bool

	// SkipPostSetup does not run the packages' postSetup commands
	SkipPostSetup bool
}

// SetupResult holds the result of a successful setup.
type SetupResult struct {
	Claim   *registry.Claim
	Project *config.Project

	// EnvFiles lists the package env files written, relative to the project root
	EnvFiles []string

	// LaunchUpdated reports whether .claude/launch.json was rewritten
	LaunchUpdated bool
}

// TeardownOptions configures teardown behavior.
type TeardownOptions struct {
	// KeepVolumes leaves the named volumes (database contents) in place
	KeepVolumes bool
}

// StatusReport describes a project's current state.
type StatusReport struct {
	ProjectName string

	// Claim is nil when the project is not set up
	Claim *registry.Claim

	// Project is nil when no project config could be loaded
	Project *config.Project

	Containers []runtime.Container
	// ContainersErr is set when the engine could not be queried
	ContainersErr error

	// Ps holds `compose ps` output, used when the engine API is unavailable
	Ps string

	Health []health.Result
}

// SetUp reports whether the project holds a claim.
func (r *StatusReport) SetUp() bool {
	return r.Claim != nil
}
