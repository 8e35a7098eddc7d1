package runtime

import (
	"context"
)

// Target pins compose operations to one project's generated files.
type Target struct {
	// ComposeFile is the path to the rendered compose.yaml.
	ComposeFile string
	// EnvFile is the path to the compose .env.
	EnvFile string
	// Dir is the working directory, normally the project root.
	Dir string
}

// DownOptions controls what `compose down` removes.
type DownOptions struct {
	RemoveOrphans bool
	RemoveVolumes bool
}

// Compose is the interface to the container orchestration tool.
type Compose interface {
	// Name returns the engine command (e.g. "docker").
	Name() string

	// Pull fetches the images of every service.
	Pull(ctx context.Context, t Target) error

	// Up starts the services detached and waits for them to become healthy.
	Up(ctx context.Context, t Target) error

	// Down stops and removes the services.
	Down(ctx context.Context, t Target, opts DownOptions) error

	// Ps returns the table-formatted service status.
	Ps(ctx context.Context, t Target) (string, error)

	// Passthrough runs an arbitrary compose subcommand attached to the terminal.
	Passthrough(ctx context.Context, t Target, args []string) error

	// Run runs a plain engine command (not compose) attached to the terminal.
	Run(ctx context.Context, args []string) error
}
