package runtime

import (
	"context"
	"strings"

	"github.com/firefly-engineering/vivarium/internal/errors"
	"github.com/firefly-engineering/vivarium/internal/logging"
	"github.com/firefly-engineering/vivarium/internal/system"
)

// DockerCompose implements Compose with the docker CLI's compose plugin.
type DockerCompose struct {
	// Command is the engine binary, "docker" unless overridden by settings.
	Command string

	Exec system.CommandExecutor
}

// NewDockerCompose returns a DockerCompose using the default executor.
func NewDockerCompose(command string) *DockerCompose {
	if command == "" {
		command = "docker"
	}
	return &DockerCompose{Command: command, Exec: system.DefaultExecutor()}
}

// Name returns the engine command.
func (d *DockerCompose) Name() string {
	return d.Command
}

func (d *DockerCompose) args(t Target, sub ...string) []string {
	args := []string{"compose", "--file", t.ComposeFile, "--env-file", t.EnvFile}
	return append(args, sub...)
}

func (d *DockerCompose) attached(ctx context.Context, op string, t Target, sub ...string) error {
	args := d.args(t, sub...)
	logging.Debug("running compose", "command", d.Command, "args", strings.Join(args, " "), "dir", t.Dir)
	if err := d.Exec.ExecuteInteractive(ctx, system.RunOptions{Dir: t.Dir}, d.Command, args...); err != nil {
		return errors.ComposeFailed(op, err)
	}
	return nil
}

// Pull fetches the service images.
func (d *DockerCompose) Pull(ctx context.Context, t Target) error {
	return d.attached(ctx, "pull", t, "pull")
}

// Up starts the services and blocks until their healthchecks pass.
func (d *DockerCompose) Up(ctx context.Context, t Target) error {
	return d.attached(ctx, "up", t, "up", "-d", "--wait")
}

// Down stops the services.
func (d *DockerCompose) Down(ctx context.Context, t Target, opts DownOptions) error {
	sub := []string{"down"}
	if opts.RemoveOrphans {
		sub = append(sub, "--remove-orphans")
	}
	if opts.RemoveVolumes {
		sub = append(sub, "--volumes")
	}
	return d.attached(ctx, "down", t, sub...)
}

// Ps returns `compose ps --format table` output.
func (d *DockerCompose) Ps(ctx context.Context, t Target) (string, error) {
	out, err := d.Exec.ExecuteWith(ctx, system.RunOptions{Dir: t.Dir}, d.Command, d.args(t, "ps", "--format", "table")...)
	if err != nil {
		return "", errors.ComposeFailed("ps", err)
	}
	return string(out), nil
}

// Passthrough forwards args to docker compose.
func (d *DockerCompose) Passthrough(ctx context.Context, t Target, args []string) error {
	op := "command"
	if len(args) > 0 {
		op = args[0]
	}
	return d.attached(ctx, op, t, args...)
}

// Run runs a docker command attached to the terminal.
func (d *DockerCompose) Run(ctx context.Context, args []string) error {
	logging.Debug("running engine command", "command", d.Command, "args", strings.Join(args, " "))
	if err := d.Exec.ExecuteInteractive(ctx, system.RunOptions{}, d.Command, args...); err != nil {
		op := d.Command
		if len(args) > 0 {
			op = args[0]
		}
		return errors.Wrap(errors.ExitGeneralError, op+" failed", err)
	}
	return nil
}
