package stack

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/firefly-engineering/vivarium/internal/allocator"
	"github.com/firefly-engineering/vivarium/internal/audit"
	"github.com/firefly-engineering/vivarium/internal/config"
	"github.com/firefly-engineering/vivarium/internal/errors"
	"github.com/firefly-engineering/vivarium/internal/health"
	"github.com/firefly-engineering/vivarium/internal/logging"
	"github.com/firefly-engineering/vivarium/internal/registry"
	"github.com/firefly-engineering/vivarium/internal/runtime"
	"github.com/firefly-engineering/vivarium/internal/system"
)

// MCPProxyImage bridges stdio to an SSE endpoint.
const MCPProxyImage = "ghcr.io/sparfenyuk/mcp-proxy:v0.11.0"

// LegacyDir is where older releases kept generated files inside the project.
const LegacyDir = ".vivarium"

// Manager runs project lifecycle flows.
type Manager struct {
	Registry  *registry.Registry
	Allocator *allocator.Allocator
	Compose   runtime.Compose
	Exec      system.CommandExecutor
	Health    *health.Checker
	History   *audit.Logger

	// Containers opens an engine API connection; nil disables container listing.
	Containers func() (runtime.Containers, error)
}

// New creates a Manager with localhost health checks and the Docker Engine
// API for container listing.
func New(reg *registry.Registry, alloc *allocator.Allocator, compose runtime.Compose, exec system.CommandExecutor) *Manager {
	return &Manager{
		Registry:  reg,
		Allocator: alloc,
		Compose:   compose,
		Exec:      exec,
		Health:    health.NewChecker(),
		History:   audit.NewLogger(reg.Root()),
		Containers: func() (runtime.Containers, error) {
			return runtime.NewDockerContainers()
		},
	}
}

// projectIdentity resolves the absolute project root and its registry name.
func projectIdentity(projectRoot string) (string, string, error) {
	abs, err := filepath.Abs(projectRoot)
	if err != nil {
		return "", "", errors.ConfigError("failed to resolve project root", err)
	}
	name, err := config.LoadProjectName(abs)
	if err != nil {
		return "", "", err
	}
	return abs, name, nil
}

// target returns the compose target for a project and whether its generated
// files exist in the registry.
func (m *Manager) target(name, projectRoot string) (runtime.Target, bool, error) {
	composePath, err := m.Registry.ArtifactPath(name, registry.ComposeFile)
	if err != nil {
		return runtime.Target{}, false, err
	}
	envPath, err := m.Registry.ArtifactPath(name, registry.EnvFile)
	if err != nil {
		return runtime.Target{}, false, err
	}
	t := runtime.Target{ComposeFile: composePath, EnvFile: envPath, Dir: projectRoot}
	return t, fileExists(composePath) && fileExists(envPath), nil
}

// requireTarget is target for commands that cannot run before setup. It also
// returns the project name.
func (m *Manager) requireTarget(projectRoot string) (runtime.Target, string, error) {
	root, name, err := projectIdentity(projectRoot)
	if err != nil {
		return runtime.Target{}, "", err
	}
	t, ok, err := m.target(name, root)
	if err != nil {
		return runtime.Target{}, name, err
	}
	if !ok {
		return runtime.Target{}, name, errors.New(errors.ExitProjectNotFound,
			fmt.Sprintf("no compose.yaml found for project %s; run `vivarium setup` first", name))
	}
	return t, name, nil
}

// Start brings the services up with the stored compose files.
func (m *Manager) Start(ctx context.Context, projectRoot string) error {
	t, name, err := m.requireTarget(projectRoot)
	if err != nil {
		return err
	}
	logging.UserInfo("Starting services")
	if err := m.Compose.Up(ctx, t); err != nil {
		m.recordError(name, "start", err)
		return err
	}
	m.record(audit.Event{Type: audit.EventStart, Project: name})
	logging.UserSuccess("Services running")
	return nil
}

// Stop brings the services down, keeping volumes and the claim.
func (m *Manager) Stop(ctx context.Context, projectRoot string) error {
	t, name, err := m.requireTarget(projectRoot)
	if err != nil {
		return err
	}
	logging.UserInfo("Stopping services")
	if err := m.Compose.Down(ctx, t, runtime.DownOptions{}); err != nil {
		m.recordError(name, "stop", err)
		return err
	}
	m.record(audit.Event{Type: audit.EventStop, Project: name})
	logging.UserSuccess("Services stopped")
	return nil
}

// Passthrough forwards args to docker compose for the project.
func (m *Manager) Passthrough(ctx context.Context, projectRoot string, args []string) error {
	t, _, err := m.requireTarget(projectRoot)
	if err != nil {
		return err
	}
	return m.Compose.Passthrough(ctx, t, args)
}

// MCPProxy attaches the terminal to an MCP service's SSE endpoint on the
// project's compose network.
func (m *Manager) MCPProxy(ctx context.Context, projectRoot, service string) error {
	if service == "" {
		return errors.ValidationError("service name is required")
	}
	_, name, err := projectIdentity(projectRoot)
	if err != nil {
		return err
	}
	claim, err := m.Allocator.Lookup(name)
	if err != nil {
		return err
	}

	network := claim.ComposeName + "_default"
	logging.Debug("starting mcp proxy", "network", network, "service", service)
	return m.Compose.Run(ctx, []string{
		"run", "--rm", "-i",
		"--network", network,
		MCPProxyImage,
		fmt.Sprintf("http://%s:8000/sse", service),
	})
}

// List returns every claim in the registry, ordered by index.
func (m *Manager) List() ([]*registry.Claim, error) {
	claims, err := m.Registry.List()
	if err != nil {
		return nil, errors.RegistryError("list", err)
	}
	return claims, nil
}

// Status gathers the claim, container state and service health for a project.
// A project without a claim is not an error; the report says so.
func (m *Manager) Status(ctx context.Context, projectRoot string) (*StatusReport, error) {
	root, name, err := projectIdentity(projectRoot)
	if err != nil {
		return nil, err
	}

	report := &StatusReport{ProjectName: name}
	claim, err := m.Registry.Read(name)
	if err != nil {
		return nil, err
	}
	if claim == nil {
		return report, nil
	}
	report.Claim = claim

	if project, err := config.LoadProject(root); err == nil {
		report.Project = project
	} else {
		logging.Debug("status without project config", "error", err)
	}

	report.Containers, report.ContainersErr = m.listContainers(ctx, claim.ComposeName)
	if report.ContainersErr != nil {
		if t, ok, _ := m.target(name, root); ok {
			if out, err := m.Compose.Ps(ctx, t); err == nil {
				report.Ps = out
			}
		}
	}

	if report.Project != nil && m.Health != nil {
		report.Health = m.Health.CheckProject(ctx, report.Project.Services, claim.Ports)
	}
	return report, nil
}

// Events returns the recorded lifecycle events of a project. An empty
// project name means the project at projectRoot.
func (m *Manager) Events(projectRoot, project string) (string, []audit.Event, error) {
	if project == "" {
		_, name, err := projectIdentity(projectRoot)
		if err != nil {
			return "", nil, err
		}
		project = name
	}
	if m.History == nil {
		return project, nil, nil
	}
	events, err := m.History.Events(project)
	if err != nil {
		return project, nil, errors.Wrap(errors.ExitGeneralError, "failed to read history", err)
	}
	return project, events, nil
}

// record appends to the history log. Failures only reach the debug log.
func (m *Manager) record(event audit.Event) {
	if m.History == nil {
		return
	}
	if err := m.History.Log(event); err != nil {
		logging.Debug("failed to record event", "project", event.Project, "type", event.Type, "error", err)
	}
}

func (m *Manager) recordError(project, op string, err error) {
	m.record(audit.Event{Type: audit.EventError, Project: project, Details: op + ": " + err.Error()})
}

func (m *Manager) listContainers(ctx context.Context, composeName string) ([]runtime.Container, error) {
	if m.Containers == nil {
		return nil, fmt.Errorf("container listing unavailable")
	}
	c, err := m.Containers()
	if err != nil {
		return nil, err
	}
	defer c.Close()
	return c.List(ctx, composeName)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
