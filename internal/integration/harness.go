package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/firefly-engineering/vivarium/internal/allocator"
	"github.com/firefly-engineering/vivarium/internal/config"
	"github.com/firefly-engineering/vivarium/internal/port"
	"github.com/firefly-engineering/vivarium/internal/registry"
	"github.com/firefly-engineering/vivarium/internal/runtime"
	"github.com/firefly-engineering/vivarium/internal/stack"
	"github.com/firefly-engineering/vivarium/internal/system"
)

// EnvVar enables the integration tests when set to 1.
const EnvVar = "VIVARIUM_INTEGRATION_TESTS"

// Harness provides utilities for integration testing with real containers.
type Harness struct {
	t        *testing.T
	tempDir  string
	Registry *registry.Registry
	Manager  *stack.Manager
	projects []string // Project roots to tear down
}

// Enabled reports whether integration tests were requested.
func Enabled() bool {
	return os.Getenv(EnvVar) == "1"
}

// NewHarness creates a new test harness.
// It skips the test unless integration tests are enabled and docker answers.
func NewHarness(t *testing.T) *Harness {
	t.Helper()

	if !Enabled() {
		t.Skipf("integration tests disabled (set %s=1 to enable)", EnvVar)
	}

	exec := system.DefaultExecutor()
	if err := runtime.CheckPrerequisites(exec, "docker"); err != nil {
		t.Skipf("docker not available: %v", err)
	}

	containers, err := runtime.NewDockerContainers()
	if err != nil {
		t.Skipf("docker engine API not available: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err = containers.List(ctx, "vivarium-probe")
	containers.Close()
	if err != nil {
		t.Skipf("docker not responsive: %v", err)
	}

	tempDir := t.TempDir()
	reg := registry.New(filepath.Join(tempDir, "registry"))
	prober := &port.SocketProber{Exec: exec}
	alloc := allocator.New(reg, prober, port.FailClosed)
	compose := runtime.NewDockerCompose("docker")
	compose.Exec = exec

	h := &Harness{
		t:        t,
		tempDir:  tempDir,
		Registry: reg,
		Manager:  stack.New(reg, alloc, compose, exec),
	}
	t.Cleanup(h.Cleanup)
	return h
}

// CreateProject writes a package.json named name with the given services and
// a backend package, and tracks the project for teardown.
func (h *Harness) CreateProject(name string, services *config.Services) string {
	h.t.Helper()

	root := filepath.Join(h.tempDir, "projects", name)
	if err := os.MkdirAll(root, 0755); err != nil {
		h.t.Fatalf("Failed to create project: %v", err)
	}

	pkg := map[string]any{
		"name": name,
		"vivarium": config.Project{
			Services: services,
			Packages: map[string]config.Package{
				"backend": {EnvFile: "backend/.env"},
			},
		},
	}
	data, err := json.MarshalIndent(pkg, "", "  ")
	if err != nil {
		h.t.Fatalf("Failed to marshal package.json: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, config.PackageJSONFile), data, 0644); err != nil {
		h.t.Fatalf("Failed to write package.json: %v", err)
	}

	h.projects = append(h.projects, root)
	return root
}

// WaitHealthy polls the project's health checks until every service answers.
func (h *Harness) WaitHealthy(root string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		report, err := h.Manager.Status(ctx, root)
		if err == nil && report.SetUp() && allHealthy(report) {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("services not healthy after %v", timeout)
		case <-ticker.C:
		}
	}
}

func allHealthy(r *stack.StatusReport) bool {
	if len(r.Health) == 0 {
		return false
	}
	for _, res := range r.Health {
		if !res.Healthy() {
			return false
		}
	}
	return true
}

// Cleanup tears down every created project, volumes included.
func (h *Harness) Cleanup() {
	ctx := context.Background()
	for _, root := range h.projects {
		if _, err := h.Manager.Teardown(ctx, root, stack.TeardownOptions{}); err != nil {
			h.t.Logf("Warning: failed to tear down %s: %v", root, err)
		}
	}
}

// CacheOnly returns a services block with just the cache, the quickest stack
// to start.
func CacheOnly() *config.Services {
	return &config.Services{Redis: true}
}

// FullStack returns a services block with every supported service.
func FullStack() *config.Services {
	return &config.Services{
		Postgres: &config.PostgresConfig{User: "it", Password: "it", Database: "it"},
		Redis:    true,
		S3:       &config.S3Config{AccessKey: "itaccess", SecretKey: "itsecret123"},
	}
}
