// Package testutil provides test utilities for command tests
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/firefly-engineering/vivarium/internal/app"
	"github.com/firefly-engineering/vivarium/internal/config"
	"github.com/firefly-engineering/vivarium/internal/port"
	"github.com/firefly-engineering/vivarium/internal/registry"
	"github.com/firefly-engineering/vivarium/internal/runtime"
	"github.com/firefly-engineering/vivarium/internal/system"
)

// TestEnv holds the test environment
type TestEnv struct {
	T           *testing.T
	TmpDir      string
	ProjectRoot string
	Settings    *config.Settings
	Registry    *registry.Registry
	Prober      port.StaticProber
	Compose     *runtime.MockCompose
	Exec        *system.MockExecutor
	Containers  *runtime.MockContainers
	App         *app.App
	cleanup     func()
}

// NewTestEnv creates a test environment with a temp registry, a project
// root holding the package.json fixture and mock collaborators. The result
// is installed as app.Default until Cleanup.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	tmpDir := t.TempDir()

	settings := config.DefaultSettings()
	settings.RegistryDir = filepath.Join(tmpDir, "registry")

	projectRoot := filepath.Join(tmpDir, "shop")
	WriteFixture(t, projectRoot, "package.json", config.PackageJSONFile)

	reg := registry.New(settings.RegistryDir)
	prober := port.StaticProber{}
	compose := runtime.NewMockCompose()
	exec := system.NewMockExecutor()
	containers := &runtime.MockContainers{Projects: make(map[string][]runtime.Container)}

	testApp := app.New(
		app.WithSettings(&settings),
		app.WithRegistry(reg),
		app.WithProber(prober),
		app.WithCompose(compose),
		app.WithExecutor(exec),
	)
	testApp.Stack.Health = nil
	testApp.Stack.Containers = func() (runtime.Containers, error) { return containers, nil }

	originalDefault := app.Default
	app.SetDefault(testApp)

	return &TestEnv{
		T:           t,
		TmpDir:      tmpDir,
		ProjectRoot: projectRoot,
		Settings:    &settings,
		Registry:    reg,
		Prober:      prober,
		Compose:     compose,
		Exec:        exec,
		Containers:  containers,
		App:         testApp,
		cleanup: func() {
			app.SetDefault(originalDefault)
		},
	}
}

// Cleanup restores the original app default
func (e *TestEnv) Cleanup() {
	if e.cleanup != nil {
		e.cleanup()
	}
}

// AddClaim writes a claim for name at index straight into the registry.
func (e *TestEnv) AddClaim(name string, index int) *registry.Claim {
	e.T.Helper()

	claim := &registry.Claim{
		Index:       index,
		ProjectName: name,
		ComposeName: config.ComposeName(name),
		ProjectRoot: filepath.Join(e.TmpDir, name),
		Ports:       port.Compute(index),
	}
	if err := e.Registry.Write(claim); err != nil {
		e.T.Fatalf("Failed to write claim: %v", err)
	}
	return claim
}

// GetClaim reads a claim from the registry.
func (e *TestEnv) GetClaim(name string) *registry.Claim {
	e.T.Helper()

	claim, err := e.Registry.Read(name)
	if err != nil {
		e.T.Fatalf("Failed to read claim: %v", err)
	}
	return claim
}

// ClaimExists checks if a claim exists
func (e *TestEnv) ClaimExists(name string) bool {
	return e.Registry.Exists(name)
}
