// Package app provides the application context for vivarium.
// It allows dependency injection for testing.
package app

import (
	"github.com/firefly-engineering/vivarium/internal/allocator"
	"github.com/firefly-engineering/vivarium/internal/config"
	"github.com/firefly-engineering/vivarium/internal/logging"
	"github.com/firefly-engineering/vivarium/internal/port"
	"github.com/firefly-engineering/vivarium/internal/registry"
	"github.com/firefly-engineering/vivarium/internal/runtime"
	"github.com/firefly-engineering/vivarium/internal/stack"
	"github.com/firefly-engineering/vivarium/internal/system"
)

// App holds the application dependencies
type App struct {
	// Settings holds the loaded tool settings
	Settings *config.Settings

	// Exec runs external commands
	Exec system.CommandExecutor

	// Registry is the project registry
	Registry *registry.Registry

	// Prober checks whether ports are in use
	Prober port.Prober

	// Allocator hands out slot indices
	Allocator *allocator.Allocator

	// Compose drives the container engine
	Compose runtime.Compose

	// Stack runs the project lifecycle flows
	Stack *stack.Manager
}

// Option is a function that configures the App
type Option func(*App)

// WithSettings sets custom settings
func WithSettings(s *config.Settings) Option {
	return func(a *App) {
		a.Settings = s
	}
}

// WithExecutor sets a custom command executor
func WithExecutor(exec system.CommandExecutor) Option {
	return func(a *App) {
		a.Exec = exec
	}
}

// WithRegistry sets a custom registry
func WithRegistry(reg *registry.Registry) Option {
	return func(a *App) {
		a.Registry = reg
	}
}

// WithProber sets a custom port prober
func WithProber(p port.Prober) Option {
	return func(a *App) {
		a.Prober = p
	}
}

// WithCompose sets a custom compose driver
func WithCompose(c runtime.Compose) Option {
	return func(a *App) {
		a.Compose = c
	}
}

// New creates a new App with the given options.
// Anything not provided is built from the settings.
func New(opts ...Option) *App {
	app := &App{}
	for _, opt := range opts {
		opt(app)
	}

	if app.Settings == nil {
		s := config.DefaultSettings()
		app.Settings = &s
	}
	if app.Exec == nil {
		app.Exec = system.DefaultExecutor()
	}
	if app.Registry == nil {
		app.Registry = registry.New(app.Settings.RegistryDir)
	}
	if app.Prober == nil {
		app.Prober = &port.SocketProber{Exec: app.Exec}
	}

	app.Allocator = allocator.New(app.Registry, app.Prober, app.Settings.Policy())
	strategy, err := allocator.ParseStrategy(app.Settings.ClaimStrategy, app.Registry, app.Settings.StaleMarkerAfter)
	if err != nil {
		logging.Debug("falling back to slot markers", "error", err)
	} else {
		app.Allocator.Strategy = strategy
	}

	if app.Compose == nil {
		dc := runtime.NewDockerCompose(app.Settings.DockerCommand)
		dc.Exec = app.Exec
		app.Compose = dc
	}

	app.Stack = stack.New(app.Registry, app.Allocator, app.Compose, app.Exec)
	return app
}

// Default is the default application instance
var Default = New()

// SetDefault sets the default application instance (used for testing)
func SetDefault(app *App) {
	Default = app
}

// ResetDefault resets to the default application instance
func ResetDefault() {
	Default = New()
}
