// Package app provides the application context for vivarium.
//
// This package wires settings into the registry, allocator, compose driver
// and lifecycle manager using the functional options pattern, so tests can
// swap any of them.
//
// # Creating an App
//
//	// Production usage
//	settings, err := config.LoadSettings(configFile, flags)
//	a := app.New(app.WithSettings(settings))
//
//	// Testing with custom dependencies
//	a := app.New(
//	    app.WithRegistry(registry.New(t.TempDir())),
//	    app.WithProber(port.StaticProber{}),
//	    app.WithCompose(runtime.NewMockCompose()),
//	    app.WithExecutor(system.NewMockExecutor()),
//	)
//
// # Available Options
//
//	WithSettings(settings)  // Tool settings (registry dir, strategy, policy)
//	WithExecutor(exec)      // Command executor
//	WithRegistry(reg)       // Project registry
//	WithProber(prober)      // Port probe
//	WithCompose(compose)    // Compose driver
package app
