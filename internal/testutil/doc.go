// Package testutil provides test fixtures and a wired test environment.
//
// # Fixtures
//
// Fixtures are embedded using go:embed:
//
//	fixtures/package.json          // @acme/shop with every service and two packages
//	fixtures/vivarium.toml         // the same project in TOML with a vite frontend
//	fixtures/invalid_vivarium.json // fails Project.Validate
//	fixtures/state.json            // a registry claim for index 3
//
// # Test Environment
//
// NewTestEnv builds an app.App over a temp registry with mock compose,
// executor and container listing, and installs it as app.Default:
//
//	env := testutil.NewTestEnv(t)
//	defer env.Cleanup()
//	env.AddClaim("blog", 0)
package testutil
