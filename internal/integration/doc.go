// Package integration provides a test harness for integration tests
// that drive a real docker compose.
//
// Integration tests are skipped unless the VIVARIUM_INTEGRATION_TESTS
// environment variable is set to 1. These tests require:
//   - A running Docker daemon reachable from the test user
//   - The docker compose plugin
//   - Free ports for the slots the tests claim
//
// # Test Harness
//
// Harness wires a stack.Manager over a temporary registry with the real
// compose driver, socket prober and engine API:
//
//	func TestMyIntegration(t *testing.T) {
//	    h := integration.NewHarness(t) // Skips if disabled
//
//	    root := h.CreateProject("it-cache", integration.CacheOnly())
//	    if _, err := h.Manager.Setup(ctx, stack.SetupOptions{ProjectRoot: root}); err != nil {
//	        t.Fatal(err)
//	    }
//	    // Teardown of every created project is automatic via t.Cleanup
//	}
//
// # Running Integration Tests
//
//	VIVARIUM_INTEGRATION_TESTS=1 go test -v ./internal/integration/...
package integration
