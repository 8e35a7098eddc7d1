// Package runtime drives the container engine behind a vivarium project.
//
// # Compose
//
// Compose wraps the `docker compose` operations vivarium needs. Every call
// is pinned to a Target: the compose.yaml and .env stored in the registry,
// run from the project root.
//
//	target := runtime.Target{ComposeFile: c, EnvFile: e, Dir: root}
//	err := compose.Up(ctx, target)
//
// DockerCompose runs the docker CLI through a system.CommandExecutor so the
// exact command lines can be asserted in tests. MockCompose records calls.
//
// # Containers
//
// Containers lists the containers of a compose project through the Docker
// Engine API, matching on the com.docker.compose.project label. It backs the
// container table in `vivarium status`.
//
// # Prerequisites
//
// CheckPrerequisites verifies that the tools vivarium shells out to are on
// PATH before any state is touched.
package runtime
