// Package stack provides high-level project lifecycle management.
//
// A Manager ties the registry, the slot allocator and the compose runtime
// together into the flows behind each command:
//
//	Setup     claim a slot, render compose.yaml and .env into the registry,
//	          start services, create buckets, write package env files,
//	          run postSetup commands, update .claude/launch.json
//	Teardown  stop services and drop volumes, release the slot, remove
//	          generated files (best-effort throughout)
//	Start     compose up with the stored files
//	Stop      compose down with the stored files
//	Status    claim, containers and service health
//	Compose   pass-through to docker compose
//	MCPProxy  stdio bridge to an MCP sidecar on the compose network
//
// The generated compose.yaml and .env live in the registry, not the project,
// so the project tree only receives the package env files it asked for.
package stack
