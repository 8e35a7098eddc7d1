// Package compose renders the docker compose file for a project's services.
//
// The file never contains concrete ports or credentials. Every service reads
// them from compose variables (POSTGRES_PORT, S3_ACCESS_KEY, ...) that package
// env writes into the .env file stored next to it, so the same compose.yaml
// works for any slot index.
//
// Services by config entry:
//
//	services.postgres -> postgres, postgres-mcp (volume postgres-data)
//	services.redis    -> valkey                 (volume valkey-data)
//	services.s3       -> rustfs                 (volume rustfs-data)
package compose
