// Package env generates the dotenv files vivarium writes.
//
// Two kinds of files are produced:
//
//   - The compose .env, stored in the registry next to compose.yaml. It carries
//     COMPOSE_PROJECT_NAME plus the port and credential variables the compose
//     file interpolates.
//   - Package env files, written into the project for every package with an
//     envFile. Packages named "backend" and "frontend" get convention variables
//     (API_URL, DATABASE_URL, NEXT_PUBLIC_API_URL, ...); a package's own env
//     entries override them.
package env
