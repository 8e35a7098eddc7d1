// Package config loads vivarium's two layers of configuration.
//
// # Tool Settings
//
// Settings control how vivarium itself behaves and are layered with viper:
//
//	defaults < ~/.config/vivarium/config.yaml (or --config) < VIVARIUM_* env < flags
//
//	registry_dir:       ~/.local/share/vivarium
//	claim_strategy:     markers | none
//	probe_policy:       fail-open | fail-closed
//	docker_command:     docker
//	stale_marker_after: 1m
//
// # Project Config
//
// The project config describes the services a project needs and the packages
// that consume them. It is looked up in the project root in this order:
//
//  1. vivarium.toml
//  2. vivarium.json
//  3. the "vivarium" key of package.json
//
// Example vivarium.toml:
//
//	[services.postgres]
//	user = "app"
//	password = "app"
//	database = "app"
//
//	[services]
//	redis = true
//
//	[packages.backend]
//	envFile = "backend/.env"
//	postSetup = ["pnpm db:migrate"]
//
// # Project Names
//
// The project name comes from package.json's "name" field, falling back to the
// directory name. It is normalized to a registry key: "@acme/shop" becomes
// "acme-shop".
package config
