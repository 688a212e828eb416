// Package config loads statusboard configuration.
//
// Configuration comes from a YAML file, is completed with defaults, may be
// overridden by STATUSBOARD_SECTION_FIELD environment variables and is then
// validated. All field errors are reported together in a ValidationError.
//
//	pipeline:
//	  max_depth: 32
//	  alive_window: 24h
//	registry:
//	  backend: sqlite
//	  sqlite:
//	    path: data/statusboard.db
//	    driver: sqlite
//	templates:
//	  path: templates.yaml
//	  watch: true
//	retention:
//	  schedule: "0 12 * * *"
//	  max_age: 168h
//	server:
//	  listen_address: 127.0.0.1:9090
//	telemetry:
//	  logging:
//	    level: info
//	    format: json
//
// Most code should receive a *Config explicitly. The singleton helpers
// (Initialize, GetConfig) exist for the CLI entry point.
package config
