// Package config provides configuration types and loading for jwkset.
//
// Configuration is read from YAML with environment variable substitution
// and validated before use.
//
// # Features
//
//   - YAML configuration file loading
//   - Environment variable substitution with ${VAR:-default} syntax
//   - Human-readable durations ("200ms", "5s")
//   - Validation with aggregated error reporting
//
// # Configuration Loading
//
//	cfg, err := config.Load("jwkset.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// A missing section keeps the values returned by Default.
package config
