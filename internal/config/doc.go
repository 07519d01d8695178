// Package config holds the duckfetch configuration.
//
// A Config is built from defaults (NewConfig), then the optional .duckfetch
// YAML file (File.ApplyTo), then command line flags. Validate is called once
// before any search is made.
package config
