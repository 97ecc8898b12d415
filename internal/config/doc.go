// Package config holds the configuration for every finsent pipeline.
//
// Configuration is layered: package defaults, then an optional YAML file
// (FINSENT_CONFIG or ./finsent.yml), then FINSENT_* environment variables.
// API credentials are environment-only and are never written to or read
// from the YAML file. Each pipeline validates only its own section, so a
// missing news API key does not stop the returns pipeline.
package config
