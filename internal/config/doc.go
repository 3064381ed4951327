// Package config provides centralized configuration management for the
// agent-economy daemon: listen addresses, simulated network parameters,
// feed and archive drivers, and logging behaviour, loaded from a JSON file
// with sensible defaults applied on top.
package config
