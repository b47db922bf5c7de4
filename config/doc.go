// Package config loads the optional YAML settings file of the sri
// tool: default algorithm, output format, concurrency, timeout and
// credentials for the github:// and gitlab:// sources. Command-line
// flags override whatever the file provides.
package config
