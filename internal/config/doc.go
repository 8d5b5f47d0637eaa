// Package config loads the remapper's run configuration.
//
// Values are layered, lowest precedence first: built-in defaults, an
// optional remapper.yaml (current directory, or the file named by
// --config), REMAPPER_* environment variables, and finally command-line
// flags that were explicitly set. Nested keys map to environment variables
// with '.' replaced by '_', so log.level is REMAPPER_LOG_LEVEL.
package config
