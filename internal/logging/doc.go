// Package logging builds the zap loggers used by the command-line tool.
package logging
