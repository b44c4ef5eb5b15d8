// Package logging builds the zerolog loggers used across dexter.
//
// It owns logger construction from configuration (level, format, output),
// per-component child loggers, and trace id propagation through
// context.Context so that every log line of one command invocation can be
// correlated.
package logging
