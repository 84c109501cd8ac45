// Package logging provides structured logging for the budsctl tools.
//
// Logging is silent by default so that command output stays clean. Set
// the BUDSCTL_LOG_LEVEL environment variable (or pass --log-level) to
// one of "debug", "info", "warn" or "error" to enable output. Protocol
// internals log discarded and malformed wire data at warn level, and
// full frame traffic at debug level.
package logging
