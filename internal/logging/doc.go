// Package logging provides a simple leveled logging interface for the
// clipfilter service and its CLI.
//
// It supports the following log levels:
//   - DEBUG: Verbose debugging information (engine commands, virtual file I/O)
//   - INFO: General operational messages
//   - WARN: Warning conditions (best-effort cleanup failures)
//   - ERROR: Error conditions (failed jobs, engine bootstrap failures)
//   - FATAL: Fatal errors that terminate the application
//
// The log level is configured via the LOG_LEVEL environment variable, or
// forced to debug with DEBUG=true. SetLevel overrides both, which the CLI uses
// for its --verbose flag.
package logging
