// Package log is a small named-logger wrapper around the standard library
// logger, used by every mediasearch component.
//
// Each component obtains its logger once:
//
//	var logger = log.ForService("session")
//
//	logger.Infof("mounted %s surface", mediaType)
//	logger.Debugf("discarding stale response for token %d", token)
//
// Every line carries the component name as a `[name>]` prefix so output from
// the session controller, the fetcher and the CLI can be told apart with grep.
//
// # Levels
//
// Lines below the global minimum level (SetLevel, default info) are dropped.
// Debug output can additionally be enabled for a single component with
// EnableDebugFor, which is useful when chasing stale-response or retry issues
// in one place without flooding the terminal.
//
// # Output
//
// All loggers share one writer (stderr by default). SetOutput swaps it for
// existing and future loggers; tests point it at a bytes.Buffer.
package log
