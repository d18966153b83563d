// Package logging provides structured logging for the sm1link tools.
//
// This package wraps the zap logger with convenience functions for the
// logging patterns used throughout the link monitor. It provides both
// general logging functions and specialized functions for frame-level
// debugging.
//
// # Log Levels
//
// The package supports standard log levels:
//   - Debug: Detailed debugging info (hex dumps, frame assembly, resyncs)
//   - Info: Normal operations (port opens, topology changes, commands)
//   - Warn: Non-fatal issues (checksum failures, malformed frames)
//   - Error: Fatal issues (startup failures, port errors)
//
// # Structured Logging
//
// All log functions use structured fields for queryability:
//
//	logging.Info("Command sent",
//	    zap.Int("channel", 1),
//	    zap.Float64("current", 40.0),
//	)
//
// # Frame Logging
//
// Raw wire traffic can be dumped at debug level:
//
//	logging.LogRawBytes("frame received", frame)
//
// # Configuration
//
// Initialize logging at startup:
//
//	if err := logging.Initialize("debug"); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// When no level is given, the SM1LINK_LOG_LEVEL environment variable is
// consulted; if that is also unset, logging is silent. This keeps CLI
// output clean by default while letting users turn on diagnostics
// without code changes.
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. The underlying zap
// logger handles synchronization automatically.
package logging
