// Package config loads and stores the application's YAML configuration.
//
// The configuration describes the serial link: protocol version, channel
// topology, per-channel port settings, and the HTTP listen address for the
// event/metrics surface. Files are written atomically (temp file plus
// rename) so a crash mid-save never leaves a half-written config behind.
//
// Load resolves the file from an explicit path when one is given, falling
// back to the OS-appropriate config directory (see DefaultPath). A missing
// file is not an error; Load returns the built-in defaults so the tool
// works out of the box against a single channel at 38400 baud.
package config
