package protocol

import "errors"

// Decode and encode failure classes. Callers classify with errors.Is; the
// wrapped message carries the offending values for logging.
var (
	// ErrLengthMismatch reports a frame whose length does not match the
	// exact length defined for its direction and version.
	ErrLengthMismatch = errors.New("frame length mismatch")

	// ErrFrameMarker reports a missing or misplaced STX/ETX delimiter.
	ErrFrameMarker = errors.New("frame marker error")

	// ErrChecksum reports a payload sum that does not match the checksum
	// byte. Checksum failures are recoverable: the caller records them and
	// resumes scanning.
	ErrChecksum = errors.New("checksum mismatch")

	// ErrRange reports an encode-time physical value outside the
	// representable scaled range. Encoding never clamps or wraps.
	ErrRange = errors.New("value out of range")
)
