package session

import "time"

// Stats accumulates per-channel link counters. Counters are monotonic over
// the lifetime of a connection and reset only by explicit operator action
// or reconnect; there is no trailing window.
type Stats struct {
	FramesOK         uint64
	ChecksumFailures uint64
	MalformedFrames  uint64
	LastSeen         time.Time
}

// ErrorRate is the fraction of checksum failures among frames that made it
// past boundary detection: ChecksumFailures / max(1, FramesOK+ChecksumFailures).
// Computed over lifetime counters.
func (s Stats) ErrorRate() float64 {
	total := s.FramesOK + s.ChecksumFailures
	if total == 0 {
		total = 1
	}
	return float64(s.ChecksumFailures) / float64(total)
}

// Snapshot is a value copy of one channel's observable state, safe to hand
// to a presentation context without sharing mutable internals.
type Snapshot struct {
	Channel        int
	Stats          Stats
	ModuleIDs      []uint8
	ModuleCurrents map[uint8]float64
	TotalAmps      float64 // sum of last-known currents of registered modules
	Degraded       bool    // error rate above the configured threshold
}
