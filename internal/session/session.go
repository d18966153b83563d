package session

import (
	"errors"
	"sync"
	"time"

	"github.com/jwkim/sm1link/internal/protocol"
)

// Option adjusts a Session at construction time.
type Option func(*Session)

// WithoutChecksum disables checksum verification for this session's
// ingest path. Frames with bad checksums then decode at face value.
func WithoutChecksum() Option {
	return func(s *Session) { s.verifyChecksum = false }
}

// WithDegradedThreshold sets the error-rate fraction above which the
// session's snapshot reports a degraded link. Zero disables the flag.
func WithDegradedThreshold(f float64) Option {
	return func(s *Session) { s.degradedThreshold = f }
}

// Session owns one physical channel's frame assembler, statistics and
// module registry. All mutation goes through the session's lock, keeping
// the single-writer ingest path and presentation-side snapshot reads from
// trampling each other.
type Session struct {
	mu sync.Mutex

	channel int
	version protocol.Version

	verifyChecksum    bool
	degradedThreshold float64

	asm      *protocol.Assembler
	stats    Stats
	registry *ModuleRegistry
	currents map[uint8]float64
}

// New creates a session for one channel (1-based numbering) speaking the
// given protocol version. Checksum verification defaults to on and the
// module registry starts at its initial population {1..10}.
func New(channel int, v protocol.Version, opts ...Option) *Session {
	s := &Session{
		channel:        channel,
		version:        v,
		verifyChecksum: true,
		asm:            protocol.NewAssembler(protocol.MasterToSCADA, v),
		registry:       NewModuleRegistry(),
		currents:       make(map[uint8]float64),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Channel returns this session's 1-based channel number.
func (s *Session) Channel() int {
	return s.channel
}

// Version returns the protocol version this session speaks.
func (s *Session) Version() protocol.Version {
	return s.version
}

// Ingest feeds raw bytes from the transport into the assembler, decodes
// every complete frame found and returns the outcomes in order. Statistics
// are updated as a side effect of each outcome. Ingest never blocks and
// never fails: decode problems come back as failure events.
func (s *Session) Ingest(p []byte) []Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	frames, slips := s.asm.Feed(p)

	events := make([]Event, 0, len(frames)+slips)
	for i := 0; i < slips; i++ {
		s.stats.MalformedFrames++
		events = append(events, MalformedFrame{
			Channel: s.channel,
			Reason:  "no frame terminator at expected offset",
		})
	}

	var opts []protocol.DecodeOption
	if !s.verifyChecksum {
		opts = append(opts, protocol.WithoutChecksum())
	}

	for _, f := range frames {
		rec, err := protocol.Decode(f, protocol.MasterToSCADA, s.version, opts...)
		switch {
		case err == nil:
			s.stats.FramesOK++
			s.stats.LastSeen = time.Now()
			s.noteRecord(rec)
			events = append(events, RecordEvent{Channel: s.channel, Record: rec})
		case errors.Is(err, protocol.ErrChecksum):
			s.stats.ChecksumFailures++
			events = append(events, ChecksumFailure{Channel: s.channel, Detail: err.Error()})
		default:
			s.stats.MalformedFrames++
			events = append(events, MalformedFrame{Channel: s.channel, Reason: err.Error()})
		}
	}
	return events
}

// noteRecord tracks per-module currents for the system current total.
// Only registered modules contribute. Caller holds the lock.
func (s *Session) noteRecord(rec protocol.Record) {
	sd, ok := rec.(protocol.SlaveData)
	if !ok {
		return
	}
	if s.registry.Contains(sd.SlaveID) {
		s.currents[sd.SlaveID] = sd.Amps
	}
}

// BuildCommand encodes an outgoing command frame for this session's
// protocol version. Out-of-range values fail with protocol.ErrRange.
func (s *Session) BuildCommand(cmd protocol.Command) ([]byte, error) {
	return protocol.Encode(cmd, s.version)
}

// Snapshot returns a value copy of the channel's observable state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	currents := make(map[uint8]float64, len(s.currents))
	var total float64
	for id, amps := range s.currents {
		currents[id] = amps
		total += amps
	}

	return Snapshot{
		Channel:        s.channel,
		Stats:          s.stats,
		ModuleIDs:      s.registry.IDs(),
		ModuleCurrents: currents,
		TotalAmps:      total,
		Degraded:       s.degradedThreshold > 0 && s.stats.ErrorRate() > s.degradedThreshold,
	}
}

// Stats returns a copy of the accumulated counters.
func (s *Session) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// AddModule registers a module ID on this channel.
func (s *Session) AddModule(id uint8) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.Add(id)
}

// RemoveModule deregisters a module ID and drops its tracked current.
func (s *Session) RemoveModule(id uint8) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.registry.Remove(id); err != nil {
		return err
	}
	delete(s.currents, id)
	return nil
}

// ModuleIDs returns a copy of the registered module IDs.
func (s *Session) ModuleIDs() []uint8 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.IDs()
}

// ResetModules restores the registry to {1..10} and clears tracked
// currents.
func (s *Session) ResetModules() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registry.Reset()
	s.currents = make(map[uint8]float64)
}

// ResetStats zeroes the counters, as on explicit operator reset.
func (s *Session) ResetStats() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats = Stats{}
}

// Reset prepares the session for a reconnect: counters are zeroed and any
// partially accumulated frame is discarded without surfacing a spurious
// malformed-frame event. The module registry is left alone.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats = Stats{}
	s.asm.Reset()
}
