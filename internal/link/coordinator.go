package link

import (
	"errors"
	"fmt"
	"sync"

	"github.com/jwkim/sm1link/internal/protocol"
	"github.com/jwkim/sm1link/internal/session"
)

// Topology is the channel-count and coordination mode of the link.
type Topology int

const (
	// OneChannel: only channel 1 is connected.
	OneChannel Topology = iota + 1
	// TwoChannelIndependent: both channels run with independently
	// authored commands.
	TwoChannelIndependent
	// TwoChannelParallel: channel 1's commands are mirrored to channel 2,
	// which becomes receive-only for monitoring.
	TwoChannelParallel
)

func (t Topology) String() string {
	switch t {
	case OneChannel:
		return "one_channel"
	case TwoChannelIndependent:
		return "independent"
	case TwoChannelParallel:
		return "parallel"
	default:
		return fmt.Sprintf("topology(%d)", int(t))
	}
}

// ParseTopology parses a configuration string into a Topology.
func ParseTopology(s string) (Topology, error) {
	switch s {
	case "one_channel", "1ch":
		return OneChannel, nil
	case "independent", "2ch_independent":
		return TwoChannelIndependent, nil
	case "parallel", "2ch_parallel":
		return TwoChannelParallel, nil
	default:
		return 0, fmt.Errorf("unknown topology %q (want one_channel, independent or parallel)", s)
	}
}

// Routing and transition failures.
var (
	// ErrUnknownChannel reports a channel number other than 1 or 2.
	ErrUnknownChannel = errors.New("unknown channel")

	// ErrChannelInactive reports a control operation addressed to a
	// channel the current topology does not drive.
	ErrChannelInactive = errors.New("channel not active in current topology")

	// ErrParallelControl reports a control operation addressed to
	// channel 2 while in parallel mode: channel 2 is receive-only there.
	ErrParallelControl = errors.New("channel 2 is receive-only in parallel mode")

	// ErrBadTransition reports a topology change outside the defined
	// transition set.
	ErrBadTransition = errors.New("illegal topology transition")
)

// TransitionError reports a topology change that failed while establishing
// or tearing down channel 2's transport. The coordinator has rolled back
// to the From topology and remains usable.
type TransitionError struct {
	From Topology
	To   Topology
	Err  error
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("topology transition %s -> %s failed: %v", e.From, e.To, e.Err)
}

func (e *TransitionError) Unwrap() error { return e.Err }

// Transport is one channel's outgoing byte pipe. Open and Close bracket
// channel 2's lifecycle across topology transitions; channel 1's transport
// is opened before the coordinator exists and stays up.
type Transport interface {
	Open() error
	Close() error
	Write(p []byte) (int, error)
}

// Coordinator routes outgoing command frames across the active channels
// and drives the topology state machine. Transitions happen on explicit
// operator action only, never inferred from traffic.
type Coordinator struct {
	mu sync.Mutex

	topology Topology
	sessions [2]*session.Session
	pipes    [2]Transport
}

// New creates a coordinator in the OneChannel topology.
func New(ch1, ch2 *session.Session, t1, t2 Transport) *Coordinator {
	return &Coordinator{
		topology: OneChannel,
		sessions: [2]*session.Session{ch1, ch2},
		pipes:    [2]Transport{t1, t2},
	}
}

// Topology returns the current topology.
func (c *Coordinator) Topology() Topology {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.topology
}

// SetTopology moves the link to a new topology. The legal transitions are
//
//	OneChannel            → TwoChannelIndependent (enable channel 2)
//	TwoChannelIndependent ↔ TwoChannelParallel    (toggle coordination)
//	TwoChannel*           → OneChannel            (disable channel 2)
//
// Enabling or disabling channel 2 opens or closes its transport. The change
// is atomic: if the transport call fails the coordinator stays in the prior
// topology and returns a *TransitionError; the topology flag and channel 2's
// connection state never disagree.
func (c *Coordinator) SetTopology(to Topology) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	from := c.topology
	if to == from {
		return nil
	}

	switch {
	case from == OneChannel && to == TwoChannelIndependent:
		if err := c.pipes[1].Open(); err != nil {
			return &TransitionError{From: from, To: to, Err: err}
		}
		c.sessions[1].Reset()

	case from == TwoChannelIndependent && to == TwoChannelParallel:
		// Flag-only change, nothing to fail.
	case from == TwoChannelParallel && to == TwoChannelIndependent:
		// Flag-only change.

	case (from == TwoChannelIndependent || from == TwoChannelParallel) && to == OneChannel:
		if err := c.pipes[1].Close(); err != nil {
			return &TransitionError{From: from, To: to, Err: err}
		}
		c.sessions[1].Reset()

	default:
		return fmt.Errorf("%w: %s -> %s", ErrBadTransition, from, to)
	}

	c.topology = to
	return nil
}

// SendCommand encodes cmd for the addressed channel and writes it to the
// transports the current topology routes it to:
//
//	OneChannel: channel 1 only; control addressed to channel 2 is rejected.
//	TwoChannelIndependent: each channel carries its own commands.
//	TwoChannelParallel: channel 1's bytes are mirrored verbatim to both
//	channels; control addressed to channel 2 is rejected without touching
//	its outgoing state.
func (c *Coordinator) SendCommand(channel int, cmd protocol.Command) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if channel != 1 && channel != 2 {
		return fmt.Errorf("%w: %d", ErrUnknownChannel, channel)
	}

	switch c.topology {
	case OneChannel:
		if channel != 1 {
			return fmt.Errorf("%w: channel 2 (topology %s)", ErrChannelInactive, c.topology)
		}
		return c.writeCommand(0, cmd)

	case TwoChannelIndependent:
		return c.writeCommand(channel-1, cmd)

	case TwoChannelParallel:
		if channel != 1 {
			return ErrParallelControl
		}
		wire, err := c.sessions[0].BuildCommand(cmd)
		if err != nil {
			return err
		}
		if _, err := c.pipes[0].Write(wire); err != nil {
			return fmt.Errorf("channel 1 write: %w", err)
		}
		if _, err := c.pipes[1].Write(wire); err != nil {
			return fmt.Errorf("channel 2 write: %w", err)
		}
		return nil

	default:
		return fmt.Errorf("%w: %s", ErrBadTransition, c.topology)
	}
}

// writeCommand encodes via the indexed session and writes to its own
// transport. Caller holds the lock.
func (c *Coordinator) writeCommand(idx int, cmd protocol.Command) error {
	wire, err := c.sessions[idx].BuildCommand(cmd)
	if err != nil {
		return err
	}
	if _, err := c.pipes[idx].Write(wire); err != nil {
		return fmt.Errorf("channel %d write: %w", idx+1, err)
	}
	return nil
}

// Session returns the session for a channel (1 or 2), or nil for any
// other number. Transport read loops use this to reach their ingest path.
func (c *Coordinator) Session(channel int) *session.Session {
	if channel != 1 && channel != 2 {
		return nil
	}
	return c.sessions[channel-1]
}

// AddModule registers a module ID on the addressed channel's registry.
func (c *Coordinator) AddModule(channel int, id uint8) error {
	s := c.Session(channel)
	if s == nil {
		return fmt.Errorf("%w: %d", ErrUnknownChannel, channel)
	}
	return s.AddModule(id)
}

// RemoveModule deregisters a module ID on the addressed channel's registry.
func (c *Coordinator) RemoveModule(channel int, id uint8) error {
	s := c.Session(channel)
	if s == nil {
		return fmt.Errorf("%w: %d", ErrUnknownChannel, channel)
	}
	return s.RemoveModule(id)
}

// ResetModules restores the addressed channel's registry to {1..10}.
func (c *Coordinator) ResetModules(channel int) error {
	s := c.Session(channel)
	if s == nil {
		return fmt.Errorf("%w: %d", ErrUnknownChannel, channel)
	}
	s.ResetModules()
	return nil
}

// Snapshots returns value-copy snapshots of the channels the current
// topology has active: channel 1 always, channel 2 in two-channel modes.
func (c *Coordinator) Snapshots() []session.Snapshot {
	c.mu.Lock()
	topo := c.topology
	c.mu.Unlock()

	snaps := []session.Snapshot{c.sessions[0].Snapshot()}
	if topo != OneChannel {
		snaps = append(snaps, c.sessions[1].Snapshot())
	}
	return snaps
}
