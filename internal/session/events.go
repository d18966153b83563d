package session

import (
	"fmt"

	"github.com/jwkim/sm1link/internal/protocol"
)

// EventKind classifies an ingestion outcome.
type EventKind int

const (
	EventRecord EventKind = iota + 1
	EventChecksumFailure
	EventMalformedFrame
)

// Event is one ingestion outcome for one channel: either a decoded record
// or a recoverable decode failure. Failures are events, not errors; the
// session resumes scanning after each one.
type Event interface {
	Kind() EventKind
	String() string
}

// RecordEvent carries a successfully decoded record.
type RecordEvent struct {
	Channel int
	Record  protocol.Record
}

func (RecordEvent) Kind() EventKind { return EventRecord }

func (e RecordEvent) String() string {
	return fmt.Sprintf("ch%d %s", e.Channel, e.Record)
}

// ChecksumFailure reports a frame whose payload sum did not match its
// checksum byte. Emitted only when checksum verification is enabled.
type ChecksumFailure struct {
	Channel int
	Detail  string
}

func (ChecksumFailure) Kind() EventKind { return EventChecksumFailure }

func (e ChecksumFailure) String() string {
	return fmt.Sprintf("ch%d checksum failure: %s", e.Channel, e.Detail)
}

// MalformedFrame reports a frame rejected before field extraction: a
// resync inside the byte stream, a bad marker or a length mismatch.
type MalformedFrame struct {
	Channel int
	Reason  string
}

func (MalformedFrame) Kind() EventKind { return EventMalformedFrame }

func (e MalformedFrame) String() string {
	return fmt.Sprintf("ch%d malformed frame: %s", e.Channel, e.Reason)
}
