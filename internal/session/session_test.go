package session

import (
	"testing"

	"github.com/jwkim/sm1link/internal/protocol"
)

// masterFrame builds a Master → SCADA frame with a valid checksum.
func masterFrame(status byte, value uint16, extra byte) []byte {
	f := []byte{protocol.STX, status, byte(value >> 8), byte(value), extra, 0x00, protocol.ETX}
	f[5] = protocol.Checksum(f[1:5])
	return f
}

func slaveFrame(id uint8, dabOK bool, rawCurrent uint16, rawTemp byte) []byte {
	status := id << 3
	if dabOK {
		status |= 0x01
	}
	return masterFrame(status, rawCurrent, rawTemp)
}

func TestIngestSingleFrame(t *testing.T) {
	s := New(1, protocol.V2)

	events := s.Ingest(masterFrame(0x00, 3000, 0x00))
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	re, ok := events[0].(RecordEvent)
	if !ok {
		t.Fatalf("event = %T, want RecordEvent", events[0])
	}
	if re.Channel != 1 {
		t.Errorf("channel = %d, want 1", re.Channel)
	}
	sv, ok := re.Record.(protocol.SystemVoltage)
	if !ok {
		t.Fatalf("record = %T, want SystemVoltage", re.Record)
	}
	if sv.Volts != 300.0 {
		t.Errorf("volts = %v, want 300.0", sv.Volts)
	}

	stats := s.Stats()
	if stats.FramesOK != 1 || stats.ChecksumFailures != 0 || stats.MalformedFrames != 0 {
		t.Errorf("stats = %+v, want exactly one ok frame", stats)
	}
	if stats.LastSeen.IsZero() {
		t.Error("LastSeen not stamped")
	}
}

func TestIngestSplitAcrossCalls(t *testing.T) {
	s := New(1, protocol.V2)
	frame := slaveFrame(3, true, protocol.CenterOffset+8000, 50)

	if events := s.Ingest(frame[:3]); len(events) != 0 {
		t.Fatalf("partial frame produced %d events", len(events))
	}
	events := s.Ingest(frame[3:])
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	sd := events[0].(RecordEvent).Record.(protocol.SlaveData)
	if sd.SlaveID != 3 || sd.Amps != 80.0 || sd.TempC != 25.0 || !sd.DABOK {
		t.Errorf("record = %+v", sd)
	}
}

func TestIngestChecksumFailure(t *testing.T) {
	frame := masterFrame(0x00, 3000, 0x00)
	frame[5] ^= 0xFF // corrupt the checksum byte

	s := New(2, protocol.V2)
	events := s.Ingest(frame)
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	cf, ok := events[0].(ChecksumFailure)
	if !ok {
		t.Fatalf("event = %T, want ChecksumFailure", events[0])
	}
	if cf.Channel != 2 {
		t.Errorf("channel = %d, want 2", cf.Channel)
	}
	if stats := s.Stats(); stats.ChecksumFailures != 1 || stats.FramesOK != 0 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestIngestChecksumDisabled(t *testing.T) {
	frame := masterFrame(0x00, 3000, 0x00)
	frame[5] ^= 0xFF

	s := New(1, protocol.V2, WithoutChecksum())
	events := s.Ingest(frame)
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if _, ok := events[0].(RecordEvent); !ok {
		t.Fatalf("event = %T, want RecordEvent with verification off", events[0])
	}
	if stats := s.Stats(); stats.FramesOK != 1 || stats.ChecksumFailures != 0 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestErrorRate(t *testing.T) {
	s := New(1, protocol.V2)

	if rate := s.Stats().ErrorRate(); rate != 0 {
		t.Errorf("idle error rate = %v, want 0", rate)
	}

	good := masterFrame(0x00, 1000, 0x00)
	bad := masterFrame(0x00, 1000, 0x00)
	bad[5] ^= 0x01

	// Three good frames and one checksum failure: 1/(3+1) = 0.25.
	s.Ingest(good)
	s.Ingest(good)
	s.Ingest(bad)
	s.Ingest(good)

	if rate := s.Stats().ErrorRate(); rate != 0.25 {
		t.Errorf("error rate = %v, want 0.25", rate)
	}
}

func TestSnapshotDegraded(t *testing.T) {
	s := New(1, protocol.V2, WithDegradedThreshold(0.1))

	bad := masterFrame(0x00, 1000, 0x00)
	bad[5] ^= 0x01
	s.Ingest(bad)

	if snap := s.Snapshot(); !snap.Degraded {
		t.Errorf("snapshot not degraded at error rate %v", snap.Stats.ErrorRate())
	}

	s.ResetStats()
	if snap := s.Snapshot(); snap.Degraded {
		t.Error("snapshot degraded after stats reset")
	}
}

func TestCurrentSummation(t *testing.T) {
	s := New(1, protocol.V2)

	s.Ingest(slaveFrame(1, true, protocol.CenterOffset+1000, 40)) // +10.00 A
	s.Ingest(slaveFrame(2, true, protocol.CenterOffset-500, 40))  // -5.00 A
	s.Ingest(slaveFrame(20, true, protocol.CenterOffset+9999, 40)) // not registered

	snap := s.Snapshot()
	if snap.TotalAmps != 5.0 {
		t.Errorf("total = %v A, want 5.0", snap.TotalAmps)
	}
	if len(snap.ModuleCurrents) != 2 {
		t.Errorf("tracked currents = %v, want modules 1 and 2 only", snap.ModuleCurrents)
	}

	// An updated report replaces, not accumulates.
	s.Ingest(slaveFrame(1, true, protocol.CenterOffset+2000, 40)) // +20.00 A
	if snap := s.Snapshot(); snap.TotalAmps != 15.0 {
		t.Errorf("total after update = %v A, want 15.0", snap.TotalAmps)
	}

	// Removing a module drops its contribution.
	if err := s.RemoveModule(1); err != nil {
		t.Fatalf("RemoveModule(1) error = %v", err)
	}
	if snap := s.Snapshot(); snap.TotalAmps != -5.0 {
		t.Errorf("total after removal = %v A, want -5.0", snap.TotalAmps)
	}

	s.ResetModules()
	if snap := s.Snapshot(); snap.TotalAmps != 0 || len(snap.ModuleCurrents) != 0 {
		t.Errorf("totals survived module reset: %+v", snap)
	}
}

func TestResetDiscardsPartialFrame(t *testing.T) {
	s := New(1, protocol.V2)
	frame := masterFrame(0x00, 3000, 0x00)

	// Half a frame sits in the assembler when the link drops.
	s.Ingest(frame[:4])
	s.Reset()

	// The fragment must not surface as a malformed-frame event against
	// the fresh connection's first frame.
	events := s.Ingest(frame)
	if len(events) != 1 {
		t.Fatalf("got %d events after reset, want 1", len(events))
	}
	if _, ok := events[0].(RecordEvent); !ok {
		t.Fatalf("event = %T, want RecordEvent", events[0])
	}
	if stats := s.Stats(); stats.MalformedFrames != 0 {
		t.Errorf("malformed = %d, want 0", stats.MalformedFrames)
	}
}

func TestIngestResyncReportsMalformed(t *testing.T) {
	s := New(1, protocol.V2)
	frame := masterFrame(0x08, 100, 10)

	// A stray STX forces a resync before the real frame.
	stream := append([]byte{protocol.STX, 0x42, 0x42}, frame...)
	events := s.Ingest(stream)

	var records, malformed int
	for _, e := range events {
		switch e.(type) {
		case RecordEvent:
			records++
		case MalformedFrame:
			malformed++
		}
	}
	if records != 1 {
		t.Errorf("records = %d, want 1", records)
	}
	if malformed == 0 {
		t.Error("no malformed-frame event for the resync")
	}
	if stats := s.Stats(); stats.MalformedFrames == 0 {
		t.Error("malformed counter not bumped")
	}
}

func TestBuildCommand(t *testing.T) {
	s := New(1, protocol.V2)
	cmd := protocol.Command{Start: true, Mode: protocol.ModeIndependent, MaxVoltage: 300, Current: 25.0}

	wire, err := s.BuildCommand(cmd)
	if err != nil {
		t.Fatalf("BuildCommand() error = %v", err)
	}
	rec, err := protocol.Decode(wire, protocol.SCADAToMaster, protocol.V2)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got := rec.(protocol.Command); got != cmd {
		t.Errorf("round trip = %+v, want %+v", got, cmd)
	}
}
