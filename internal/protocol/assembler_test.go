package protocol

import (
	"bytes"
	"testing"
)

func TestAssemblerWholeFrame(t *testing.T) {
	asm := NewAssembler(MasterToSCADA, V2)
	frame := masterFrame(0x09, 1234, 50)

	frames, slips := asm.Feed(frame)
	if len(frames) != 1 {
		t.Fatalf("got %d frames, want 1", len(frames))
	}
	if slips != 0 {
		t.Errorf("slips = %d, want 0", slips)
	}
	if !bytes.Equal(frames[0], frame) {
		t.Errorf("frame = % X, want % X", frames[0], frame)
	}
	if asm.Pending() != 0 {
		t.Errorf("pending = %d, want 0", asm.Pending())
	}
}

func TestAssemblerPartialFrameResumption(t *testing.T) {
	frame := masterFrame(0x09, 1234, 50)

	// A frame split at every possible position must yield exactly one
	// candidate, identical to feeding it whole.
	for split := 1; split < len(frame); split++ {
		asm := NewAssembler(MasterToSCADA, V2)

		frames, _ := asm.Feed(frame[:split])
		if len(frames) != 0 {
			t.Fatalf("split %d: frame emitted early", split)
		}
		frames, _ = asm.Feed(frame[split:])
		if len(frames) != 1 {
			t.Fatalf("split %d: got %d frames, want 1", split, len(frames))
		}
		if !bytes.Equal(frames[0], frame) {
			t.Errorf("split %d: frame = % X, want % X", split, frames[0], frame)
		}
	}
}

func TestAssemblerByteAtATime(t *testing.T) {
	asm := NewAssembler(SCADAToMaster, V2)
	frame, err := Encode(Command{Start: true, Mode: ModeIndependent, MaxVoltage: 300, Current: 10}, V2)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	var got [][]byte
	for _, b := range frame {
		frames, _ := asm.Feed([]byte{b})
		got = append(got, frames...)
	}
	if len(got) != 1 || !bytes.Equal(got[0], frame) {
		t.Fatalf("byte-at-a-time feed: got %d frames", len(got))
	}
}

func TestAssemblerGarbageResilience(t *testing.T) {
	// K valid frames interleaved with non-STX noise must yield exactly
	// K candidates in original order.
	valid := [][]byte{
		masterFrame(0x08, 100, 10), // slave 1
		masterFrame(0x10, 200, 20), // slave 2
		masterFrame(0x00, 3000, 0), // system voltage
	}
	noise := []byte{0xFF, 0x00, 0x55, 0xAA, 0x03, 0x7E}

	var stream []byte
	stream = append(stream, noise...)
	for _, f := range valid {
		stream = append(stream, f...)
		stream = append(stream, noise...)
	}

	asm := NewAssembler(MasterToSCADA, V2)
	frames, _ := asm.Feed(stream)
	if len(frames) != len(valid) {
		t.Fatalf("got %d frames, want %d", len(frames), len(valid))
	}
	for i, f := range frames {
		if !bytes.Equal(f, valid[i]) {
			t.Errorf("frame %d = % X, want % X", i, f, valid[i])
		}
	}
}

func TestAssemblerFalseSTXSlip(t *testing.T) {
	// A stray 0x02 ahead of a real frame forces a one-byte resync; the
	// real frame must still come out and the slip must be reported.
	frame := masterFrame(0x09, 1234, 50)
	stream := append([]byte{STX, 0x11, 0x22}, frame...)

	asm := NewAssembler(MasterToSCADA, V2)
	frames, slips := asm.Feed(stream)
	if len(frames) != 1 {
		t.Fatalf("got %d frames, want 1", len(frames))
	}
	if !bytes.Equal(frames[0], frame) {
		t.Errorf("frame = % X, want % X", frames[0], frame)
	}
	if slips == 0 {
		t.Error("slips = 0, want at least one resync")
	}
}

func TestAssemblerPayloadMarkerBytes(t *testing.T) {
	// 0x02/0x03 inside data fields must not be mistaken for delimiters:
	// ETX is only valid at the fixed offset for the frame length.
	frame := masterFrame(0x08, 0x0203, 0x02)

	asm := NewAssembler(MasterToSCADA, V1)
	frames, slips := asm.Feed(frame)
	if len(frames) != 1 {
		t.Fatalf("got %d frames, want 1 (slips=%d)", len(frames), slips)
	}
	if !bytes.Equal(frames[0], frame) {
		t.Errorf("frame = % X, want % X", frames[0], frame)
	}
}

func TestAssemblerReset(t *testing.T) {
	asm := NewAssembler(MasterToSCADA, V2)
	frame := masterFrame(0x08, 42, 0)

	// A partial frame discarded by Reset must not leak into the next feed.
	if frames, _ := asm.Feed(frame[:4]); len(frames) != 0 {
		t.Fatal("partial frame emitted")
	}
	if asm.Pending() == 0 {
		t.Fatal("pending = 0 before reset")
	}
	asm.Reset()
	if asm.Pending() != 0 {
		t.Errorf("pending = %d after reset, want 0", asm.Pending())
	}

	frames, slips := asm.Feed(frame)
	if len(frames) != 1 || slips != 0 {
		t.Fatalf("after reset: frames=%d slips=%d, want 1/0", len(frames), slips)
	}
}

func TestAssemblerNoiseOnlyStaysBounded(t *testing.T) {
	asm := NewAssembler(MasterToSCADA, V2)

	// A stream of noise that never terminates a frame must not grow the
	// buffer without bound.
	junk := bytes.Repeat([]byte{STX, 0xFF}, 200)
	asm.Feed(junk)
	if asm.Pending() > maxBufferFactor*FrameLen(MasterToSCADA, V2) {
		t.Errorf("pending = %d, exceeds bound", asm.Pending())
	}
}
