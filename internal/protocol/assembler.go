package protocol

import "bytes"

// maxBufferFactor bounds the accumulation buffer at this multiple of the
// expected frame length so a stream that never produces a valid terminator
// cannot grow memory without bound.
const maxBufferFactor = 4

// Assembler detects frame boundaries inside a raw byte stream for one
// channel and one direction/version pair. It keeps residual bytes between
// Feed calls, so a frame split across reads is reassembled transparently.
//
// An Assembler is owned by exactly one channel's ingestion path and is not
// safe for concurrent use.
type Assembler struct {
	expect int
	buf    []byte
}

// NewAssembler returns an Assembler scanning for frames of the exact
// length defined by the direction/version pair.
func NewAssembler(dir Direction, v Version) *Assembler {
	return &Assembler{expect: FrameLen(dir, v)}
}

// Feed appends p to the accumulation buffer and extracts every complete
// candidate frame now available, in arrival order. It returns the frames
// (each an STX..ETX byte range, copied out of the buffer) and the number
// of marker slips: positions where a full frame window began with STX but
// did not end with ETX at the fixed offset, forcing a one-byte resync.
//
// Bytes preceding an STX are line noise and are discarded silently.
// Feed never blocks.
func (a *Assembler) Feed(p []byte) (frames [][]byte, slips int) {
	a.buf = append(a.buf, p...)

	for {
		start := bytes.IndexByte(a.buf, STX)
		if start < 0 {
			a.buf = a.buf[:0]
			return frames, slips
		}
		if start > 0 {
			a.buf = a.buf[start:]
		}

		if len(a.buf) < a.expect {
			// Partial frame: wait for more bytes. The guard below is
			// unreachable while the slip logic holds, but keeps a
			// stuck buffer from growing without bound regardless.
			if len(a.buf) > maxBufferFactor*a.expect {
				a.buf = a.buf[1:]
				continue
			}
			return frames, slips
		}

		// ETX must sit at the fixed offset implied by the frame length.
		// A payload byte that happens to be 0x03 earlier in the window
		// is data, not a terminator.
		if a.buf[a.expect-1] != ETX {
			a.buf = a.buf[1:]
			slips++
			continue
		}

		frame := make([]byte, a.expect)
		copy(frame, a.buf[:a.expect])
		a.buf = a.buf[a.expect:]
		frames = append(frames, frame)
	}
}

// Pending returns the number of residual bytes held between Feed calls.
func (a *Assembler) Pending() int {
	return len(a.buf)
}

// Reset discards any partially accumulated frame without reporting it.
// Used on reconnect so a truncated fragment never surfaces as a spurious
// decode error.
func (a *Assembler) Reset() {
	a.buf = a.buf[:0]
}
