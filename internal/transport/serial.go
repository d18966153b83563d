package transport

import (
	"fmt"
	"sync"
	"time"

	"go.bug.st/serial"
)

// readTimeout bounds a single blocking Read so the receive loop can
// notice context cancellation.
const readTimeout = 500 * time.Millisecond

// Settings describes a serial port in configuration terms.
type Settings struct {
	Path     string // Device path, e.g. /dev/ttyUSB0 or COM3
	Baud     int
	Parity   string // "none", "even" or "odd"
	StopBits int    // 1 or 2
}

// mapParity maps a configuration string to serial.Parity.
// Unknown values fall back to no parity.
func mapParity(p string) serial.Parity {
	switch p {
	case "odd":
		return serial.OddParity
	case "even":
		return serial.EvenParity
	default:
		return serial.NoParity
	}
}

// mapStopBits maps a configuration value to serial.StopBits.
func mapStopBits(s int) serial.StopBits {
	if s == 2 {
		return serial.TwoStopBits
	}
	return serial.OneStopBit
}

// SerialLink is one end of the wire: a serial port plus its settings.
// It satisfies the coordinator's Transport interface. Open and Close are
// idempotent so topology transitions can call them without tracking
// state themselves.
type SerialLink struct {
	mu       sync.Mutex
	settings Settings
	port     serial.Port
}

// NewSerialLink creates a link for the given port settings. The port is
// not opened until Open is called.
func NewSerialLink(s Settings) *SerialLink {
	return &SerialLink{settings: s}
}

// Open opens the serial port with 8 data bits and the configured baud,
// parity and stop bits. Opening an already open link is a no-op.
func (l *SerialLink) Open() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.port != nil {
		return nil
	}

	mode := &serial.Mode{
		BaudRate: l.settings.Baud,
		DataBits: 8,
		Parity:   mapParity(l.settings.Parity),
		StopBits: mapStopBits(l.settings.StopBits),
	}
	port, err := serial.Open(l.settings.Path, mode)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", l.settings.Path, err)
	}
	if err := port.SetReadTimeout(readTimeout); err != nil {
		port.Close()
		return fmt.Errorf("failed to set read timeout on %s: %w", l.settings.Path, err)
	}

	l.port = port
	return nil
}

// Close closes the port. Closing an already closed link is a no-op.
func (l *SerialLink) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.port == nil {
		return nil
	}
	err := l.port.Close()
	l.port = nil
	if err != nil {
		return fmt.Errorf("failed to close %s: %w", l.settings.Path, err)
	}
	return nil
}

// Write sends p to the port.
func (l *SerialLink) Write(p []byte) (int, error) {
	l.mu.Lock()
	port := l.port
	l.mu.Unlock()

	if port == nil {
		return 0, fmt.Errorf("port %s is not open", l.settings.Path)
	}
	return port.Write(p)
}

// Read fills p from the port. A timed-out read returns (0, nil), which
// the Reader treats as an idle poll.
func (l *SerialLink) Read(p []byte) (int, error) {
	l.mu.Lock()
	port := l.port
	l.mu.Unlock()

	if port == nil {
		return 0, fmt.Errorf("port %s is not open", l.settings.Path)
	}
	return port.Read(p)
}

// Path returns the device path the link was configured with.
func (l *SerialLink) Path() string {
	return l.settings.Path
}
