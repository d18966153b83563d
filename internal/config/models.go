package config

import (
	"fmt"

	"github.com/jwkim/sm1link/internal/protocol"
)

// SupportedBauds lists the baud rates the serial ports accept, in the
// order they are offered to the user.
var SupportedBauds = []int{9600, 19200, 38400, 57600, 115200, 230400, 460800, 921600}

const (
	// DefaultBaud is the link's factory rate.
	DefaultBaud = 38400

	// DefaultListenAddr serves the event stream and metrics locally only.
	DefaultListenAddr = "127.0.0.1:8920"
)

// Config represents the entire configuration file.
type Config struct {
	Version int `yaml:"version"` // Config file format version (currently 1)

	ProtocolVersion   string  `yaml:"protocol_version"`              // "v1" or "v2"
	ChecksumEnabled   *bool   `yaml:"checksum_enabled,omitempty"`    // Verify frame checksums (default true)
	Topology          string  `yaml:"topology,omitempty"`            // "one_channel", "independent" or "parallel"
	DegradedThreshold float64 `yaml:"degraded_threshold,omitempty"`  // Checksum error rate that marks a channel degraded
	ListenAddr        string  `yaml:"listen_addr,omitempty"`         // HTTP listen address for events and metrics
	LogLevel          string  `yaml:"log_level,omitempty"`           // "debug", "info", "warn" or "error"

	Channels []*Channel `yaml:"channels"` // One or two serial channels, in channel order
}

// Channel represents the serial port settings for a single channel.
type Channel struct {
	Port     string `yaml:"port"`                // Device path, e.g. /dev/ttyUSB0 or COM3
	Baud     int    `yaml:"baud,omitempty"`      // Baud rate (default 38400)
	Parity   string `yaml:"parity,omitempty"`    // "none", "even" or "odd" (default "none")
	StopBits int    `yaml:"stop_bits,omitempty"` // 1 or 2 (default 1)
}

// New creates a Config with default values: a single V2 channel at
// 38400 8N1 with checksum verification on.
func New() *Config {
	return &Config{
		Version:           1,
		ProtocolVersion:   "v2",
		Topology:          "one_channel",
		DegradedThreshold: 0.05,
		ListenAddr:        DefaultListenAddr,
		LogLevel:          "info",
		Channels: []*Channel{
			{Port: "/dev/ttyUSB0", Baud: DefaultBaud, Parity: "none", StopBits: 1},
		},
	}
}

// Protocol returns the parsed protocol version.
func (c *Config) Protocol() (protocol.Version, error) {
	return protocol.ParseVersion(c.ProtocolVersion)
}

// ChecksumVerification reports whether frame checksums should be
// verified. Unset means verified.
func (c *Config) ChecksumVerification() bool {
	return c.ChecksumEnabled == nil || *c.ChecksumEnabled
}

// Validate checks the configuration for internal consistency. It also
// fills in per-channel defaults (baud, parity, stop bits) so callers can
// use the channel settings directly afterwards.
func (c *Config) Validate() error {
	if c.Version != 1 {
		return fmt.Errorf("unsupported config version: %d (expected 1)", c.Version)
	}

	if _, err := c.Protocol(); err != nil {
		return err
	}

	switch c.Topology {
	case "", "one_channel":
	case "independent", "parallel":
		if len(c.Channels) < 2 {
			return fmt.Errorf("topology %q requires two channels, got %d", c.Topology, len(c.Channels))
		}
	default:
		return fmt.Errorf("unknown topology: %q", c.Topology)
	}

	if c.DegradedThreshold < 0 || c.DegradedThreshold > 1 {
		return fmt.Errorf("degraded_threshold must be in [0, 1], got %g", c.DegradedThreshold)
	}

	if c.ListenAddr == "" {
		c.ListenAddr = DefaultListenAddr
	}

	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level: %q", c.LogLevel)
	}

	if len(c.Channels) == 0 || len(c.Channels) > 2 {
		return fmt.Errorf("expected 1 or 2 channels, got %d", len(c.Channels))
	}
	for i, ch := range c.Channels {
		if err := ch.validate(); err != nil {
			return fmt.Errorf("channel %d: %w", i+1, err)
		}
	}

	return nil
}

func (ch *Channel) validate() error {
	if ch.Port == "" {
		return fmt.Errorf("port is required")
	}

	if ch.Baud == 0 {
		ch.Baud = DefaultBaud
	}
	if !baudSupported(ch.Baud) {
		return fmt.Errorf("unsupported baud rate: %d", ch.Baud)
	}

	switch ch.Parity {
	case "":
		ch.Parity = "none"
	case "none", "even", "odd":
	default:
		return fmt.Errorf("unknown parity: %q", ch.Parity)
	}

	switch ch.StopBits {
	case 0:
		ch.StopBits = 1
	case 1, 2:
	default:
		return fmt.Errorf("stop_bits must be 1 or 2, got %d", ch.StopBits)
	}

	return nil
}

func baudSupported(baud int) bool {
	for _, b := range SupportedBauds {
		if b == baud {
			return true
		}
	}
	return false
}
