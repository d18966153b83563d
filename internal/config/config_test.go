package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jwkim/sm1link/internal/protocol"
)

func TestDefaults(t *testing.T) {
	cfg := New()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	v, err := cfg.Protocol()
	if err != nil {
		t.Fatalf("Protocol() error = %v", err)
	}
	if v != protocol.V2 {
		t.Errorf("default protocol = %v, want V2", v)
	}
	if !cfg.ChecksumVerification() {
		t.Error("checksums disabled by default")
	}
	if len(cfg.Channels) != 1 || cfg.Channels[0].Baud != DefaultBaud {
		t.Errorf("default channels = %+v", cfg.Channels)
	}
}

func TestValidateFillsChannelDefaults(t *testing.T) {
	cfg := New()
	cfg.Channels = []*Channel{{Port: "/dev/ttyUSB0"}}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	ch := cfg.Channels[0]
	if ch.Baud != 38400 || ch.Parity != "none" || ch.StopBits != 1 {
		t.Errorf("channel defaults not applied: %+v", ch)
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantSub string
	}{
		{
			name:    "bad version",
			mutate:  func(c *Config) { c.Version = 2 },
			wantSub: "unsupported config version",
		},
		{
			name:    "bad protocol",
			mutate:  func(c *Config) { c.ProtocolVersion = "v3" },
			wantSub: "protocol version",
		},
		{
			name:    "unknown topology",
			mutate:  func(c *Config) { c.Topology = "ring" },
			wantSub: "unknown topology",
		},
		{
			name:    "two-channel topology with one channel",
			mutate:  func(c *Config) { c.Topology = "parallel" },
			wantSub: "requires two channels",
		},
		{
			name:    "threshold out of range",
			mutate:  func(c *Config) { c.DegradedThreshold = 1.5 },
			wantSub: "degraded_threshold",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.LogLevel = "trace" },
			wantSub: "unknown log_level",
		},
		{
			name:    "no channels",
			mutate:  func(c *Config) { c.Channels = nil },
			wantSub: "1 or 2 channels",
		},
		{
			name: "three channels",
			mutate: func(c *Config) {
				c.Channels = []*Channel{{Port: "a"}, {Port: "b"}, {Port: "c"}}
			},
			wantSub: "1 or 2 channels",
		},
		{
			name:    "missing port",
			mutate:  func(c *Config) { c.Channels = []*Channel{{}} },
			wantSub: "port is required",
		},
		{
			name:    "odd baud",
			mutate:  func(c *Config) { c.Channels[0].Baud = 12345 },
			wantSub: "unsupported baud rate",
		},
		{
			name:    "bad parity",
			mutate:  func(c *Config) { c.Channels[0].Parity = "mark" },
			wantSub: "unknown parity",
		},
		{
			name:    "bad stop bits",
			mutate:  func(c *Config) { c.Channels[0].StopBits = 3 },
			wantSub: "stop_bits",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error = %q, want substring %q", err, tt.wantSub)
			}
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	enabled := false
	cfg := New()
	cfg.ProtocolVersion = "v1"
	cfg.ChecksumEnabled = &enabled
	cfg.Topology = "independent"
	cfg.Channels = []*Channel{
		{Port: "/dev/ttyUSB0", Baud: 115200, Parity: "even", StopBits: 2},
		{Port: "/dev/ttyUSB1"},
	}
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.ProtocolVersion != "v1" || loaded.Topology != "independent" {
		t.Errorf("loaded config = %+v", loaded)
	}
	if loaded.ChecksumVerification() {
		t.Error("checksum_enabled: false not preserved")
	}
	if got := loaded.Channels[0]; got.Baud != 115200 || got.Parity != "even" || got.StopBits != 2 {
		t.Errorf("channel 1 = %+v", got)
	}
	// Defaults were filled for the second channel during validation.
	if got := loaded.Channels[1]; got.Baud != DefaultBaud || got.Parity != "none" {
		t.Errorf("channel 2 = %+v", got)
	}
}

func TestLoadMissingExplicitPath(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("Load() = nil, want error for missing explicit path")
	}
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("version: 1\nprotocol_version: v9\nchannels: [{port: /dev/ttyUSB0}]\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("Load() = nil, want validation error")
	}
}
