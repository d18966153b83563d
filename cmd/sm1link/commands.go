package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jwkim/sm1link/internal/config"
	"github.com/jwkim/sm1link/internal/link"
	"github.com/jwkim/sm1link/internal/logging"
	"github.com/jwkim/sm1link/internal/protocol"
	"github.com/jwkim/sm1link/internal/server"
	"github.com/jwkim/sm1link/internal/session"
	"github.com/jwkim/sm1link/internal/transport"
)

// Command flags
var (
	configPath string
	logLevel   string

	frameDirection string
	protoVersion   string
	noChecksum     bool

	cmdStart      bool
	cmdStop       bool
	cmdMode       string
	cmdMaxVoltage int
	cmdMinVoltage int
	cmdCurrent    float64
	sendChannel   int
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (default: OS config directory)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides config")

	rootCmd.AddCommand(monitorCmd)
	rootCmd.AddCommand(decodeCmd)
	rootCmd.AddCommand(encodeCmd)
	rootCmd.AddCommand(sendCmd)
}

// monitorCmd runs the live link monitor
var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Monitor the serial link and serve its state over HTTP",
	Long: `Open the configured serial ports, decode incoming frames and serve
the event stream, per-channel statistics and Prometheus metrics over HTTP.

Runs until interrupted. The channel topology (one channel, two independent
channels, or two channels in parallel) comes from the config file.`,
	Example: `  # Monitor with the default config
  sm1link monitor

  # Monitor with an explicit config and debug logging
  sm1link monitor --config ./link.yaml --log-level debug`,
	RunE: runMonitor,
}

func runMonitor(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	level := cfg.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	if err := logging.Initialize(level); err != nil {
		return err
	}
	defer logging.Sync()

	v, err := cfg.Protocol()
	if err != nil {
		return err
	}

	var opts []session.Option
	if !cfg.ChecksumVerification() {
		opts = append(opts, session.WithoutChecksum())
	}
	if cfg.DegradedThreshold > 0 {
		opts = append(opts, session.WithDegradedThreshold(cfg.DegradedThreshold))
	}

	// A single-channel config still builds both slots; channel 2 stays
	// closed unless the topology enables it.
	settings := make([]transport.Settings, 2)
	for i := 0; i < 2; i++ {
		ch := cfg.Channels[0]
		if i < len(cfg.Channels) {
			ch = cfg.Channels[i]
		}
		settings[i] = transport.Settings{
			Path:     ch.Port,
			Baud:     ch.Baud,
			Parity:   ch.Parity,
			StopBits: ch.StopBits,
		}
	}
	l1 := transport.NewSerialLink(settings[0])
	l2 := transport.NewSerialLink(settings[1])
	s1 := session.New(1, v, opts...)
	s2 := session.New(2, v, opts...)
	coord := link.New(s1, s2, l1, l2)

	if err := l1.Open(); err != nil {
		return err
	}
	defer l1.Close()
	logging.LogPortEvent(l1.Path(), "opened")

	switch cfg.Topology {
	case "independent":
		if err := coord.SetTopology(link.TwoChannelIndependent); err != nil {
			return err
		}
	case "parallel":
		if err := coord.SetTopology(link.TwoChannelIndependent); err != nil {
			return err
		}
		if err := coord.SetTopology(link.TwoChannelParallel); err != nil {
			return err
		}
	}
	twoChannel := coord.Topology() != link.OneChannel

	srv := server.New(cfg.ListenAddr, coord)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	onEvents := func(events []session.Event) {
		for _, ev := range events {
			logging.Debug("Link event", zap.String("event", ev.String()))
		}
		srv.Publish(events)
	}

	r1 := &transport.Reader{Link: l1, Session: s1, OnEvents: onEvents}
	go r1.Run(ctx)
	if twoChannel {
		r2 := &transport.Reader{Link: l2, Session: s2, OnEvents: onEvents}
		go r2.Run(ctx)
	}

	return srv.Start()
}

// decodeCmd decodes a single frame given as hex
var decodeCmd = &cobra.Command{
	Use:   "decode <hex bytes>",
	Short: "Decode a frame from hex bytes",
	Long: `Decode a single frame supplied as hex on the command line and print
the result in physical units.

The direction selects the frame layout: "master" for data frames sent by
a master controller, "command" for operator command frames.`,
	Example: `  # Decode a system voltage frame
  sm1link decode --direction master 02 00 0B B8 00 C3 03

  # Decode a v1 command frame without checksum verification
  sm1link decode --direction command --protocol v1 --no-checksum 02 01 01 2C 00 00 50 7E 03`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDecode,
}

func init() {
	for _, c := range []*cobra.Command{decodeCmd, encodeCmd, sendCmd} {
		c.Flags().StringVar(&protoVersion, "protocol", "v2", "Protocol version (v1 or v2)")
	}
	decodeCmd.Flags().StringVar(&frameDirection, "direction", "master", "Frame direction (master or command)")
	decodeCmd.Flags().BoolVar(&noChecksum, "no-checksum", false, "Skip checksum verification")

	for _, c := range []*cobra.Command{encodeCmd, sendCmd} {
		c.Flags().BoolVar(&cmdStart, "start", false, "Set the start bit")
		c.Flags().BoolVar(&cmdStop, "stop", false, "Author the canonical stop command (all fields zero)")
		c.Flags().StringVar(&cmdMode, "mode", "stop", "Operation mode (stop, independent or parallel; v2 only)")
		c.Flags().IntVar(&cmdMaxVoltage, "max-voltage", 0, "Maximum voltage setpoint in volts")
		c.Flags().IntVar(&cmdMinVoltage, "min-voltage", 0, "Minimum voltage setpoint in volts")
		c.Flags().Float64Var(&cmdCurrent, "current", 0, "Current setpoint in amps")
	}
	sendCmd.Flags().IntVar(&sendChannel, "channel", 1, "Channel to send on")
}

func runDecode(cmd *cobra.Command, args []string) error {
	frame, err := parseHex(args)
	if err != nil {
		return err
	}
	v, err := protocol.ParseVersion(protoVersion)
	if err != nil {
		return err
	}
	dir, err := parseDirection(frameDirection)
	if err != nil {
		return err
	}

	var opts []protocol.DecodeOption
	if noChecksum {
		opts = append(opts, protocol.WithoutChecksum())
	}
	rec, err := protocol.Decode(frame, dir, v, opts...)
	if err != nil {
		return err
	}
	fmt.Println(rec.String())
	return nil
}

// encodeCmd builds a command frame and prints it as hex
var encodeCmd = &cobra.Command{
	Use:   "encode",
	Short: "Encode a command frame and print it as hex",
	Example: `  # Start in parallel mode at 300 V max, 40 A
  sm1link encode --start --mode parallel --max-voltage 300 --current 40

  # The canonical stop command
  sm1link encode --stop --protocol v1`,
	RunE: runEncode,
}

func runEncode(cmd *cobra.Command, args []string) error {
	frame, err := buildCommandFrame()
	if err != nil {
		return err
	}
	fmt.Printf("% X\n", frame)
	return nil
}

// sendCmd writes a command frame to a configured serial port
var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Encode a command frame and write it to a channel's port",
	Long: `Encode a command frame and write it to the serial port of the given
channel from the config file. This is a one-shot write; use 'monitor' to
watch the link's response.`,
	Example: `  # Stop channel 1
  sm1link send --stop

  # Start channel 2 at 40 A
  sm1link send --channel 2 --start --mode independent --max-voltage 300 --current 40`,
	RunE: runSend,
}

func runSend(cmd *cobra.Command, args []string) error {
	if err := logging.Initialize(logLevel); err != nil {
		return err
	}
	defer logging.Sync()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if sendChannel < 1 || sendChannel > len(cfg.Channels) {
		return fmt.Errorf("channel %d is not configured", sendChannel)
	}

	frame, err := buildCommandFrame()
	if err != nil {
		return err
	}

	ch := cfg.Channels[sendChannel-1]
	l := transport.NewSerialLink(transport.Settings{
		Path:     ch.Port,
		Baud:     ch.Baud,
		Parity:   ch.Parity,
		StopBits: ch.StopBits,
	})
	if err := l.Open(); err != nil {
		return err
	}
	defer l.Close()

	if _, err := l.Write(frame); err != nil {
		return fmt.Errorf("failed to write command: %w", err)
	}
	fmt.Printf("Sent % X to %s\n", frame, ch.Port)
	return nil
}

func buildCommandFrame() ([]byte, error) {
	v, err := protocol.ParseVersion(protoVersion)
	if err != nil {
		return nil, err
	}

	c := protocol.StopCommand()
	if !cmdStop {
		mode, err := parseMode(cmdMode)
		if err != nil {
			return nil, err
		}
		c = protocol.Command{
			Start:      cmdStart,
			Mode:       mode,
			MaxVoltage: cmdMaxVoltage,
			MinVoltage: cmdMinVoltage,
			Current:    cmdCurrent,
		}
	}
	return protocol.Encode(c, v)
}

func parseHex(args []string) ([]byte, error) {
	s := strings.Join(args, "")
	s = strings.NewReplacer(" ", "", ",", "", "0x", "", ":", "").Replace(s)
	frame, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex input: %w", err)
	}
	return frame, nil
}

func parseDirection(s string) (protocol.Direction, error) {
	switch s {
	case "master":
		return protocol.MasterToSCADA, nil
	case "command":
		return protocol.SCADAToMaster, nil
	default:
		return 0, fmt.Errorf("unknown direction %q (want master or command)", s)
	}
}

func parseMode(s string) (protocol.OperationMode, error) {
	switch s {
	case "stop":
		return protocol.ModeStop, nil
	case "independent":
		return protocol.ModeIndependent, nil
	case "parallel":
		return protocol.ModeParallel, nil
	default:
		return 0, fmt.Errorf("unknown mode %q (want stop, independent or parallel)", s)
	}
}
