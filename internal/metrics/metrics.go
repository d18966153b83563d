package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jwkim/sm1link/internal/session"
)

var (
	// Frame counters
	FramesOK = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sm1link_frames_ok_total",
			Help: "Frames that passed validation",
		},
		[]string{"channel"},
	)

	ChecksumFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sm1link_checksum_failures_total",
			Help: "Frames rejected by checksum verification",
		},
		[]string{"channel"},
	)

	MalformedFrames = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sm1link_malformed_frames_total",
			Help: "Frames rejected for marker, length or field errors, plus resync slips",
		},
		[]string{"channel"},
	)

	CommandsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sm1link_commands_sent_total",
			Help: "Command frames written to the port",
		},
		[]string{"channel"},
	)

	BytesReceived = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sm1link_bytes_received_total",
			Help: "Raw bytes read from the port, including discarded noise",
		},
		[]string{"channel"},
	)

	// Link state gauges
	ErrorRate = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sm1link_checksum_error_rate",
			Help: "Lifetime checksum failure fraction per channel",
		},
		[]string{"channel"},
	)

	Degraded = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sm1link_channel_degraded",
			Help: "1 when the channel's error rate exceeds the configured threshold",
		},
		[]string{"channel"},
	)

	TotalCurrent = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sm1link_total_current_amps",
			Help: "Sum of the most recent current readings over registered modules",
		},
		[]string{"channel"},
	)

	RegisteredModules = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sm1link_registered_modules",
			Help: "Modules currently registered on the channel",
		},
		[]string{"channel"},
	)
)

func init() {
	prometheus.MustRegister(
		FramesOK,
		ChecksumFailures,
		MalformedFrames,
		CommandsSent,
		BytesReceived,
		ErrorRate,
		Degraded,
		TotalCurrent,
		RegisteredModules,
	)
}

// ChannelLabel converts a channel number to the label value the
// collectors use.
func ChannelLabel(channel int) string {
	return strconv.Itoa(channel)
}

// ObserveEvent bumps the counter matching a session event.
func ObserveEvent(ev session.Event) {
	var ch string
	switch e := ev.(type) {
	case session.RecordEvent:
		ch = ChannelLabel(e.Channel)
		FramesOK.WithLabelValues(ch).Inc()
	case session.ChecksumFailure:
		ch = ChannelLabel(e.Channel)
		ChecksumFailures.WithLabelValues(ch).Inc()
	case session.MalformedFrame:
		ch = ChannelLabel(e.Channel)
		MalformedFrames.WithLabelValues(ch).Inc()
	}
}

// ObserveSnapshot pushes a session snapshot into the link state gauges.
func ObserveSnapshot(s session.Snapshot) {
	ch := ChannelLabel(s.Channel)
	ErrorRate.WithLabelValues(ch).Set(s.Stats.ErrorRate())
	if s.Degraded {
		Degraded.WithLabelValues(ch).Set(1)
	} else {
		Degraded.WithLabelValues(ch).Set(0)
	}
	TotalCurrent.WithLabelValues(ch).Set(s.TotalAmps)
	RegisteredModules.WithLabelValues(ch).Set(float64(len(s.ModuleIDs)))
}
