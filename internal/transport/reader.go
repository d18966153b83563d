package transport

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/jwkim/sm1link/internal/logging"
	"github.com/jwkim/sm1link/internal/metrics"
	"github.com/jwkim/sm1link/internal/session"
)

// defaultReconnectDelay spaces out reopen attempts after a port fault.
const defaultReconnectDelay = 2 * time.Second

// readLink is the part of SerialLink the receive loop uses. Tests
// substitute a fake.
type readLink interface {
	Open() error
	Close() error
	Read(p []byte) (int, error)
}

// Reader pumps bytes from a link into a session and publishes the
// resulting events.
type Reader struct {
	Link    readLink
	Session *session.Session

	// OnEvents receives each non-empty batch of events produced by a
	// read. Required.
	OnEvents func([]session.Event)

	// ReconnectDelay overrides the pause between reopen attempts after
	// a port fault. Zero means the default.
	ReconnectDelay time.Duration
}

// Run reads from the link until ctx is cancelled. Port faults are not
// fatal: the link is closed, reopened after a delay and the session's
// assembler reset, so decoding restarts clean. Run returns ctx.Err()
// on cancellation.
func (r *Reader) Run(ctx context.Context) error {
	delay := r.ReconnectDelay
	if delay == 0 {
		delay = defaultReconnectDelay
	}

	buf := make([]byte, 256)
	channel := r.Session.Channel()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := r.Link.Read(buf)
		if n > 0 {
			metrics.BytesReceived.WithLabelValues(metrics.ChannelLabel(channel)).Add(float64(n))
			events := r.Session.Ingest(buf[:n])
			if len(events) > 0 {
				for _, ev := range events {
					metrics.ObserveEvent(ev)
				}
				r.OnEvents(events)
			}
		}
		if err == nil {
			continue
		}

		logging.Warn("Port read failed, reconnecting",
			zap.Int("channel", channel),
			zap.Error(err),
		)
		r.Link.Close()
		// Drop any torn frame from before the fault.
		r.Session.Reset()

		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			if err := r.Link.Open(); err != nil {
				logging.Warn("Port reopen failed",
					zap.Int("channel", channel),
					zap.Error(err),
				)
				continue
			}
			logging.Info("Port reopened", zap.Int("channel", channel))
			break
		}
	}
}
