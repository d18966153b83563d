package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/jwkim/sm1link/internal/session"
)

func TestObserveEvent(t *testing.T) {
	before := testutil.ToFloat64(ChecksumFailures.WithLabelValues("9"))
	ObserveEvent(session.ChecksumFailure{Channel: 9})
	ObserveEvent(session.ChecksumFailure{Channel: 9})
	after := testutil.ToFloat64(ChecksumFailures.WithLabelValues("9"))
	if after-before != 2 {
		t.Errorf("checksum failure counter moved by %g, want 2", after-before)
	}
}

func TestObserveSnapshot(t *testing.T) {
	ObserveSnapshot(session.Snapshot{
		Channel:   8,
		ModuleIDs: []uint8{1, 2, 3},
		TotalAmps: 42.5,
		Degraded:  true,
	})

	if got := testutil.ToFloat64(TotalCurrent.WithLabelValues("8")); got != 42.5 {
		t.Errorf("total current gauge = %g, want 42.5", got)
	}
	if got := testutil.ToFloat64(RegisteredModules.WithLabelValues("8")); got != 3 {
		t.Errorf("registered modules gauge = %g, want 3", got)
	}
	if got := testutil.ToFloat64(Degraded.WithLabelValues("8")); got != 1 {
		t.Errorf("degraded gauge = %g, want 1", got)
	}
}
