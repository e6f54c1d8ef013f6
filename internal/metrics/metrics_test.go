package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(messagesDropped.WithLabelValues(DropMalformed))
	RecordDropped(DropMalformed)
	RecordDropped(DropMalformed)
	if got := testutil.ToFloat64(messagesDropped.WithLabelValues(DropMalformed)) - before; got != 2 {
		t.Errorf("dropped malformed delta = %v, expected 2", got)
	}

	gapsBefore := testutil.ToFloat64(seqGaps)
	RecordSeqGap(0)
	RecordSeqGap(3)
	if got := testutil.ToFloat64(seqGaps) - gapsBefore; got != 3 {
		t.Errorf("seq gap delta = %v, expected 3", got)
	}

	connBefore := testutil.ToFloat64(connections)
	ConnectionOpened()
	ConnectionOpened()
	ConnectionClosed()
	if got := testutil.ToFloat64(connections) - connBefore; got != 1 {
		t.Errorf("connections delta = %v, expected 1", got)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	RecordTick(2 * time.Millisecond)
	RecordSnapshot(64)
	RecordPowerup("boost", "pickup")

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)

	for _, name := range []string{
		"pong_tick_duration_seconds",
		"pong_snapshots_sent_total",
		"pong_powerup_events_total",
	} {
		if !strings.Contains(string(body), name) {
			t.Errorf("metrics output missing %s", name)
		}
	}
}
