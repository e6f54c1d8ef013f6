// Package metrics exposes Prometheus collectors for the match loop and transport.
// Label values are bounded; nothing is labelled per connection or per player.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Drop reasons for inbound messages.
const (
	DropMalformed = "malformed"
	DropInboxFull = "inbox_full"
	DropRateLimit = "rate_limit"
	DropSpectator = "spectator"
)

var (
	tickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pong_tick_duration_seconds",
		Help:    "Time spent in one simulation frame",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025},
	})

	snapshotsSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pong_snapshots_sent_total",
		Help: "Snapshots broadcast by the master",
	})

	snapshotBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pong_snapshot_bytes",
		Help:    "Encoded snapshot size",
		Buckets: []float64{32, 64, 96, 128, 192, 256, 512},
	})

	reportsSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pong_reports_sent_total",
		Help: "Paddle reports transmitted by clients",
	})

	reportsAccepted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pong_reports_accepted_total",
		Help: "Paddle reports folded into the simulation",
	})

	messagesDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pong_messages_dropped_total",
		Help: "Inbound messages dropped before reaching the simulation",
	}, []string{"reason"}) // Bounded: malformed, inbox_full, rate_limit, spectator

	seqGaps = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pong_snapshot_seq_gaps_total",
		Help: "Snapshot sequence numbers skipped as seen by clients",
	})

	powerupEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pong_powerup_events_total",
		Help: "Power-up lifecycle outcomes",
	}, []string{"type", "outcome"}) // outcome: pickup, terminated

	goals = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pong_goals_total",
		Help: "Goals scored",
	})

	connections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pong_connections_active",
		Help: "Open websocket connections",
	})
)

// RecordTick records the duration of one frame.
func RecordTick(d time.Duration) {
	tickDuration.Observe(d.Seconds())
}

// RecordSnapshot records one broadcast snapshot of n bytes.
func RecordSnapshot(n int) {
	snapshotsSent.Inc()
	snapshotBytes.Observe(float64(n))
}

// RecordReportSent counts a transmitted paddle report.
func RecordReportSent() {
	reportsSent.Inc()
}

// RecordReportAccepted counts a paddle report applied by the master.
func RecordReportAccepted() {
	reportsAccepted.Inc()
}

// RecordDropped counts a dropped inbound message. reason must be one of the Drop constants.
func RecordDropped(reason string) {
	messagesDropped.WithLabelValues(reason).Inc()
}

// RecordSeqGap adds skipped snapshot sequence numbers.
func RecordSeqGap(n uint64) {
	if n == 0 {
		return
	}
	seqGaps.Add(float64(n))
}

// RecordPowerup counts a power-up outcome.
func RecordPowerup(typ, outcome string) {
	powerupEvents.WithLabelValues(typ, outcome).Inc()
}

// RecordGoal counts a goal.
func RecordGoal() {
	goals.Inc()
}

// ConnectionOpened increments the active connection gauge.
func ConnectionOpened() {
	connections.Inc()
}

// ConnectionClosed decrements the active connection gauge.
func ConnectionClosed() {
	connections.Dec()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
