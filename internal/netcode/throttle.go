package netcode

import (
	"time"

	"golang.org/x/time/rate"

	"github.com/vovakirdan/tui-pong/internal/config"
)

// reportBurst absorbs frame jitter around the nominal cadence.
const reportBurst = 2

// ReportThrottle decides which paddle reports are worth sending.
// Candidates are admitted at the configured cadence; an admitted candidate is
// sent when a serve is pending, when it moved past epsilon since the last sent
// report, or when the link has been silent for the timeout.
type ReportThrottle struct {
	cfg     config.NetworkConfig
	limiter *rate.Limiter

	last     PaddleReport
	lastSent time.Time
	sent     bool
}

// NewReportThrottle creates a throttle from network settings.
func NewReportThrottle(cfg config.NetworkConfig) *ReportThrottle {
	t := &ReportThrottle{cfg: cfg}
	t.Reset()
	return t
}

// Reset forgets the last sent report and refills the limiter.
// Call it when a paused loop resumes.
func (t *ReportThrottle) Reset() {
	hz := t.cfg.ReportRateHz
	if hz <= 0 {
		hz = 60
	}
	t.limiter = rate.NewLimiter(rate.Limit(hz), reportBurst)
	t.last = PaddleReport{}
	t.lastSent = time.Time{}
	t.sent = false
}

// Offer returns the report to transmit at now, if any.
func (t *ReportThrottle) Offer(now time.Time, r PaddleReport) (PaddleReport, bool) {
	if !t.limiter.AllowN(now, 1) {
		return PaddleReport{}, false
	}
	switch {
	case r.Serve:
	case !t.sent:
	case r.differs(t.last, t.cfg.ReportEpsilon):
	case now.Sub(t.lastSent) >= t.cfg.SilenceTimeout():
	default:
		return PaddleReport{}, false
	}
	t.last = r
	t.lastSent = now
	t.sent = true
	return r, true
}
