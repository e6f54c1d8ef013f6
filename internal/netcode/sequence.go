package netcode

// Sequencer stamps outbound snapshots with strictly increasing numbers starting at 1.
type Sequencer struct {
	last uint64
}

// Next returns the next sequence number.
func (s *Sequencer) Next() uint64 {
	s.last++
	return s.last
}

// Last returns the most recently issued number, 0 before the first.
func (s *Sequencer) Last() uint64 {
	return s.last
}

// SeqTracker follows inbound sequence numbers on a client.
// State is latest-wins, so stale numbers are rejected and gaps only counted.
type SeqTracker struct {
	last  uint64
	lost  uint64
	stale uint64
}

// Observe records seq. It reports whether the snapshot is newer than any seen
// so far and how many numbers were skipped since the previous one.
func (t *SeqTracker) Observe(seq uint64) (fresh bool, gap uint64) {
	if seq <= t.last {
		t.stale++
		return false, 0
	}
	if t.last > 0 {
		gap = seq - t.last - 1
	}
	t.lost += gap
	t.last = seq
	return true, gap
}

// Last returns the newest accepted sequence number.
func (t *SeqTracker) Last() uint64 { return t.last }

// Lost returns the total number of skipped sequence numbers.
func (t *SeqTracker) Lost() uint64 { return t.lost }

// Stale returns how many out-of-order snapshots were dropped.
func (t *SeqTracker) Stale() uint64 { return t.stale }
