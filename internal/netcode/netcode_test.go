package netcode

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/vovakirdan/tui-pong/internal/config"
	"github.com/vovakirdan/tui-pong/internal/core"
	"github.com/vovakirdan/tui-pong/internal/sim"
)

func TestRound3(t *testing.T) {
	tests := []struct {
		in, expected float64
	}{
		{1.23456, 1.235},
		{-1.23449, -1.234},
		{0.00009, 0},
		{-0.00009, 0},
		{0.0004, 0},
		{12, 12},
		{23.9999, 24},
	}
	for _, tc := range tests {
		if got := Round3(tc.in); got != tc.expected {
			t.Errorf("Round3(%v) = %v, expected %v", tc.in, got, tc.expected)
		}
		if again := Round3(Round3(tc.in)); again != Round3(tc.in) {
			t.Errorf("Round3 not idempotent for %v: %v then %v", tc.in, Round3(tc.in), again)
		}
	}
}

func TestRound3NeverEncodesNegativeZero(t *testing.T) {
	data, err := EncodeReport(NewPaddleReport(core.Planar(-0.00001, -0.0004), core.Vec3{}, false))
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Contains(data, []byte("-0")) {
		t.Errorf("encoded %s contains -0", data)
	}
}

func testState() sim.GameState {
	split := core.Planar(1.00004, -2)
	return sim.GameState{
		Ball: sim.BallState{Position: core.Planar(0.123456, -3.99999)},
		Paddles: []sim.PaddleState{
			{Index: 0, Position: core.Planar(1.5, 9)},
			{Index: 1, Position: core.Planar(-2, -9), ClientAuthoritative: true},
			{Index: 2, Position: core.Planar(9, 0.00002)},
			{Index: 3, Position: core.Planar(-9, 1), ClientAuthoritative: true},
		},
		Split: &split,
		Powerups: map[int]sim.PowerupView{
			4: {ID: 4, Type: sim.PowerupStretch, Phase: sim.PhaseCollecting, Position: core.V3(0.5, 0.5, 8), Target: 0},
			7: {ID: 7, Type: sim.PowerupBoost, Phase: sim.PhaseDrifting},
		},
	}
}

func TestBuildSnapshot(t *testing.T) {
	snap := BuildSnapshot(testState(), 42)

	if snap.B != (Pair{0.123, -4}) {
		t.Errorf("B = %v, expected [0.123 -4]", snap.B)
	}
	if len(snap.PD) != 3 {
		t.Fatalf("len(PD) = %d, expected trailing null trimmed to 3", len(snap.PD))
	}
	if snap.PD[1] != nil {
		t.Errorf("PD[1] = %v, expected null for client-authoritative paddle", *snap.PD[1])
	}
	if *snap.PD[2] != (Pair{9, 0}) {
		t.Errorf("PD[2] = %v, expected [9 0]", *snap.PD[2])
	}
	if snap.SB == nil || *snap.SB != (Pair{1, -2}) {
		t.Errorf("SB = %v, expected [1 -2]", snap.SB)
	}
	if snap.PU == nil || snap.PU.T != int(sim.PowerupStretch) || snap.PU.S != FlagCollecting || snap.PU.P != 0 {
		t.Errorf("PU = %+v, expected oldest entity collecting by paddle 0", snap.PU)
	}
	if snap.Seq != 42 {
		t.Errorf("Seq = %d, expected 42", snap.Seq)
	}
}

func TestEncodeSnapshotWireShape(t *testing.T) {
	st := testState()
	st.Split = nil
	st.Powerups = nil
	data, err := EncodeSnapshot(BuildSnapshot(st, 3))
	if err != nil {
		t.Fatal(err)
	}
	expected := `{"b":[0.123,-4],"pd":[[1.5,9],null,[9,0]],"seq":3}`
	if string(data) != expected {
		t.Errorf("EncodeSnapshot() = %s\nexpected %s", data, expected)
	}

	// Same state, same bytes
	again, _ := EncodeSnapshot(BuildSnapshot(st, 3))
	if !bytes.Equal(data, again) {
		t.Error("encoding is not deterministic")
	}
}

func TestEncodeSnapshotAllClientAuthoritative(t *testing.T) {
	st := sim.GameState{Paddles: []sim.PaddleState{{ClientAuthoritative: true}, {ClientAuthoritative: true}}}
	data, err := EncodeSnapshot(BuildSnapshot(st, 1))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"pd":[]`) {
		t.Errorf("EncodeSnapshot() = %s, expected an empty pd array", data)
	}
}

func TestDecodeSnapshot(t *testing.T) {
	snap, err := DecodeSnapshot([]byte(`{"b":[1,2],"pd":[null,[3,4]],"pu":{"t":1,"x":0.5,"z":-0.5,"s":1,"p":-1},"seq":9}`))
	if err != nil {
		t.Fatalf("DecodeSnapshot() error = %v", err)
	}
	if snap.B != (Pair{1, 2}) || snap.Seq != 9 || len(snap.PD) != 2 || snap.PD[0] != nil {
		t.Errorf("DecodeSnapshot() = %+v", snap)
	}
	if snap.PU == nil || PhaseOf(snap.PU.S) != sim.PhaseDrifting {
		t.Errorf("PU = %+v, expected drifting", snap.PU)
	}

	bad := []string{
		`{"pd":[],"seq":1}`,
		`{"b":[0,0]}`,
		`not json`,
	}
	for _, in := range bad {
		if _, err := DecodeSnapshot([]byte(in)); !errors.Is(err, ErrMalformedSnapshot) {
			t.Errorf("DecodeSnapshot(%s) error = %v, expected ErrMalformedSnapshot", in, err)
		}
	}
}

func TestReportRoundTripAndValidation(t *testing.T) {
	r := NewPaddleReport(core.Planar(1.23456, 9), core.Planar(-13, 0.00001), true)
	data, err := EncodeReport(r)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"pos":{"x":1.235,"z":9},"vel":{"x":-13,"z":0},"serve":true}` {
		t.Errorf("EncodeReport() = %s", data)
	}
	back, err := DecodeReport(data)
	if err != nil || back != r {
		t.Errorf("DecodeReport() = %+v, %v; expected %+v", back, err, r)
	}

	noServe, _ := EncodeReport(NewPaddleReport(core.Vec3{}, core.Vec3{}, false))
	if strings.Contains(string(noServe), "serve") {
		t.Errorf("serve should be omitted when false: %s", noServe)
	}

	bad := []string{
		`{"vel":{"x":0,"z":0}}`,
		`{"pos":{"x":0,"z":0}}`,
		`{"pos":{"x":0},"vel":{"x":0,"z":0}}`,
		`{"pos":{"x":0,"z":0},"vel":{"z":0}}`,
		`[]`,
	}
	for _, in := range bad {
		if _, err := DecodeReport([]byte(in)); !errors.Is(err, ErrMalformedReport) {
			t.Errorf("DecodeReport(%s) error = %v, expected ErrMalformedReport", in, err)
		}
	}
}

func TestSequencer(t *testing.T) {
	var s Sequencer
	prev := s.Last()
	for i := 0; i < 100; i++ {
		n := s.Next()
		if n <= prev {
			t.Fatalf("Next() = %d after %d", n, prev)
		}
		prev = n
	}
}

func TestSeqTracker(t *testing.T) {
	var tr SeqTracker
	steps := []struct {
		seq   uint64
		fresh bool
		gap   uint64
	}{
		{1, true, 0},
		{2, true, 0},
		{5, true, 2},
		{4, false, 0},
		{5, false, 0},
		{6, true, 0},
	}
	for _, st := range steps {
		fresh, gap := tr.Observe(st.seq)
		if fresh != st.fresh || gap != st.gap {
			t.Errorf("Observe(%d) = %v, %d; expected %v, %d", st.seq, fresh, gap, st.fresh, st.gap)
		}
	}
	if tr.Lost() != 2 || tr.Stale() != 2 || tr.Last() != 6 {
		t.Errorf("lost=%d stale=%d last=%d, expected 2, 2, 6", tr.Lost(), tr.Stale(), tr.Last())
	}
}

func TestReportThrottle(t *testing.T) {
	cfg := config.DefaultMatchConfig().Network
	th := NewReportThrottle(cfg)
	t0 := time.Unix(1000, 0)
	frame := time.Second / 30

	still := NewPaddleReport(core.Planar(0, 9), core.Vec3{}, false)
	if _, ok := th.Offer(t0, still); !ok {
		t.Fatal("first report should always be sent")
	}

	// Unchanged state is suppressed until the silence timeout
	now := t0
	sent := 0
	for now.Sub(t0) < cfg.SilenceTimeout()-frame {
		now = now.Add(frame)
		if _, ok := th.Offer(now, still); ok {
			sent++
		}
	}
	if sent != 0 {
		t.Errorf("unchanged report sent %d times before the silence timeout", sent)
	}
	if _, ok := th.Offer(t0.Add(cfg.SilenceTimeout()), still); !ok {
		t.Error("report should be sent once the silence timeout elapses")
	}

	// Movement beyond epsilon goes out on the next admitted candidate
	now = t0.Add(cfg.SilenceTimeout() + frame)
	moved := NewPaddleReport(core.Planar(0.5, 9), core.Planar(2, 0), false)
	if _, ok := th.Offer(now, moved); !ok {
		t.Error("moved report should be sent")
	}

	// Serve requests bypass delta suppression
	now = now.Add(frame)
	serve := moved
	serve.Serve = true
	if _, ok := th.Offer(now, serve); !ok {
		t.Error("serve request should be sent")
	}
}

func TestReportThrottleCadence(t *testing.T) {
	th := NewReportThrottle(config.DefaultMatchConfig().Network)
	now := time.Unix(2000, 0)
	sent := 0
	for i := 0; i < 10; i++ {
		r := NewPaddleReport(core.Planar(float64(i), 9), core.Vec3{}, true)
		if _, ok := th.Offer(now, r); ok {
			sent++
		}
	}
	if sent != reportBurst {
		t.Errorf("sent %d reports at one instant, expected %d", sent, reportBurst)
	}

	th.Reset()
	if _, ok := th.Offer(now, NewPaddleReport(core.Vec3{}, core.Vec3{}, false)); !ok {
		t.Error("Reset should allow an immediate report")
	}
}
