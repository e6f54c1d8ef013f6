package tui

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-pong/internal/config"
	"github.com/vovakirdan/tui-pong/internal/core"
	_ "github.com/vovakirdan/tui-pong/internal/modes"
	"github.com/vovakirdan/tui-pong/internal/multiplayer"
	"github.com/vovakirdan/tui-pong/internal/netcode"
	"github.com/vovakirdan/tui-pong/internal/sim"
	"github.com/vovakirdan/tui-pong/internal/storage"
)

func runeKey(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func testConfig() config.MatchConfig {
	cfg := config.DefaultMatchConfig()
	cfg.Powerups.Enabled = false
	return cfg
}

func findRune(s *core.Screen, r rune) (int, int, bool) {
	for y := 0; y < s.Height(); y++ {
		for x := 0; x < s.Width(); x++ {
			if s.Get(x, y).Rune == r {
				return x, y, true
			}
		}
	}
	return 0, 0, false
}

func TestKeyMapAction(t *testing.T) {
	km := DefaultKeyMap()
	tests := []struct {
		name   string
		msg    tea.KeyMsg
		seats  Seats
		slot   int
		action core.Action
	}{
		{"arrow left", tea.KeyMsg{Type: tea.KeyLeft}, HotSeat(), 0, core.ActionLeft},
		{"arrow right", tea.KeyMsg{Type: tea.KeyRight}, HotSeat(), 0, core.ActionRight},
		{"space serves", runeKey(" "), HotSeat(), 0, core.ActionServe},
		{"wasd to second seat", runeKey("d"), HotSeat(), 1, core.ActionRight},
		{"alt serve", runeKey("e"), HotSeat(), 1, core.ActionServe},
		{"solo alt group", runeKey("a"), SoloSeats(2), 2, core.ActionLeft},
		{"disabled group", runeKey("a"), Seats{Primary: 0, Alt: -1}, -1, core.ActionNone},
		{"pause", runeKey("p"), HotSeat(), -1, core.ActionPause},
		{"quit", runeKey("q"), HotSeat(), -1, core.ActionQuit},
		{"ctrl+c", tea.KeyMsg{Type: tea.KeyCtrlC}, HotSeat(), -1, core.ActionQuit},
		{"unmapped", runeKey("z"), HotSeat(), -1, core.ActionNone},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			slot, action := km.Action(tc.msg, tc.seats)
			if slot != tc.slot || action != tc.action {
				t.Errorf("Action() = (%d, %v), expected (%d, %v)", slot, action, tc.slot, tc.action)
			}
		})
	}
}

func TestHeldKeys(t *testing.T) {
	h := NewHeld(100 * time.Millisecond)
	t0 := time.Unix(1000, 0)

	h.Press(0, core.ActionLeft, t0)
	h.Press(1, core.ActionServe, t0)

	f := h.Frame(t0.Add(50 * time.Millisecond))
	if f.Slot(0).Direction() != core.DirNegative {
		t.Errorf("slot 0 direction = %v, expected negative", f.Slot(0).Direction())
	}
	if !f.Slot(1).Has(core.ActionServe) {
		t.Error("serve should be reported once")
	}
	f = h.Frame(t0.Add(60 * time.Millisecond))
	if f.Slot(1).Has(core.ActionServe) {
		t.Error("serve should not repeat")
	}

	// Opposite direction replaces the held one
	h.Press(0, core.ActionRight, t0.Add(70*time.Millisecond))
	if d := h.Frame(t0.Add(80 * time.Millisecond)).Slot(0).Direction(); d != core.DirPositive {
		t.Errorf("direction after reversal = %v, expected positive", d)
	}

	if d := h.Frame(t0.Add(time.Second)).Slot(0).Direction(); d != core.DirNone {
		t.Errorf("direction after the window = %v, expected none", d)
	}
}

func TestDrawScene(t *testing.T) {
	cfg := testConfig()
	s := sim.New(cfg, sim.Options{Seed: 1})
	s.Start()
	sc := SceneFromState(cfg, s.Snapshot(), 0)

	screen := core.NewScreen(60, 20)
	DrawScene(screen, sc)

	bx, by, ok := findRune(screen, '●')
	if !ok {
		t.Fatal("ball not drawn")
	}
	if bx < 25 || bx > 35 || by < 7 || by > 13 {
		t.Errorf("ball at (%d, %d), expected near the center", bx, by)
	}

	// Slot 0 defends +Z, drawn below the ball; it is the own paddle
	_, py, ok := findRune(screen, '█')
	if !ok || py <= by {
		t.Errorf("own paddle at row %d (found %v), expected below the ball at row %d", py, ok, by)
	}
	_, oy, ok := findRune(screen, '━')
	if !ok || oy >= by {
		t.Errorf("opponent paddle at row %d (found %v), expected above the ball", oy, ok)
	}

	if !strings.Contains(screen.Row(0), "P1 0") || !strings.Contains(screen.Row(0), "P2 0") {
		t.Errorf("HUD = %q, expected both scores", screen.Row(0))
	}
	if !strings.Contains(screen.Row(screen.Height()-1), "P1 to serve") {
		t.Errorf("status = %q", screen.Row(screen.Height()-1))
	}
}

func TestDrawSceneKeepsItemsInField(t *testing.T) {
	sc := baseScene(testConfig(), 2)
	sc.Ball = core.Planar(-50, 50)

	screen := core.NewScreen(60, 20)
	DrawScene(screen, sc)

	// 60x20 gives a 32x16 field at column 14, row 2
	bx, by, ok := findRune(screen, '●')
	if !ok {
		t.Fatal("ball not drawn")
	}
	if bx != 14 || by != 17 {
		t.Errorf("ball at (%d, %d), expected the bottom-left field cell (14, 17)", bx, by)
	}
}

func TestDrawSceneTooSmall(t *testing.T) {
	screen := core.NewScreen(20, 5)
	DrawScene(screen, baseScene(testConfig(), 2))
	if !strings.Contains(screen.String(), "too small") {
		t.Errorf("expected a size warning, got %q", screen.String())
	}
}

func TestSceneFromSnapshot(t *testing.T) {
	cfg := testConfig()
	a, b := netcode.Pair{1, 2}, netcode.Pair{3, -4}
	snap := netcode.Snapshot{
		B:   netcode.Pair{0.5, -0.5},
		PD:  []*netcode.Pair{&a, nil},
		SB:  &b,
		PU:  &netcode.PowerupSummary{T: int(sim.PowerupBoost), X: 1, Z: 1, P: -1},
		Seq: 9,
	}
	sc := SceneFromSnapshot(cfg, snap)

	if len(sc.Paddles) != 2 {
		t.Fatalf("paddles = %d, expected 2", len(sc.Paddles))
	}
	if !sc.Paddles[0].Known || sc.Paddles[0].Position != core.Planar(1, 2) {
		t.Errorf("paddle 0 = %+v", sc.Paddles[0])
	}
	if sc.Paddles[1].Known {
		t.Error("null paddle should be unknown")
	}
	if sc.Split == nil || *sc.Split != core.Planar(3, -4) {
		t.Errorf("split = %v", sc.Split)
	}
	if sc.Powerup == nil || sc.Powerup.Glyph != sim.PowerupBoost.Glyph() {
		t.Errorf("powerup = %+v", sc.Powerup)
	}
	if !strings.Contains(sc.Header, "seq 9") {
		t.Errorf("header = %q", sc.Header)
	}
}

func TestSceneFromView(t *testing.T) {
	cfg := testConfig()
	v := multiplayer.ClientView{
		Slot:    1,
		Players: 2,
		Paddles: []multiplayer.PaddleView{
			{Position: core.Planar(0, 9)},
			{Position: core.Planar(2, -9), Own: true},
		},
		Seq:  3,
		Lost: 1,
	}
	sc := SceneFromView(cfg, v)
	if sc.Paddles[0].Known || !sc.Paddles[1].Known || !sc.Paddles[1].Own {
		t.Errorf("paddles = %+v", sc.Paddles)
	}
	if sc.Status == "" {
		t.Error("unsynced view should show a waiting status")
	}
	if sc.Header != "P2  seq 3  lost 1" {
		t.Errorf("header = %q", sc.Header)
	}
}

func newLocalModel(t *testing.T, store *storage.Store) (MatchModel, *multiplayer.Loop) {
	t.Helper()
	cfg := testConfig()
	s := sim.New(cfg, sim.Options{Seed: 4})
	loop := multiplayer.NewMasterLoop(multiplayer.NewMaster(s, nil, nil), nil)
	m := NewMatchModel(loop, cfg, MatchOptions{
		Runtime: core.RuntimeConfig{ScreenW: 80, ScreenH: 24, FPS: 60},
		Seats:   HotSeat(),
		Own:     -1,
		Store:   store,
	})
	m.Init()
	return m, loop
}

func update(t *testing.T, m MatchModel, msg tea.Msg) (MatchModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	mm, ok := next.(MatchModel)
	if !ok {
		t.Fatalf("Update() returned %T", next)
	}
	return mm, cmd
}

func TestMatchModelServeAndPause(t *testing.T) {
	m, loop := newLocalModel(t, nil)
	if !loop.Running() {
		t.Fatal("Init() should start the loop")
	}

	t0 := time.Now()
	m, _ = update(t, m, runeKey(" "))
	m, _ = update(t, m, TickMsg(t0))
	m, _ = update(t, m, TickMsg(t0.Add(16*time.Millisecond)))
	if loop.Master().Sim().Snapshot().WaitingForServe {
		t.Error("space should serve for slot 0")
	}

	m, _ = update(t, m, runeKey("p"))
	if !loop.Paused() {
		t.Error("p should pause a local match")
	}
	if !strings.Contains(m.View(), "PAUSED") {
		t.Error("view should show the pause status")
	}
}

func TestMatchModelQuitSavesResult(t *testing.T) {
	store, err := storage.Open(filepath.Join(t.TempDir(), "h.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	m, loop := newLocalModel(t, store)
	m, _ = update(t, m, TickMsg(time.Now()))
	m, cmd := update(t, m, runeKey("q"))
	if cmd == nil {
		t.Fatal("quit should return a command")
	}
	if !loop.Done() || !m.Finished() {
		t.Error("quit should stop the loop")
	}

	recs, err := store.RecentMatches("", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 || recs[0].EndReason != "cancelled" || recs[0].Players != 2 {
		t.Errorf("saved records = %+v, expected one cancelled 2-player match", recs)
	}

	// Quitting twice saves once
	m.finish()
	recs, _ = store.RecentMatches("", 0)
	if len(recs) != 1 {
		t.Errorf("records after second finish = %d, expected 1", len(recs))
	}
}

func TestMatchModelDisconnect(t *testing.T) {
	cfg := testConfig()
	client, err := multiplayer.NewClient(cfg, 1, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	loop := multiplayer.NewClientLoop(client, nil)
	m := NewMatchModel(loop, cfg, MatchOptions{Seats: SoloSeats(1), Own: 1})
	m.Init()

	m, _ = update(t, m, runeKey("p"))
	if loop.Paused() {
		t.Error("clients cannot pause")
	}

	m, _ = update(t, m, disconnectedMsg{})
	if !loop.Done() {
		t.Error("disconnect should stop the loop")
	}
	if !strings.Contains(m.Scene().Status, "connection lost") {
		t.Errorf("status = %q", m.Scene().Status)
	}
}

func TestResultRows(t *testing.T) {
	rows := ResultRows([]storage.MatchRecord{{
		Mode:       "classic",
		ScoresText: "7,3",
		Winner:     0,
		EndReason:  "completed",
		DurationMs: 61_400,
		StartedMs:  time.Date(2025, 3, 4, 10, 30, 0, 0, time.Local).UnixMilli(),
	}})
	expected := []string{"Mar 04 10:30", "classic", "7 : 3", "P1", "1m1s", "completed"}
	if len(rows) != 1 {
		t.Fatalf("rows = %d", len(rows))
	}
	for i, want := range expected {
		if rows[0][i] != want {
			t.Errorf("column %d = %q, expected %q", i, rows[0][i], want)
		}
	}
}

func TestMenuPlayersAndSelect(t *testing.T) {
	m := NewMenuModel(2, 80, 24)
	for _, k := range []tea.KeyMsg{{Type: tea.KeyRight}, {Type: tea.KeyRight}, {Type: tea.KeyRight}} {
		next, _ := m.Update(k)
		m = next.(MenuModel)
	}
	if m.players != 4 {
		t.Errorf("players = %d, expected 4 (clamped)", m.players)
	}
	if len(m.modes) < 2 {
		t.Fatalf("modes = %+v, expected the built-in modes", m.modes)
	}
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(MenuModel)
	if cmd == nil || m.selected == nil {
		t.Error("enter should select a mode")
	}
}
