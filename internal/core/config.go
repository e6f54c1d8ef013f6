package core

import "time"

// RuntimeConfig contains terminal-level settings for one UI session.
// Match physics live in config.MatchConfig; this only covers the screen.
type RuntimeConfig struct {
	ScreenW int   // Screen width in characters
	ScreenH int   // Screen height in characters
	FPS     int   // Render rate of the terminal UI
	Seed    int64 // RNG seed, 0 means use the current time
}

// DefaultConfig returns a RuntimeConfig for a classic 80x24 terminal.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW: 80,
		ScreenH: 24,
		FPS:     60,
	}
}

// FrameInterval returns the duration of one rendered frame.
func (c RuntimeConfig) FrameInterval() time.Duration {
	if c.FPS <= 0 {
		return time.Second / 60
	}
	return time.Second / time.Duration(c.FPS)
}
