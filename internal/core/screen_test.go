package core

import (
	"strings"
	"testing"
)

func TestNewScreen(t *testing.T) {
	s := NewScreen(80, 24)

	if s.Width() != 80 {
		t.Errorf("Width() = %d, expected 80", s.Width())
	}
	if s.Height() != 24 {
		t.Errorf("Height() = %d, expected 24", s.Height())
	}

	for y := 0; y < s.Height(); y++ {
		for x := 0; x < s.Width(); x++ {
			if got := s.Get(x, y); got.Rune != ' ' || got.Color != ColorDefault {
				t.Fatalf("new screen cell (%d, %d) = %+v, expected blank", x, y, got)
			}
		}
	}
}

func TestScreenSetGet(t *testing.T) {
	s := NewScreen(10, 10)

	s.Set(5, 5, 'X', ColorRed)
	if got := s.Get(5, 5); got.Rune != 'X' || got.Color != ColorRed {
		t.Errorf("Get(5, 5) = %+v, expected red X", got)
	}

	// Out of bounds should be silent
	s.Set(-1, 0, 'A', ColorRed)
	s.Set(100, 0, 'A', ColorRed)
	s.Set(0, -1, 'A', ColorRed)
	s.Set(0, 100, 'A', ColorRed)

	if s.Get(-1, 0).Rune != ' ' || s.Get(100, 0).Rune != ' ' {
		t.Error("Out of bounds Get should return space")
	}
}

func TestScreenClearAndResize(t *testing.T) {
	s := NewScreen(4, 3)
	s.DrawText(0, 0, "abcd", ColorGreen)
	s.Clear()
	if got := s.Row(0); got != "    " {
		t.Errorf("Row(0) after Clear = %q, expected spaces", got)
	}

	s.Resize(6, 2)
	if s.Width() != 6 || s.Height() != 2 {
		t.Errorf("size after Resize = %dx%d, expected 6x2", s.Width(), s.Height())
	}
	s.Resize(-3, -1)
	if s.Width() != 0 || s.Height() != 0 || s.String() != "" {
		t.Error("negative sizes should give an empty screen")
	}
}

func TestDrawTextCentered(t *testing.T) {
	s := NewScreen(11, 1)
	s.DrawTextCentered(0, "PONG", ColorWhite)
	if got := s.Row(0); got != "   PONG    " {
		t.Errorf("Row(0) = %q, expected %q", got, "   PONG    ")
	}

	// Runes, not bytes
	s.Clear()
	s.DrawText(0, 0, "»x", ColorWhite)
	if s.Get(1, 0).Rune != 'x' {
		t.Errorf("Get(1, 0) = %q, expected 'x'", s.Get(1, 0).Rune)
	}
}

func TestDrawBox(t *testing.T) {
	s := NewScreen(4, 3)
	s.DrawBox(NewRect(0, 0, 4, 3), ColorGray)

	expected := strings.Join([]string{
		"┌──┐",
		"│  │",
		"└──┘",
	}, "\n")
	if got := s.String(); got != expected {
		t.Errorf("String() =\n%s\nexpected\n%s", got, expected)
	}
	if s.Get(0, 1).Color != ColorGray {
		t.Errorf("edge color = %v, expected gray", s.Get(0, 1).Color)
	}
}

func TestSlotColor(t *testing.T) {
	seen := map[Color]bool{}
	for slot := 0; slot < 4; slot++ {
		seen[SlotColor(slot)] = true
	}
	if len(seen) != 4 {
		t.Errorf("slot colors = %v, expected four distinct colors", seen)
	}
	if SlotColor(-1) != ColorGray {
		t.Errorf("SlotColor(-1) = %v, expected gray", SlotColor(-1))
	}
}
