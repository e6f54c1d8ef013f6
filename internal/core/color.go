package core

// Color represents a foreground color for a screen cell.
// The platform layer maps it to a terminal style.
type Color uint8

const (
	ColorDefault Color = iota
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorWhite
	ColorOrange
	ColorGray
)

var slotColors = []Color{ColorCyan, ColorMagenta, ColorGreen, ColorOrange}

// SlotColor returns the paddle color of a player slot.
func SlotColor(slot int) Color {
	if slot < 0 {
		return ColorGray
	}
	return slotColors[slot%len(slotColors)]
}
