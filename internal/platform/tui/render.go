package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-pong/internal/core"
)

// colorStyles maps core.Color to lipgloss styles.
var colorStyles = map[core.Color]lipgloss.Style{
	core.ColorDefault: lipgloss.NewStyle(),
	core.ColorRed:     lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	core.ColorGreen:   lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	core.ColorYellow:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	core.ColorBlue:    lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
	core.ColorMagenta: lipgloss.NewStyle().Foreground(lipgloss.Color("13")),
	core.ColorCyan:    lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
	core.ColorWhite:   lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true),
	core.ColorOrange:  lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
	core.ColorGray:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
}

// RenderScreen converts a Screen buffer to a styled string for display.
// Groups adjacent cells with the same color to minimize ANSI escape sequences.
func RenderScreen(s *core.Screen) string {
	var sb strings.Builder
	sb.Grow(s.Width()*s.Height()*2 + s.Height())

	for y := 0; y < s.Height(); y++ {
		if y > 0 {
			sb.WriteRune('\n')
		}

		x := 0
		for x < s.Width() {
			startColor := s.Get(x, y).Color

			var run strings.Builder
			for x < s.Width() {
				cell := s.Get(x, y)
				if cell.Color != startColor {
					break
				}
				run.WriteRune(cell.Rune)
				x++
			}

			style, ok := colorStyles[startColor]
			if !ok {
				style = colorStyles[core.ColorDefault]
			}
			sb.WriteString(style.Render(run.String()))
		}
	}
	return sb.String()
}

// minField is the smallest playfield, in cells, worth drawing.
const minField = 6

// projection maps the world X/Z plane onto a block of cells.
// Terminal cells are about twice as tall as wide, so columns get half the world step of rows.
type projection struct {
	left, top int
	w, h      int
	extent    float64
}

// cell returns the cell for a world position, held inside the playfield.
func (p projection) cell(v core.Vec3) (int, int) {
	fx := (v.X + p.extent) / (2 * p.extent)
	fz := (v.Z + p.extent) / (2 * p.extent)
	x := core.Clamp(int(math.Round(fx*float64(p.w-1))), 0, p.w-1)
	y := core.Clamp(int(math.Round(fz*float64(p.h-1))), 0, p.h-1)
	return p.left + x, p.top + y
}

// step is the world distance covered by one column.
func (p projection) step() float64 {
	return 2 * p.extent / float64(max(p.w-1, 1))
}

// DrawScene draws a top-down view of the arena: the HUD on the first row,
// the boxed playfield below it and the status on the last row.
func DrawScene(s *core.Screen, sc Scene) {
	s.Clear()
	if s.Height() < minField+4 || s.Width() < 2*minField+2 {
		s.DrawTextCentered(s.Height()/2, "terminal too small", core.ColorGray)
		return
	}

	drawHUD(s, sc)

	h := s.Height() - 4
	w := min(2*h, s.Width()-2)
	h = min(h, w/2+1)
	left := (s.Width() - w) / 2
	p := projection{left: left, top: 2, w: w, h: h, extent: sc.Extent}

	s.DrawBox(core.NewRect(left-1, 1, w+2, h+2), core.ColorGray)

	if sc.HalfWidth > 0 && sc.HalfWidth < sc.Extent {
		for _, x := range []float64{-sc.HalfWidth, sc.HalfWidth} {
			cx, top := p.cell(core.Planar(x, -sc.Extent))
			s.DrawVLine(cx, top, h, '┊', core.ColorGray)
		}
	}

	if sc.Powerup != nil {
		x, y := p.cell(sc.Powerup.Position)
		s.Set(x, y, sc.Powerup.Glyph, core.ColorYellow)
	}
	for _, pd := range sc.Paddles {
		drawPaddle(s, p, pd)
	}
	if sc.Split != nil {
		x, y := p.cell(*sc.Split)
		s.Set(x, y, '○', core.ColorGray)
	}
	x, y := p.cell(sc.Ball)
	s.Set(x, y, '●', core.ColorWhite)

	if sc.Status != "" {
		s.DrawTextCentered(s.Height()-1, sc.Status, core.ColorWhite)
	}
}

func drawHUD(s *core.Screen, sc Scene) {
	if sc.Scores == nil {
		s.DrawTextCentered(0, sc.Header, core.ColorGray)
		return
	}
	parts := make([]string, len(sc.Scores))
	total := 0
	for i, score := range sc.Scores {
		parts[i] = fmt.Sprintf("P%d %d", i+1, score)
		total += len(parts[i])
	}
	total += 3 * (len(parts) - 1)
	x := (s.Width() - total) / 2
	for i, part := range parts {
		s.DrawText(x, 0, part, core.SlotColor(i))
		x += len(part) + 3
	}
}

func drawPaddle(s *core.Screen, p projection, pd ScenePaddle) {
	color := core.SlotColor(pd.Slot)
	if !pd.Known {
		color = core.ColorGray
	}
	glyph := paddleGlyph(pd.Dir, pd.Own)

	// Sample finer than a cell so diagonal paddles stay connected
	step := p.step() / 2
	n := int(2*pd.HalfLength/step) + 1
	for i := 0; i <= n; i++ {
		d := -pd.HalfLength + 2*pd.HalfLength*float64(i)/float64(n)
		x, y := p.cell(pd.Position.Add(pd.Dir.Scale(d)))
		s.Set(x, y, glyph, color)
	}
}

func paddleGlyph(dir core.Vec3, own bool) rune {
	ax, az := math.Abs(dir.X), math.Abs(dir.Z)
	switch {
	case own:
		return '█'
	case az < 0.3*ax:
		return '━'
	case ax < 0.3*az:
		return '┃'
	default:
		return '▓'
	}
}
