package tui

import (
	"github.com/littlebull/lbcs/internal/grid"
)

// layout places the LED grid on the terminal. Each LED is drawn as a block
// of cellChars x cellLines characters.
type layout struct {
	rows      int
	columns   int
	cellChars int
	cellLines int
	left      int
	top       int
	// canvas side in pixels, shared by both axes
	width float64
}

// newLayout fits a rows x columns grid into the terminal.
func newLayout(m grid.Mapper, termWidth, termHeight int) layout {
	l := layout{
		rows:    m.Rows(),
		columns: m.Columns(),
		left:    gridLeft,
		top:     gridTop,
		width:   m.Width(),
	}
	if !m.Valid() {
		return l
	}

	l.cellChars = clamp((termWidth-2)/l.columns, 1, maxCellChars)
	l.cellLines = clamp((termHeight-chromeLines)/l.rows, 1, maxCellLines)
	return l
}

func (l layout) valid() bool {
	return l.rows > 0 && l.columns > 0 && l.cellChars > 0 && l.width > 0
}

// cellAt returns the grid cell under a terminal position.
func (l layout) cellAt(x, y int) (col, row int, ok bool) {
	if !l.valid() {
		return 0, 0, false
	}
	dx, dy := x-l.left, y-l.top
	if dx < 0 || dy < 0 {
		return 0, 0, false
	}
	col, row = dx/l.cellChars, dy/l.cellLines
	if col >= l.columns || row >= l.rows {
		return 0, 0, false
	}
	return col, row, true
}

// pixel converts a terminal position to canvas pixels, aiming at the
// middle of the character so cell borders never round the wrong way.
func (l layout) pixel(x, y int) (float64, float64, bool) {
	if !l.valid() {
		return 0, 0, false
	}
	dx, dy := x-l.left, y-l.top
	if dx < 0 || dy < 0 {
		return 0, 0, false
	}
	gridChars := float64(l.cellChars * l.columns)
	gridLines := float64(l.cellLines * l.rows)
	px := (float64(dx) + 0.5) * l.width / gridChars
	py := (float64(dy) + 0.5) * l.width / gridLines
	return px, py, true
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
