package grid

import "math"

// Origin is the pixel position of a cell's top-left corner.
type Origin struct {
	X, Y float64
}

// Mapper converts between LED indices and canvas pixels for a
// rows x columns grid drawn on a square canvas of side Width.
//
// Cell height is Width/Rows, not the canvas height: the grid is kept
// square relative to the width.
type Mapper struct {
	rows    int
	columns int
	width   float64
	coords  map[Origin]int
}

// NewMapper builds the coordinate map for the given dimensions. Zero or
// negative dimensions give an empty mapper on which every lookup misses.
func NewMapper(rows, columns int, width float64) Mapper {
	m := Mapper{rows: rows, columns: columns, width: width}
	if !m.Valid() {
		return m
	}

	m.coords = make(map[Origin]int, rows*columns)
	for y := 0; y < rows; y++ {
		for x := 0; x < columns; x++ {
			m.coords[m.originOf(x, y)] = y*columns + x
		}
	}
	return m
}

// Valid reports whether the mapper describes a drawable grid.
func (m Mapper) Valid() bool {
	return m.rows > 0 && m.columns > 0 && m.width > 0
}

func (m Mapper) Rows() int      { return m.rows }
func (m Mapper) Columns() int   { return m.columns }
func (m Mapper) Width() float64 { return m.width }

// Len is the number of mapped cells.
func (m Mapper) Len() int {
	return len(m.coords)
}

// CellSize returns the width and height of one cell in pixels.
func (m Mapper) CellSize() (float64, float64) {
	if !m.Valid() {
		return 0, 0
	}
	return m.width / float64(m.columns), m.width / float64(m.rows)
}

func (m Mapper) originOf(x, y int) Origin {
	cw, ch := m.CellSize()
	return Origin{X: float64(x) * cw, Y: float64(y) * ch}
}

// Origin returns the pixel origin of the LED at index.
func (m Mapper) Origin(index int) (Origin, bool) {
	if !m.Valid() || index < 0 || index >= m.rows*m.columns {
		return Origin{}, false
	}
	return m.originOf(index%m.columns, index/m.columns), true
}

// Index looks up the LED drawn at a cell origin.
func (m Mapper) Index(o Origin) (int, bool) {
	index, ok := m.coords[o]
	return index, ok
}

// Locate returns the LED under a canvas pixel. Points outside the grid
// report false.
func (m Mapper) Locate(x, y float64) (int, bool) {
	if !m.Valid() {
		return 0, false
	}
	cw, ch := m.CellSize()
	o := Origin{
		X: math.Floor(x/cw) * cw,
		Y: math.Floor(y/ch) * ch,
	}
	return m.Index(o)
}

// Cell is one mapped grid cell.
type Cell struct {
	Index  int
	Origin Origin
}

// Cells lists every cell in index order.
func (m Mapper) Cells() []Cell {
	if !m.Valid() {
		return nil
	}
	cells := make([]Cell, 0, m.rows*m.columns)
	for index := 0; index < m.rows*m.columns; index++ {
		cells = append(cells, Cell{Index: index, Origin: m.originOf(index%m.columns, index/m.columns)})
	}
	return cells
}
