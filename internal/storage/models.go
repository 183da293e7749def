package storage

import (
	"time"

	"github.com/littlebull/lbcs/internal/grid"
)

// Wall pairs a background photo with the server that controls its LEDs.
type Wall struct {
	ID        string
	Name      string
	ServerURL string
	ImageURI  string
}

// Problem is a saved LED pattern, independent of the wall it was set on.
type Problem struct {
	ID      string
	Name    string
	Grid    grid.State
	Rows    int
	Columns int
}

// library is the on-disk document.
type library struct {
	Version  int              `yaml:"version"`
	Walls    []*wallRecord    `yaml:"walls,omitempty"`
	Problems []*problemRecord `yaml:"problems,omitempty"`
}

type wallRecord struct {
	ID        string    `yaml:"id"`
	Name      string    `yaml:"name"`
	ServerURL string    `yaml:"server_url"`
	ImageURI  string    `yaml:"image_uri,omitempty"`
	SavedAt   time.Time `yaml:"saved_at"`
}

// Problem colours are stored as hex strings keyed by LED index.
type problemRecord struct {
	ID      string         `yaml:"id"`
	Name    string         `yaml:"name"`
	Rows    int            `yaml:"rows"`
	Columns int            `yaml:"columns"`
	Grid    map[int]string `yaml:"grid,omitempty"`
	SavedAt time.Time      `yaml:"saved_at"`
}

func (r *wallRecord) toWall() Wall {
	return Wall{ID: r.ID, Name: r.Name, ServerURL: r.ServerURL, ImageURI: r.ImageURI}
}

func (r *problemRecord) toProblem() (Problem, error) {
	state := make(grid.State, len(r.Grid))
	for index, hex := range r.Grid {
		c, err := grid.ParseHex(hex)
		if err != nil {
			return Problem{}, err
		}
		state[index] = c
	}
	return Problem{ID: r.ID, Name: r.Name, Grid: state, Rows: r.Rows, Columns: r.Columns}, nil
}

// Only lit LEDs are written; absent entries read back as off.
func newProblemRecord(id string, p Problem, now time.Time) *problemRecord {
	colours := make(map[int]string)
	for index, c := range p.Grid {
		if c.IsOn() {
			colours[index] = c.Hex()
		}
	}
	return &problemRecord{
		ID:      id,
		Name:    p.Name,
		Rows:    p.Rows,
		Columns: p.Columns,
		Grid:    colours,
		SavedAt: now,
	}
}
