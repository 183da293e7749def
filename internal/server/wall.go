package server

import (
	"errors"
	"fmt"
	"sync"

	"github.com/littlebull/lbcs/internal/grid"
)

// ErrOutOfRange is returned for LED indices outside the wall.
var ErrOutOfRange = errors.New("led index out of range")

// Wall is the simulated LED grid.
type Wall struct {
	mu      sync.RWMutex
	rows    int
	columns int
	leds    grid.State
}

// NewWall returns a rows x columns wall with every LED off.
func NewWall(rows, columns int) *Wall {
	w := &Wall{rows: rows, columns: columns}
	w.leds = w.blank()
	return w
}

func (w *Wall) blank() grid.State {
	leds := make(grid.State, w.rows*w.columns)
	for i := 0; i < w.rows*w.columns; i++ {
		leds[i] = grid.Off
	}
	return leds
}

func (w *Wall) checkIndex(index int) error {
	if index < 0 || index >= w.rows*w.columns {
		return fmt.Errorf("%w: %d (wall has %d)", ErrOutOfRange, index, w.rows*w.columns)
	}
	return nil
}

// Snapshot returns the full state with an entry for every LED.
func (w *Wall) Snapshot() grid.Snapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return grid.Snapshot{Rows: w.rows, Columns: w.columns, Grid: w.leds.Clone()}
}

// Set changes one LED.
func (w *Wall) Set(index int, c grid.RGB) error {
	if err := w.checkIndex(index); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.leds[index] = c
	return nil
}

// Reset replaces the whole grid; LEDs missing from state turn off. No LED
// changes if any index is out of range.
func (w *Wall) Reset(state grid.State) error {
	for index := range state {
		if err := w.checkIndex(index); err != nil {
			return err
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	leds := w.blank()
	for index, c := range state {
		leds[index] = c
	}
	w.leds = leds
	return nil
}

// Clear turns every LED off.
func (w *Wall) Clear() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.leds = w.blank()
}
