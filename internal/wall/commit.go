package wall

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/littlebull/lbcs/internal/grid"
	"github.com/littlebull/lbcs/internal/logging"
)

// LEDChange is a local toggle waiting to be sent to the server.
type LEDChange struct {
	Index int
	Color grid.RGB
	seq   uint64
}

// Tap toggles the LED under canvas pixel (x, y). The local grid changes
// at once; pass the returned change to CommitLED to send it. Points
// outside the grid report false and change nothing.
func (m *Manager) Tap(x, y float64) (LEDChange, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	index, ok := m.mapper.Locate(x, y)
	if !ok {
		return LEDChange{}, false
	}
	return m.stageLocked(index), true
}

// TapIndex toggles the LED at index, as Tap does for a pixel.
func (m *Manager) TapIndex(index int) (LEDChange, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.mapper.Origin(index); !ok {
		return LEDChange{}, false
	}
	return m.stageLocked(index), true
}

func (m *Manager) stageLocked(index int) LEDChange {
	next := grid.Toggle(m.grid.Get(index), m.defaultColor)
	m.grid[index] = next
	m.seq++
	m.pending[index] = m.seq
	m.versions.Grid++
	return LEDChange{Index: index, Color: next, seq: m.seq}
}

func (m *Manager) ledLock(index int) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.ledLocks[index]
	if !ok {
		l = &sync.Mutex{}
		m.ledLocks[index] = l
	}
	return l
}

// CommitLED sends a staged change. Commits for one LED run one at a time,
// and a change already replaced by a newer tap on the same LED is dropped
// without a request. When the request fails and no newer tap exists, the
// LED goes back to the last colour the server confirmed.
func (m *Manager) CommitLED(ctx context.Context, change LEDChange) error {
	l := m.ledLock(change.Index)
	l.Lock()
	defer l.Unlock()

	m.mu.Lock()
	if m.pending[change.Index] != change.seq {
		m.mu.Unlock()
		logging.Debug("Dropping superseded LED change", zap.Int("led", change.Index))
		return nil
	}
	gw := m.gateway
	m.mu.Unlock()

	err := gw.SetLED(ctx, change.Index, change.Color)

	m.mu.Lock()
	latest := m.pending[change.Index] == change.seq
	if latest {
		delete(m.pending, change.Index)
	}
	if err == nil {
		m.confirmed[change.Index] = change.Color
		m.mu.Unlock()
		return nil
	}
	if latest {
		m.grid[change.Index] = m.confirmed.Get(change.Index)
		m.versions.Grid++
	}
	m.mu.Unlock()

	logging.Warn("Toggle failed", zap.Int("led", change.Index), zap.Bool("rolled_back", latest), zap.Error(err))
	m.notify(LevelDanger, fmt.Sprintf(msgToggleFailed, change.Index))
	return fmt.Errorf("toggle led %d: %w", change.Index, err)
}

// Pending reports how many LEDs have uncommitted taps.
func (m *Manager) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}
