package wall

import (
	"context"
	"errors"
	"sync"

	"github.com/littlebull/lbcs/internal/grid"
	"github.com/littlebull/lbcs/internal/storage"
)

var errBoom = errors.New("boom")

type ledCall struct {
	Index int
	Color grid.RGB
}

// fakeGateway stands in for every server; bound records the URLs it was
// bound to.
type fakeGateway struct {
	mu     sync.Mutex
	bound  []string
	calls  []string
	leds   []ledCall
	resets []grid.State
	snap   grid.Snapshot

	stateErr error
	setErr   error
	resetErr error
	clearErr error

	// when set, SetLED signals entered and waits for release
	entered chan int
	release chan error
}

func (g *fakeGateway) record(call string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, call)
}

func (g *fakeGateway) State(ctx context.Context) (*grid.Snapshot, error) {
	g.record("state")
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.stateErr != nil {
		return nil, g.stateErr
	}
	snap := grid.Snapshot{Rows: g.snap.Rows, Columns: g.snap.Columns, Grid: g.snap.Grid.Clone()}
	return &snap, nil
}

func (g *fakeGateway) SetLED(ctx context.Context, index int, c grid.RGB) error {
	g.record("setLed")
	if g.entered != nil {
		g.entered <- index
		if err := <-g.release; err != nil {
			return err
		}
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.leds = append(g.leds, ledCall{index, c})
	if g.setErr != nil {
		return g.setErr
	}
	if g.snap.Grid == nil {
		g.snap.Grid = grid.State{}
	}
	g.snap.Grid[index] = c
	return nil
}

func (g *fakeGateway) ResetState(ctx context.Context, state grid.State) error {
	g.record("reset")
	g.mu.Lock()
	defer g.mu.Unlock()
	g.resets = append(g.resets, state.Clone())
	if g.resetErr != nil {
		return g.resetErr
	}
	g.snap.Grid = state.Clone()
	return nil
}

func (g *fakeGateway) Clear(ctx context.Context) error {
	g.record("clear")
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.clearErr != nil {
		return g.clearErr
	}
	g.snap.Grid = grid.State{}
	return nil
}

func (g *fakeGateway) Calls() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.calls...)
}

func (g *fakeGateway) LEDs() []ledCall {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]ledCall(nil), g.leds...)
}

type fakeStore struct {
	walls    []storage.Wall
	problems []storage.Problem
	err      error

	saveWallCalls      int
	deleteWallCalls    int
	saveProblemCalls   int
	deleteProblemCalls []string
	nextID             string
}

func (s *fakeStore) SaveWall(w storage.Wall) (string, error) {
	s.saveWallCalls++
	if s.err != nil {
		return "", s.err
	}
	w.ID = s.nextID
	s.walls = append(s.walls, w)
	return w.ID, nil
}

func (s *fakeStore) GetWalls() ([]storage.Wall, error) {
	if s.err != nil {
		return nil, s.err
	}
	return append([]storage.Wall(nil), s.walls...), nil
}

func (s *fakeStore) DeleteWall(id string) error {
	s.deleteWallCalls++
	if s.err != nil {
		return s.err
	}
	for i, w := range s.walls {
		if w.ID == id {
			s.walls = append(s.walls[:i], s.walls[i+1:]...)
			return nil
		}
	}
	return storage.ErrNotFound
}

func (s *fakeStore) SaveProblem(p storage.Problem) (string, error) {
	s.saveProblemCalls++
	if s.err != nil {
		return "", s.err
	}
	p.ID = s.nextID
	s.problems = append(s.problems, p)
	return p.ID, nil
}

func (s *fakeStore) GetProblems() ([]storage.Problem, error) {
	if s.err != nil {
		return nil, s.err
	}
	return append([]storage.Problem(nil), s.problems...), nil
}

func (s *fakeStore) DeleteProblem(id string) error {
	s.deleteProblemCalls = append(s.deleteProblemCalls, id)
	return s.err
}

type recorder struct {
	mu    sync.Mutex
	notes []Notification
}

func (r *recorder) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, n)
}

func (r *recorder) Last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notes) == 0 {
		return Notification{}, false
	}
	return r.notes[len(r.notes)-1], true
}

func (r *recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.notes)
}

type harness struct {
	m     *Manager
	gw    *fakeGateway
	store *fakeStore
	notes *recorder
}

var red = grid.RGB{255, 0, 0}

func newHarness(snap grid.Snapshot, width float64) *harness {
	h := &harness{
		gw:    &fakeGateway{snap: snap},
		store: &fakeStore{nextID: "wall-1"},
		notes: &recorder{},
	}
	h.m = NewManager(Options{
		Gateways: func(url string) Gateway {
			h.gw.mu.Lock()
			h.gw.bound = append(h.gw.bound, url)
			h.gw.mu.Unlock()
			return h.gw
		},
		Store:        h.store,
		Notifier:     h.notes,
		DefaultColor: red,
		WindowWidth:  width,
	})
	return h
}

// synced returns a harness whose manager already pulled snap.
func synced(snap grid.Snapshot, width float64) *harness {
	h := newHarness(snap, width)
	if err := h.m.Sync(context.Background()); err != nil {
		panic(err)
	}
	h.gw.calls = nil
	return h
}
