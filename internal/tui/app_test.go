package tui

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/littlebull/lbcs/internal/grid"
	"github.com/littlebull/lbcs/internal/storage"
	"github.com/littlebull/lbcs/internal/wall"
)

var red = grid.RGB{255, 0, 0}

type fakeGateway struct {
	mu    sync.Mutex
	bound []string
	snap  grid.Snapshot
	leds  map[int]grid.RGB
}

func newFakeGateway(rows, columns int) *fakeGateway {
	return &fakeGateway{
		snap: grid.Snapshot{Rows: rows, Columns: columns, Grid: grid.State{}},
		leds: map[int]grid.RGB{},
	}
}

func (g *fakeGateway) factory(url string) wall.Gateway {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.bound = append(g.bound, url)
	return g
}

func (g *fakeGateway) State(ctx context.Context) (*grid.Snapshot, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	snap := grid.Snapshot{Rows: g.snap.Rows, Columns: g.snap.Columns, Grid: g.snap.Grid.Clone()}
	return &snap, nil
}

func (g *fakeGateway) SetLED(ctx context.Context, index int, c grid.RGB) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.leds[index] = c
	g.snap.Grid[index] = c
	return nil
}

func (g *fakeGateway) ResetState(ctx context.Context, state grid.State) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.snap.Grid = state.Clone()
	return nil
}

func (g *fakeGateway) Clear(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.snap.Grid = grid.State{}
	return nil
}

func (g *fakeGateway) lastBound() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.bound[len(g.bound)-1]
}

func (g *fakeGateway) led(index int) (grid.RGB, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	c, ok := g.leds[index]
	return c, ok
}

type testModel struct {
	Model
	gw    *fakeGateway
	mgr   *wall.Manager
	store *storage.Store
}

// newTestModel returns a synced editor on a 2x2 wall in an 80x40
// terminal.
func newTestModel(t *testing.T, opts Options) testModel {
	t.Helper()

	gw := newFakeGateway(2, 2)
	store := storage.Open(filepath.Join(t.TempDir(), "library.yaml"))
	manager := wall.NewManager(wall.Options{
		Gateways:     gw.factory,
		Store:        store,
		DefaultColor: red,
	})
	if err := manager.Sync(context.Background()); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	opts.Manager = manager
	m := New(opts)
	m.busy = 0
	tm := testModel{Model: m, gw: gw, mgr: manager, store: store}
	tm.send(t, tea.WindowSizeMsg{Width: 80, Height: 40})
	return tm
}

// send runs msg through Update and returns the command it produced.
func (tm *testModel) send(t *testing.T, msg tea.Msg) tea.Cmd {
	t.Helper()
	next, cmd := tm.Model.Update(msg)
	model, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	tm.Model = model
	return cmd
}

// run executes cmd, expanding batches, and feeds every message back
// through Update until no commands remain.
func (tm *testModel) run(t *testing.T, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	var seen []tea.Msg
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		msg := next()
		if batch, ok := msg.(tea.BatchMsg); ok {
			queue = append(queue, batch...)
			continue
		}
		if msg == nil {
			continue
		}
		seen = append(seen, msg)
		queue = append(queue, tm.send(t, msg))
	}
	return seen
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func click(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
}

func TestClickTogglesLED(t *testing.T) {
	tm := newTestModel(t, Options{})
	l := newLayout(tm.mgr.View().Mapper, 80, 40)

	// middle of the top-right block
	cmd := tm.send(t, click(gridLeft+l.cellChars+l.cellChars/2, gridTop+1))

	if got := tm.mgr.View().Grid.Get(1); got != red {
		t.Fatalf("led 1 = %v before commit, want optimistic %v", got, red)
	}
	if tm.cursor != 1 {
		t.Errorf("cursor = %d, want 1", tm.cursor)
	}

	tm.run(t, cmd)
	if c, ok := tm.gw.led(1); !ok || c != red {
		t.Errorf("server led 1 = %v (sent %v), want %v", c, ok, red)
	}
	if tm.busy != 0 {
		t.Errorf("busy = %d after commit, want 0", tm.busy)
	}
}

func TestClickOutsideGridIgnored(t *testing.T) {
	tm := newTestModel(t, Options{})

	cmd := tm.send(t, click(0, 0))
	if cmd != nil {
		t.Error("click outside the grid should not produce a command")
	}
	if lit := tm.mgr.View().Grid.Lit(); len(lit) != 0 {
		t.Errorf("lit = %v, want none", lit)
	}
}

func TestMouseIgnoredOutsideGridMode(t *testing.T) {
	tm := newTestModel(t, Options{})
	tm.send(t, keyPress("m"))
	if tm.Mode() != ModeMenu {
		t.Fatalf("mode = %v, want menu", tm.Mode())
	}

	tm.send(t, click(gridLeft, gridTop))
	if lit := tm.mgr.View().Grid.Lit(); len(lit) != 0 {
		t.Errorf("click behind the menu lit %v", lit)
	}
}

func TestCursorToggle(t *testing.T) {
	tm := newTestModel(t, Options{})

	tm.send(t, keyPress("down"))
	tm.send(t, keyPress("right"))
	// stays inside the 2x2 grid
	tm.send(t, keyPress("right"))
	tm.send(t, keyPress("down"))
	if tm.cursor != 3 {
		t.Fatalf("cursor = %d, want 3", tm.cursor)
	}

	tm.run(t, tm.send(t, keyPress(" ")))
	if c, _ := tm.gw.led(3); c != red {
		t.Errorf("server led 3 = %v, want %v", c, red)
	}

	tm.run(t, tm.send(t, keyPress(" ")))
	if c, _ := tm.gw.led(3); c != grid.Off {
		t.Errorf("server led 3 = %v after second toggle, want off", c)
	}
}

func TestMenuNewProblem(t *testing.T) {
	tm := newTestModel(t, Options{})
	tm.mgr.SetProblemName("Crimpy")

	tm.send(t, keyPress("m"))
	for i := 0; i < 4; i++ {
		tm.send(t, keyPress("down"))
	}
	if entry := tm.menuEntries()[tm.menuIndex]; entry != menuNewProblem {
		t.Fatalf("selected %q, want %q", entry, menuNewProblem)
	}
	tm.run(t, tm.send(t, keyPress("enter")))

	if tm.Mode() != ModeGrid {
		t.Errorf("mode = %v, want grid", tm.Mode())
	}
	if title := tm.mgr.Title(); title != "Working on: DEMO" {
		t.Errorf("Title() = %q", title)
	}
}

func TestMenuEscCloses(t *testing.T) {
	tm := newTestModel(t, Options{})
	tm.send(t, keyPress("m"))
	tm.send(t, keyPress("esc"))
	if tm.Mode() != ModeGrid {
		t.Errorf("mode = %v, want grid", tm.Mode())
	}
}

func TestMenuFindWallsNeedsScanner(t *testing.T) {
	tm := newTestModel(t, Options{})
	for _, entry := range tm.menuEntries() {
		if entry == menuFindWalls {
			t.Error("Find walls listed without a scanner")
		}
	}
}

func TestPropsRenameLive(t *testing.T) {
	tm := newTestModel(t, Options{})

	tm.send(t, keyPress("p"))
	if tm.Mode() != ModeProps {
		t.Fatalf("mode = %v, want props", tm.Mode())
	}
	tm.send(t, keyPress("X"))
	if got := tm.mgr.View().Wall.Name; got != "DEMOX" {
		t.Errorf("wall name = %q, want DEMOX", got)
	}

	tm.send(t, keyPress("tab"))
	tm.send(t, keyPress("P"))
	if got := tm.mgr.View().Problem.Name; got != "P" {
		t.Errorf("problem name = %q, want P", got)
	}

	cmd := tm.send(t, keyPress("enter"))
	if tm.Mode() != ModeGrid {
		t.Errorf("mode = %v, want grid", tm.Mode())
	}
	if cmd != nil {
		t.Error("closing without a server change should not sync")
	}
}

func TestPropsServerURLAppliesOnClose(t *testing.T) {
	tm := newTestModel(t, Options{})
	before := tm.gw.lastBound()

	tm.send(t, keyPress("p"))
	tm.send(t, keyPress("tab"))
	tm.send(t, keyPress("tab"))
	tm.props[propServerURL].SetValue("http://wall.local:9000/")
	if tm.gw.lastBound() != before {
		t.Fatal("server URL applied before the dialog closed")
	}

	cmd := tm.send(t, keyPress("enter"))
	if got := tm.gw.lastBound(); got != "http://wall.local:9000/" {
		t.Errorf("bound = %q, want the new URL", got)
	}
	msgs := tm.run(t, cmd)
	if len(msgs) == 0 {
		t.Fatal("rebind should sync")
	}
	if _, ok := msgs[0].(syncedMsg); !ok {
		t.Errorf("first message = %T, want syncedMsg", msgs[0])
	}
}

func TestLoadWallFromPicker(t *testing.T) {
	tm := newTestModel(t, Options{})
	id, err := tm.store.SaveWall(storage.Wall{Name: "Board", ServerURL: "http://board.local:8888/"})
	if err != nil {
		t.Fatalf("SaveWall: %v", err)
	}

	tm.send(t, keyPress("m"))
	tm.send(t, keyPress("down"))
	tm.run(t, tm.send(t, keyPress("enter")))
	if tm.Mode() != ModeLoadWall {
		t.Fatalf("mode = %v, want wall picker", tm.Mode())
	}
	if n := len(tm.picker.Items()); n != 2 {
		t.Fatalf("picker lists %d walls, want demo + 1", n)
	}

	tm.send(t, keyPress("down"))
	tm.run(t, tm.send(t, keyPress("enter")))

	view := tm.mgr.View()
	if view.Wall.ID != id || view.Wall.Name != "Board" {
		t.Errorf("current wall = %+v", view.Wall)
	}
	if got := tm.gw.lastBound(); got != "http://board.local:8888/" {
		t.Errorf("bound = %q", got)
	}
}

func TestFeedAppliesSnapshots(t *testing.T) {
	feed := make(chan grid.Snapshot, 1)
	var watched []string
	watch := func(ctx context.Context, url string) (<-chan grid.Snapshot, error) {
		watched = append(watched, url)
		return feed, nil
	}
	tm := newTestModel(t, Options{Watch: watch})

	feed <- grid.Snapshot{Rows: 2, Columns: 2, Grid: grid.State{2: red}}
	close(feed)
	tm.run(t, tm.send(t, syncedMsg{}))

	if len(watched) != 1 {
		t.Fatalf("watched %v, want one subscription", watched)
	}
	if got := tm.mgr.View().Grid.Get(2); got != red {
		t.Errorf("led 2 = %v, want pushed %v", got, red)
	}
	if tm.watchedURL != "" {
		t.Errorf("watchedURL = %q after the feed closed, want empty", tm.watchedURL)
	}
}

func TestStaleSnapshotDropped(t *testing.T) {
	tm := newTestModel(t, Options{})
	tm.gen = 2

	tm.send(t, snapshotMsg{gen: 1, snap: grid.Snapshot{Rows: 2, Columns: 2, Grid: grid.State{0: red}}, ok: true})
	if got := tm.mgr.View().Grid.Get(0); got != grid.Off {
		t.Errorf("led 0 = %v, snapshot from an old feed applied", got)
	}
}

func TestNotificationShown(t *testing.T) {
	n := NewNotifier(4)
	tm := newTestModel(t, Options{Notifications: n.C()})

	n.Notify(wall.Notification{Level: wall.LevelDanger, Message: "Something went wrong while toggling 3"})
	cmd := tm.send(t, listenNotifications(n.C())())

	if got := tm.Toast().Message; got != "Something went wrong while toggling 3" {
		t.Errorf("toast = %q", got)
	}
	if cmd == nil {
		t.Error("model should keep listening for notifications")
	}
	if view := tm.View(); !strings.Contains(view, "toggling 3") {
		t.Error("toast missing from the rendered screen")
	}
}

func TestExportName(t *testing.T) {
	at := time.Date(2024, 3, 1, 18, 30, 5, 0, time.UTC)
	tests := []struct {
		wall    string
		problem string
		want    string
	}{
		{"", "", "wall-20240301-183005.png"},
		{"Home Board", "", "Home-Board-20240301-183005.png"},
		{"Home Board", "Crimp/Line", "Home-Board_Crimp-Line-20240301-183005.png"},
	}
	for _, tt := range tests {
		v := wall.View{Wall: storage.Wall{Name: tt.wall}, Problem: storage.Problem{Name: tt.problem}}
		if got := exportName(v, at); got != tt.want {
			t.Errorf("exportName(%q, %q) = %q, want %q", tt.wall, tt.problem, got, tt.want)
		}
	}
}

func TestViewBeforeSize(t *testing.T) {
	m := New(Options{Manager: wall.NewManager(wall.Options{Gateways: newFakeGateway(0, 0).factory})})
	if got := m.View(); got != "Loading..." {
		t.Errorf("View() = %q", got)
	}
}
