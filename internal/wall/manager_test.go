package wall

import (
	"context"
	"errors"
	"testing"

	"github.com/littlebull/lbcs/internal/config"
	"github.com/littlebull/lbcs/internal/grid"
	"github.com/littlebull/lbcs/internal/storage"
)

func TestNewManagerStartsOnDemo(t *testing.T) {
	h := newHarness(grid.Snapshot{}, 100)

	v := h.m.View()
	if v.Wall != Demo() {
		t.Errorf("Wall = %+v, want demo", v.Wall)
	}
	if got := h.m.Title(); got != "Working on: DEMO" {
		t.Errorf("Title() = %q", got)
	}
	if len(h.gw.bound) != 1 || h.gw.bound[0] != config.DefaultServerURL {
		t.Errorf("bound = %v, want [%s]", h.gw.bound, config.DefaultServerURL)
	}
}

func TestNewManagerServerOverride(t *testing.T) {
	gw := &fakeGateway{}
	m := NewManager(Options{
		Gateways:  func(url string) Gateway { gw.bound = append(gw.bound, url); return gw },
		Store:     &fakeStore{},
		ServerURL: "http://10.0.0.9:8888/",
	})
	if m.ServerURL() != "http://10.0.0.9:8888/" {
		t.Errorf("ServerURL() = %q", m.ServerURL())
	}
	if len(gw.bound) != 2 {
		t.Errorf("bound = %v, want default then override", gw.bound)
	}
}

func TestSaveWallValidation(t *testing.T) {
	tests := []struct {
		name    string
		wall    string
		message string
	}{
		{"demo wall", "DEMO", "Cannot save demo wall"},
		{"empty name", "", "Please set a wall name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(grid.Snapshot{}, 100)
			h.m.SetWallName(tt.wall)

			err := h.m.SaveWall()
			if !errors.Is(err, ErrValidation) {
				t.Errorf("SaveWall() error = %v, want ErrValidation", err)
			}
			if h.store.saveWallCalls != 0 {
				t.Errorf("store.SaveWall called %d times", h.store.saveWallCalls)
			}
			n, _ := h.notes.Last()
			if n.Level != LevelInfo || n.Message != tt.message {
				t.Errorf("notification = %+v, want info %q", n, tt.message)
			}
		})
	}
}

func TestSaveWall(t *testing.T) {
	h := newHarness(grid.Snapshot{}, 100)
	h.m.ResetWall()
	h.m.SetWallName("Garage")
	h.m.SetServerURL("http://10.0.0.2:8888/")

	if err := h.m.SaveWall(); err != nil {
		t.Fatalf("SaveWall() error = %v", err)
	}
	if got := h.m.View().Wall.ID; got != "wall-1" {
		t.Errorf("wall id = %q, want wall-1", got)
	}

	// the list is reloaded: demo first
	loaded := h.m.LoadWall("wall-1")
	if loaded.Name != "Garage" || loaded.ServerURL != "http://10.0.0.2:8888/" {
		t.Errorf("LoadWall() = %+v", loaded)
	}
}

func TestSaveWallStoreFailure(t *testing.T) {
	h := newHarness(grid.Snapshot{}, 100)
	h.m.SetWallName("Garage")
	h.store.err = errBoom

	if err := h.m.SaveWall(); !errors.Is(err, errBoom) {
		t.Errorf("SaveWall() error = %v, want wrapped errBoom", err)
	}
	n, _ := h.notes.Last()
	if n.Level != LevelDanger {
		t.Errorf("notification = %+v, want danger", n)
	}
}

func TestDeleteWallDemo(t *testing.T) {
	h := newHarness(grid.Snapshot{}, 100)

	err := h.m.DeleteWall(DemoID)
	if !errors.Is(err, ErrValidation) {
		t.Errorf("DeleteWall(DEMO) error = %v, want ErrValidation", err)
	}
	if h.store.deleteWallCalls != 0 {
		t.Errorf("store.DeleteWall called %d times", h.store.deleteWallCalls)
	}
	n, _ := h.notes.Last()
	if n != (Notification{LevelInfo, "Cannot delete demo wall"}) {
		t.Errorf("notification = %+v", n)
	}
}

func TestDeleteWall(t *testing.T) {
	h := newHarness(grid.Snapshot{}, 100)
	h.store.walls = []storage.Wall{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}}

	if err := h.m.DeleteWall("a"); err != nil {
		t.Fatalf("DeleteWall() error = %v", err)
	}
	walls, err := h.m.LoadWalls()
	if err != nil {
		t.Fatal(err)
	}
	if len(walls) != 2 || walls[0].ID != DemoID || walls[1].ID != "b" {
		t.Errorf("walls = %+v", walls)
	}

	if err := h.m.DeleteWall("a"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("second DeleteWall() error = %v, want ErrNotFound", err)
	}
}

func TestDeleteProblemUsesProblemStore(t *testing.T) {
	h := newHarness(grid.Snapshot{}, 100)
	h.store.walls = []storage.Wall{{ID: "p1"}}

	if err := h.m.DeleteProblem("p1"); err != nil {
		t.Fatalf("DeleteProblem() error = %v", err)
	}
	if len(h.store.deleteProblemCalls) != 1 || h.store.deleteProblemCalls[0] != "p1" {
		t.Errorf("deleteProblem calls = %v", h.store.deleteProblemCalls)
	}
	if h.store.deleteWallCalls != 0 {
		t.Error("DeleteProblem touched the wall store")
	}
}

func TestLoadWallUnknown(t *testing.T) {
	h := newHarness(grid.Snapshot{}, 100)
	h.m.SetServerURL("http://10.0.0.2:8888/")
	before := h.m.View().Versions.Background

	got := h.m.LoadWall("nope")

	want := storage.Wall{ServerURL: config.DefaultServerURL}
	if got != want || h.m.View().Wall != want {
		t.Errorf("LoadWall(unknown) = %+v, want %+v", got, want)
	}
	if after := h.m.View().Versions.Background; after <= before {
		t.Errorf("background version %d -> %d, want bump", before, after)
	}
	if h.m.ServerURL() != config.DefaultServerURL {
		t.Errorf("ServerURL() = %q", h.m.ServerURL())
	}
	if h.m.Title() != "No wall loaded" {
		t.Errorf("Title() = %q", h.m.Title())
	}
}

func TestLoadWallRebindsEvenWhenSameURL(t *testing.T) {
	h := newHarness(grid.Snapshot{}, 100)
	bound := len(h.gw.bound)

	h.m.LoadWall(DemoID)
	if len(h.gw.bound) != bound+1 {
		t.Errorf("LoadWall did not rebind: %v", h.gw.bound)
	}
}

func TestLoadWallsStoreFailure(t *testing.T) {
	h := newHarness(grid.Snapshot{}, 100)
	h.store.err = errBoom

	walls, err := h.m.LoadWalls()
	if err == nil {
		t.Error("LoadWalls() expected error")
	}
	if len(walls) != 1 || walls[0].ID != DemoID {
		t.Errorf("walls = %+v, want demo only", walls)
	}
}

func TestSetServerURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		rebound bool
	}{
		{"malformed", "not a url", false},
		{"missing host", "http://", false},
		{"unchanged", config.DefaultServerURL, false},
		{"new server", "http://192.168.1.40:8888/", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(grid.Snapshot{}, 100)
			bound := len(h.gw.bound)

			if got := h.m.SetServerURL(tt.url); got != tt.rebound {
				t.Errorf("SetServerURL(%q) = %v, want %v", tt.url, got, tt.rebound)
			}
			if h.m.View().Wall.ServerURL != tt.url {
				t.Errorf("wall server = %q, want input kept", h.m.View().Wall.ServerURL)
			}
			rebinds := len(h.gw.bound) - bound
			if (rebinds == 1) != tt.rebound {
				t.Errorf("rebinds = %d", rebinds)
			}
			if len(h.gw.Calls()) != 0 {
				t.Errorf("gateway called: %v", h.gw.Calls())
			}
		})
	}
}

func TestSync(t *testing.T) {
	h := newHarness(grid.Snapshot{Rows: 2, Columns: 3, Grid: grid.State{4: red}}, 120)
	before := h.m.View().Versions

	if err := h.m.Sync(context.Background()); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}

	v := h.m.View()
	if v.Mapper.Rows() != 2 || v.Mapper.Columns() != 3 || v.Mapper.Len() != 6 {
		t.Errorf("mapper = %dx%d (%d cells)", v.Mapper.Rows(), v.Mapper.Columns(), v.Mapper.Len())
	}
	if v.Grid.Get(4) != red {
		t.Errorf("grid[4] = %v", v.Grid.Get(4))
	}
	if v.Versions.Grid <= before.Grid || v.Versions.Dims <= before.Dims {
		t.Errorf("versions %+v -> %+v", before, v.Versions)
	}
}

func TestSyncFailure(t *testing.T) {
	h := synced(grid.Snapshot{Rows: 1, Columns: 1, Grid: grid.State{0: red}}, 100)
	h.gw.stateErr = errBoom

	if err := h.m.Sync(context.Background()); !errors.Is(err, errBoom) {
		t.Errorf("Sync() error = %v", err)
	}
	n, _ := h.notes.Last()
	if n != (Notification{LevelDanger, "Something went wrong while getting grid from server"}) {
		t.Errorf("notification = %+v", n)
	}
	if h.m.View().Grid.Get(0) != red {
		t.Error("failed sync changed the grid")
	}
}

func TestLoadProblem(t *testing.T) {
	h := synced(grid.Snapshot{Rows: 2, Columns: 2, Grid: grid.State{}}, 100)
	p := storage.Problem{ID: "p1", Name: "Crimp", Rows: 2, Columns: 2, Grid: grid.State{3: red}}

	if err := h.m.LoadProblem(context.Background(), p); err != nil {
		t.Fatalf("LoadProblem() error = %v", err)
	}

	calls := h.gw.Calls()
	if len(calls) != 2 || calls[0] != "reset" || calls[1] != "state" {
		t.Errorf("calls = %v, want [reset state]", calls)
	}
	if !h.gw.resets[0].Equal(p.Grid) {
		t.Errorf("reset with %v", h.gw.resets[0])
	}
	if h.m.View().Grid.Get(3) != red {
		t.Error("grid not synced after load")
	}
	if got := h.m.Title(); got != "Working on: DEMO/Crimp" {
		t.Errorf("Title() = %q", got)
	}
}

func TestLoadProblemFailure(t *testing.T) {
	h := synced(grid.Snapshot{Rows: 2, Columns: 2}, 100)
	h.gw.resetErr = errBoom

	err := h.m.LoadProblem(context.Background(), storage.Problem{Name: "Crimp"})
	if !errors.Is(err, errBoom) {
		t.Errorf("LoadProblem() error = %v", err)
	}
	found := false
	for _, n := range h.notes.notes {
		if n == (Notification{LevelDanger, "Something went wrong while loading problem"}) {
			found = true
		}
	}
	if !found {
		t.Errorf("notifications = %+v", h.notes.notes)
	}
	if h.m.View().Problem.Name != "" {
		t.Error("failed load set the problem")
	}
}

func TestClearWall(t *testing.T) {
	h := synced(grid.Snapshot{Rows: 1, Columns: 2, Grid: grid.State{0: red, 1: red}}, 100)

	if err := h.m.ClearWall(context.Background()); err != nil {
		t.Fatalf("ClearWall() error = %v", err)
	}
	if calls := h.gw.Calls(); len(calls) != 2 || calls[0] != "clear" || calls[1] != "state" {
		t.Errorf("calls = %v", calls)
	}
	if lit := h.m.View().Grid.Lit(); len(lit) != 0 {
		t.Errorf("lit after clear = %v", lit)
	}
}

func TestClearWallFailure(t *testing.T) {
	h := synced(grid.Snapshot{Rows: 1, Columns: 1}, 100)
	h.gw.clearErr = errBoom

	if err := h.m.ClearWall(context.Background()); !errors.Is(err, errBoom) {
		t.Errorf("ClearWall() error = %v", err)
	}
	if h.notes.notes[0] != (Notification{LevelDanger, "Something went wrong while clearing wall"}) {
		t.Errorf("notifications = %+v", h.notes.notes)
	}
}

func TestSaveProblem(t *testing.T) {
	h := synced(grid.Snapshot{Rows: 2, Columns: 2, Grid: grid.State{1: red}}, 100)

	if err := h.m.SaveProblem(); !errors.Is(err, ErrValidation) {
		t.Errorf("SaveProblem() without name error = %v", err)
	}
	if h.store.saveProblemCalls != 0 {
		t.Error("store called without a name")
	}
	n, _ := h.notes.Last()
	if n != (Notification{LevelInfo, "Please set a problem name"}) {
		t.Errorf("notification = %+v", n)
	}

	h.m.SetProblemName("Crimp")
	if err := h.m.SaveProblem(); err != nil {
		t.Fatalf("SaveProblem() error = %v", err)
	}
	saved := h.store.problems[0]
	if saved.Name != "Crimp" || saved.Rows != 2 || saved.Columns != 2 || saved.Grid.Get(1) != red {
		t.Errorf("saved = %+v", saved)
	}
	if h.m.View().Problem.ID != "" {
		t.Error("SaveProblem assigned an id to the current problem")
	}
}

func TestResetWallAndProblem(t *testing.T) {
	h := newHarness(grid.Snapshot{}, 100)
	h.m.SetProblemName("Crimp")
	h.m.ResetProblem()
	if h.m.View().Problem.Name != "" {
		t.Error("ResetProblem kept the name")
	}

	before := h.m.View().Versions.Background
	h.m.ResetWall()
	v := h.m.View()
	if v.Wall != (storage.Wall{ServerURL: config.DefaultServerURL}) {
		t.Errorf("wall = %+v", v.Wall)
	}
	if v.Versions.Background <= before {
		t.Error("ResetWall did not bump background")
	}
}

func TestSetImageBumpsBackground(t *testing.T) {
	h := newHarness(grid.Snapshot{}, 100)
	before := h.m.View().Versions

	h.m.SetImage("/tmp/wall.jpg")

	v := h.m.View()
	if v.Wall.ImageURI != "/tmp/wall.jpg" {
		t.Errorf("ImageURI = %q", v.Wall.ImageURI)
	}
	if v.Versions.Background != before.Background+1 || v.Versions.Grid != before.Grid {
		t.Errorf("versions %+v -> %+v", before, v.Versions)
	}
}

func TestSetWindowWidth(t *testing.T) {
	h := synced(grid.Snapshot{Rows: 2, Columns: 2}, 100)

	h.m.SetWindowWidth(200)
	if w := h.m.View().Mapper.Width(); w != 200 {
		t.Errorf("width = %v", w)
	}
	if index, ok := h.m.View().Mapper.Locate(120, 20); !ok || index != 1 {
		t.Errorf("Locate(120,20) = %d, %v", index, ok)
	}
}
