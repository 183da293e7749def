package wall

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/littlebull/lbcs/internal/config"
	"github.com/littlebull/lbcs/internal/grid"
	"github.com/littlebull/lbcs/internal/logging"
	"github.com/littlebull/lbcs/internal/storage"
)

// DemoID names the built-in wall. It can be loaded but never saved or
// deleted.
const DemoID = "DEMO"

// DemoImage is the image URI of the built-in wall's background.
const DemoImage = "builtin:demo"

// Demo returns the built-in wall.
func Demo() storage.Wall {
	return storage.Wall{
		ID:        DemoID,
		Name:      DemoID,
		ServerURL: config.DefaultServerURL,
		ImageURI:  DemoImage,
	}
}

// Gateway talks to the wall-control server.
type Gateway interface {
	State(ctx context.Context) (*grid.Snapshot, error)
	SetLED(ctx context.Context, index int, c grid.RGB) error
	ResetState(ctx context.Context, state grid.State) error
	Clear(ctx context.Context) error
}

// GatewayFactory binds a gateway to a server URL.
type GatewayFactory func(serverURL string) Gateway

// Store persists walls and problems.
type Store interface {
	SaveWall(w storage.Wall) (string, error)
	GetWalls() ([]storage.Wall, error)
	DeleteWall(id string) error
	SaveProblem(p storage.Problem) (string, error)
	GetProblems() ([]storage.Problem, error)
	DeleteProblem(id string) error
}

// Options configures a Manager.
type Options struct {
	Gateways     GatewayFactory
	Store        Store
	Notifier     Notifier
	DefaultColor grid.RGB
	WindowWidth  float64
	// ServerURL overrides the demo wall's server when set.
	ServerURL string
}

// Versions count changes per render layer. A renderer redraws a layer
// only when its counter moved.
type Versions struct {
	Grid       uint64
	Dims       uint64
	Background uint64
}

// View is a copy of the manager state for rendering.
type View struct {
	Wall         storage.Wall
	Problem      storage.Problem
	Grid         grid.State
	Mapper       grid.Mapper
	DefaultColor grid.RGB
	Versions     Versions
}

// Manager owns the wall being edited: its server binding, background,
// LED grid and the current problem. All methods are safe for concurrent
// use; store and gateway calls run without the lock held.
type Manager struct {
	mu sync.Mutex

	newGateway GatewayFactory
	gateway    Gateway
	boundURL   string
	store      Store
	notifier   Notifier

	wall    storage.Wall
	problem storage.Problem
	walls   []storage.Wall

	grid         grid.State
	confirmed    grid.State
	rows         int
	columns      int
	width        float64
	mapper       grid.Mapper
	defaultColor grid.RGB
	versions     Versions

	// pending holds the sequence number of the newest uncommitted tap per
	// LED; ledLocks serializes commits per LED.
	seq      uint64
	pending  map[int]uint64
	ledLocks map[int]*sync.Mutex
}

// NewManager starts on the demo wall with an empty grid. Call Sync to
// fetch the grid from the server.
func NewManager(opts Options) *Manager {
	notifier := opts.Notifier
	if notifier == nil {
		notifier = NotifierFunc(func(Notification) {})
	}
	width := opts.WindowWidth
	if width <= 0 {
		width = config.DefaultWindowWidth
	}

	m := &Manager{
		newGateway:   opts.Gateways,
		store:        opts.Store,
		notifier:     notifier,
		wall:         Demo(),
		walls:        []storage.Wall{Demo()},
		grid:         grid.State{},
		confirmed:    grid.State{},
		width:        width,
		defaultColor: opts.DefaultColor,
		pending:      make(map[int]uint64),
		ledLocks:     make(map[int]*sync.Mutex),
	}
	m.mapper = grid.NewMapper(0, 0, width)
	m.bindLocked(m.wall.ServerURL)
	if opts.ServerURL != "" {
		m.SetServerURL(opts.ServerURL)
	}
	return m
}

func (m *Manager) bindLocked(serverURL string) {
	m.gateway = m.newGateway(serverURL)
	m.boundURL = serverURL
	logging.Info("Gateway bound", zap.String("server", serverURL))
}

func (m *Manager) notify(level Level, msg string) {
	logging.Debug("Notification", zap.String("level", level.String()), zap.String("message", msg))
	m.notifier.Notify(Notification{Level: level, Message: msg})
}

func (m *Manager) currentGateway() Gateway {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gateway
}

// View returns a snapshot of the current state.
func (m *Manager) View() View {
	m.mu.Lock()
	defer m.mu.Unlock()

	p := m.problem
	p.Grid = p.Grid.Clone()
	return View{
		Wall:         m.wall,
		Problem:      p,
		Grid:         m.grid.Clone(),
		Mapper:       m.mapper,
		DefaultColor: m.defaultColor,
		Versions:     m.versions,
	}
}

// Title is the header subtitle.
func (m *Manager) Title() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.wall.Name == "" {
		return "No wall loaded"
	}
	parts := []string{m.wall.Name}
	if m.problem.Name != "" {
		parts = append(parts, m.problem.Name)
	}
	return "Working on: " + strings.Join(parts, "/")
}

// ServerURL returns the URL the gateway is bound to.
func (m *Manager) ServerURL() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.boundURL
}

// SetServerURL records url as the wall's address. A well-formed URL that
// differs from the bound one rebinds the gateway and returns true; the
// grid is left alone until the next Sync. Malformed URLs are ignored.
func (m *Manager) SetServerURL(url string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.wall.ServerURL = url
	if !config.ValidServerURL(url) || url == m.boundURL {
		return false
	}
	m.bindLocked(url)
	return true
}

// SetWallName renames the current wall.
func (m *Manager) SetWallName(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wall.Name = name
}

// SetProblemName renames the current problem.
func (m *Manager) SetProblemName(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.problem.Name = name
}

// SetImage changes the wall's background.
func (m *Manager) SetImage(uri string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wall.ImageURI = uri
	m.versions.Background++
}

// SetWindowWidth resizes the canvas and rebuilds the coordinate map.
func (m *Manager) SetWindowWidth(width float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if width <= 0 || width == m.width {
		return
	}
	m.width = width
	m.versions.Background++
	m.rebuildLocked()
}

// SetDefaultColor sets the colour used to light an LED on tap.
func (m *Manager) SetDefaultColor(c grid.RGB) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultColor = c
}

func (m *Manager) rebuildLocked() {
	m.mapper = grid.NewMapper(m.rows, m.columns, m.width)
	m.versions.Dims++
}

// ResetWall starts a blank wall on the default server.
func (m *Manager) ResetWall() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.wall = storage.Wall{ServerURL: config.DefaultServerURL}
	m.versions.Background++
	m.bindLocked(config.DefaultServerURL)
}

// ResetProblem starts a blank problem.
func (m *Manager) ResetProblem() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.problem = storage.Problem{}
}

// LoadWall makes the wall with id current. Unknown ids give a blank wall
// on the default server. The gateway is always rebound.
func (m *Manager) LoadWall(id string) storage.Wall {
	m.mu.Lock()
	defer m.mu.Unlock()

	loaded := storage.Wall{ServerURL: config.DefaultServerURL}
	for _, w := range m.walls {
		if w.ID == id {
			loaded = w
			break
		}
	}
	if id == DemoID {
		loaded = Demo()
	}

	m.wall = loaded
	m.versions.Background++
	m.bindLocked(loaded.ServerURL)
	return loaded
}

// LoadWalls refreshes the list of loadable walls: the demo wall followed
// by the stored ones. On a store failure only the demo wall is listed.
func (m *Manager) LoadWalls() ([]storage.Wall, error) {
	walls := []storage.Wall{Demo()}
	stored, err := m.store.GetWalls()
	if err != nil {
		logging.Error("Failed to load walls", zap.Error(err))
		m.notify(LevelDanger, msgLoadWallsFailed)
	} else {
		walls = append(walls, stored...)
	}

	m.mu.Lock()
	m.walls = walls
	m.mu.Unlock()

	out := make([]storage.Wall, len(walls))
	copy(out, walls)
	return out, err
}

// Problems lists the stored problems.
func (m *Manager) Problems() ([]storage.Problem, error) {
	problems, err := m.store.GetProblems()
	if err != nil {
		logging.Error("Failed to load problems", zap.Error(err))
		m.notify(LevelDanger, msgLoadProblemsFailed)
		return nil, err
	}
	return problems, nil
}

// SaveWall persists the current wall and adopts the id the store assigns.
func (m *Manager) SaveWall() error {
	m.mu.Lock()
	w := m.wall
	m.mu.Unlock()

	switch {
	case w.Name == DemoID:
		m.notify(LevelInfo, msgCannotSaveDemo)
		return validationError(msgCannotSaveDemo)
	case w.Name == "":
		m.notify(LevelInfo, msgWallNameRequired)
		return validationError(msgWallNameRequired)
	}

	id, err := m.store.SaveWall(w)
	if err != nil {
		logging.Error("Failed to save wall", zap.String("name", w.Name), zap.Error(err))
		m.notify(LevelDanger, msgSaveWallFailed)
		return fmt.Errorf("save wall: %w", err)
	}

	m.mu.Lock()
	m.wall.ID = id
	m.mu.Unlock()

	m.notify(LevelSuccess, fmt.Sprintf("Saved wall %s", w.Name))
	_, _ = m.LoadWalls()
	return nil
}

// SaveProblem persists the current grid as a new problem. The in-memory
// problem keeps its id, so saving twice stores two problems.
func (m *Manager) SaveProblem() error {
	m.mu.Lock()
	p := storage.Problem{
		Name:    m.problem.Name,
		Grid:    m.grid.Clone(),
		Rows:    m.rows,
		Columns: m.columns,
	}
	m.mu.Unlock()

	if p.Name == "" {
		m.notify(LevelInfo, msgProblemNameRequired)
		return validationError(msgProblemNameRequired)
	}

	if _, err := m.store.SaveProblem(p); err != nil {
		logging.Error("Failed to save problem", zap.String("name", p.Name), zap.Error(err))
		m.notify(LevelDanger, msgSaveProblemFailed)
		return fmt.Errorf("save problem: %w", err)
	}
	m.notify(LevelSuccess, fmt.Sprintf("Saved problem %s", p.Name))
	return nil
}

// DeleteWall removes a stored wall and reloads the list. The demo wall
// cannot be deleted.
func (m *Manager) DeleteWall(id string) error {
	if id == DemoID {
		m.notify(LevelInfo, msgCannotDeleteDemo)
		return validationError(msgCannotDeleteDemo)
	}

	err := m.store.DeleteWall(id)
	if err != nil {
		logging.Error("Failed to delete wall", zap.String("id", id), zap.Error(err))
		m.notify(LevelDanger, msgDeleteWallFailed)
		err = fmt.Errorf("delete wall: %w", err)
	}
	_, _ = m.LoadWalls()
	return err
}

// DeleteProblem removes a stored problem.
func (m *Manager) DeleteProblem(id string) error {
	if err := m.store.DeleteProblem(id); err != nil {
		logging.Error("Failed to delete problem", zap.String("id", id), zap.Error(err))
		m.notify(LevelDanger, msgDeleteProblemFailed)
		return fmt.Errorf("delete problem: %w", err)
	}
	return nil
}

// Sync replaces the grid and its dimensions with the server's state.
func (m *Manager) Sync(ctx context.Context) error {
	snap, err := m.currentGateway().State(ctx)
	if err != nil {
		logging.Warn("Sync failed", zap.Error(err))
		m.notify(LevelDanger, msgSyncFailed)
		return fmt.Errorf("sync: %w", err)
	}

	m.mu.Lock()
	m.applyLocked(*snap)
	m.mu.Unlock()
	return nil
}

// ApplyRemote accepts a state pushed by the server.
func (m *Manager) ApplyRemote(snap grid.Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.applyLocked(snap)
}

// applyLocked adopts a server state. LEDs with an uncommitted tap keep
// their local colour.
func (m *Manager) applyLocked(snap grid.Snapshot) {
	next := snap.Grid.Clone()
	for index := range m.pending {
		next[index] = m.grid.Get(index)
	}
	m.confirmed = snap.Grid.Clone()
	m.grid = next
	m.rows, m.columns = snap.Rows, snap.Columns
	m.versions.Grid++
	m.rebuildLocked()
}

// LoadProblem pushes a problem's grid to the server, then syncs. The
// problem only becomes current when the server accepted it.
func (m *Manager) LoadProblem(ctx context.Context, p storage.Problem) error {
	if err := m.currentGateway().ResetState(ctx, p.Grid); err != nil {
		logging.Warn("Load problem failed", zap.String("problem", p.Name), zap.Error(err))
		m.notify(LevelDanger, msgLoadProblemFailed)
		_ = m.Sync(ctx)
		return fmt.Errorf("load problem: %w", err)
	}

	m.mu.Lock()
	m.problem = p
	m.problem.Grid = p.Grid.Clone()
	m.versions.Grid++
	m.mu.Unlock()

	return m.Sync(ctx)
}

// ClearWall turns every LED off, then syncs.
func (m *Manager) ClearWall(ctx context.Context) error {
	if err := m.currentGateway().Clear(ctx); err != nil {
		logging.Warn("Clear failed", zap.Error(err))
		m.notify(LevelDanger, msgClearFailed)
		_ = m.Sync(ctx)
		return fmt.Errorf("clear: %w", err)
	}
	return m.Sync(ctx)
}

// RandomRoute is reserved for generating a route and does nothing yet.
func (m *Manager) RandomRoute() {
	logging.Info("Random route requested")
}
