package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"go.uber.org/zap"

	"github.com/littlebull/lbcs/internal/discovery"
	"github.com/littlebull/lbcs/internal/grid"
	"github.com/littlebull/lbcs/internal/logging"
	"github.com/littlebull/lbcs/internal/render"
	"github.com/littlebull/lbcs/internal/storage"
	"github.com/littlebull/lbcs/internal/wall"
)

// Mode is the screen or dialog receiving input.
type Mode int

const (
	ModeGrid Mode = iota
	ModeMenu
	ModeProps
	ModeLoadWall
	ModeLoadProblem
	ModeImage
	ModeServers
)

// ledBlend is how much of a lit LED's colour shows over the photo.
const ledBlend = 0.65

// requestTimeout bounds each command that talks to the server.
const requestTimeout = 15 * time.Second

// Watcher subscribes to a server's live state feed.
type Watcher func(ctx context.Context, serverURL string) (<-chan grid.Snapshot, error)

// ScanFunc looks for wall servers on the local network.
type ScanFunc func(ctx context.Context) ([]*discovery.Server, error)

// Options configures the interactive client.
type Options struct {
	Manager    *wall.Manager
	Compositor *render.Compositor
	// Notifications is the queue the manager's notifier writes to
	Notifications <-chan wall.Notification
	// Watch follows the server feed when set
	Watch Watcher
	// Scan enables the "Find walls" menu entry when set
	Scan ScanFunc
	// ExportDir receives PNG snapshots
	ExportDir string
}

// Message types for async operations
type syncedMsg struct{ err error }

type committedMsg struct{ err error }

type clearedMsg struct{ err error }

type problemLoadedMsg struct{ err error }

type savedMsg struct{ err error }

type wallsLoadedMsg struct {
	walls []storage.Wall
	err   error
}

type problemsLoadedMsg struct {
	problems []storage.Problem
	err      error
}

type serversFoundMsg struct {
	servers []*discovery.Server
	err     error
}

type deletedMsg struct {
	mode Mode
	err  error
}

type renderedMsg struct {
	colors []colorful.Color
	dims   uint64
	err    error
}

type exportedMsg struct {
	path string
	err  error
}

type copiedMsg struct{ err error }

type feedMsg struct {
	gen  int
	feed <-chan grid.Snapshot
	err  error
}

type snapshotMsg struct {
	gen  int
	feed <-chan grid.Snapshot
	snap grid.Snapshot
	ok   bool
}

// Model is the interactive wall editor.
type Model struct {
	manager    *wall.Manager
	compositor *render.Compositor
	notes      <-chan wall.Notification
	watch      Watcher
	scan       ScanFunc
	exportDir  string

	Width  int
	Height int

	mode   Mode
	cursor int
	toast  wall.Notification

	// cell colours of the last composed frame and the layout they match
	colors     []colorful.Color
	colorsDims uint64

	// busy counts in-flight server calls; the spinner runs while > 0
	busy    int
	spinner spinner.Model

	help       help.Model
	keys       gridKeyMap
	dialogKeys dialogKeyMap

	menuIndex  int
	props      []textinput.Model
	propsFocus int
	imageInput textinput.Model
	picker     list.Model

	// gen identifies the current feed; snapshots from older feeds are dropped
	gen        int
	stopWatch  context.CancelFunc
	watchedURL string
}

// New builds the editor model.
func New(opts Options) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	exportDir := opts.ExportDir
	if exportDir == "" {
		exportDir = "."
	}

	m := Model{
		manager:    opts.Manager,
		compositor: opts.Compositor,
		notes:      opts.Notifications,
		watch:      opts.Watch,
		scan:       opts.Scan,
		exportDir:  exportDir,
		spinner:    s,
		help:       help.New(),
		keys:       newGridKeyMap(),
		dialogKeys: newDialogKeyMap(),
		props:      newPropsInputs(),
		imageInput: newImageInput(),
		picker:     newPicker(),
		// the initial sync started by Init
		busy: 1,
	}
	return m
}

// Init syncs with the server and starts listening for notifications.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.syncCmd(),
		listenNotifications(m.notes),
		m.spinner.Tick,
	)
}

// Mode reports which screen has focus.
func (m Model) Mode() Mode {
	return m.mode
}

// Toast returns the notification currently shown.
func (m Model) Toast() wall.Notification {
	return m.toast
}

// Update handles all messages and routes keys to the focused screen
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.help.Width = msg.Width
		m.picker.SetSize(max(msg.Width/2, MinTerminalWidth-4), max(msg.Height/2, 8))
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m.quit()
		}
		return m.handleKey(msg)

	case tea.MouseMsg:
		if m.mode != ModeGrid {
			return m, nil
		}
		if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		return m.tapAt(msg.X, msg.Y)

	case notificationMsg:
		m.toast = wall.Notification(msg)
		return m, listenNotifications(m.notes)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case syncedMsg:
		m.done()
		watch := m.startWatch()
		return m, tea.Batch(m.renderCmd(), watch)

	case committedMsg, clearedMsg, problemLoadedMsg:
		m.done()
		return m, m.renderCmd()

	case savedMsg:
		m.done()
		return m, nil

	case renderedMsg:
		if msg.err != nil {
			logging.Debug("Frame rendered with errors", zap.Error(msg.err))
		}
		if msg.colors != nil {
			m.colors = msg.colors
			m.colorsDims = msg.dims
		}
		return m, nil

	case wallsLoadedMsg:
		m.done()
		m.picker.Title = "Walls"
		m.picker.SetItems(wallItems(msg.walls))
		m.picker.ResetSelected()
		m.mode = ModeLoadWall
		return m, nil

	case problemsLoadedMsg:
		m.done()
		if msg.err != nil {
			m.mode = ModeGrid
			return m, nil
		}
		m.picker.Title = "Problems"
		m.picker.SetItems(problemItems(msg.problems))
		m.picker.ResetSelected()
		m.mode = ModeLoadProblem
		return m, nil

	case serversFoundMsg:
		m.done()
		if msg.err != nil {
			m.toast = wall.Notification{Level: wall.LevelDanger, Message: "Wall discovery failed"}
			m.mode = ModeGrid
			return m, nil
		}
		if len(msg.servers) == 0 {
			m.toast = wall.Notification{Level: wall.LevelInfo, Message: "No walls found on the network"}
			m.mode = ModeGrid
			return m, nil
		}
		m.picker.Title = "Walls on the network"
		m.picker.SetItems(serverItems(msg.servers))
		m.picker.ResetSelected()
		m.mode = ModeServers
		return m, nil

	case deletedMsg:
		// the busy slot carries over to the list reload
		if msg.mode == ModeLoadProblem {
			return m, m.problemsCmd()
		}
		return m, m.wallsCmd()

	case exportedMsg:
		if msg.err != nil {
			m.toast = wall.Notification{Level: wall.LevelDanger, Message: "Export failed: " + msg.err.Error()}
		} else {
			m.toast = wall.Notification{Level: wall.LevelSuccess, Message: "Saved " + msg.path}
		}
		return m, nil

	case copiedMsg:
		if msg.err != nil {
			m.toast = wall.Notification{Level: wall.LevelDanger, Message: "Clipboard unavailable"}
		} else {
			m.toast = wall.Notification{Level: wall.LevelSuccess, Message: "Grid copied to clipboard"}
		}
		return m, nil

	case feedMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		if msg.err != nil {
			logging.Warn("Live updates unavailable", zap.Error(msg.err))
			return m, nil
		}
		return m, waitSnapshot(msg.gen, msg.feed)

	case snapshotMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		if !msg.ok {
			logging.Info("Live updates stopped", zap.String("server", m.watchedURL))
			m.watchedURL = ""
			return m, nil
		}
		m.manager.ApplyRemote(msg.snap)
		return m, tea.Batch(m.renderCmd(), waitSnapshot(msg.gen, msg.feed))
	}

	return m, nil
}

// done ends one in-flight call.
func (m *Model) done() {
	if m.busy > 0 {
		m.busy--
	}
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	if m.stopWatch != nil {
		m.stopWatch()
		m.stopWatch = nil
	}
	return m, tea.Quit
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case ModeMenu:
		return m.updateMenu(msg)
	case ModeProps:
		return m.updateProps(msg)
	case ModeImage:
		return m.updateImage(msg)
	case ModeLoadWall, ModeLoadProblem, ModeServers:
		return m.updatePicker(msg)
	}
	return m.updateGrid(msg)
}

func (m Model) updateGrid(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	view := m.manager.View()
	rows, cols := view.Mapper.Rows(), view.Mapper.Columns()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keys.Up):
		if m.cursor-cols >= 0 {
			m.cursor -= cols
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor+cols < rows*cols {
			m.cursor += cols
		}
	case key.Matches(msg, m.keys.Left):
		if cols > 0 && m.cursor%cols > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Right):
		if cols > 0 && m.cursor%cols < cols-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.Toggle):
		change, ok := m.manager.TapIndex(m.cursor)
		if !ok {
			return m, nil
		}
		m.busy++
		return m, tea.Batch(m.renderCmd(), m.commitCmd(change))

	case key.Matches(msg, m.keys.Sync):
		m.busy++
		return m, m.syncCmd()

	case key.Matches(msg, m.keys.Clear):
		m.busy++
		return m, m.clearCmd()

	case key.Matches(msg, m.keys.Random):
		m.manager.RandomRoute()

	case key.Matches(msg, m.keys.Menu):
		m.mode = ModeMenu
		m.menuIndex = 0

	case key.Matches(msg, m.keys.Props):
		return m.openProps()

	case key.Matches(msg, m.keys.Copy):
		return m, copyCmd(view.Grid)

	case key.Matches(msg, m.keys.Export):
		return m, m.exportCmd(view)
	}
	return m, nil
}

// tapAt toggles the LED under a terminal cell.
func (m Model) tapAt(x, y int) (tea.Model, tea.Cmd) {
	view := m.manager.View()
	l := newLayout(view.Mapper, m.Width, m.Height)
	col, row, ok := l.cellAt(x, y)
	if !ok {
		return m, nil
	}
	px, py, _ := l.pixel(x, y)
	change, ok := m.manager.Tap(px, py)
	if !ok {
		return m, nil
	}
	m.cursor = row*l.columns + col
	m.busy++
	return m, tea.Batch(m.renderCmd(), m.commitCmd(change))
}

// rebound syncs with the server the gateway now points at. The feed
// follows once the sync completes.
func (m Model) rebound() (Model, tea.Cmd) {
	m.cursor = 0
	m.busy++
	return m, m.syncCmd()
}

// startWatch follows the bound server's feed, replacing any feed on
// another server.
func (m *Model) startWatch() tea.Cmd {
	if m.watch == nil {
		return nil
	}
	url := m.manager.ServerURL()
	if url == m.watchedURL && m.stopWatch != nil {
		return nil
	}
	if m.stopWatch != nil {
		m.stopWatch()
	}

	m.gen++
	ctx, cancel := context.WithCancel(context.Background())
	m.stopWatch = cancel
	m.watchedURL = url

	gen, watch := m.gen, m.watch
	return func() tea.Msg {
		feed, err := watch(ctx, url)
		return feedMsg{gen: gen, feed: feed, err: err}
	}
}

// waitSnapshot reads the next state pushed on a feed.
func waitSnapshot(gen int, feed <-chan grid.Snapshot) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-feed
		return snapshotMsg{gen: gen, feed: feed, snap: snap, ok: ok}
	}
}

func (m Model) syncCmd() tea.Cmd {
	manager := m.manager
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return syncedMsg{err: manager.Sync(ctx)}
	}
}

func (m Model) commitCmd(change wall.LEDChange) tea.Cmd {
	manager := m.manager
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return committedMsg{err: manager.CommitLED(ctx, change)}
	}
}

func (m Model) clearCmd() tea.Cmd {
	manager := m.manager
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return clearedMsg{err: manager.ClearWall(ctx)}
	}
}

func (m Model) loadProblemCmd(p storage.Problem) tea.Cmd {
	manager := m.manager
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return problemLoadedMsg{err: manager.LoadProblem(ctx, p)}
	}
}

func (m Model) wallsCmd() tea.Cmd {
	manager := m.manager
	return func() tea.Msg {
		walls, err := manager.LoadWalls()
		return wallsLoadedMsg{walls: walls, err: err}
	}
}

func (m Model) problemsCmd() tea.Cmd {
	manager := m.manager
	return func() tea.Msg {
		problems, err := manager.Problems()
		return problemsLoadedMsg{problems: problems, err: err}
	}
}

func (m Model) scanCmd() tea.Cmd {
	scan := m.scan
	return func() tea.Msg {
		servers, err := scan(context.Background())
		return serversFoundMsg{servers: servers, err: err}
	}
}

func (m Model) saveWallCmd() tea.Cmd {
	manager := m.manager
	return func() tea.Msg { return savedMsg{err: manager.SaveWall()} }
}

func (m Model) saveProblemCmd() tea.Cmd {
	manager := m.manager
	return func() tea.Msg { return savedMsg{err: manager.SaveProblem()} }
}

func (m Model) deleteCmd(mode Mode, id string) tea.Cmd {
	manager := m.manager
	return func() tea.Msg {
		var err error
		if mode == ModeLoadProblem {
			err = manager.DeleteProblem(id)
		} else {
			err = manager.DeleteWall(id)
		}
		return deletedMsg{mode: mode, err: err}
	}
}

// renderCmd composes the current view and samples one colour per cell.
func (m Model) renderCmd() tea.Cmd {
	if m.compositor == nil {
		return nil
	}
	view := m.manager.View()
	compositor := m.compositor
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		img, err := compositor.Compose(ctx, view)
		if img == nil {
			return renderedMsg{err: err}
		}
		return renderedMsg{colors: render.CellColors(img, view.Mapper), dims: view.Versions.Dims, err: err}
	}
}

func copyCmd(state grid.State) tea.Cmd {
	return func() tea.Msg {
		data, err := grid.MarshalGrid(state)
		if err == nil {
			err = clipboard.WriteAll(string(data))
		}
		return copiedMsg{err: err}
	}
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// exportName builds the PNG file name for the current wall and problem.
func exportName(v wall.View, now time.Time) string {
	parts := []string{}
	for _, s := range []string{v.Wall.Name, v.Problem.Name} {
		s = strings.Trim(unsafeFileChars.ReplaceAllString(s, "-"), "-")
		if s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		parts = append(parts, "wall")
	}
	return fmt.Sprintf("%s-%s.png", strings.Join(parts, "_"), now.Format("20060102-150405"))
}

func (m Model) exportCmd(view wall.View) tea.Cmd {
	if m.compositor == nil {
		return nil
	}
	compositor := m.compositor
	path := filepath.Join(m.exportDir, exportName(view, time.Now()))
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		img, err := compositor.Compose(ctx, view)
		if img == nil {
			return exportedMsg{err: err}
		}
		if err := render.SavePNG(path, img); err != nil {
			return exportedMsg{err: err}
		}
		return exportedMsg{path: path}
	}
}

// View renders the editor
func (m Model) View() string {
	if m.Width == 0 {
		return "Loading..."
	}

	switch m.mode {
	case ModeMenu:
		return RenderModal(m.viewMenu(), m.Width, m.Height)
	case ModeProps:
		return RenderModal(m.viewProps(), m.Width, m.Height)
	case ModeImage:
		return RenderModal(m.viewImage(), m.Width, m.Height)
	case ModeLoadWall, ModeLoadProblem, ModeServers:
		return RenderModal(m.viewPicker(), m.Width, m.Height)
	}

	view := m.manager.View()
	var b strings.Builder
	b.WriteString(RenderSubtitle(m.manager.Title()))
	b.WriteString("\n\n")
	b.WriteString(m.viewGrid(view))
	b.WriteString("\n\n")
	b.WriteString(RenderToast(m.toast))

	footer := m.help.View(m.keys)
	if m.busy > 0 {
		footer = m.spinner.View() + " " + footer
	}
	return RenderApplicationContainer(b.String(), footer, m.Width, m.Height)
}

// viewGrid draws one coloured block per LED.
func (m Model) viewGrid(view wall.View) string {
	l := newLayout(view.Mapper, m.Width, m.Height)
	if !l.valid() {
		return BlurredInputStyle.Render("No grid yet. Press s to sync with " + view.Wall.ServerURL)
	}

	sampled := m.colors
	if m.colorsDims != view.Versions.Dims || len(sampled) != l.rows*l.columns {
		sampled = nil
	}

	lines := make([]string, 0, l.rows*l.cellLines)
	for row := 0; row < l.rows; row++ {
		for line := 0; line < l.cellLines; line++ {
			var b strings.Builder
			for col := 0; col < l.columns; col++ {
				index := row*l.columns + col
				b.WriteString(m.cell(view, sampled, index, line, l))
			}
			lines = append(lines, b.String())
		}
	}
	return strings.Join(lines, "\n")
}

func (m Model) cell(view wall.View, sampled []colorful.Color, index, line int, l layout) string {
	base := colorful.Color{R: 0.12, G: 0.12, B: 0.12}
	if sampled != nil {
		base = sampled[index]
	}
	led := view.Grid.Get(index)
	if led.IsOn() {
		base = base.BlendRgb(led.Colorful(), ledBlend)
	}

	text := strings.Repeat(" ", l.cellChars)
	if index == m.cursor && line == l.cellLines/2 {
		mid := l.cellChars / 2
		text = strings.Repeat(" ", mid) + "•" + strings.Repeat(" ", l.cellChars-mid-1)
	}

	fg := lipgloss.Color("#ffffff")
	if _, _, lum := base.Hcl(); lum > 0.6 {
		fg = lipgloss.Color("#000000")
	}
	return lipgloss.NewStyle().
		Background(lipgloss.Color(base.Clamped().Hex())).
		Foreground(fg).
		Render(text)
}
