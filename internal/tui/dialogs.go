package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/littlebull/lbcs/internal/discovery"
	"github.com/littlebull/lbcs/internal/storage"
)

// Menu entries, in display order
const (
	menuNewWall     = "New wall"
	menuLoadWall    = "Load wall"
	menuSaveWall    = "Save wall"
	menuAddImage    = "Add image"
	menuNewProblem  = "New problem"
	menuLoadProblem = "Load problem"
	menuSaveProblem = "Save problem"
	menuFindWalls   = "Find walls"
)

// Property fields
const (
	propWallName = iota
	propProblemName
	propServerURL
)

var propLabels = []string{"Wall name", "Problem name", "Server URL"}

func newPropsInputs() []textinput.Model {
	inputs := make([]textinput.Model, len(propLabels))
	for i := range inputs {
		in := textinput.New()
		in.CharLimit = 128
		in.Width = 40
		inputs[i] = in
	}
	inputs[propServerURL].Placeholder = "http://localhost:8888/"
	return inputs
}

func newImageInput() textinput.Model {
	in := textinput.New()
	in.Placeholder = "https://example.com/wall.jpg or /path/to/wall.png"
	in.CharLimit = 512
	in.Width = 50
	return in
}

func newPicker() list.Model {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), MinTerminalWidth, 12)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = lipgloss.NewStyle().Foreground(TextColor).Background(PrimaryColor).Padding(0, 1)
	return l
}

// pickerItem is one entry of the wall, problem or server list.
type pickerItem struct {
	title   string
	desc    string
	wall    *storage.Wall
	problem *storage.Problem
	server  *discovery.Server
}

func (i pickerItem) FilterValue() string { return i.title }
func (i pickerItem) Title() string       { return i.title }
func (i pickerItem) Description() string { return i.desc }

func wallItems(walls []storage.Wall) []list.Item {
	items := make([]list.Item, 0, len(walls))
	for i := range walls {
		w := walls[i]
		name := w.Name
		if name == "" {
			name = "(unnamed)"
		}
		items = append(items, pickerItem{title: name, desc: w.ServerURL, wall: &w})
	}
	return items
}

func problemItems(problems []storage.Problem) []list.Item {
	items := make([]list.Item, 0, len(problems))
	for i := range problems {
		p := problems[i]
		desc := fmt.Sprintf("%d holds", len(p.Grid.Lit()))
		if p.Rows > 0 && p.Columns > 0 {
			desc = fmt.Sprintf("%dx%d • %s", p.Rows, p.Columns, desc)
		}
		items = append(items, pickerItem{title: p.Name, desc: desc, problem: &p})
	}
	return items
}

func serverItems(servers []*discovery.Server) []list.Item {
	items := make([]list.Item, 0, len(servers))
	for _, s := range servers {
		desc := s.BaseURL()
		if rows, cols, ok := s.Dimensions(); ok {
			desc = fmt.Sprintf("%s • %dx%d", desc, rows, cols)
		}
		items = append(items, pickerItem{title: s.Instance, desc: desc, server: s})
	}
	return items
}

func (m Model) menuEntries() []string {
	entries := []string{
		menuNewWall, menuLoadWall, menuSaveWall, menuAddImage,
		menuNewProblem, menuLoadProblem, menuSaveProblem,
	}
	if m.scan != nil {
		entries = append(entries, menuFindWalls)
	}
	return entries
}

func (m Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	entries := m.menuEntries()
	switch {
	case key.Matches(msg, m.dialogKeys.Close), key.Matches(msg, m.keys.Menu):
		m.mode = ModeGrid
	case key.Matches(msg, m.dialogKeys.Up):
		if m.menuIndex > 0 {
			m.menuIndex--
		}
	case key.Matches(msg, m.dialogKeys.Down):
		if m.menuIndex < len(entries)-1 {
			m.menuIndex++
		}
	case key.Matches(msg, m.dialogKeys.Select):
		return m.runMenu(entries[m.menuIndex])
	}
	return m, nil
}

func (m Model) runMenu(entry string) (tea.Model, tea.Cmd) {
	m.mode = ModeGrid
	switch entry {
	case menuNewWall:
		m.manager.ResetWall()
		m.colors = nil
		return m.rebound()
	case menuLoadWall:
		m.busy++
		return m, m.wallsCmd()
	case menuSaveWall:
		m.busy++
		return m, m.saveWallCmd()
	case menuAddImage:
		m.mode = ModeImage
		m.imageInput.SetValue(m.manager.View().Wall.ImageURI)
		m.imageInput.CursorEnd()
		cmd := m.imageInput.Focus()
		return m, cmd
	case menuNewProblem:
		m.manager.ResetProblem()
	case menuLoadProblem:
		m.busy++
		return m, m.problemsCmd()
	case menuSaveProblem:
		m.busy++
		return m, m.saveProblemCmd()
	case menuFindWalls:
		m.busy++
		m.toast.Message = ""
		return m, m.scanCmd()
	}
	return m, nil
}

func (m Model) viewMenu() string {
	var b strings.Builder
	b.WriteString(RenderSubtitle(m.manager.Title()))
	b.WriteString("\n\n")
	for i, entry := range m.menuEntries() {
		b.WriteString(RenderMenuItem(entry, i == m.menuIndex))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.dialogKeys))
	return PanelStyle.Render(b.String())
}

// openProps fills the property fields from the current wall and problem.
func (m Model) openProps() (tea.Model, tea.Cmd) {
	view := m.manager.View()
	m.props[propWallName].SetValue(view.Wall.Name)
	m.props[propProblemName].SetValue(view.Problem.Name)
	m.props[propServerURL].SetValue(view.Wall.ServerURL)
	m.mode = ModeProps
	cmd := m.focusProp(propWallName)
	return m, cmd
}

func (m *Model) focusProp(field int) tea.Cmd {
	m.propsFocus = field
	var cmd tea.Cmd
	for i := range m.props {
		if i == field {
			cmd = m.props[i].Focus()
		} else {
			m.props[i].Blur()
		}
	}
	return cmd
}

// closeProps applies the server URL, which is only read when the dialog
// closes so typing does not rebind the gateway on every key.
func (m Model) closeProps() (tea.Model, tea.Cmd) {
	m.mode = ModeGrid
	for i := range m.props {
		m.props[i].Blur()
	}
	if m.manager.SetServerURL(strings.TrimSpace(m.props[propServerURL].Value())) {
		return m.rebound()
	}
	return m, nil
}

func (m Model) updateProps(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.dialogKeys.Close), key.Matches(msg, m.dialogKeys.Select):
		return m.closeProps()
	case key.Matches(msg, m.dialogKeys.Next):
		step := 1
		if msg.String() == "shift+tab" {
			step = len(m.props) - 1
		}
		cmd := m.focusProp((m.propsFocus + step) % len(m.props))
		return m, cmd
	}

	var cmd tea.Cmd
	m.props[m.propsFocus], cmd = m.props[m.propsFocus].Update(msg)

	switch m.propsFocus {
	case propWallName:
		m.manager.SetWallName(m.props[propWallName].Value())
	case propProblemName:
		m.manager.SetProblemName(m.props[propProblemName].Value())
	}
	return m, cmd
}

func (m Model) viewProps() string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render("Properties"))
	b.WriteString("\n\n")
	for i, label := range propLabels {
		style := BlurredInputStyle
		if i == m.propsFocus {
			style = FocusedInputStyle
		}
		b.WriteString(style.Render(label))
		b.WriteString("\n")
		b.WriteString(m.props[i].View())
		b.WriteString("\n\n")
	}
	keys := m.dialogKeys
	keys.showNext = true
	b.WriteString(m.help.View(keys))
	return PanelStyle.Render(b.String())
}

func (m Model) updateImage(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.dialogKeys.Close):
		m.mode = ModeGrid
		m.imageInput.Blur()
		return m, nil
	case key.Matches(msg, m.dialogKeys.Select):
		m.mode = ModeGrid
		m.imageInput.Blur()
		m.manager.SetImage(strings.TrimSpace(m.imageInput.Value()))
		return m, m.renderCmd()
	}

	var cmd tea.Cmd
	m.imageInput, cmd = m.imageInput.Update(msg)
	return m, cmd
}

func (m Model) viewImage() string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render("Wall image"))
	b.WriteString("\n\n")
	b.WriteString(m.imageInput.View())
	b.WriteString("\n\n")
	keys := m.dialogKeys
	keys.Up.SetEnabled(false)
	keys.Down.SetEnabled(false)
	b.WriteString(m.help.View(keys))
	return PanelStyle.Render(b.String())
}

func (m Model) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// keys belong to the filter while it is being typed
	if m.picker.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.dialogKeys.Close):
		if m.picker.FilterState() == list.FilterApplied {
			m.picker.ResetFilter()
			return m, nil
		}
		m.mode = ModeGrid
		return m, nil

	case key.Matches(msg, m.dialogKeys.Select):
		item, ok := m.picker.SelectedItem().(pickerItem)
		if !ok {
			return m, nil
		}
		return m.pick(item)

	case key.Matches(msg, m.dialogKeys.Delete) && m.mode != ModeServers:
		item, ok := m.picker.SelectedItem().(pickerItem)
		if !ok {
			return m, nil
		}
		m.busy++
		if item.problem != nil {
			return m, m.deleteCmd(ModeLoadProblem, item.problem.ID)
		}
		return m, m.deleteCmd(ModeLoadWall, item.wall.ID)
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	return m, cmd
}

func (m Model) pick(item pickerItem) (tea.Model, tea.Cmd) {
	m.mode = ModeGrid
	switch {
	case item.wall != nil:
		m.manager.LoadWall(item.wall.ID)
		m.colors = nil
		return m.rebound()
	case item.problem != nil:
		m.busy++
		return m, m.loadProblemCmd(*item.problem)
	case item.server != nil:
		if m.manager.SetServerURL(item.server.BaseURL()) {
			return m.rebound()
		}
	}
	return m, nil
}

func (m Model) viewPicker() string {
	keys := m.dialogKeys
	keys.showDelete = m.mode != ModeServers
	return PanelStyle.Render(m.picker.View() + "\n\n" + m.help.View(keys))
}
