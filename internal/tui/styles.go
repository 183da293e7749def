package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/littlebull/lbcs/internal/version"
	"github.com/littlebull/lbcs/internal/wall"
)

// AppName is shown in the header of every screen.
const AppName = "Little Bull Climbing System"

// Layout constants
const (
	MinTerminalWidth = 40
	maxCellChars     = 6
	maxCellLines     = 3

	// terminal lines around the grid: borders, header and its rule,
	// subtitle, two blanks, toast, footer and its rule
	chromeLines = 10
	// the grid starts after outer border, header, rule, subtitle and blank
	gridTop  = 5
	gridLeft = 1
)

// Color palette
var (
	PrimaryColor   = lipgloss.Color("#7D56F4") // Purple
	SecondaryColor = lipgloss.Color("#43BF6D") // Green
	WarningColor   = lipgloss.Color("#FFA500") // Orange
	ErrorColor     = lipgloss.Color("#FF0000") // Red

	TextColor   = lipgloss.Color("#FFFFFF")
	SubtleColor = lipgloss.Color("#626262")
	BorderColor = lipgloss.Color("#7D56F4")
)

var (
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor).
			Italic(true)

	MenuItemStyle = lipgloss.NewStyle().
			PaddingLeft(4).
			Foreground(TextColor)

	SelectedMenuItemStyle = lipgloss.NewStyle().
				PaddingLeft(2).
				Foreground(SecondaryColor).
				Bold(true)

	// panel around menus and dialogs
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderColor).
			Padding(1, 2)

	FocusedInputStyle = lipgloss.NewStyle().
				Foreground(PrimaryColor).
				Bold(true)

	BlurredInputStyle = lipgloss.NewStyle().
				Foreground(SubtleColor)

	SpinnerStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor)

	toastStyles = map[wall.Level]lipgloss.Style{
		wall.LevelInfo:    lipgloss.NewStyle().Foreground(PrimaryColor),
		wall.LevelSuccess: lipgloss.NewStyle().Foreground(SecondaryColor).Bold(true),
		wall.LevelDanger:  lipgloss.NewStyle().Foreground(ErrorColor).Bold(true),
	}
)

// RenderSubtitle renders a subtitle with consistent styling
func RenderSubtitle(text string) string {
	return SubtitleStyle.Render(text)
}

// RenderMenuItem renders a menu item with selection indicator
func RenderMenuItem(text string, selected bool) string {
	if selected {
		return SelectedMenuItemStyle.Render("→ " + text)
	}
	return MenuItemStyle.Render("  " + text)
}

// RenderToast renders the latest notification.
func RenderToast(n wall.Notification) string {
	if n.Message == "" {
		return ""
	}
	style, ok := toastStyles[n.Level]
	if !ok {
		style = toastStyles[wall.LevelInfo]
	}
	return style.Render(n.Message)
}

// BuildHeaderContent creates header content with app name and version
func BuildHeaderContent() string {
	left := lipgloss.NewStyle().
		Foreground(TextColor).
		Bold(true).
		Render(AppName)

	right := lipgloss.NewStyle().
		Foreground(SubtleColor).
		Render(version.Version)

	return lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right)
}

// RenderApplicationContainer wraps a screen in the bordered full-terminal
// frame: header, content, footer.
func RenderApplicationContainer(content string, footerText string, terminalWidth int, terminalHeight int) string {
	if terminalWidth < MinTerminalWidth {
		terminalWidth = MinTerminalWidth
	}

	headerStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.Border{Bottom: "─"}).
		BorderForeground(BorderColor).
		Width(terminalWidth-2).
		Padding(0, 1)

	footerStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.Border{Top: "─"}).
		BorderForeground(BorderColor).
		Width(terminalWidth-2).
		Padding(0, 1)

	contentStyle := lipgloss.NewStyle().
		Width(terminalWidth - 2)

	inner := lipgloss.JoinVertical(
		lipgloss.Left,
		headerStyle.Render(BuildHeaderContent()),
		contentStyle.Render(content),
		footerStyle.Render(lipgloss.NewStyle().Foreground(SubtleColor).Render(footerText)),
	)

	// Width/Height exclude the border itself
	bordered := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(BorderColor).
		Width(terminalWidth - 2).
		Height(max(terminalHeight-2, 0)).
		AlignVertical(lipgloss.Top).
		Render(inner)

	return lipgloss.Place(terminalWidth, terminalHeight, lipgloss.Left, lipgloss.Top, bordered)
}

// RenderModal centers a dialog on a dimmed screen.
func RenderModal(modalContent string, terminalWidth int, terminalHeight int) string {
	return lipgloss.Place(
		terminalWidth,
		terminalHeight,
		lipgloss.Center,
		lipgloss.Center,
		modalContent,
		lipgloss.WithWhitespaceChars("░"),
		lipgloss.WithWhitespaceForeground(lipgloss.Color("240")),
	)
}
