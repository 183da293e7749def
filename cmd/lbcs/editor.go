package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/littlebull/lbcs/internal/discovery"
	"github.com/littlebull/lbcs/internal/grid"
	"github.com/littlebull/lbcs/internal/lbcsapi"
	"github.com/littlebull/lbcs/internal/render"
	"github.com/littlebull/lbcs/internal/storage"
	"github.com/littlebull/lbcs/internal/tui"
	"github.com/littlebull/lbcs/internal/wall"
)

// gateway binds the manager to a controller over HTTP.
func gateway(serverURL string) wall.Gateway {
	return lbcsapi.NewClient(serverURL)
}

func openStore() (*storage.Store, error) {
	if settings.LibraryPath != "" {
		return storage.Open(settings.LibraryPath), nil
	}
	return storage.OpenDefault()
}

// newManager builds a manager on the configured server and library.
func newManager(notifier wall.Notifier) (*wall.Manager, error) {
	store, err := openStore()
	if err != nil {
		return nil, err
	}
	color, err := settings.Color()
	if err != nil {
		return nil, err
	}
	return wall.NewManager(wall.Options{
		Gateways:     gateway,
		Store:        store,
		Notifier:     notifier,
		DefaultColor: color,
		WindowWidth:  float64(settings.WindowWidth),
		ServerURL:    settings.ServerURL,
	}), nil
}

// stderrNotifier prints manager notifications for the scripting commands.
var stderrNotifier = wall.NotifierFunc(func(n wall.Notification) {
	fmt.Fprintf(os.Stderr, "[%s] %s\n", n.Level, n.Message)
})

func runEditor(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("the editor needs a terminal; see 'lbcs --help' for scripting commands")
	}

	notifier := tui.NewNotifier(32)
	manager, err := newManager(notifier)
	if err != nil {
		return err
	}

	opts := tui.Options{
		Manager:       manager,
		Compositor:    render.NewCompositor(nil),
		Notifications: notifier.C(),
		Scan: func(ctx context.Context) ([]*discovery.Server, error) {
			return discovery.Scan(ctx, time.Duration(settings.DiscoverTimeout)*time.Second)
		},
	}
	if settings.Live {
		opts.Watch = func(ctx context.Context, serverURL string) (<-chan grid.Snapshot, error) {
			return lbcsapi.NewClient(serverURL).Watch(ctx)
		}
	}
	if wd, err := os.Getwd(); err == nil {
		opts.ExportDir = wd
	}

	p := tea.NewProgram(tui.New(opts), tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("editor error: %w", err)
	}
	return nil
}
