package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/littlebull/lbcs/internal/wall"
)

// Notifier queues wall notifications for the TUI. Notify never blocks:
// when the queue is full the notification is dropped.
type Notifier struct {
	ch chan wall.Notification
}

// NewNotifier returns a notifier holding up to size pending notifications.
func NewNotifier(size int) *Notifier {
	return &Notifier{ch: make(chan wall.Notification, size)}
}

func (n *Notifier) Notify(note wall.Notification) {
	select {
	case n.ch <- note:
	default:
	}
}

// C is the queue read by the TUI.
func (n *Notifier) C() <-chan wall.Notification {
	return n.ch
}

type notificationMsg wall.Notification

// listenNotifications waits for the next notification.
func listenNotifications(ch <-chan wall.Notification) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		note, ok := <-ch
		if !ok {
			return nil
		}
		return notificationMsg(note)
	}
}
