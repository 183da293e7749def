package lbcsapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/littlebull/lbcs/internal/grid"
)

func TestWatchURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"http://localhost:8888/", "ws://localhost:8888/ws"},
		{"https://wall.example.com/api", "wss://wall.example.com/api/ws"},
	}
	for _, tt := range tests {
		got, err := watchURL(tt.in)
		if err != nil {
			t.Fatalf("watchURL(%s) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("watchURL(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestWatch_ReceivesSnapshots(t *testing.T) {
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ws" {
			http.NotFound(w, r)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()

		conn.WriteMessage(websocket.TextMessage, []byte("not json"))
		conn.WriteMessage(websocket.TextMessage, []byte(mockStateResponse))
		// Hold the connection until the client leaves
		conn.ReadMessage()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	feed, err := NewClient(server.URL + "/").Watch(ctx)
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	select {
	case snap := <-feed:
		if snap.Rows != 2 || snap.Grid.Get(0) != (grid.RGB{255, 0, 0}) {
			t.Errorf("snapshot = %+v", snap)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot received")
	}

	cancel()
	select {
	case _, ok := <-feed:
		if ok {
			t.Error("feed should close after cancel")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("feed not closed after cancel")
	}
}

func TestWatch_NotSupported(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	_, err := NewClient(server.URL).Watch(context.Background())
	if !IsHTTPError(err) {
		t.Errorf("Watch() error = %v, want HTTP error", err)
	}
}
