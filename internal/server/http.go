package server

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/littlebull/lbcs/internal/grid"
	"github.com/littlebull/lbcs/internal/logging"
)

// maxBodySize bounds request bodies; a full reset of a large board is a
// few kilobytes.
const maxBodySize = 1 << 20

// Handler returns the HTTP API:
//
//	GET  /state       full snapshot
//	POST /state       replace the grid with {"index":[r,g,b]}
//	POST /led/{index} set one LED to [r,g,b]
//	POST /clear       turn every LED off
//	GET  /ws          websocket feed of snapshots
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /state", s.handleGetState)
	mux.HandleFunc("POST /state", s.handleResetState)
	mux.HandleFunc("POST /led/{index}", s.handleSetLED)
	mux.HandleFunc("POST /clear", s.handleClear)
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	return logRequests(mux)
}

func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.wall.Snapshot())
}

func (s *Server) handleResetState(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(body, &doc); err != nil {
		http.Error(w, "body must be a JSON object", http.StatusBadRequest)
		return
	}
	state := make(grid.State, len(doc))
	for key, raw := range doc {
		index, err := strconv.Atoi(key)
		if err != nil {
			http.Error(w, fmt.Sprintf("invalid led index %q", key), http.StatusBadRequest)
			return
		}
		c, err := decodeColor(raw)
		if err != nil {
			http.Error(w, fmt.Sprintf("led %d: %v", index, err), http.StatusBadRequest)
			return
		}
		state[index] = c
	}

	if err := s.wall.Reset(state); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	logging.Info("Grid reset", zap.Int("lit", len(state.Lit())))
	s.changed()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetLED(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		http.Error(w, "invalid led index", http.StatusBadRequest)
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	c, err := decodeColor(body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.wall.Set(index, c); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, ErrOutOfRange) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}
	logging.Debug("LED set", zap.Int("led", index), zap.String("color", c.Hex()))
	s.changed()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	s.wall.Clear()
	logging.Info("Grid cleared")
	s.changed()
	w.WriteHeader(http.StatusNoContent)
}

// decodeColor accepts exactly three channels in 0-255.
func decodeColor(data []byte) (grid.RGB, error) {
	var channels []int
	if err := json.Unmarshal(data, &channels); err != nil {
		return grid.Off, fmt.Errorf("colour must be [r,g,b]")
	}
	if len(channels) != 3 {
		return grid.Off, fmt.Errorf("colour must have 3 channels, got %d", len(channels))
	}
	var c grid.RGB
	for i, v := range channels {
		if v < 0 || v > 255 {
			return grid.Off, fmt.Errorf("channel %d out of range: %d", i, v)
		}
		c[i] = uint8(v)
	}
	return c, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		logging.Error("Failed to encode response", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// statusRecorder captures the response status for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Hijack lets the websocket upgrade take over the connection.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logging.LogHTTPRequest(r.RemoteAddr, r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}
