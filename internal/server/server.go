package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/littlebull/lbcs/internal/discovery"
	"github.com/littlebull/lbcs/internal/logging"
	"github.com/littlebull/lbcs/internal/version"
)

const (
	DefaultHost     = "localhost"
	DefaultPort     = 8888
	DefaultRows     = 12
	DefaultColumns  = 11
	DefaultInstance = "lbcs-simulator"

	shutdownTimeout = 10 * time.Second
)

// Config holds the simulator configuration
type Config struct {
	Host    string
	Port    int
	Rows    int
	Columns int

	// Advertise registers the server over mDNS under Instance
	Advertise bool
	Instance  string
}

// Server simulates a wall controller: an in-memory LED grid behind the
// HTTP API, with a websocket feed of state changes.
type Server struct {
	config     *Config
	wall       *Wall
	hub        *hub
	upgrader   websocket.Upgrader
	httpServer *http.Server
	listener   net.Listener
	mdns       *zeroconf.Server
	wg         sync.WaitGroup
	mu         sync.Mutex
}

// New validates config and creates a server with every LED off.
func New(config *Config) (*Server, error) {
	if config.Rows <= 0 || config.Columns <= 0 {
		return nil, fmt.Errorf("invalid grid size %dx%d", config.Rows, config.Columns)
	}
	if config.Port < 0 || config.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d", config.Port)
	}
	if config.Instance == "" {
		config.Instance = DefaultInstance
	}

	return &Server{
		config: config,
		wall:   NewWall(config.Rows, config.Columns),
		hub:    newHub(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// the feed is read-only and served to local tools
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}, nil
}

// Wall exposes the simulated grid.
func (s *Server) Wall() *Wall {
	return s.wall
}

// Subscribers returns the number of connected websocket clients.
func (s *Server) Subscribers() int {
	return s.hub.count()
}

// Listen binds the configured address. Port 0 picks a free port.
func (s *Server) Listen() (net.Addr, error) {
	addr := net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	s.mu.Lock()
	s.listener = listener
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.mu.Unlock()
	return listener.Addr(), nil
}

// Serve handles requests on the bound listener until Shutdown.
func (s *Server) Serve() error {
	s.mu.Lock()
	srv, listener := s.httpServer, s.listener
	s.mu.Unlock()
	if srv == nil {
		return fmt.Errorf("server is not listening")
	}

	if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Start listens, advertises and serves until SIGINT/SIGTERM.
func (s *Server) Start() error {
	addr, err := s.Listen()
	if err != nil {
		return err
	}

	logging.Info("Starting wall simulator",
		zap.String("addr", addr.String()),
		zap.Int("rows", s.config.Rows),
		zap.Int("columns", s.config.Columns),
	)

	if s.config.Advertise {
		port := addr.(*net.TCPAddr).Port
		if err := s.advertise(port); err != nil {
			logging.Warn("mDNS registration failed, continuing without discovery", zap.Error(err))
		}
	}

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.Serve()
	}()

	select {
	case <-sigChan:
		logging.Info("Shutdown signal received, stopping server...")
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.Shutdown(ctx)
	case err := <-errChan:
		return err
	}
}

func (s *Server) advertise(port int) error {
	txt := []string{
		"path=/",
		"rows=" + strconv.Itoa(s.config.Rows),
		"columns=" + strconv.Itoa(s.config.Columns),
		"version=" + version.Version,
	}
	mdns, err := zeroconf.Register(s.config.Instance, discovery.ServiceType, discovery.ServiceDomain, port, txt, nil)
	if err != nil {
		return fmt.Errorf("failed to register mDNS service: %w", err)
	}

	s.mu.Lock()
	s.mdns = mdns
	s.mu.Unlock()
	logging.Info("Advertising over mDNS",
		zap.String("instance", s.config.Instance),
		zap.String("service", discovery.ServiceType),
		zap.Int("port", port),
	)
	return nil
}

// Shutdown stops advertising, disconnects websocket clients and waits
// for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down server...")

	s.mu.Lock()
	mdns, srv := s.mdns, s.httpServer
	s.mdns = nil
	s.mu.Unlock()

	if mdns != nil {
		mdns.Shutdown()
	}

	// hijacked websocket connections are not tracked by http.Server
	s.hub.closeAll()

	var shutdownErr error
	if srv != nil {
		if err := srv.Shutdown(ctx); err != nil {
			logging.Error("Error stopping HTTP server", zap.Error(err))
			shutdownErr = err
		}
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logging.Info("All connections closed gracefully")
	case <-ctx.Done():
		logging.Warn("Shutdown timeout, forcing close")
	}

	logging.Sync()
	return shutdownErr
}
