package discovery

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/littlebull/lbcs/internal/logging"
)

const (
	// ServiceType is what wall-control servers advertise.
	ServiceType = "_lbcs._tcp"

	ServiceDomain = "local."

	DefaultScanTimeout = 5 * time.Second

	// DefaultPort matches the client's default server URL
	DefaultPort = 8888
)

// Scanner browses for wall-control servers.
type Scanner struct {
	Timeout time.Duration
}

func NewScanner() *Scanner {
	return &Scanner{Timeout: DefaultScanTimeout}
}

// Scan collects every server that answers before the timeout or ctx
// ends. Instances answering more than once are reported once.
func (s *Scanner) Scan(ctx context.Context) ([]*Server, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)
	var (
		mu      sync.Mutex
		servers []*Server
		seen    = make(map[string]bool)
		done    = make(chan struct{})
	)
	go func() {
		defer close(done)
		for entry := range entries {
			server := parseServiceEntry(entry)
			if server == nil {
				continue
			}
			mu.Lock()
			if !seen[server.Instance] {
				seen[server.Instance] = true
				servers = append(servers, server)
				logging.Debug("Server discovered", zap.String("instance", server.Instance), zap.String("url", server.BaseURL()))
			}
			mu.Unlock()
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	<-ctx.Done()
	// zeroconf closes entries once the browse context ends
	select {
	case <-done:
	case <-time.After(time.Second):
	}

	mu.Lock()
	defer mu.Unlock()
	return append([]*Server(nil), servers...), nil
}

// Find waits for the server advertising instance.
func (s *Scanner) Find(ctx context.Context, instance string) (*Server, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)
	found := make(chan *Server, 1)
	go func() {
		for entry := range entries {
			server := parseServiceEntry(entry)
			if server != nil && server.Instance == instance {
				select {
				case found <- server:
				default:
				}
				cancel()
				return
			}
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	select {
	case server := <-found:
		return server, nil
	case <-ctx.Done():
		select {
		case server := <-found:
			return server, nil
		default:
		}
		return nil, fmt.Errorf("server %q not found within %v", instance, s.Timeout)
	}
}

// parseServiceEntry returns nil for entries without an address.
func parseServiceEntry(entry *zeroconf.ServiceEntry) *Server {
	if entry == nil || entry.Instance == "" {
		return nil
	}

	var ip string
	if len(entry.AddrIPv4) > 0 {
		ip = entry.AddrIPv4[0].String()
	} else if len(entry.AddrIPv6) > 0 {
		ip = entry.AddrIPv6[0].String()
	}
	if ip == "" {
		return nil
	}

	port := entry.Port
	if port == 0 {
		port = DefaultPort
	}

	metadata := make(map[string]string)
	for _, txt := range entry.Text {
		key, value, _ := strings.Cut(txt, "=")
		metadata[key] = value
	}

	return &Server{
		Instance:     entry.Instance,
		Hostname:     entry.HostName,
		IP:           ip,
		Port:         port,
		Metadata:     metadata,
		DiscoveredAt: time.Now(),
	}
}

// Scan looks for servers with the given timeout.
func Scan(ctx context.Context, timeout time.Duration) ([]*Server, error) {
	scanner := NewScanner()
	if timeout > 0 {
		scanner.Timeout = timeout
	}
	return scanner.Scan(ctx)
}
