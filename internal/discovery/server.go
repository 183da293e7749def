package discovery

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// Server is a wall-control server found on the local network.
type Server struct {
	// Instance is the advertised instance name (e.g. "garage-wall")
	Instance string

	// Hostname is the mDNS hostname (e.g. "pi-wall.local.")
	Hostname string

	// IP prefers IPv4 when both families are advertised
	IP string

	Port int

	// Metadata holds the TXT records: "path", "rows", "columns", "version"
	Metadata map[string]string

	DiscoveredAt time.Time
}

func (s *Server) String() string {
	return fmt.Sprintf("%s (%s) at %s", s.Instance, s.Hostname, s.BaseURL())
}

// BaseURL is the API root to hand to the client, always ending in '/'.
func (s *Server) BaseURL() string {
	path := s.GetMetadata("path")
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if !strings.HasSuffix(path, "/") {
		path += "/"
	}
	return "http://" + net.JoinHostPort(s.IP, strconv.Itoa(s.Port)) + path
}

// GetMetadata returns a TXT value, or "" when absent.
func (s *Server) GetMetadata(key string) string {
	if s.Metadata == nil {
		return ""
	}
	return s.Metadata[key]
}

// Dimensions reports the grid size advertised in the TXT records.
func (s *Server) Dimensions() (rows, columns int, ok bool) {
	rows, errR := strconv.Atoi(s.GetMetadata("rows"))
	columns, errC := strconv.Atoi(s.GetMetadata("columns"))
	if errR != nil || errC != nil {
		return 0, 0, false
	}
	return rows, columns, true
}
