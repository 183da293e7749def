package config

import (
	"fmt"
	"net/url"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/littlebull/lbcs/internal/grid"
)

const (
	// DefaultServerURL is where a fresh wall looks for its controller
	DefaultServerURL = "http://localhost:8888/"

	// DefaultColor lights a tapped LED when no colour is configured
	DefaultColor = "#ff0000"

	// DefaultWindowWidth is the canvas side in pixels for PNG snapshots
	DefaultWindowWidth = 800

	currentVersion = 1
)

// Settings are the user's client preferences.
type Settings struct {
	Version         int    `yaml:"version"`
	ServerURL       string `yaml:"server_url"`              // Server of a new wall
	DefaultColor    string `yaml:"default_color"`           // Hex colour for lit LEDs
	WindowWidth     int    `yaml:"window_width"`            // Snapshot canvas side in pixels
	Live            bool   `yaml:"live"`                    // Follow the server's websocket feed
	DiscoverTimeout int    `yaml:"discover_timeout"`        // mDNS scan timeout in seconds
	LogFile         string `yaml:"log_file,omitempty"`      // Log destination for the TUI
	LibraryPath     string `yaml:"library_path,omitempty"` // Override for the walls/problems file
}

// NewSettings returns settings with default values.
func NewSettings() *Settings {
	return &Settings{
		Version:         currentVersion,
		ServerURL:       DefaultServerURL,
		DefaultColor:    DefaultColor,
		WindowWidth:     DefaultWindowWidth,
		Live:            true,
		DiscoverTimeout: 5,
	}
}

// Color returns DefaultColor parsed to RGB.
func (s *Settings) Color() (grid.RGB, error) {
	return grid.ParseHex(s.DefaultColor)
}

// Validate checks every field that has a constrained format.
func (s *Settings) Validate() error {
	if _, err := s.Color(); err != nil {
		return fmt.Errorf("default_color: %w", err)
	}
	if !ValidServerURL(s.ServerURL) {
		return fmt.Errorf("server_url: %q is not an absolute URL", s.ServerURL)
	}
	if s.WindowWidth <= 0 {
		return fmt.Errorf("window_width: must be positive, got %d", s.WindowWidth)
	}
	if s.DiscoverTimeout < 0 {
		return fmt.Errorf("discover_timeout: must not be negative, got %d", s.DiscoverTimeout)
	}
	return nil
}

// ValidServerURL reports whether raw parses as an absolute URL with a host.
func ValidServerURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && u.Scheme != "" && u.Host != ""
}

// LoadSettings reads settings from path. A missing file yields defaults.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return NewSettings(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	settings := NewSettings()
	if err := yaml.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if settings.Version != currentVersion {
		return nil, fmt.Errorf("unsupported config version: %d (expected %d)", settings.Version, currentVersion)
	}
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return settings, nil
}

// Load reads settings from the default location.
func Load() (*Settings, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get config path: %w", err)
	}
	return LoadSettings(path)
}

// SaveTo writes settings to path atomically.
func (s *Settings) SaveTo(path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte("# lbcs client settings\n# Location: " + path + "\n\n")
	return WriteFileAtomic(path, append(header, data...))
}

// Save writes settings to the default location.
func (s *Settings) Save() error {
	path, err := GetConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}
	return s.SaveTo(path)
}
