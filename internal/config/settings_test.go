package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/littlebull/lbcs/internal/grid"
)

func TestGetConfigDir_EnvOverride(t *testing.T) {
	t.Setenv(DirEnvVar, "/tmp/lbcs-test")

	dir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}
	if dir != "/tmp/lbcs-test" {
		t.Errorf("GetConfigDir() = %s, want /tmp/lbcs-test", dir)
	}
}

func TestGetConfigDir_Platform(t *testing.T) {
	t.Setenv(DirEnvVar, "")

	dir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}
	if !strings.Contains(dir, "lbcs") {
		t.Errorf("GetConfigDir() = %v, should contain 'lbcs'", dir)
	}
	if runtime.GOOS == "linux" && os.Getenv("XDG_CONFIG_HOME") == "" && !strings.Contains(dir, ".config") {
		t.Errorf("Linux config dir should contain '.config', got: %v", dir)
	}
}

func TestGetConfigPath(t *testing.T) {
	t.Setenv(DirEnvVar, t.TempDir())

	path, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}
	if filepath.Base(path) != "config.yaml" {
		t.Errorf("GetConfigPath() should end with 'config.yaml', got: %v", path)
	}
}

func TestNewSettings(t *testing.T) {
	s := NewSettings()

	if s.Version != 1 {
		t.Errorf("Version = %d, want 1", s.Version)
	}
	if s.ServerURL != DefaultServerURL {
		t.Errorf("ServerURL = %s, want %s", s.ServerURL, DefaultServerURL)
	}
	c, err := s.Color()
	if err != nil {
		t.Fatalf("Color() error = %v", err)
	}
	if c != (grid.RGB{255, 0, 0}) {
		t.Errorf("Color() = %v, want red", c)
	}
	if err := s.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadSettings_Missing(t *testing.T) {
	s, err := LoadSettings(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadSettings() error = %v", err)
	}
	if s.DefaultColor != DefaultColor {
		t.Errorf("missing file should give defaults, got %+v", s)
	}
}

func TestSettings_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	s := NewSettings()
	s.DefaultColor = "#00ff00"
	s.ServerURL = "http://wall.local:8888/"
	s.Live = false

	if err := s.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file left behind")
	}

	loaded, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("LoadSettings() error = %v", err)
	}
	if loaded.DefaultColor != "#00ff00" || loaded.ServerURL != "http://wall.local:8888/" || loaded.Live {
		t.Errorf("loaded = %+v", loaded)
	}
}

func TestLoadSettings_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("version: 1\ndefault_color: \"#0000ff\"\n"), 0600); err != nil {
		t.Fatal(err)
	}

	s, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("LoadSettings() error = %v", err)
	}
	if s.ServerURL != DefaultServerURL || s.WindowWidth != DefaultWindowWidth {
		t.Errorf("unset fields should keep defaults, got %+v", s)
	}
}

func TestLoadSettings_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad version", "version: 2\n"},
		{"bad colour", "version: 1\ndefault_color: red\n"},
		{"bad url", "version: 1\nserver_url: localhost:8888\n"},
		{"bad yaml", "version: [\n"},
		{"bad width", "version: 1\nwindow_width: 0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0600); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadSettings(path); err == nil {
				t.Error("LoadSettings() should fail")
			}
		})
	}
}

func TestValidServerURL(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"http://localhost:8888/", true},
		{"https://wall.example.com", true},
		{"localhost:8888", false},
		{"", false},
		{"http://", false},
		{"not a url", false},
	}
	for _, tt := range tests {
		if got := ValidServerURL(tt.in); got != tt.want {
			t.Errorf("ValidServerURL(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
