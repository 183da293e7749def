// Lbcs is the Little Bull Climbing System client.
//
// It edits climbing problems on an LED wall: each hold has an LED, and a
// problem is the set of lit holds. Walls and problems are kept in a local
// library file. The client talks to the wall controller over HTTP and
// follows its websocket feed for changes made elsewhere.
//
// Usage:
//
//	lbcs [command] [flags]
//
// Running without arguments launches the interactive editor.
// See 'lbcs --help' for available commands.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/littlebull/lbcs/internal/config"
	"github.com/littlebull/lbcs/internal/logging"
	"github.com/littlebull/lbcs/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// Global flags
var (
	serverURL string
	logLevel  string
	logFile   string

	settings *config.Settings
)

var rootCmd = &cobra.Command{
	Use:   "lbcs",
	Short: "Little Bull Climbing System",
	Long: `Edit climbing problems on a Little Bull LED wall.

Tap holds to light them, save the lit set as a problem, and load problems
back onto the wall. Walls remember their controller address and a photo
of the board.

If no command is specified, the interactive editor will launch.`,
	Version:           version.Version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
	RunE: runEditor,
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "Wall controller URL (default from settings)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Log file")

	rootCmd.AddCommand(versionCmd)
}

// setup loads settings and starts logging before any command runs.
func setup(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load()
	if err != nil {
		return err
	}
	settings = loaded

	if serverURL != "" {
		if !config.ValidServerURL(serverURL) {
			return fmt.Errorf("invalid --server %q: want an absolute URL such as http://localhost:8888/", serverURL)
		}
		settings.ServerURL = serverURL
	}
	if logFile == "" {
		logFile = settings.LogFile
	}
	// the editor owns the terminal, so its logs go to a file
	if logFile == "" && !cmd.HasParent() {
		dir, err := config.GetConfigDir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
		logFile = filepath.Join(dir, "lbcs.log")
	}

	return logging.Initialize(logging.Options{Level: logLevel, File: logFile})
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.Line("lbcs"))
	},
}
