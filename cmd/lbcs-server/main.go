// Lbcs-server simulates a Little Bull wall controller.
//
// It keeps an in-memory LED grid behind the controller's HTTP API and
// pushes every change to websocket subscribers, so the lbcs client can be
// used and tested without wall hardware. The simulator can advertise
// itself over mDNS for 'lbcs scan' and the client's "Find walls" menu.
//
// Usage:
//
//	lbcs-server server [flags]
//
// See 'lbcs-server server --help' for available options.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/littlebull/lbcs/internal/logging"
	"github.com/littlebull/lbcs/internal/server"
	"github.com/littlebull/lbcs/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "lbcs-server",
	Short: "Little Bull wall controller simulator",
	Long: `A standalone simulator for the Little Bull wall controller.

Serves the controller's HTTP API (state, led, clear) and a websocket feed
of state changes from an in-memory LED grid.

For editing walls and problems, use the 'lbcs' client.`,
	Version: version.Version,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(versionCmd)
}

// Server command and flags
var (
	host      string
	port      int
	rows      int
	columns   int
	advertise bool
	instance  string
	logLevel  string
	logFile   string
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the simulator",
	Long: `Start the wall simulator and serve until interrupted.

The grid starts with every LED off. With --advertise the simulator registers
itself as a _lbcs._tcp service so clients can find it over mDNS.`,
	Example: `  # Default 12x11 wall on localhost:8888
  lbcs-server server

  # Larger wall reachable from the network, with discovery
  lbcs-server server --host 0.0.0.0 --rows 18 --columns 11 --advertise

  # Verbose logging to a file
  lbcs-server server --log-level debug --log-file /tmp/lbcs-server.log`,
	RunE: runServer,
}

func init() {
	serverCmd.Flags().StringVar(&host, "host", server.DefaultHost, "Listen address (empty = all interfaces)")
	serverCmd.Flags().IntVar(&port, "port", server.DefaultPort, "Listen port (0 = any free port)")
	serverCmd.Flags().IntVar(&rows, "rows", server.DefaultRows, "LED rows")
	serverCmd.Flags().IntVar(&columns, "columns", server.DefaultColumns, "LED columns")
	serverCmd.Flags().BoolVar(&advertise, "advertise", false, "Advertise the simulator over mDNS")
	serverCmd.Flags().StringVar(&instance, "instance", server.DefaultInstance, "mDNS instance name")
	serverCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	serverCmd.Flags().StringVar(&logFile, "log-file", "", "Log file (default stdout)")
}

func runServer(cmd *cobra.Command, args []string) error {
	if err := logging.Initialize(logging.Options{Level: logLevel, File: logFile}); err != nil {
		return err
	}
	defer logging.Sync()

	srv, err := server.New(&server.Config{
		Host:      host,
		Port:      port,
		Rows:      rows,
		Columns:   columns,
		Advertise: advertise,
		Instance:  instance,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.Line("lbcs-server"))
	},
}
