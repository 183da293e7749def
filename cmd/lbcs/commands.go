package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/littlebull/lbcs/internal/config"
	"github.com/littlebull/lbcs/internal/discovery"
	"github.com/littlebull/lbcs/internal/grid"
	"github.com/littlebull/lbcs/internal/lbcsapi"
	"github.com/littlebull/lbcs/internal/render"
	"github.com/littlebull/lbcs/internal/storage"
	"github.com/littlebull/lbcs/internal/wall"
)

// Command flags
var (
	outputFormat string
	scanTimeout  int

	snapshotOut    string
	snapshotWidth  int
	snapshotLabels bool
	snapshotWall   string
	snapshotImage  string
)

// commandTimeout bounds the server calls of one scripting command.
const commandTimeout = 30 * time.Second

func init() {
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", "text", "Output format (text, json)")

	rootCmd.AddCommand(stateCmd)
	rootCmd.AddCommand(toggleCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(wallsCmd)
	rootCmd.AddCommand(problemsCmd)
	rootCmd.AddCommand(configCmd)

	wallsCmd.AddCommand(wallsListCmd, wallsDeleteCmd)
	problemsCmd.AddCommand(problemsListCmd, problemsLoadCmd, problemsDeleteCmd)
	configCmd.AddCommand(configShowCmd, configInitCmd)
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), commandTimeout)
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

// describeError turns client errors into a one-line hint.
func describeError(action string, err error) error {
	var apiErr *lbcsapi.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s: %s", action, lbcsapi.GetShortErrorMessage(err))
	}
	return fmt.Errorf("%s: %w", action, err)
}

// stateCmd prints the wall's grid
var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Show the wall's LED state",
	Long: `Fetch the LED grid from the wall controller and print its size and the
lit LEDs.`,
	Example: `  # Lit LEDs on the configured server
  lbcs state

  # Full state document for scripting
  lbcs state --server http://192.168.1.40:8888/ --format json`,
	Args: cobra.NoArgs,
	RunE: runState,
}

func runState(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	snap, err := lbcsapi.NewClient(settings.ServerURL).State(ctx)
	if err != nil {
		return describeError("failed to get state", err)
	}

	if outputFormat == "json" {
		return printJSON(snap)
	}

	lit := snap.Grid.Lit()
	fmt.Printf("Wall %s: %d rows x %d columns, %d lit\n", settings.ServerURL, snap.Rows, snap.Columns, len(lit))
	for _, index := range lit {
		row, col := 0, index
		if snap.Columns > 0 {
			row, col = index/snap.Columns, index%snap.Columns
		}
		fmt.Printf("  LED %-4d row %-3d col %-3d %s\n", index, row, col, snap.Grid.Get(index).Hex())
	}
	return nil
}

// toggleCmd toggles one LED the way a tap in the editor does
var toggleCmd = &cobra.Command{
	Use:   "toggle <index>",
	Short: "Toggle one LED",
	Long: `Toggle the LED at a row-major index: off when lit, otherwise the
configured default colour.`,
	Example: `  lbcs toggle 17`,
	Args:    cobra.ExactArgs(1),
	RunE:    runToggle,
}

func runToggle(cmd *cobra.Command, args []string) error {
	index, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid LED index %q", args[0])
	}

	manager, err := newManager(stderrNotifier)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	if err := manager.Sync(ctx); err != nil {
		return describeError("failed to sync", err)
	}
	change, ok := manager.TapIndex(index)
	if !ok {
		view := manager.View()
		return fmt.Errorf("LED %d is outside the %dx%d wall", index, view.Mapper.Rows(), view.Mapper.Columns())
	}
	if err := manager.CommitLED(ctx, change); err != nil {
		return describeError("toggle failed", err)
	}

	if change.Color.IsOn() {
		fmt.Printf("LED %d on (%s)\n", index, change.Color.Hex())
	} else {
		fmt.Printf("LED %d off\n", index)
	}
	return nil
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Turn every LED off",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, err := newManager(stderrNotifier)
		if err != nil {
			return err
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()

		if err := manager.ClearWall(ctx); err != nil {
			return describeError("clear failed", err)
		}
		fmt.Println("Wall cleared")
		return nil
	},
}

// snapshotCmd renders the wall photo with its LED overlay to a PNG
var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Render the wall to a PNG",
	Long: `Render the current wall as the editor shows it: the wall photo with the
lit LEDs drawn over it.

The image comes from --image, from a stored wall given with --wall, or the
built-in demo board.`,
	Example: `  # Demo board with the current problem
  lbcs snapshot --out problem.png

  # Stored wall, cell indices drawn on the image
  lbcs snapshot --wall 3f1c... --labels --width 1200`,
	Args: cobra.NoArgs,
	RunE: runSnapshot,
}

func init() {
	snapshotCmd.Flags().StringVarP(&snapshotOut, "out", "o", "wall.png", "Output PNG file")
	snapshotCmd.Flags().IntVar(&snapshotWidth, "width", 0, "Image side in pixels (default from settings)")
	snapshotCmd.Flags().BoolVar(&snapshotLabels, "labels", false, "Draw LED indices")
	snapshotCmd.Flags().StringVar(&snapshotWall, "wall", "", "Stored wall id to render")
	snapshotCmd.Flags().StringVar(&snapshotImage, "image", "", "Background image path or URL")
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	manager, err := newManager(stderrNotifier)
	if err != nil {
		return err
	}

	if snapshotWall != "" {
		if _, err := manager.LoadWalls(); err != nil {
			return err
		}
		if w := manager.LoadWall(snapshotWall); w.ID != snapshotWall {
			return fmt.Errorf("wall %q not found", snapshotWall)
		}
		// --server still wins over the stored address
		if serverURL != "" {
			manager.SetServerURL(serverURL)
		}
	}
	if snapshotImage != "" {
		manager.SetImage(snapshotImage)
	}
	if snapshotWidth > 0 {
		manager.SetWindowWidth(float64(snapshotWidth))
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	if err := manager.Sync(ctx); err != nil {
		return describeError("failed to sync", err)
	}

	compositor := render.NewCompositor(nil)
	if err := compositor.ShowLabels(snapshotLabels); err != nil {
		return fmt.Errorf("failed to load label font: %w", err)
	}
	img, err := compositor.Compose(ctx, manager.View())
	if img == nil {
		return fmt.Errorf("render failed: %w", err)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: background unavailable: %v\n", err)
	}

	if err := render.SavePNG(snapshotOut, img); err != nil {
		return err
	}
	fmt.Printf("Saved %s (%dx%d)\n", snapshotOut, img.Bounds().Dx(), img.Bounds().Dy())
	return nil
}

// scanCmd discovers wall controllers on the network
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for wall controllers on the network",
	Long: `Scan for wall controllers using mDNS/DNS-SD discovery.

Controllers and simulators started with --advertise register the
_lbcs._tcp service.`,
	Example: `  # Scan with the configured timeout
  lbcs scan

  # Longer scan for slow networks
  lbcs scan --timeout 15`,
	Args: cobra.NoArgs,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().IntVar(&scanTimeout, "timeout", 0, "Scan timeout in seconds (default from settings)")
}

func runScan(cmd *cobra.Command, args []string) error {
	timeout := scanTimeout
	if timeout <= 0 {
		timeout = settings.DiscoverTimeout
	}
	if outputFormat != "json" {
		fmt.Printf("Scanning for wall controllers (timeout: %ds)...\n\n", timeout)
	}

	servers, err := discovery.Scan(cmd.Context(), time.Duration(timeout)*time.Second)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if outputFormat == "json" {
		return printJSON(servers)
	}

	if len(servers) == 0 {
		fmt.Println("No wall controllers found.")
		fmt.Println("\nTroubleshooting:")
		fmt.Println("  - Ensure the controller is powered on and on this network")
		fmt.Println("  - Start a simulator with 'lbcs-server server --advertise'")
		fmt.Println("  - Try increasing --timeout for slower networks")
		fmt.Println("  - Use --server to give the address directly")
		return nil
	}

	fmt.Printf("Found %d controller(s):\n\n", len(servers))
	for i, s := range servers {
		fmt.Printf("%d. %s\n", i+1, s.Instance)
		fmt.Printf("   URL:     %s\n", s.BaseURL())
		if rows, cols, ok := s.Dimensions(); ok {
			fmt.Printf("   Grid:    %d x %d\n", rows, cols)
		}
		if len(s.Metadata) > 0 {
			fmt.Printf("   Metadata: %v\n", s.Metadata)
		}
		fmt.Println()
	}
	fmt.Println("Use 'lbcs --server <url>' to edit a wall")
	return nil
}

var wallsCmd = &cobra.Command{
	Use:   "walls",
	Short: "Manage stored walls",
}

var wallsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored walls",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		walls, err := store.GetWalls()
		if err != nil {
			return err
		}
		if outputFormat == "json" {
			return printJSON(walls)
		}
		if len(walls) == 0 {
			fmt.Println("No stored walls. Save one from the editor menu.")
			return nil
		}
		for _, w := range walls {
			fmt.Printf("%s  %-20s %s", w.ID, w.Name, w.ServerURL)
			if w.ImageURI != "" {
				fmt.Printf("  (%s)", w.ImageURI)
			}
			fmt.Println()
		}
		return nil
	},
}

var wallsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a stored wall",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, err := newManager(stderrNotifier)
		if err != nil {
			return err
		}
		if err := manager.DeleteWall(args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted wall %s\n", args[0])
		return nil
	},
}

var problemsCmd = &cobra.Command{
	Use:   "problems",
	Short: "Manage stored problems",
}

var problemsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored problems",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		problems, err := store.GetProblems()
		if err != nil {
			return err
		}
		if outputFormat == "json" {
			return printJSON(problemsJSON(problems))
		}
		if len(problems) == 0 {
			fmt.Println("No stored problems. Save one from the editor menu.")
			return nil
		}
		for _, p := range problems {
			lit := p.Grid.Lit()
			holds := make([]string, len(lit))
			for i, index := range lit {
				holds[i] = strconv.Itoa(index)
			}
			fmt.Printf("%s  %-20s %dx%d  holds: %s\n", p.ID, p.Name, p.Rows, p.Columns, strings.Join(holds, ","))
		}
		return nil
	},
}

// problemJSON is a problem with its grid in the controller's format.
type problemJSON struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Rows    int             `json:"rows"`
	Columns int             `json:"columns"`
	Grid    json.RawMessage `json:"grid"`
}

func problemsJSON(problems []storage.Problem) []problemJSON {
	out := make([]problemJSON, 0, len(problems))
	for _, p := range problems {
		data, err := grid.MarshalGrid(p.Grid)
		if err != nil {
			data = []byte("{}")
		}
		out = append(out, problemJSON{ID: p.ID, Name: p.Name, Rows: p.Rows, Columns: p.Columns, Grid: data})
	}
	return out
}

var problemsLoadCmd = &cobra.Command{
	Use:   "load <id>",
	Short: "Show a stored problem on the wall",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, err := newManager(stderrNotifier)
		if err != nil {
			return err
		}
		problems, err := manager.Problems()
		if err != nil {
			return err
		}

		var found *storage.Problem
		for i := range problems {
			if problems[i].ID == args[0] {
				found = &problems[i]
				break
			}
		}
		if found == nil {
			return fmt.Errorf("problem %q not found", args[0])
		}

		ctx, cancel := commandContext(cmd)
		defer cancel()
		if err := manager.LoadProblem(ctx, *found); err != nil {
			return describeError("load failed", err)
		}
		fmt.Printf("Loaded %s (%d holds)\n", found.Name, len(found.Grid.Lit()))
		return nil
	},
}

var problemsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a stored problem",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, err := newManager(stderrNotifier)
		if err != nil {
			return err
		}
		if err := manager.DeleteProblem(args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted problem %s\n", args[0])
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or create the settings file",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.GetConfigPath()
		if err != nil {
			return err
		}
		if outputFormat == "json" {
			return printJSON(settings)
		}
		fmt.Printf("Settings file:    %s\n", path)
		fmt.Printf("Server URL:       %s\n", settings.ServerURL)
		fmt.Printf("Default colour:   %s\n", settings.DefaultColor)
		fmt.Printf("Window width:     %d\n", settings.WindowWidth)
		fmt.Printf("Live updates:     %t\n", settings.Live)
		fmt.Printf("Discover timeout: %ds\n", settings.DiscoverTimeout)
		if settings.LibraryPath != "" {
			fmt.Printf("Library:          %s\n", settings.LibraryPath)
		}
		if settings.LogFile != "" {
			fmt.Printf("Log file:         %s\n", settings.LogFile)
		}
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the settings file with current values",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := settings.Save(); err != nil {
			return err
		}
		path, _ := config.GetConfigPath()
		fmt.Printf("Wrote %s\n", path)
		return nil
	},
}

// Compile-time check that the HTTP client satisfies the manager's gateway.
var _ wall.Gateway = (*lbcsapi.Client)(nil)
