// Command ls-spiral renders a natal chart as a twelve-house spiral in the terminal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/litescript/ls-spiral/internal/camera"
	"github.com/litescript/ls-spiral/internal/chart"
	"github.com/litescript/ls-spiral/internal/config"
	"github.com/litescript/ls-spiral/internal/logging"
	"github.com/litescript/ls-spiral/internal/posestream"
	"github.com/litescript/ls-spiral/internal/render"
	"github.com/litescript/ls-spiral/internal/scene"
	"github.com/litescript/ls-spiral/internal/state"
	"github.com/litescript/ls-spiral/internal/ui"
)

// CLI flags for headless mode
var (
	summaryMode bool
	eventsMode  bool
	exportPath  string
	renderPath  string
	serveAddr   string
	focusHouse  int
	focusBody   string
	flatMode    bool
)

// maxRenderFrames bounds the 60 Hz simulation before a headless render.
const maxRenderFrames = 60 * 60

func main() {
	configPath := flag.String("config", "", "Config file (json, yaml or toml)")
	chartPath := flag.String("chart", "", "Chart JSON file (placeholder layout when empty)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	logFile := flag.String("log-file", "", "Log file; {session} expands to the start time")
	flag.BoolVar(&summaryMode, "summary", false, "Print planet, house and aspect tables instead of TUI")
	flag.BoolVar(&eventsMode, "events", false, "Print the diagnostic event log")
	flag.StringVar(&exportPath, "export", "", "Export scene JSON to file (use - for stdout)")
	flag.StringVar(&renderPath, "render", "", "Render a frame to FILE.webp or FILE.png (use - for WebP on stdout)")
	flag.IntVar(&focusHouse, "focus", 0, "House to frame when rendering (1-12, 0 for overview)")
	flag.StringVar(&focusBody, "body", "", "Planet to frame when rendering")
	flag.BoolVar(&flatMode, "flat", false, "Render the flat view")
	flag.StringVar(&serveAddr, "serve", "", "Serve the pose stream on ADDR (use - for the configured address)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *logFile != "" {
		cfg.LogFile = *logFile
	}

	headless := summaryMode || eventsMode || exportPath != "" || renderPath != "" || serveAddr != ""

	// Set up logging
	logger, closeLog, err := setupLogging(cfg, headless)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	// Initialize components
	metrics, err := state.NewMetrics()
	if err != nil {
		logger.Warn("metrics disabled: %v", err)
		metrics = nil
	}
	stateCfg := state.DefaultConfig()
	stateCfg.Params = cfg.Spiral
	stateMgr, err := state.NewManager(stateCfg, metrics, logger.With("component", "state"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *chartPath != "" {
		c, issues, err := chart.ReadFile(*chartPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		stateMgr.SetChart(c, *chartPath, issues)
	}

	// Headless mode: no TUI
	if headless {
		if err := runHeadless(ctx, cfg, stateMgr, logger); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Create TUI model
	model := ui.New(stateMgr, ui.Options{
		Camera:    cfg.Camera,
		ChartPath: *chartPath,
	}, logger.With("component", "ui"))

	p := tea.NewProgram(model, tea.WithAltScreen())
	go func() {
		<-ctx.Done()
		p.Quit()
	}()

	// Run TUI (blocks until quit)
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}

// setupLogging logs to stderr in headless mode. The TUI owns the terminal,
// so there logs go to the configured file or nowhere.
func setupLogging(cfg config.Config, headless bool) (*logging.Logger, func(), error) {
	level := logging.ParseLevel(cfg.LogLevel)
	if cfg.LogFile == "" {
		if headless {
			return logging.New(level), func() {}, nil
		}
		return logging.Discard(), func() {}, nil
	}

	path := strings.ReplaceAll(cfg.LogFile, "{session}", logging.SessionStamp(time.Now()))
	f, err := logging.OpenFile(path)
	if err != nil {
		return nil, nil, err
	}
	return logging.NewWithWriter(f, level), func() { f.Close() }, nil
}

// runHeadless handles all headless modes without starting TUI.
func runHeadless(ctx context.Context, cfg config.Config, stateMgr *state.Manager, logger *logging.Logger) error {
	snap := stateMgr.Snapshot()
	isTTY := term.IsTerminal(int(os.Stdout.Fd()))

	// Export JSON if requested
	if exportPath != "" {
		export := scene.Build(snap)
		if err := writeTo(exportPath, export.WriteJSON); err != nil {
			return fmt.Errorf("write scene JSON: %w", err)
		}
	}

	// Print summary table if requested
	if summaryMode {
		ts := snap.LoadedAt
		if ts.IsZero() {
			ts = time.Now()
		}
		scene.WriteSummaryTable(os.Stdout, snap, ts)
	}

	// Events log
	if eventsMode {
		fmt.Println()
		scene.WriteEvents(os.Stdout, snap.Events, 10)
	}

	if renderPath != "" {
		if renderPath == "-" && isTTY {
			return errors.New("refusing to write an image to a terminal; redirect stdout or give a file name")
		}
		if err := renderFrame(ctx, cfg, snap, logger); err != nil {
			return err
		}
	}

	if serveAddr != "" {
		addr := serveAddr
		if addr == "-" {
			addr = cfg.Serve.Addr
		}
		srv := posestream.New(stateMgr, cfg.Camera, cfg.Serve.FrameRate, logger.With("component", "posestream"))
		return srv.ListenAndServe(ctx, addr)
	}
	return nil
}

// frameFocus turns the -focus and -body flags into a camera focus.
func frameFocus(snap state.Snapshot, house int, body string) (camera.Focus, error) {
	if body != "" {
		p, ok := snap.Mapping.Planet(body)
		if !ok {
			return camera.Overview, fmt.Errorf("unknown body %q", body)
		}
		return camera.BodyFocus(p.LayerIndex, p.Name), nil
	}
	switch {
	case house == 0:
		return camera.Overview, nil
	case house >= 1 && house <= snap.Geometry.Params.LayerCount:
		return camera.LayerFocus(house - 1), nil
	}
	return camera.Overview, fmt.Errorf("house %d out of range", house)
}

// settleCamera runs the choreographer at 60 Hz until the pose and attitude
// come to rest.
func settleCamera(ctx context.Context, ch *camera.Choreographer) error {
	for i := 0; i < maxRenderFrames; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if ch.State() == camera.Idle && !ch.Settling() && ch.AttitudeSettled() {
			return nil
		}
		ch.Tick(1.0 / 60)
	}
	return errors.New("camera did not settle")
}

func renderFrame(ctx context.Context, cfg config.Config, snap state.Snapshot, logger *logging.Logger) error {
	focus, err := frameFocus(snap, focusHouse, focusBody)
	if err != nil {
		return err
	}

	ch := camera.New(snap.Geometry, cfg.Camera, logger.With("component", "camera"))
	ch.SetBodies(snap.Mapping.Planets)
	ch.SetFlat(flatMode)
	ch.SetFocus(focus)
	if err := settleCamera(ctx, ch); err != nil {
		return err
	}

	opt := render.DefaultOptions()
	opt.Width = cfg.Render.Width
	opt.Height = cfg.Render.Height
	opt.Supersample = cfg.Render.Supersample

	img := render.Frame(render.Scene{
		Geometry: snap.Geometry,
		Stars:    snap.Backdrop,
		Planets:  snap.Mapping.Planets,
		Aspects:  snap.Aspects,
		Pose:     ch.Pose(),
		Attitude: ch.Attitude(),
		Focus:    ch.Focus(),
	}, opt)

	if renderPath == "-" {
		return render.Encode(os.Stdout, img, render.WebP)
	}
	if err := render.WriteFile(renderPath, img); err != nil {
		return err
	}
	logger.Info("rendered %s at %s", ch.Focus(), renderPath)
	return nil
}

// writeTo writes to stdout for "-" or creates path.
func writeTo(path string, write func(io.Writer) error) error {
	if path == "-" {
		return write(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
