package main

import (
	_ "github.com/vanderheijden86/orgview/internal/ttyguard"

	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime/pprof"
	"strconv"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/orgview/internal/datasource"
	"github.com/vanderheijden86/orgview/pkg/config"
	"github.com/vanderheijden86/orgview/pkg/debug"
	"github.com/vanderheijden86/orgview/pkg/export"
	"github.com/vanderheijden86/orgview/pkg/loader"
	"github.com/vanderheijden86/orgview/pkg/ui"
	"github.com/vanderheijden86/orgview/pkg/version"
	"github.com/vanderheijden86/orgview/pkg/watcher"
)

// overrides holds the command line settings that win over the config file
// and the environment.
type overrides struct {
	root     string
	rootSet  bool
	maxDepth int
}

// apply layers the environment, then the flags, over cfg.
func (o overrides) apply(cfg *config.Config) {
	cfg.ApplyEnv()
	if o.rootSet {
		cfg.RootUserEmail = o.root
	}
	if o.maxDepth != 0 {
		cfg.MaxDepth = o.maxDepth
	}
}

// exportRequest lists the headless outputs asked for on the command line.
type exportRequest struct {
	svg       string
	png       string
	sqlite    string
	robotJSON bool
}

func (r exportRequest) any() bool {
	return r.svg != "" || r.png != "" || r.sqlite != "" || r.robotJSON
}

func main() {
	configPath := flag.String("config", "", "Config file (default: $XDG_CONFIG_HOME/orgview/config.yaml)")
	root := flag.String("root", "", "Root user mail or UPN; empty shows demo data")
	maxDepth := flag.Int("max-depth", 0, "Management levels to load below the root (1-10)")
	exportSVG := flag.String("export-svg", "", "Write the chart to an SVG file and exit")
	exportPNG := flag.String("export-png", "", "Write the chart to a PNG file and exit")
	exportSQLite := flag.String("export-sqlite", "", "Write the loaded members to a SQLite directory cache and exit")
	robotJSON := flag.Bool("robot-json", false, "Print the chart as JSON to stdout and exit")
	configure := flag.Bool("configure", false, "Edit settings interactively and exit")
	versionFlag := flag.Bool("version", false, "Show version")
	cpuProfile := flag.String("cpu-profile", "", "Write CPU profile to file")
	help := flag.Bool("help", false, "Show help")
	flag.Parse()

	// CPU profiling support
	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not create CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Could not start CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer pprof.StopCPUProfile()
	}

	if *help {
		fmt.Println("Usage: orgview [options]")
		fmt.Println("\nAn interactive org chart for the terminal.")
		flag.PrintDefaults()
		return
	}

	if *versionFlag {
		fmt.Printf("orgview %s\n", version.Version)
		return
	}

	path := *configPath
	if path == "" {
		path = config.ConfigPath()
	}

	ov := overrides{root: *root, maxDepth: *maxDepth}
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "root" {
			ov.rootSet = true
		}
	})

	cfg, err := loadConfig(path, ov)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	if *configure {
		if path == "" {
			fmt.Fprintln(os.Stderr, "Error: cannot determine config directory; pass --config")
			os.Exit(1)
		}
		if _, err := config.RunWizard(cfg, path, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	req := exportRequest{svg: *exportSVG, png: *exportPNG, sqlite: *exportSQLite, robotJSON: *robotJSON}
	var logger *log.Logger
	if req.any() {
		logger = log.New(os.Stderr, "orgview: ", 0)
	}

	l, closeSource := newLoader(cfg, logger)
	defer closeSource()

	if req.any() {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if err := runExports(ctx, l, cfg, req, os.Stdout, os.Stderr); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	opts := []ui.Option{
		ui.WithConfigPath(path),
		ui.WithConfigOverrides(ov.apply),
	}
	if path != "" {
		w, err := watcher.New(path)
		if err == nil {
			err = w.Start()
		}
		if err != nil {
			debug.Log("config watcher disabled: %v", err)
		} else {
			defer w.Stop()
			opts = append(opts, ui.WithWatcher(w))
		}
	}

	m := ui.NewModel(cfg, l, opts...)
	final, err := runTUIProgram(m)
	if fm, ok := final.(ui.Model); ok {
		fm.Stop()
	} else {
		m.Stop()
	}
	if err != nil {
		fmt.Printf("Error running orgview: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies env and flag overrides, in
// that order.
func loadConfig(path string, ov overrides) (config.Config, error) {
	cfg := config.DefaultConfig()
	if path != "" {
		var err error
		cfg, err = config.LoadFrom(path)
		if err != nil {
			return cfg, err
		}
	}
	ov.apply(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// newLoader opens the configured directory source. Demo mode needs none. A
// source that cannot be opened leaves the loader without one, so loads fall
// back to demo data with a message instead of aborting.
func newLoader(cfg config.Config, logger *log.Logger) (*loader.Loader, func()) {
	opts := []loader.Option{loader.WithLogger(logger)}
	if cfg.DemoMode() {
		return loader.New(nil, opts...), func() {}
	}
	src, closer, err := datasource.Open(cfg.Source)
	if err != nil {
		if logger != nil {
			logger.Printf("warning: %v", err)
		}
		debug.Log("opening source: %v", err)
		return loader.New(nil, opts...), func() {}
	}
	return loader.New(src, opts...), func() {
		if err := closer.Close(); err != nil {
			debug.Log("closing source: %v", err)
		}
	}
}

// runExports loads the chart once and writes every requested output. A
// demo fallback is reported on errOut but still exported.
func runExports(ctx context.Context, l *loader.Loader, cfg config.Config, req exportRequest, out, errOut io.Writer) error {
	res := l.Load(ctx, cfg.RootUserEmail, cfg.MaxDepth)
	if res.Message != "" {
		fmt.Fprintf(errOut, "warning: %s\n", res.Message)
	}

	for _, snap := range []struct{ path, format string }{{req.svg, "svg"}, {req.png, "png"}} {
		if snap.path == "" {
			continue
		}
		err := export.SaveSnapshot(export.SnapshotOptions{
			Path:    snap.path,
			Format:  snap.format,
			Title:   cfg.Description,
			Members: res.Members,
			Demo:    res.Demo,
		})
		if err != nil {
			return fmt.Errorf("export %s: %w", snap.format, err)
		}
		fmt.Fprintf(errOut, "Wrote %s\n", snap.path)
	}

	if req.sqlite != "" {
		err := export.SaveSQLite(req.sqlite, res.Members, export.SQLiteMeta{
			Description:  cfg.Description,
			RootIdentity: cfg.RootUserEmail,
			MaxDepth:     config.ClampDepth(cfg.MaxDepth),
			Demo:         res.Demo,
			ExportedAt:   time.Now(),
		})
		if err != nil {
			return fmt.Errorf("export sqlite: %w", err)
		}
		fmt.Fprintf(errOut, "Wrote %s\n", req.sqlite)
	}

	if req.robotJSON {
		report := export.BuildReport(res.Members, export.ReportOptions{
			Description:    cfg.Description,
			RootIdentity:   cfg.RootUserEmail,
			Demo:           res.Demo,
			Message:        res.Message,
			IncludeMetrics: true,
			Now:            time.Now(),
		})
		if err := export.WriteJSON(out, report); err != nil {
			return fmt.Errorf("write json: %w", err)
		}
	}
	return nil
}

func runTUIProgram(m ui.Model) (tea.Model, error) {
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithoutSignalHandler(),
	)

	runDone := make(chan struct{})
	defer close(runDone)

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}

		p.Quit()

		select {
		case <-runDone:
			return
		case <-sigCh:
		case <-time.After(5 * time.Second):
		}

		p.Kill()
	}()

	// Optional auto-quit for automated tests: set ORGVIEW_TUI_AUTOCLOSE_MS.
	if v := os.Getenv("ORGVIEW_TUI_AUTOCLOSE_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			go func() {
				timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
				defer timer.Stop()

				select {
				case <-runDone:
					return
				case <-timer.C:
				}

				p.Quit()
			}()
		}
	}

	final, err := p.Run()
	if err != nil && (errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted)) {
		return final, nil
	}
	return final, err
}
