package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/asheshgoplani/sheetdeck/internal/config"
	"github.com/asheshgoplani/sheetdeck/internal/host"
	"github.com/asheshgoplani/sheetdeck/internal/logging"
	"github.com/asheshgoplani/sheetdeck/internal/sheet"
	"github.com/asheshgoplani/sheetdeck/internal/statedb"
	"github.com/asheshgoplani/sheetdeck/internal/ui"
)

const Version = "0.3.0"

// demoPanelID keys the demo panel's facets and events in the state db.
const demoPanelID = "demo"

// eventsKeep bounds the event journal; older rows are pruned at startup.
const eventsKeep = 1000

func init() {
	initColorProfile()
}

// initColorProfile configures the lipgloss color profile.
// SHEETDECK_COLOR overrides detection: truecolor, 256, 16, none
func initColorProfile() {
	if colorEnv := os.Getenv("SHEETDECK_COLOR"); colorEnv != "" {
		switch strings.ToLower(colorEnv) {
		case "truecolor", "true", "24bit":
			lipgloss.SetColorProfile(termenv.TrueColor)
			return
		case "256", "ansi256":
			lipgloss.SetColorProfile(termenv.ANSI256)
			return
		case "16", "ansi", "basic":
			lipgloss.SetColorProfile(termenv.ANSI)
			return
		case "none", "off", "ascii":
			lipgloss.SetColorProfile(termenv.Ascii)
			return
		}
	}

	colorTerm := os.Getenv("COLORTERM")
	if colorTerm == "truecolor" || colorTerm == "24bit" {
		lipgloss.SetColorProfile(termenv.TrueColor)
		return
	}
	lipgloss.SetColorProfile(termenv.EnvColorProfile())
}

func main() {
	args := os.Args[1:]
	if len(args) > 0 {
		switch args[0] {
		case "version", "--version", "-v":
			fmt.Printf("sheetdeck v%s\n", Version)
			return
		case "help", "--help", "-h":
			printHelp(os.Stdout)
			return
		case "events":
			if err := handleEvents(args[1:], os.Stdout); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			return
		case "config":
			if err := handleConfig(args[1:], os.Stdout); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			return
		}
	}

	opts, err := parseRunFlags(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "Error: sheetdeck needs an interactive terminal")
		os.Exit(1)
	}

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type runOptions struct {
	debug bool
	theme string
	fresh bool
}

func parseRunFlags(args []string) (runOptions, error) {
	var opts runOptions
	fs := flag.NewFlagSet("sheetdeck", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.BoolVar(&opts.debug, "debug", os.Getenv("SHEETDECK_DEBUG") != "", "Log at debug level")
	fs.StringVar(&opts.theme, "theme", "", "Color scheme: dark, light or system")
	fs.BoolVar(&opts.fresh, "fresh", false, "Ignore facets saved by the previous run")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if fs.NArg() > 0 {
		return opts, fmt.Errorf("unknown command %q (see 'sheetdeck help')", fs.Arg(0))
	}
	switch opts.theme {
	case "", "dark", "light", "system":
	default:
		return opts, fmt.Errorf("invalid theme %q", opts.theme)
	}
	return opts, nil
}

func initLogging(homeDir string, debug bool) {
	ls := config.GetLogSettings()
	cfg := logging.Config{
		Debug:                 debug,
		LogDir:                homeDir,
		Level:                 ls.DebugLevel,
		ComponentLevels:       ls.Components,
		Format:                ls.DebugFormat,
		MaxSizeMB:             ls.DebugMaxMB,
		MaxBackups:            ls.DebugBackups,
		MaxAgeDays:            ls.DebugRetentionDays,
		Compress:              ls.DebugCompress,
		RingBufferSize:        ls.RingBufferMB * 1024 * 1024,
		AggregateIntervalSecs: ls.AggregateIntervalS,
	}
	if debug {
		cfg.Level = "debug"
		cfg.PprofAddr = ls.PprofAddr
	}
	logging.Init(cfg)
	log.SetOutput(logging.NewBridgeWriter(logging.CompUI))
	log.SetFlags(0)
}

func openState(homeDir string) (*statedb.StateDB, error) {
	db, err := statedb.Open(filepath.Join(homeDir, statedb.FileName))
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// restoreFacets replays the facets saved at the last exit. Facets the
// config set but the saved panel lacked are removed.
func restoreFacets(p *sheet.Panel, saved map[string]string) {
	if len(saved) == 0 {
		return
	}
	for _, name := range sheet.ObservedFacets {
		if v, ok := saved[name]; ok {
			p.SetAttribute(name, v)
		} else {
			p.RemoveAttribute(name)
		}
	}
}

func run(opts runOptions) error {
	homeDir, err := config.GetHomeDir()
	if err != nil {
		return err
	}
	initLogging(homeDir, opts.debug)
	defer logging.Shutdown()
	mainLog := logging.ForComponent(logging.CompUI)

	userCfg, cfgErr := config.LoadUserConfig()
	if cfgErr != nil {
		// Defaults still apply; the error is shown in the status bar
		mainLog.Warn("config_load_failed", slog.String("error", cfgErr.Error()))
		userCfg = &config.UserConfig{}
	}
	theme := opts.theme
	if theme == "" {
		theme = userCfg.Theme
	}
	ui.InitTheme(config.ResolveTheme(theme))

	db, err := openState(homeDir)
	if err != nil {
		return fmt.Errorf("open state: %w", err)
	}
	defer db.Close()
	if n, err := db.PruneEvents(eventsKeep); err == nil && n > 0 {
		mainLog.Debug("events_pruned", slog.Int64("rows", n))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	sched := ui.NewTickScheduler(nil)
	doc := host.NewDocument(sched)
	config.GetStyleSettings().Apply(doc.Styles)

	ss := config.GetSheetSettings()
	panel := sheet.Build(doc, demoContent, ss.PanelConfig(),
		sheet.WithID(demoPanelID),
		sheet.WithThreshold(ss.DragThreshold),
		sheet.WithStartupDelay(ss.GetStartupDelay()))
	if !opts.fresh {
		saved, err := db.LoadFacets(demoPanelID)
		if err != nil {
			mainLog.Warn("facets_load_failed", slog.String("error", err.Error()))
		}
		restoreFacets(panel, saved)
	}

	journal := statedb.NewJournal(db, 128)
	uiOpts := ui.Options{
		CellHeight: ss.CellHeight,
		Background: demoBackground(),
		Err:        cfgErr,
		OnEvent: func(e *sheet.Event) {
			journal.Record(statedb.EventRow{
				PanelID: e.Panel.ID(),
				Type:    string(e.Type),
				Source:  e.Source,
				At:      time.Now(),
			})
		},
	}

	if w, err := config.NewWatcher(gctx); err != nil {
		mainLog.Warn("config_watcher_unavailable", slog.String("error", err.Error()))
	} else {
		defer w.Close()
		uiOpts.ConfigChanges = w.Changes()
		uiOpts.ConfigErrors = w.Errors()
		g.Go(w.Run)
	}
	if theme == "system" {
		if tw := ui.NewThemeWatcher(gctx); tw != nil {
			defer tw.Close()
			uiOpts.ThemeChanges = tw.Changes()
		}
	}

	model := ui.NewSheetModel(panel, sched, uiOpts)
	prog := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(gctx))

	runCtx, stop := context.WithCancel(gctx)
	g.Go(func() error {
		defer stop()
		_, err := prog.Run()
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	})
	g.Go(func() error { return journal.Run(runCtx) })
	g.Go(func() error { return dumpOnSignal(runCtx, homeDir) })
	g.Go(func() error {
		<-runCtx.Done()
		cancel()
		return nil
	})

	err = g.Wait()

	// The program has exited; the panel is no longer shared
	if saveErr := db.SaveFacets(demoPanelID, panel.Attributes()); saveErr != nil {
		mainLog.Warn("facets_save_failed", slog.String("error", saveErr.Error()))
	}
	panel.Detach()
	if dropped := journal.Dropped(); dropped > 0 {
		mainLog.Warn("journal_dropped_events", slog.Int64("count", dropped))
	}
	return err
}

// dumpOnSignal writes the in-memory log tail to the home directory each
// time SIGUSR1 arrives.
func dumpOnSignal(ctx context.Context, dir string) error {
	usr1 := make(chan os.Signal, 1)
	signal.Notify(usr1, syscall.SIGUSR1)
	defer signal.Stop(usr1)
	dumpLog := logging.ForComponent(logging.CompUI)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-usr1:
			path := filepath.Join(dir, fmt.Sprintf("crash-dump-%d.jsonl", time.Now().Unix()))
			if err := logging.DumpRingBuffer(path); err != nil {
				dumpLog.Error("crash_dump_failed", slog.String("error", err.Error()))
				continue
			}
			dumpLog.Info("crash_dump_written", slog.String("path", path))
		}
	}
}

var demoContent = []string{
	"A sheet slides up from the bottom edge and keeps the page behind it in place until it is dismissed.",
	"Drag the handle down past the threshold and release to dismiss. A shorter drag snaps back.",
	"Press esc, click the close icon, or click the dimmed backdrop when block-bg is on.",
}

func demoBackground() []string {
	lines := make([]string, 0, 120)
	for i := 1; i <= 120; i++ {
		lines = append(lines, fmt.Sprintf("  %3d  background row; scroll with the wheel or j/k while the sheet is closed", i))
	}
	return lines
}

func printHelp(w io.Writer) {
	fmt.Fprintf(w, "sheetdeck v%s\n", Version)
	fmt.Fprintln(w, "Interactive bottom sheet for the terminal")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage: sheetdeck [flags] [command]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  --debug          Log at debug level")
	fmt.Fprintln(w, "  --theme <name>   Color scheme: dark, light or system")
	fmt.Fprintln(w, "  --fresh          Ignore facets saved by the previous run")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  (none)           Start the demo")
	fmt.Fprintln(w, "  events [-n N]    Show recent panel events (--json, --panel <id>)")
	fmt.Fprintln(w, "  config init      Write an example config.toml")
	fmt.Fprintln(w, "  config path      Print the config file location")
	fmt.Fprintln(w, "  version          Show version")
	fmt.Fprintln(w, "  help             Show this help")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  SHEETDECK_HOME   State directory (default ~/.sheetdeck)")
	fmt.Fprintln(w, "  SHEETDECK_COLOR  truecolor, 256, 16 or none")
	fmt.Fprintln(w, "  SHEETDECK_DEBUG  Same as --debug")
}
