package logging

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Component constants for structured logging.
const (
	CompSheet     = "sheet"
	CompLifecycle = "lifecycle"
	CompGesture   = "gesture"
	CompMirror    = "mirror"
	CompHost      = "host"
	CompUI        = "ui"
	CompConfig    = "config"
	CompStorage   = "storage"
)

// LogFileName is the active log file inside Config.LogDir.
const LogFileName = "debug.log"

// Config holds logging configuration.
type Config struct {
	// LogDir is the directory for log files (e.g. ~/.sheetdeck)
	LogDir string

	// Level is the minimum log level: "debug", "info", "warn", "error"
	Level string

	// ComponentLevels overrides Level per component, e.g.
	// {"gesture": "debug"} to trace drags only.
	ComponentLevels map[string]string

	// Format is "json" (default) or "text"
	Format string

	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool

	// RingBufferSize is the in-memory tail kept for crash dumps, in bytes
	RingBufferSize int

	// AggregateIntervalSecs is the aggregation flush interval (default: 30)
	AggregateIntervalSecs int

	// PprofAddr starts a pprof server on this address when non-empty
	PprofAddr string

	// Debug forces file logging even without a LogDir
	Debug bool
}

func (c *Config) applyDefaults() {
	if c.MaxSizeMB <= 0 {
		c.MaxSizeMB = 10
	}
	if c.MaxBackups <= 0 {
		c.MaxBackups = 5
	}
	if c.MaxAgeDays <= 0 {
		c.MaxAgeDays = 10
	}
	if c.RingBufferSize <= 0 {
		c.RingBufferSize = 1024 * 1024
	}
	if c.AggregateIntervalSecs <= 0 {
		c.AggregateIntervalSecs = 30
	}
}

// state is one Init generation. Component loggers resolve it at log time.
type state struct {
	handler slog.Handler
	level   slog.Level
	levels  map[string]slog.Level
	ring    *RingBuffer
	agg     *Aggregator
	file    *lumberjack.Logger
}

func (s *state) levelFor(component string) slog.Level {
	if l, ok := s.levels[component]; ok {
		return l
	}
	return s.level
}

func (s *state) close() {
	if s.agg != nil {
		s.agg.Stop()
	}
	if s.file != nil {
		s.file.Close()
	}
}

var (
	mu      sync.RWMutex
	current *state

	discard = &state{handler: slog.DiscardHandler, level: slog.LevelInfo}
)

func snapshot() *state {
	mu.RLock()
	defer mu.RUnlock()
	if current == nil {
		return discard
	}
	return current
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Init installs a new logging configuration, replacing any earlier one.
// Without Debug and without a LogDir, records are discarded.
func Init(cfg Config) {
	cfg.applyDefaults()

	s := &state{
		level:  parseLevel(cfg.Level),
		levels: make(map[string]slog.Level, len(cfg.ComponentLevels)),
	}
	floor := s.level
	for name, lvl := range cfg.ComponentLevels {
		l := parseLevel(lvl)
		s.levels[canonicalComponent(strings.ToLower(name))] = l
		floor = min(floor, l)
	}

	if !cfg.Debug && cfg.LogDir == "" {
		s.handler = slog.DiscardHandler
		s.ring = NewRingBuffer(1024)
		s.agg = NewAggregator(nil, cfg.AggregateIntervalSecs)
	} else {
		s.file = &lumberjack.Logger{
			Filename:   filepath.Join(cfg.LogDir, LogFileName),
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		}
		s.ring = NewRingBuffer(cfg.RingBufferSize)
		out := io.MultiWriter(s.file, s.ring)

		// The handler admits the most verbose level any component wants;
		// dynamicHandler applies the per-component level.
		opts := &slog.HandlerOptions{Level: floor}
		if cfg.Format == "text" {
			s.handler = slog.NewTextHandler(out, opts)
		} else {
			s.handler = slog.NewJSONHandler(out, opts)
		}
		s.agg = NewAggregator(slog.New(s.handler), cfg.AggregateIntervalSecs)
		s.agg.Start()
	}

	mu.Lock()
	old := current
	current = s
	mu.Unlock()
	if old != nil {
		old.close()
	}

	if cfg.PprofAddr != "" {
		startPprof(cfg.PprofAddr)
	}
}

// Logger returns a logger without a component. Safe to call before Init.
func Logger() *slog.Logger {
	return slog.New(&dynamicHandler{})
}

// ForComponent returns a logger that tags records with component.
// Package-level loggers are created before Init runs, so the handler is
// resolved at log time rather than captured here.
func ForComponent(name string) *slog.Logger {
	return slog.New(&dynamicHandler{component: name})
}

type dynamicHandler struct {
	component string
	attrs     []slog.Attr
	group     string
}

func (h *dynamicHandler) Enabled(ctx context.Context, level slog.Level) bool {
	s := snapshot()
	return level >= s.levelFor(h.component) && s.handler.Enabled(ctx, level)
}

func (h *dynamicHandler) Handle(ctx context.Context, r slog.Record) error {
	handler := snapshot().handler
	if h.component != "" {
		handler = handler.WithAttrs([]slog.Attr{slog.String("component", h.component)})
	}
	if len(h.attrs) > 0 {
		handler = handler.WithAttrs(h.attrs)
	}
	if h.group != "" {
		handler = handler.WithGroup(h.group)
	}
	return handler.Handle(ctx, r)
}

func (h *dynamicHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &dynamicHandler{component: h.component, attrs: merged, group: h.group}
}

func (h *dynamicHandler) WithGroup(name string) slog.Handler {
	return &dynamicHandler{component: h.component, attrs: h.attrs, group: name}
}

// Aggregate counts a high-frequency event toward the next summary.
func Aggregate(component, event string, fields ...slog.Attr) {
	if agg := snapshot().agg; agg != nil {
		agg.Record(component, event, fields...)
	}
}

// DumpRingBuffer writes the recent log tail to path.
func DumpRingBuffer(path string) error {
	ring := snapshot().ring
	if ring == nil {
		return nil
	}
	return ring.DumpToFile(path)
}

// Shutdown flushes pending summaries and closes the log file.
func Shutdown() {
	mu.Lock()
	s := current
	current = nil
	mu.Unlock()
	if s != nil {
		s.close()
	}
}
