// Package logging builds the process-wide slog logger and lets it be
// reconfigured at runtime. Loggers derived with With or WithGroup keep
// following the active handler after a reconfigure.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Rotation defaults for the optional log file.
const (
	DefaultMaxSizeMB  = 50
	DefaultMaxBackups = 3
	DefaultMaxAgeDays = 14
)

// Config describes the desired logging configuration.
type Config struct {
	Level      string `yaml:"level" json:"level"`
	Format     string `yaml:"format" json:"format"`
	FilePath   string `yaml:"file_path" json:"file_path,omitempty"`
	MaxSizeMB  int    `yaml:"max_size_mb" json:"max_size_mb,omitempty"`
	MaxBackups int    `yaml:"max_backups" json:"max_backups,omitempty"`
	MaxAgeDays int    `yaml:"max_age_days" json:"max_age_days,omitempty"`
	Compress   bool   `yaml:"compress" json:"compress,omitempty"`
}

// DefaultConfig returns info-level JSON logging to stderr only.
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Format:     "json",
		MaxSizeMB:  DefaultMaxSizeMB,
		MaxBackups: DefaultMaxBackups,
		MaxAgeDays: DefaultMaxAgeDays,
	}
}

// String returns a human-readable summary of the config.
func (c Config) String() string {
	s := fmt.Sprintf("level=%s format=%s", c.Level, c.Format)
	if c.FilePath != "" {
		s += fmt.Sprintf(" file=%s max_size=%dMB backups=%d max_age=%dd",
			c.FilePath, c.MaxSizeMB, c.MaxBackups, c.MaxAgeDays)
	}
	return s
}

// outputChanged reports whether switching from c to o needs a new handler.
func (c Config) outputChanged(o Config) bool {
	return c.Format != o.Format ||
		c.FilePath != o.FilePath ||
		c.MaxSizeMB != o.MaxSizeMB ||
		c.MaxBackups != o.MaxBackups ||
		c.MaxAgeDays != o.MaxAgeDays ||
		c.Compress != o.Compress
}

// generation is one installed root handler.
type generation struct {
	seq     uint64
	handler slog.Handler
}

// SwappableHandler is a slog.Handler whose root handler can be replaced at
// runtime. Handlers derived through WithAttrs and WithGroup share the root
// and re-apply their attributes to whichever root is current.
type SwappableHandler struct {
	root   *atomic.Pointer[generation]
	derive []func(slog.Handler) slog.Handler
	cached atomic.Pointer[generation]
}

// NewSwappableHandler creates a SwappableHandler wrapping h.
func NewSwappableHandler(h slog.Handler) *SwappableHandler {
	root := &atomic.Pointer[generation]{}
	root.Store(&generation{handler: h})
	return &SwappableHandler{root: root}
}

// Swap replaces the root handler for this handler and everything derived
// from it. Concurrent callers must serialize Swap.
func (s *SwappableHandler) Swap(h slog.Handler) {
	prev := s.root.Load()
	s.root.Store(&generation{seq: prev.seq + 1, handler: h})
}

func (s *SwappableHandler) current() slog.Handler {
	root := s.root.Load()
	if len(s.derive) == 0 {
		return root.handler
	}
	if c := s.cached.Load(); c != nil && c.seq == root.seq {
		return c.handler
	}
	h := root.handler
	for _, fn := range s.derive {
		h = fn(h)
	}
	s.cached.Store(&generation{seq: root.seq, handler: h})
	return h
}

func (s *SwappableHandler) with(fn func(slog.Handler) slog.Handler) *SwappableHandler {
	derive := make([]func(slog.Handler) slog.Handler, len(s.derive), len(s.derive)+1)
	copy(derive, s.derive)
	return &SwappableHandler{root: s.root, derive: append(derive, fn)}
}

// Enabled delegates to the current handler.
func (s *SwappableHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return s.current().Enabled(ctx, level)
}

// Handle delegates to the current handler.
func (s *SwappableHandler) Handle(ctx context.Context, r slog.Record) error {
	return s.current().Handle(ctx, r)
}

// WithAttrs returns a derived handler carrying attrs.
func (s *SwappableHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return s
	}
	return s.with(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

// WithGroup returns a derived handler that nests attributes under name.
func (s *SwappableHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return s
	}
	return s.with(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

// Manager owns the logger lifecycle and supports runtime reconfiguration.
type Manager struct {
	levelVar *slog.LevelVar
	handler  *SwappableHandler
	console  io.Writer

	mu     sync.Mutex
	config Config
	closer io.Closer // lumberjack writer, if any
}

// NewManager creates a Manager writing to stderr and returns it along with a
// ready-to-use logger.
func NewManager(cfg Config) (*Manager, *slog.Logger) {
	return NewManagerWithWriter(cfg, os.Stderr)
}

// NewManagerWithWriter is like NewManager but writes console output to w.
func NewManagerWithWriter(cfg Config, w io.Writer) (*Manager, *slog.Logger) {
	lvl := &slog.LevelVar{}
	lvl.Set(ParseLevel(cfg.Level))

	m := &Manager{
		levelVar: lvl,
		console:  w,
		config:   cfg,
	}
	writer, closer := m.buildWriter(cfg)
	m.closer = closer
	m.handler = NewSwappableHandler(buildHandler(writer, lvl, cfg.Format))

	return m, slog.New(m.handler)
}

// Reconfigure applies a new configuration at runtime. Level-only changes
// take effect through the LevelVar; format or file changes rebuild the
// handler and close the previous log file.
func (m *Manager) Reconfigure(cfg Config) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.levelVar.Set(ParseLevel(cfg.Level))

	if m.config.outputChanged(cfg) {
		if m.closer != nil {
			m.closer.Close() //nolint:errcheck
			m.closer = nil
		}
		writer, closer := m.buildWriter(cfg)
		m.handler.Swap(buildHandler(writer, m.levelVar, cfg.Format))
		m.closer = closer
	}

	m.config = cfg
}

// Config returns the current configuration snapshot.
func (m *Manager) Config() Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.config
}

// Level returns the active level.
func (m *Manager) Level() slog.Level {
	return m.levelVar.Level()
}

// Close releases the log file writer, if any.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closer != nil {
		err := m.closer.Close()
		m.closer = nil
		return err
	}
	return nil
}

// buildWriter returns the console writer, teed into a rotating file when a
// file path is configured.
func (m *Manager) buildWriter(cfg Config) (io.Writer, io.Closer) {
	if cfg.FilePath == "" {
		return m.console, nil
	}

	lj := &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    positiveOr(cfg.MaxSizeMB, DefaultMaxSizeMB),
		MaxBackups: positiveOr(cfg.MaxBackups, DefaultMaxBackups),
		MaxAge:     positiveOr(cfg.MaxAgeDays, DefaultMaxAgeDays),
		Compress:   cfg.Compress,
	}
	return io.MultiWriter(m.console, lj), lj
}

func positiveOr(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}

func buildHandler(w io.Writer, leveler slog.Leveler, format string) slog.Handler {
	opts := &slog.HandlerOptions{Level: leveler}
	if strings.EqualFold(format, "text") {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}

// ParseLevel converts a level name to slog.Level, defaulting to Info.
// Matching is case-insensitive and accepts "warning" for warn.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// FormatLevel converts a slog.Level to its configuration name.
func FormatLevel(l slog.Level) string {
	switch {
	case l <= slog.LevelDebug:
		return "debug"
	case l >= slog.LevelError:
		return "error"
	case l >= slog.LevelWarn:
		return "warn"
	default:
		return "info"
	}
}

// ValidLevel reports whether s is a recognized level name.
func ValidLevel(s string) bool {
	switch strings.ToLower(s) {
	case "debug", "info", "warn", "warning", "error":
		return true
	}
	return false
}

// ValidFormat reports whether s is a recognized format.
func ValidFormat(s string) bool {
	switch strings.ToLower(s) {
	case "text", "json":
		return true
	}
	return false
}
