// Package watcher reloads settings when the configuration file changes.
package watcher

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ReloadFunc is called once per burst of changes to the watched file.
type ReloadFunc func(ctx context.Context) error

// Service watches a single file and invokes a reload callback after it has
// been written, created, or replaced. The parent directory is watched so
// editors that save by rename are seen too.
type Service struct {
	path         string
	reload       ReloadFunc
	logger       *slog.Logger
	debounce     time.Duration
	pollInterval time.Duration

	mu      sync.Mutex
	modTime time.Time
	size    int64
}

// NewService creates a watcher for path.
func NewService(path string, reload ReloadFunc, logger *slog.Logger) *Service {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = filepath.Clean(path)
	}
	return &Service{
		path:         abs,
		reload:       reload,
		logger:       logger.With("component", "config-watcher"),
		debounce:     500 * time.Millisecond,
		pollInterval: 30 * time.Second,
	}
}

// SetDebounce overrides the default debounce interval (for testing).
func (s *Service) SetDebounce(d time.Duration) {
	s.debounce = d
}

// SetPollInterval overrides how often the file is stat'ed when fsnotify is
// unavailable (for testing).
func (s *Service) SetPollInterval(d time.Duration) {
	s.pollInterval = d
}

// Path returns the absolute path being watched.
func (s *Service) Path() string { return s.path }

// Start blocks until ctx is canceled. If fsnotify cannot watch the parent
// directory, the service falls back to polling the file's size and mtime.
func (s *Service) Start(ctx context.Context) {
	s.snapshot()

	var eventCh <-chan fsnotify.Event
	var errCh <-chan error
	var pollCh <-chan time.Time

	w, err := fsnotify.NewWatcher()
	if err == nil {
		err = w.Add(filepath.Dir(s.path))
	}
	if err != nil {
		s.logger.Warn("fsnotify unavailable, polling config file", "path", s.path, "error", err)
		if w != nil {
			w.Close() //nolint:errcheck
		}
		ticker := time.NewTicker(s.pollInterval)
		defer ticker.Stop()
		pollCh = ticker.C
	} else {
		defer w.Close() //nolint:errcheck
		eventCh = w.Events
		errCh = w.Errors
	}

	s.logger.Info("config watcher starting", "path", s.path)

	// Starts stopped; reset on each relevant event.
	debounceTimer := time.NewTimer(0)
	if !debounceTimer.Stop() {
		<-debounceTimer.C
	}
	reloadPending := false
	schedule := func() {
		if !debounceTimer.Stop() {
			select {
			case <-debounceTimer.C:
			default:
			}
		}
		debounceTimer.Reset(s.debounce)
		reloadPending = true
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("config watcher stopping")
			return

		case ev, ok := <-eventCh:
			if !ok {
				return
			}
			if s.relevant(ev) {
				schedule()
			}

		case err, ok := <-errCh:
			if !ok {
				return
			}
			s.logger.Error("fsnotify error", "error", err)

		case <-pollCh:
			if s.changed() {
				schedule()
			}

		case <-debounceTimer.C:
			if !reloadPending {
				continue
			}
			reloadPending = false
			s.snapshot()
			if err := s.reload(ctx); err != nil {
				s.logger.Error("config reload failed", "path", s.path, "error", err)
				continue
			}
			s.logger.Info("config reloaded", "path", s.path)
		}
	}
}

func (s *Service) relevant(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != s.path {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename)
}

// snapshot records the file's current size and mtime for polling.
func (s *Service) snapshot() {
	info, err := os.Stat(s.path)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.modTime, s.size = time.Time{}, -1
		return
	}
	s.modTime, s.size = info.ModTime(), info.Size()
}

func (s *Service) changed() bool {
	info, err := os.Stat(s.path)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		return false
	}
	return !info.ModTime().Equal(s.modTime) || info.Size() != s.size
}
