// Package preview keeps the output tree current while the dev server runs:
// it watches the source directories, rebuilds after a quiet period and,
// optionally, on a fixed interval.
package preview

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/pillarsite/internal/build"
	"git.home.luguber.info/inful/pillarsite/internal/logfields"
)

// DefaultDebounce is the quiet period after the last change before a rebuild.
const DefaultDebounce = 300 * time.Millisecond

// Builder runs one site build.
type Builder interface {
	Run(ctx context.Context) (*build.Report, error)
}

// Options configures the watch loop.
type Options struct {
	// WatchDirs are watched recursively. Missing directories are skipped.
	WatchDirs []string
	// OutputDir is never watched, even when nested in a watched directory.
	OutputDir string
	Debounce  time.Duration
	// RebuildInterval schedules periodic rebuilds; zero disables them.
	RebuildInterval time.Duration
}

// Status is the outcome of the most recent rebuild.
type Status struct {
	mu           sync.RWMutex
	lastError    error
	lastReport   *build.Report
	hasGoodBuild bool // true if at least one successful build exists
	builds       int
}

func (s *Status) record(report *build.Report, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.builds++
	s.lastReport = report
	s.lastError = err
	if err == nil {
		s.hasGoodBuild = true
	}
}

// Get returns the last report, the last error and whether any build succeeded.
func (s *Status) Get() (report *build.Report, err error, hasGoodBuild bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastReport, s.lastError, s.hasGoodBuild
}

// Builds returns the number of rebuilds run so far.
func (s *Status) Builds() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.builds
}

// Watch rebuilds the site on changes until ctx is done. The initial build is
// the caller's job; Watch only reacts to changes.
func Watch(ctx context.Context, b Builder, opts Options, status *Status) error {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if status == nil {
		status = &Status{}
	}

	watcher, err := setupFileWatcher(opts.WatchDirs, opts.OutputDir)
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	worker := newRebuildWorker(ctx, b, status)
	defer worker.wait()
	deb := newDebouncer(opts.Debounce, worker.request)
	defer deb.stop()

	if opts.RebuildInterval > 0 {
		sched, err := NewScheduler()
		if err != nil {
			return err
		}
		if err := sched.SchedulePeriodicRebuild(opts.RebuildInterval, worker.request); err != nil {
			return err
		}
		sched.Start()
		defer func() {
			if err := sched.Stop(); err != nil {
				slog.Warn("Scheduler shutdown failed", logfields.Error(err))
			}
		}()
	}

	slog.Info("Watching for changes", slog.Any("dirs", opts.WatchDirs))
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			handleFileEvent(watcher, ev, opts.OutputDir, deb.trigger)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("Watcher error", logfields.Error(err))
		}
	}
}

func setupFileWatcher(dirs []string, outputDir string) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("fsnotify: %w", err)
	}
	for _, dir := range dirs {
		if err := addDirsRecursive(watcher, dir, outputDir); err != nil {
			_ = watcher.Close()
			return nil, err
		}
	}
	return watcher, nil
}
