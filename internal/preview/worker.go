package preview

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"git.home.luguber.info/inful/pillarsite/internal/logfields"
)

// debouncer calls fire once no trigger arrived for the delay.
type debouncer struct {
	mu    sync.Mutex
	timer *time.Timer
	delay time.Duration
	fire  func()
}

func newDebouncer(delay time.Duration, fire func()) *debouncer {
	return &debouncer{delay: delay, fire: fire}
}

func (d *debouncer) trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.fire)
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
}

// rebuildWorker runs one build at a time. A request arriving during a build
// sets the pending flag so exactly one more build follows it.
type rebuildWorker struct {
	ctx     context.Context
	builder Builder
	status  *Status
	wg      sync.WaitGroup

	mu      sync.Mutex
	running bool
	pending bool
}

func newRebuildWorker(ctx context.Context, b Builder, status *Status) *rebuildWorker {
	return &rebuildWorker{ctx: ctx, builder: b, status: status}
}

// request starts a build, or marks one pending when a build is in progress.
// It never blocks.
func (w *rebuildWorker) request() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.ctx.Err() != nil {
		return
	}
	if w.running {
		w.pending = true
		return
	}
	w.running = true
	w.wg.Add(1)
	go w.loop()
}

func (w *rebuildWorker) loop() {
	defer w.wg.Done()
	for {
		w.rebuild()

		w.mu.Lock()
		if !w.pending || w.ctx.Err() != nil {
			w.running = false
			w.pending = false
			w.mu.Unlock()
			return
		}
		w.pending = false
		w.mu.Unlock()
	}
}

// wait blocks until the build in progress, if any, has finished.
func (w *rebuildWorker) wait() { w.wg.Wait() }

func (w *rebuildWorker) rebuild() {
	slog.Info("Change detected; rebuilding site")
	report, err := w.builder.Run(w.ctx)
	w.status.record(report, err)
	if err != nil {
		slog.Warn("Rebuild failed", logfields.Error(err))
		return
	}
	slog.Info("Rebuild completed", logfields.BuildID(report.BuildID), slog.String("summary", report.Summary()))
}
