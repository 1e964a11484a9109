package preview

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/pillarsite/internal/build"
)

// fakeBuilder counts builds and can hold each one until released.
type fakeBuilder struct {
	calls   atomic.Int32
	active  atomic.Int32
	overlap atomic.Bool
	gate    chan struct{}
	err     error
}

func (f *fakeBuilder) Run(context.Context) (*build.Report, error) {
	if f.active.Add(1) > 1 {
		f.overlap.Store(true)
	}
	defer f.active.Add(-1)
	f.calls.Add(1)
	if f.gate != nil {
		<-f.gate
	}
	if f.err != nil {
		return &build.Report{Outcome: build.OutcomeFailed}, f.err
	}
	return &build.Report{BuildID: "b", Outcome: build.OutcomeSuccess}, nil
}

func TestShouldIgnoreEvent(t *testing.T) {
	require.True(t, shouldIgnoreEvent("/tmp/.hidden.md"))
	require.True(t, shouldIgnoreEvent("/tmp/#foo#"))
	require.True(t, shouldIgnoreEvent("/tmp/foo.swp"))
	require.True(t, shouldIgnoreEvent("/tmp/foo.md~"))
	require.True(t, shouldIgnoreEvent("/tmp/.DS_Store"))
	require.False(t, shouldIgnoreEvent("/tmp/visible.md"))
}

func TestWithin(t *testing.T) {
	require.True(t, within("/site/docs/index.html", "/site/docs"))
	require.True(t, within("/site/docs", "/site/docs"))
	require.False(t, within("/site/docs-old/a.html", "/site/docs"))
	require.False(t, within("/site/content/a.md", "/site/docs"))
	require.False(t, within("/site/content/a.md", ""))
}

func TestDebouncer_Coalesces(t *testing.T) {
	var fired atomic.Int32
	d := newDebouncer(50*time.Millisecond, func() { fired.Add(1) })
	defer d.stop()

	for range 5 {
		d.trigger()
		time.Sleep(5 * time.Millisecond)
	}
	require.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, 10*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	require.Equal(t, int32(1), fired.Load())
}

func TestRebuildWorker_PendingRunsOnce(t *testing.T) {
	b := &fakeBuilder{gate: make(chan struct{})}
	status := &Status{}
	w := newRebuildWorker(t.Context(), b, status)

	w.request()
	require.Eventually(t, func() bool { return b.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	// Requests during a build collapse into one pending build.
	w.request()
	w.request()
	w.request()

	b.gate <- struct{}{}
	require.Eventually(t, func() bool { return b.calls.Load() == 2 }, time.Second, 5*time.Millisecond)
	b.gate <- struct{}{}
	w.wait()

	require.Equal(t, int32(2), b.calls.Load())
	require.False(t, b.overlap.Load())
	require.Equal(t, 2, status.Builds())
	_, err, good := status.Get()
	require.NoError(t, err)
	require.True(t, good)
}

func TestRebuildWorker_RecordsFailure(t *testing.T) {
	b := &fakeBuilder{err: errors.New("template missing")}
	status := &Status{}
	w := newRebuildWorker(t.Context(), b, status)

	w.request()
	w.wait()

	report, err, good := status.Get()
	require.EqualError(t, err, "template missing")
	require.False(t, good)
	require.Equal(t, build.OutcomeFailed, report.Outcome)
}

func TestRebuildWorker_IgnoresRequestsAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	b := &fakeBuilder{}
	w := newRebuildWorker(ctx, b, &Status{})
	w.request()
	w.wait()
	require.Equal(t, int32(0), b.calls.Load())
}

func runWatch(t *testing.T, b Builder, opts Options, status *Status) (cancel func()) {
	t.Helper()
	ctx, stop := context.WithCancel(t.Context())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := Watch(ctx, b, opts, status); err != nil {
			t.Errorf("watch: %v", err)
		}
	}()
	return func() {
		stop()
		wg.Wait()
	}
}

func TestWatch_RebuildsOnChange(t *testing.T) {
	root := t.TempDir()
	contentDir := filepath.Join(root, "content")
	outDir := filepath.Join(root, "content", "docs")
	require.NoError(t, os.MkdirAll(filepath.Join(contentDir, "notes"), 0o750))
	require.NoError(t, os.MkdirAll(outDir, 0o750))

	b := &fakeBuilder{}
	status := &Status{}
	stop := runWatch(t, b, Options{
		WatchDirs: []string{contentDir, filepath.Join(root, "missing")},
		OutputDir: outDir,
		Debounce:  30 * time.Millisecond,
	}, status)
	defer stop()

	// Give the watcher a moment to register.
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(outDir, "index.html"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(contentDir, "notes", ".draft.md.swp"), []byte("x"), 0o600))
	time.Sleep(150 * time.Millisecond)
	require.Equal(t, int32(0), b.calls.Load())

	require.NoError(t, os.WriteFile(filepath.Join(contentDir, "notes", "a.md"), []byte("# A"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(contentDir, "notes", "b.md"), []byte("# B"), 0o600))
	require.Eventually(t, func() bool { return status.Builds() >= 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestWatch_PeriodicRebuild(t *testing.T) {
	b := &fakeBuilder{}
	stop := runWatch(t, b, Options{
		WatchDirs:       []string{t.TempDir()},
		RebuildInterval: 50 * time.Millisecond,
	}, nil)
	defer stop()

	require.Eventually(t, func() bool { return b.calls.Load() >= 2 }, 3*time.Second, 10*time.Millisecond)
}
