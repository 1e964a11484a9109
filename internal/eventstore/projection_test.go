package eventstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func appendAll(t *testing.T, store *SQLiteStore, at time.Time, events ...Event) {
	t.Helper()
	store.now = func() time.Time { return at }
	for _, e := range events {
		require.NoError(t, AppendEvent(context.Background(), store, e))
	}
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func TestPreviousFingerprints(t *testing.T) {
	store := newTestStore(t)
	ctx := t.Context()
	t0 := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	fps, err := PreviousFingerprints(ctx, store)
	require.NoError(t, err)
	require.Empty(t, fps)

	appendAll(t, store, t0,
		must(NewBuildStarted("b1", "content", "docs", "dev")),
		must(NewPageRendered("b1", "algorithms", "sorting", "algorithms/sorting.html", "fp-1")),
		must(NewBuildCompleted("b1", 1, 0, 1, time.Second)),
	)
	appendAll(t, store, t0.Add(time.Hour),
		must(NewBuildStarted("b2", "content", "docs", "dev")),
		must(NewPageRendered("b2", "algorithms", "sorting", "algorithms/sorting.html", "fp-2")),
		must(NewBuildFailed("b2", "render_home", "boom")),
	)

	fps, err = PreviousFingerprints(ctx, store)
	require.NoError(t, err)
	require.Equal(t, map[string]string{"algorithms/sorting.html": "fp-1"}, fps)
}

func TestHistorySummaries(t *testing.T) {
	store := newTestStore(t)
	ctx := t.Context()
	t0 := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	appendAll(t, store, t0,
		must(NewBuildStarted("b1", "content", "docs", "dev")),
		must(NewPageRendered("b1", "algorithms", "sorting", "algorithms/sorting.html", "fp-1")),
		must(NewTopicSkipped("b1", "algorithms", "graphs", "content/algorithms/graphs.md")),
		must(NewBuildCompleted("b1", 3, 1, 1, 1500*time.Millisecond)),
	)
	appendAll(t, store, t0.Add(time.Hour),
		must(NewBuildStarted("b2", "content", "docs", "dev")),
	)
	appendAll(t, store, t0.Add(time.Hour+2*time.Second),
		must(NewBuildFailed("b2", "discover", "slug collision")),
	)

	history, err := History(ctx, store, t0.Add(-time.Minute))
	require.NoError(t, err)
	require.Len(t, history, 2)

	failed := history[0]
	require.Equal(t, "b2", failed.BuildID)
	require.Equal(t, StatusFailed, failed.Status)
	require.Equal(t, "discover", failed.ErrorStage)
	require.Equal(t, "slug collision", failed.ErrorMessage)
	require.Equal(t, 2*time.Second, failed.Duration)

	done := history[1]
	require.Equal(t, "b1", done.BuildID)
	require.Equal(t, StatusCompleted, done.Status)
	require.Equal(t, 3, done.Pages)
	require.Equal(t, 1, done.Skipped)
	require.Equal(t, 1, done.Changed)
	require.Equal(t, 1500*time.Millisecond, done.Duration)
	require.NotNil(t, done.CompletedAt)

	recent, err := History(ctx, store, t0.Add(30*time.Minute))
	require.NoError(t, err)
	require.Len(t, recent, 1)
	require.Equal(t, "b2", recent[0].BuildID)
}

func TestEventPayloadOmitsEnvelope(t *testing.T) {
	e := must(NewPageRendered("b1", "algorithms", "sorting", "algorithms/sorting.html", "fp"))
	require.JSONEq(t,
		`{"pillar":"algorithms","slug":"sorting","path":"algorithms/sorting.html","fingerprint":"fp"}`,
		string(e.Payload()))
	require.Equal(t, TypePageRendered, e.Type())
	require.Equal(t, "algorithms", e.Metadata()["pillar"])
}
