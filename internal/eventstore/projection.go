package eventstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// Build statuses reported in BuildSummary.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// BuildSummary is a read model of one build reconstructed from its events.
type BuildSummary struct {
	BuildID      string        `json:"build_id"`
	Status       string        `json:"status"`
	StartedAt    time.Time     `json:"started_at"`
	CompletedAt  *time.Time    `json:"completed_at,omitempty"`
	Duration     time.Duration `json:"duration,omitempty"`
	Pages        int           `json:"pages"`
	Skipped      int           `json:"skipped"`
	Changed      int           `json:"changed"`
	ErrorStage   string        `json:"error_stage,omitempty"`
	ErrorMessage string        `json:"error_message,omitempty"`
}

// Summarize folds events into one summary per build, newest first.
// Events with an empty build ID are ignored.
func Summarize(events []Event) ([]*BuildSummary, error) {
	builds := make(map[string]*BuildSummary)
	for _, event := range events {
		buildID := event.BuildID()
		if buildID == "" {
			continue
		}
		summary, ok := builds[buildID]
		if !ok {
			summary = &BuildSummary{BuildID: buildID, Status: StatusRunning, StartedAt: event.Timestamp()}
			builds[buildID] = summary
		}
		if err := apply(summary, event); err != nil {
			return nil, err
		}
	}

	history := make([]*BuildSummary, 0, len(builds))
	for _, s := range builds {
		history = append(history, s)
	}
	sort.Slice(history, func(i, j int) bool {
		if !history[i].StartedAt.Equal(history[j].StartedAt) {
			return history[i].StartedAt.After(history[j].StartedAt)
		}
		return history[i].BuildID < history[j].BuildID
	})
	return history, nil
}

func apply(summary *BuildSummary, event Event) error {
	switch event.Type() {
	case TypeBuildStarted:
		summary.StartedAt = event.Timestamp()
	case TypePageRendered:
		if summary.Status == StatusRunning {
			summary.Pages++
		}
	case TypeTopicSkipped:
		summary.Skipped++
	case TypeBuildCompleted:
		var data BuildCompleted
		if err := decode(event, &data); err != nil {
			return err
		}
		completed := event.Timestamp()
		summary.Status = StatusCompleted
		summary.CompletedAt = &completed
		summary.Pages = data.Pages
		summary.Skipped = data.Skipped
		summary.Changed = data.Changed
		summary.Duration = time.Duration(data.DurationMS) * time.Millisecond
	case TypeBuildFailed:
		var data BuildFailed
		if err := decode(event, &data); err != nil {
			return err
		}
		completed := event.Timestamp()
		summary.Status = StatusFailed
		summary.CompletedAt = &completed
		summary.Duration = completed.Sub(summary.StartedAt)
		summary.ErrorStage = data.Stage
		summary.ErrorMessage = data.Error
	}
	return nil
}

// History loads and summarizes every build with events since the given time.
func History(ctx context.Context, store Store, since time.Time) ([]*BuildSummary, error) {
	events, err := store.GetRange(ctx, since, time.Now().Add(time.Hour))
	if err != nil {
		return nil, err
	}
	return Summarize(events)
}

// PageFingerprints returns output path -> source fingerprint for every page
// the given build rendered.
func PageFingerprints(ctx context.Context, store Store, buildID string) (map[string]string, error) {
	fingerprints := make(map[string]string)
	if buildID == "" {
		return fingerprints, nil
	}
	events, err := store.GetByBuildID(ctx, buildID)
	if err != nil {
		return nil, err
	}
	for _, event := range events {
		if event.Type() != TypePageRendered {
			continue
		}
		var data PageRendered
		if err := decode(event, &data); err != nil {
			return nil, err
		}
		fingerprints[data.Path] = data.Fingerprint
	}
	return fingerprints, nil
}

// PreviousFingerprints returns the page fingerprints of the latest completed build.
func PreviousFingerprints(ctx context.Context, store Store) (map[string]string, error) {
	buildID, err := store.LatestBuildID(ctx, TypeBuildCompleted)
	if err != nil {
		return nil, err
	}
	return PageFingerprints(ctx, store, buildID)
}

func decode(event Event, v any) error {
	if err := json.Unmarshal(event.Payload(), v); err != nil {
		return fmt.Errorf("%w: %s %d: %w", ErrUnmarshalPayloadFailed, event.Type(), event.ID(), err)
	}
	return nil
}
