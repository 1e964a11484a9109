package eventstore

import (
	"encoding/json"
	"time"

	"git.home.luguber.info/inful/pillarsite/internal/foundation/errors"
)

// BuildStarted is emitted once per build before any stage runs.
type BuildStarted struct {
	BaseEvent
	ContentDir string `json:"content_dir"`
	OutputDir  string `json:"output_dir"`
	Version    string `json:"version"`
}

// NewBuildStarted creates a BuildStarted event.
func NewBuildStarted(buildID, contentDir, outputDir, version string) (*BuildStarted, error) {
	e := &BuildStarted{ContentDir: contentDir, OutputDir: outputDir, Version: version}
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, marshalError(TypeBuildStarted, buildID, err)
	}
	e.BaseEvent = newBase(buildID, TypeBuildStarted, payload)
	return e, nil
}

// PageRendered records one written topic page and the fingerprint of its source.
type PageRendered struct {
	BaseEvent
	Pillar      string `json:"pillar"`
	Slug        string `json:"slug"`
	Path        string `json:"path"`
	Fingerprint string `json:"fingerprint"`
}

// NewPageRendered creates a PageRendered event.
func NewPageRendered(buildID, pillar, slug, path, fingerprint string) (*PageRendered, error) {
	e := &PageRendered{Pillar: pillar, Slug: slug, Path: path, Fingerprint: fingerprint}
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, marshalError(TypePageRendered, buildID, err)
	}
	e.BaseEvent = newBase(buildID, TypePageRendered, payload)
	e.EventMetadata = map[string]string{"pillar": pillar}
	return e, nil
}

// TopicSkipped records a declared topic whose markdown file was missing.
type TopicSkipped struct {
	BaseEvent
	Pillar string `json:"pillar"`
	Slug   string `json:"slug"`
	Path   string `json:"path"`
}

// NewTopicSkipped creates a TopicSkipped event.
func NewTopicSkipped(buildID, pillar, slug, path string) (*TopicSkipped, error) {
	e := &TopicSkipped{Pillar: pillar, Slug: slug, Path: path}
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, marshalError(TypeTopicSkipped, buildID, err)
	}
	e.BaseEvent = newBase(buildID, TypeTopicSkipped, payload)
	e.EventMetadata = map[string]string{"pillar": pillar}
	return e, nil
}

// BuildCompleted closes a successful build.
type BuildCompleted struct {
	BaseEvent
	Pages      int   `json:"pages"`
	Skipped    int   `json:"skipped"`
	Changed    int   `json:"changed"`
	DurationMS int64 `json:"duration_ms"`
}

// NewBuildCompleted creates a BuildCompleted event.
func NewBuildCompleted(buildID string, pages, skipped, changed int, duration time.Duration) (*BuildCompleted, error) {
	e := &BuildCompleted{Pages: pages, Skipped: skipped, Changed: changed, DurationMS: duration.Milliseconds()}
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, marshalError(TypeBuildCompleted, buildID, err)
	}
	e.BaseEvent = newBase(buildID, TypeBuildCompleted, payload)
	return e, nil
}

// BuildFailed closes a build that stopped at Stage.
type BuildFailed struct {
	BaseEvent
	Stage string `json:"stage"`
	Error string `json:"error"`
}

// NewBuildFailed creates a BuildFailed event.
func NewBuildFailed(buildID, stage, errMsg string) (*BuildFailed, error) {
	e := &BuildFailed{Stage: stage, Error: errMsg}
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, marshalError(TypeBuildFailed, buildID, err)
	}
	e.BaseEvent = newBase(buildID, TypeBuildFailed, payload)
	return e, nil
}

func newBase(buildID, eventType string, payload []byte) BaseEvent {
	return BaseEvent{
		EventBuildID:   buildID,
		EventType:      eventType,
		EventTimestamp: time.Now(),
		EventPayload:   payload,
	}
}

func marshalError(eventType, buildID string, err error) error {
	return errors.HistoryError("failed to marshal " + eventType + " payload").
		WithCause(err).
		WithContext("build_id", buildID).
		Build()
}
