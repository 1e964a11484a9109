// Package metrics records build and server measurements. Components take a
// Recorder; NoopRecorder is the default so callers never nil-check.
package metrics

import "time"

// ResultLabel enumerates stage result categories for counters.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultWarning ResultLabel = "warning"
	ResultFatal   ResultLabel = "fatal"
)

// BuildOutcomeLabel is the final status of a build.
type BuildOutcomeLabel string

const (
	BuildOutcomeSuccess BuildOutcomeLabel = "success"
	BuildOutcomeWarning BuildOutcomeLabel = "warning"
	BuildOutcomeFailed  BuildOutcomeLabel = "failed"
)

// Recorder defines observability hooks for builds and the dev server.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObserveBuildDuration(d time.Duration)
	IncStageResult(stage string, result ResultLabel)
	IncBuildOutcome(outcome BuildOutcomeLabel)
	AddPagesRendered(pillar string, n int)
	IncTopicsSkipped(pillar string)
	IncHTTPRequest(status int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics are off).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)         {}
func (NoopRecorder) IncStageResult(string, ResultLabel)         {}
func (NoopRecorder) IncBuildOutcome(BuildOutcomeLabel)          {}
func (NoopRecorder) AddPagesRendered(string, int)               {}
func (NoopRecorder) IncTopicsSkipped(string)                    {}
func (NoopRecorder) IncHTTPRequest(int)                         {}
