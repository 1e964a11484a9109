package build

import (
	"fmt"
	"time"

	"git.home.luguber.info/inful/pillarsite/internal/content"
	"git.home.luguber.info/inful/pillarsite/internal/metrics"
)

// Outcome is the final state of a build.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeWarning Outcome = "warning"
	OutcomeFailed  Outcome = "failed"
)

// Report captures what a build did.
type Report struct {
	BuildID        string
	OutputDir      string
	Start          time.Time
	End            time.Time
	StageDurations map[StageName]time.Duration
	Errors         []error // fatal errors causing build abortion (at most one today)
	Warnings       []error // non-fatal issues

	Pillars int
	Topics  int // topic pages written
	Pages   int // every HTML page written, including pillar indexes and the homepage
	Skipped []content.SkippedTopic
	// Changed counts topic pages whose source fingerprint differs from the
	// latest completed build in the ledger. Without a ledger it equals Topics.
	Changed int
	Outcome Outcome
}

func newReport(buildID, outputDir string, start time.Time) *Report {
	return &Report{
		BuildID:        buildID,
		OutputDir:      outputDir,
		Start:          start,
		StageDurations: make(map[StageName]time.Duration),
	}
}

// Duration is the wall time of the build.
func (r *Report) Duration() time.Duration { return r.End.Sub(r.Start) }

// Summary is a one-line human readable description of the report.
func (r *Report) Summary() string {
	return fmt.Sprintf("%s: %d pillars, %d pages (%d topics, %d changed), %d skipped, %d warnings in %s",
		r.Outcome, r.Pillars, r.Pages, r.Topics, r.Changed, len(r.Skipped), len(r.Warnings),
		r.Duration().Round(time.Millisecond))
}

func (r *Report) finish(end time.Time, failed bool) {
	r.End = end
	switch {
	case failed:
		r.Outcome = OutcomeFailed
	case len(r.Warnings) > 0 || len(r.Skipped) > 0:
		r.Outcome = OutcomeWarning
	default:
		r.Outcome = OutcomeSuccess
	}
}

func (r *Report) metricsOutcome() metrics.BuildOutcomeLabel {
	switch r.Outcome {
	case OutcomeFailed:
		return metrics.BuildOutcomeFailed
	case OutcomeWarning:
		return metrics.BuildOutcomeWarning
	default:
		return metrics.BuildOutcomeSuccess
	}
}
