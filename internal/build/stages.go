package build

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/pillarsite/internal/logfields"
	"git.home.luguber.info/inful/pillarsite/internal/metrics"
)

// StageName identifies a build stage.
type StageName string

// Stages in execution order.
const (
	StagePrepareOutput StageName = "prepare_output"
	StageCopyAssets    StageName = "copy_assets"
	StageCopyCNAME     StageName = "copy_cname"
	StageDiscover      StageName = "discover"
	StageRenderPillars StageName = "render_pillars"
	StageRenderHome    StageName = "render_home"
)

// Stage is a discrete unit of work in the build.
type Stage func(ctx context.Context, bs *buildState) error

type stageDef struct {
	name StageName
	fn   Stage
}

// StageErrorKind classifies a stage error.
type StageErrorKind string

const (
	StageErrorFatal    StageErrorKind = "fatal"    // Build must abort.
	StageErrorWarning  StageErrorKind = "warning"  // Non-fatal; record and continue.
	StageErrorCanceled StageErrorKind = "canceled" // Context cancellation.
)

// StageError carries the stage and kind of a failure.
type StageError struct {
	Kind  StageErrorKind
	Stage StageName
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s stage %s: %v", e.Kind, e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

func newWarnStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorWarning, Stage: stage, Err: err}
}

// runStages executes stages in order, recording timing and stopping on the
// first fatal or canceled stage.
func runStages(ctx context.Context, bs *buildState, stages []stageDef) error {
	for _, st := range stages {
		if err := ctx.Err(); err != nil {
			se := &StageError{Kind: StageErrorCanceled, Stage: st.name, Err: err}
			bs.report.Errors = append(bs.report.Errors, se)
			return se
		}

		t0 := time.Now()
		err := st.fn(ctx, bs)
		dur := time.Since(t0)
		bs.report.StageDurations[st.name] = dur
		bs.recorder.ObserveStageDuration(string(st.name), dur)

		if err == nil {
			bs.recorder.IncStageResult(string(st.name), metrics.ResultSuccess)
			slog.Debug("Stage completed", logfields.BuildID(bs.report.BuildID), logfields.Stage(string(st.name)),
				logfields.DurationMS(float64(dur.Microseconds())/1000))
			continue
		}

		var se *StageError
		if !errors.As(err, &se) {
			se = &StageError{Kind: StageErrorFatal, Stage: st.name, Err: err}
		}
		if se.Kind == StageErrorWarning {
			bs.recorder.IncStageResult(string(st.name), metrics.ResultWarning)
			bs.report.Warnings = append(bs.report.Warnings, se)
			slog.Warn("Stage completed with warning", logfields.BuildID(bs.report.BuildID),
				logfields.Stage(string(st.name)), logfields.Error(se.Err))
			continue
		}
		bs.recorder.IncStageResult(string(st.name), metrics.ResultFatal)
		bs.report.Errors = append(bs.report.Errors, se)
		return se
	}
	return nil
}
