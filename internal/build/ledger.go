package build

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/pillarsite/internal/eventstore"
	"git.home.luguber.info/inful/pillarsite/internal/logfields"
	"git.home.luguber.info/inful/pillarsite/internal/version"
)

// Ledger failures never fail a build; they are reported as warnings.

func (b *Builder) recordStart(ctx context.Context, report *Report) {
	if b.ledger == nil {
		return
	}
	e, err := eventstore.NewBuildStarted(report.BuildID, b.cfg.ContentDir, b.cfg.OutputDir, version.Version)
	b.appendEvent(ctx, report, e, err)
}

func (b *Builder) recordFailure(ctx context.Context, report *Report, cause error) {
	if b.ledger == nil {
		return
	}
	stage := ""
	var se *StageError
	if errors.As(cause, &se) {
		stage = string(se.Stage)
	}
	e, err := eventstore.NewBuildFailed(report.BuildID, stage, cause.Error())
	b.appendEvent(context.WithoutCancel(ctx), report, e, err)
}

// recordSuccess counts changed topic pages against the latest completed
// build and appends this build's page, skip and completion events.
func (b *Builder) recordSuccess(ctx context.Context, bs *buildState) {
	report := bs.report
	topics := bs.sortedTopics()
	if b.ledger == nil {
		report.Changed = len(topics)
		return
	}
	ctx = context.WithoutCancel(ctx)

	previous, err := eventstore.PreviousFingerprints(ctx, b.ledger)
	if err != nil {
		b.ledgerWarning(report, err)
		previous = map[string]string{}
	}
	for _, t := range topics {
		if fp, ok := previous[t.path]; !ok || fp != t.fingerprint {
			report.Changed++
		}
	}

	for _, t := range topics {
		e, err := eventstore.NewPageRendered(report.BuildID, t.pillar, t.slug, t.path, t.fingerprint)
		b.appendEvent(ctx, report, e, err)
	}
	for _, s := range report.Skipped {
		e, err := eventstore.NewTopicSkipped(report.BuildID, s.Pillar, s.Slug, s.Path)
		b.appendEvent(ctx, report, e, err)
	}
	e, err := eventstore.NewBuildCompleted(report.BuildID, report.Pages, len(report.Skipped), report.Changed, time.Since(report.Start))
	b.appendEvent(ctx, report, e, err)
}

func (b *Builder) appendEvent(ctx context.Context, report *Report, e eventstore.Event, err error) {
	if err == nil {
		err = eventstore.AppendEvent(ctx, b.ledger, e)
	}
	if err != nil {
		b.ledgerWarning(report, err)
	}
}

func (b *Builder) ledgerWarning(report *Report, err error) {
	slog.Warn("Build history not recorded", logfields.BuildID(report.BuildID), logfields.Error(err))
	report.Warnings = append(report.Warnings, err)
}
