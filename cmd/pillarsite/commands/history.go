package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"
	"time"

	"git.home.luguber.info/inful/pillarsite/internal/eventstore"
	ferrors "git.home.luguber.info/inful/pillarsite/internal/foundation/errors"
	"git.home.luguber.info/inful/pillarsite/internal/logfields"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	Since time.Duration `default:"168h" help:"Show builds from this far back"`
	Build string        `help:"Print the raw events of one build instead of the summary"`
	JSON  bool          `help:"Print JSON"`
	Prune time.Duration `help:"First delete builds older than this, e.g. 720h"`
}

type historyEvent struct {
	Type      string            `json:"type"`
	Timestamp time.Time         `json:"timestamp"`
	Payload   json.RawMessage   `json:"payload"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

func (h *HistoryCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	if !cfg.History.Enabled() {
		return ferrors.ConfigError("build history is disabled; set history.path").Build()
	}

	store, err := openLedger(cfg)
	if err != nil {
		return err
	}
	defer closeLedger(store)

	if h.Prune > 0 {
		removed, err := store.Prune(g.ctx(), time.Now().Add(-h.Prune))
		if err != nil {
			return ferrors.WrapError(err, ferrors.CategoryHistory, "cannot prune build history").Build()
		}
		slog.Info("Pruned build history", logfields.Count(removed))
	}

	if h.Build != "" {
		return h.printEvents(g, store)
	}

	builds, err := eventstore.History(g.ctx(), store, time.Now().Add(-h.Since))
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryHistory, "cannot read build history").Build()
	}
	if h.JSON {
		return writeJSON(g.out(), builds)
	}
	return printBuilds(g.out(), builds)
}

func (h *HistoryCmd) printEvents(g *Global, store eventstore.Store) error {
	events, err := store.GetByBuildID(g.ctx(), h.Build)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryHistory, "cannot read build history").
			WithContext("build_id", h.Build).
			Build()
	}
	if len(events) == 0 {
		return ferrors.NewError(ferrors.CategoryNotFound, "no events recorded for build").
			WithContext("build_id", h.Build).
			Build()
	}
	if h.JSON {
		out := make([]historyEvent, 0, len(events))
		for _, e := range events {
			out = append(out, historyEvent{
				Type:      e.Type(),
				Timestamp: e.Timestamp(),
				Payload:   json.RawMessage(e.Payload()),
				Metadata:  e.Metadata(),
			})
		}
		return writeJSON(g.out(), out)
	}
	tw := tabwriter.NewWriter(g.out(), 0, 0, 2, ' ', 0)
	for _, e := range events {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Timestamp().Format(time.RFC3339), e.Type(), e.Payload())
	}
	return tw.Flush()
}

func printBuilds(w io.Writer, builds []*eventstore.BuildSummary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "BUILD\tSTARTED\tSTATUS\tDURATION\tPAGES\tSKIPPED\tCHANGED\tERROR")
	for _, b := range builds {
		errMsg := ""
		if b.ErrorMessage != "" {
			errMsg = b.ErrorStage + ": " + b.ErrorMessage
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			b.BuildID, b.StartedAt.Format(time.RFC3339), b.Status,
			b.Duration.Round(time.Millisecond), b.Pages, b.Skipped, b.Changed, errMsg)
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
