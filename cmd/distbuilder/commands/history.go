package commands

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	fe "git.home.luguber.info/inful/distbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/distbuilder/internal/history"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	Limit int `short:"n" help:"Number of runs to show" default:"10"`
}

func (h *HistoryCmd) Run(ctx context.Context, g *Global, root *CLI) error {
	if h.Limit < 1 {
		return fe.ValidationError(fmt.Sprintf("--limit must be at least 1, got %d", h.Limit)).Build()
	}
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	if !cfg.HistoryEnabled() {
		_, _ = fmt.Fprintln(g.Stdout, "Run history is disabled in the configuration")
		return nil
	}

	store, err := history.Open(historyPath(cfg))
	if err != nil {
		return fe.FileSystemError("failed to open run history").WithCause(err).Build()
	}
	defer func() { _ = store.Close() }()

	runs, err := store.Recent(ctx, h.Limit)
	if err != nil {
		return fe.InternalError("failed to read run history").WithCause(err).Build()
	}
	if len(runs) == 0 {
		_, _ = fmt.Fprintln(g.Stdout, "No runs recorded")
		return nil
	}

	tw := tabwriter.NewWriter(g.Stdout, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "STARTED\tRUN\tMODE\tOUTCOME\tDURATION\tREVISION\tOUTPUT")
	for _, r := range runs {
		output := r.Output
		if output == "" {
			output = r.Error
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Started.Local().Format(time.DateTime), shortID(r.RunID), r.Mode, r.Outcome,
			r.Duration.Truncate(time.Millisecond), dash(r.Revision), output)
	}
	return tw.Flush()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
