package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/distbuilder/internal/config"
	"git.home.luguber.info/inful/distbuilder/internal/events"
	"git.home.luguber.info/inful/distbuilder/internal/history"
	"git.home.luguber.info/inful/distbuilder/internal/logfields"
	"git.home.luguber.info/inful/distbuilder/internal/metrics"
	"git.home.luguber.info/inful/distbuilder/internal/pipeline"
	"git.home.luguber.info/inful/distbuilder/internal/toolchain"
)

// DistCmd implements the 'dist' command.
type DistCmd struct {
	Package     string `help:"Package the distribution into a zip archive at PATH instead of moving it into the distribution directory" placeholder:"PATH"`
	Clean       bool   `help:"Clean the toolchain cache for the build profile after a successful run"`
	MetricsFile string `help:"Write Prometheus metrics in text format to PATH after the run" placeholder:"PATH"`
	ForceUnlock bool   `help:"Remove a lock left behind by an interrupted run before starting"`
}

func (d *DistCmd) Run(ctx context.Context, g *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	if d.Package != "" {
		cfg.ArchivePath = d.Package
		if !filepath.IsAbs(d.Package) {
			if cwd, err := os.Getwd(); err == nil {
				cfg.ArchivePath = filepath.Join(cwd, d.Package)
			}
		}
	}
	cfg.CleanCache = d.Clean

	// Nothing below may run for an invalid configuration, in particular an
	// unsupported archive format.
	if err := cfg.Validate(); err != nil {
		return err
	}

	tc := toolchain.NewCommandToolchain(cfg.Toolchain.Command, cfg.Toolchain.Profile, cfg.WorkDir)
	runner := pipeline.NewRunner(cfg, tc).WithForceUnlock(d.ForceUnlock)

	var prom *metrics.PrometheusRecorder
	if d.MetricsFile != "" {
		prom = metrics.NewPrometheusRecorder(nil)
		runner.WithRecorder(prom)
	}

	if store := openHistory(cfg); store != nil {
		defer func() { _ = store.Close() }()
		runner.WithHistory(store)
	}

	if cfg.Events.NATSURL != "" {
		pub, err := events.NewNATSPublisher(cfg.Events.NATSURL, cfg.Events.Subject)
		if err != nil {
			slog.Warn("Run events disabled", logfields.Error(err))
		} else {
			defer pub.Close()
			runner.WithPublisher(pub)
		}
	}

	report, runErr := runner.Run(ctx)

	if prom != nil && report != nil {
		if err := prom.WriteTextfile(d.MetricsFile); err != nil {
			slog.Warn("Failed to write metrics file", logfields.Path(d.MetricsFile), logfields.Error(err))
		}
	}
	if runErr != nil {
		return runErr
	}

	_, _ = fmt.Fprintf(g.Stdout, "Distribution ready: %s\n", report.Output)
	return nil
}

// openHistory opens the run history store, or returns nil when history is
// disabled or unavailable. History never blocks a run.
func openHistory(cfg *config.Config) *history.SQLiteStore {
	if !cfg.HistoryEnabled() {
		return nil
	}
	store, err := history.Open(historyPath(cfg))
	if err != nil {
		slog.Warn("Run history disabled", logfields.Error(err))
		return nil
	}
	return store
}

func historyPath(cfg *config.Config) string {
	if cfg.History.Path != "" {
		return cfg.Resolve(cfg.History.Path)
	}
	return history.DefaultPath()
}
