package pipeline

import (
	"context"
	"log/slog"
	"time"

	fe "git.home.luguber.info/inful/distbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/distbuilder/internal/logfields"
)

// build compiles every target in configured order and stops at the first
// failure. Targets are never retried.
func (r *Runner) build(ctx context.Context, log *slog.Logger) error {
	for _, t := range r.cfg.Targets {
		log.Info("Building target", logfields.Target(t.Package))
		t0 := time.Now()
		err := r.toolchain.Build(ctx, t.Package)
		r.recorder.ObserveTargetBuild(t.Package, time.Since(t0), err == nil)
		if err != nil {
			return fe.BuildFailure(t.Package, err)
		}
	}
	return nil
}
