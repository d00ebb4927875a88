package pipeline

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/distbuilder/internal/config"
	"git.home.luguber.info/inful/distbuilder/internal/events"
	fe "git.home.luguber.info/inful/distbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/distbuilder/internal/history"
	"git.home.luguber.info/inful/distbuilder/internal/lock"
	"git.home.luguber.info/inful/distbuilder/internal/logfields"
	"git.home.luguber.info/inful/distbuilder/internal/metrics"
	"git.home.luguber.info/inful/distbuilder/internal/source"
	"git.home.luguber.info/inful/distbuilder/internal/toolchain"
	"git.home.luguber.info/inful/distbuilder/internal/workspace"
)

// Runner executes the distribution pipeline for one configuration.
type Runner struct {
	cfg         *config.Config
	toolchain   toolchain.Toolchain
	recorder    metrics.Recorder
	history     history.Recorder
	publisher   events.Publisher
	forceUnlock bool
}

// NewRunner returns a runner with no-op metrics, history and events.
func NewRunner(cfg *config.Config, tc toolchain.Toolchain) *Runner {
	return &Runner{
		cfg:       cfg,
		toolchain: tc,
		recorder:  metrics.NoopRecorder{},
		history:   history.NoopRecorder{},
		publisher: events.NoopPublisher{},
	}
}

// WithRecorder sets the metrics recorder.
func (r *Runner) WithRecorder(rec metrics.Recorder) *Runner {
	if rec != nil {
		r.recorder = rec
	}
	return r
}

// WithHistory sets the run history store.
func (r *Runner) WithHistory(h history.Recorder) *Runner {
	if h != nil {
		r.history = h
	}
	return r
}

// WithPublisher sets the run event publisher.
func (r *Runner) WithPublisher(p events.Publisher) *Runner {
	if p != nil {
		r.publisher = p
	}
	return r
}

// WithForceUnlock removes an existing lock file before acquiring it.
func (r *Runner) WithForceUnlock(force bool) *Runner {
	r.forceUnlock = force
	return r
}

// Run validates the configuration and executes the pipeline. The returned
// report is nil only when the run was refused before doing any work
// (invalid configuration or locked working directory).
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	if err := r.cfg.Validate(); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	mode := ModeMove
	if r.cfg.ArchiveMode() {
		mode = ModeArchive
	}
	log := slog.With(logfields.RunID(runID), logfields.Mode(string(mode)))

	lockPath := filepath.Join(r.cfg.WorkDir, lock.FileName)
	if r.forceUnlock {
		if err := lock.ForceRemove(lockPath); err != nil {
			return nil, fe.FileSystemError("failed to remove lock file").
				WithCause(err).
				WithContext("path", lockPath).
				Build()
		}
	}
	lk, err := lock.Acquire(lockPath, runID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := lk.Release(); err != nil {
			log.Warn("Failed to release lock", logfields.Path(lockPath), logfields.Error(err))
		}
	}()

	targets := make([]string, 0, len(r.cfg.Targets))
	for _, t := range r.cfg.Targets {
		targets = append(targets, t.Package)
	}
	report := newReport(runID, mode, targets)
	report.Revision = r.revision(log)

	log.Info("Starting distribution run", "config", r.cfg.String(), logfields.Revision(report.Revision))

	err = r.execute(ctx, log, report)
	report.finish(err)
	r.publish(ctx, log, report)

	return report, err
}

// execute runs the stages in order, short-circuiting on the first failure.
func (r *Runner) execute(ctx context.Context, log *slog.Logger, report *Report) error {
	staging := workspace.NewStaging(r.cfg.StagingPath())

	build := r.runStage(ctx, log, report, StageBuild, r.build)
	if !build.IsSuccess() {
		r.cleanup(log, report, staging)
		return build.Err
	}

	assemble := r.runStage(ctx, log, report, StageAssemble, func(ctx context.Context, log *slog.Logger) error {
		return r.assemble(ctx, log, staging)
	})
	if !assemble.IsSuccess() {
		r.cleanup(log, report, staging)
		return assemble.Err
	}

	// From here on the staging directory belongs to the finalizer; no cleanup.
	finalize := r.runStage(ctx, log, report, StageFinalize, func(ctx context.Context, log *slog.Logger) error {
		output, err := r.finalize(log, report, staging)
		report.Output = output
		return err
	})
	if !finalize.IsSuccess() {
		return finalize.Err
	}

	if r.cfg.CleanCache {
		r.cleanCache(ctx, log, report)
	}
	return nil
}

type stageFunc func(ctx context.Context, log *slog.Logger) error

// runStage times fn, classifies its result and records it in report and metrics.
func (r *Runner) runStage(ctx context.Context, log *slog.Logger, report *Report, name StageName, fn stageFunc) StageExecution {
	log = log.With(logfields.Stage(string(name)))

	var err error
	t0 := time.Now()
	if ctxErr := ctx.Err(); ctxErr != nil {
		err = canceled(ctxErr)
	} else {
		log.Debug("Stage started")
		err = fn(ctx, log)
	}
	dur := time.Since(t0)

	ex := StageExecution{Stage: name, Duration: dur, Result: StageResultSuccess}
	if err != nil {
		ex.Err = withStage(err, name)
		ex.Result = StageResultFatal
		if ctx.Err() != nil {
			ex.Result = StageResultCanceled
		}
		log.Error("Stage failed", logfields.DurationMS(float64(dur.Milliseconds())), logfields.Error(err))
	} else {
		log.Info("Stage completed", logfields.DurationMS(float64(dur.Milliseconds())))
	}

	report.addStage(ex)
	r.recorder.ObserveStageDuration(string(name), dur)
	r.recorder.IncStageResult(string(name), ex.Result.label())
	return ex
}

// canceled reports an interrupted run. It counts as a build failure so the
// staging directory is cleaned up like any other aborted run.
func canceled(cause error) error {
	return fe.BuildError("run canceled").
		WithKind(fe.ErrBuildFailure).
		WithCause(cause).
		Build()
}

// withStage records the failing stage in the error context so the CLI can
// name it.
func withStage(err error, name StageName) error {
	if ce, ok := fe.AsClassified(err); ok {
		return ce.WithContext("stage", string(name))
	}
	return fe.WrapError(err, fe.CategoryInternal, "unexpected failure").
		WithContext("stage", string(name)).
		Build()
}

// cleanup removes the staging directory after a build or assembly failure.
// Its own failure is a warning and never replaces the primary error.
func (r *Runner) cleanup(log *slog.Logger, report *Report, staging *workspace.Staging) {
	t0 := time.Now()
	err := staging.Abort()
	dur := time.Since(t0)

	ex := StageExecution{Stage: StageCleanup, Duration: dur, Result: StageResultSuccess}
	if err != nil {
		ex.Result = StageResultWarning
		ex.Err = err
		report.addWarning(err)
		log.Warn("Failed to remove staging directory", logfields.Stage(string(StageCleanup)), logfields.Path(staging.Path()), logfields.Error(err))
	} else {
		log.Info("Removed staging directory", logfields.Stage(string(StageCleanup)), logfields.Path(staging.Path()))
	}
	report.addStage(ex)
	r.recorder.ObserveStageDuration(string(StageCleanup), dur)
	r.recorder.IncStageResult(string(StageCleanup), ex.Result.label())
}

// cleanCache runs the toolchain cache clean. Failure leaves the output intact
// and is reported as a warning.
func (r *Runner) cleanCache(ctx context.Context, log *slog.Logger, report *Report) {
	log = log.With(logfields.Stage(string(StageCleanCache)))
	t0 := time.Now()
	err := r.toolchain.Clean(ctx)
	dur := time.Since(t0)

	ex := StageExecution{Stage: StageCleanCache, Duration: dur, Result: StageResultSuccess}
	if err != nil {
		ex.Result = StageResultWarning
		ex.Err = fe.BuildError("toolchain cache clean failed").
			WithCause(err).
			Warning().
			WithContext("stage", string(StageCleanCache)).
			Build()
		report.addWarning(ex.Err)
		log.Warn("Cache clean failed; distribution output is unaffected", logfields.Error(err))
	} else {
		log.Info("Cleaned toolchain cache", logfields.DurationMS(float64(dur.Milliseconds())))
	}
	report.addStage(ex)
	r.recorder.ObserveStageDuration(string(StageCleanCache), dur)
	r.recorder.IncStageResult(string(StageCleanCache), ex.Result.label())
}

func (r *Runner) revision(log *slog.Logger) string {
	rev, err := source.Revision(r.cfg.WorkDir)
	if err != nil {
		log.Debug("Source revision unavailable", logfields.Error(err))
		return ""
	}
	return rev
}

// publish emits metrics, history and the completion event for a finished run.
// None of these can change the run's outcome.
func (r *Runner) publish(ctx context.Context, log *slog.Logger, report *Report) {
	ctx = context.WithoutCancel(ctx)

	r.recorder.ObserveRunDuration(report.Duration())
	r.recorder.IncRunOutcome(string(report.Outcome))

	if err := r.history.Record(ctx, history.Run{
		RunID:    report.RunID,
		Started:  report.Start,
		Duration: report.Duration(),
		Mode:     string(report.Mode),
		Outcome:  string(report.Outcome),
		Output:   report.Output,
		Revision: report.Revision,
		Error:    report.ErrorText(),
	}); err != nil {
		log.Warn("Failed to record run history", logfields.Error(err))
	}

	if err := r.publisher.Publish(ctx, events.RunEvent{
		RunID:      report.RunID,
		Outcome:    string(report.Outcome),
		Mode:       string(report.Mode),
		Output:     report.Output,
		Revision:   report.Revision,
		Targets:    report.Targets,
		Stages:     report.StageResults(),
		Error:      report.ErrorText(),
		StartedAt:  report.Start,
		DurationMS: report.Duration().Milliseconds(),
	}); err != nil {
		log.Warn("Failed to publish run event", logfields.Error(err))
	}

	level := slog.LevelInfo
	if report.Err != nil {
		level = slog.LevelError
	}
	log.Log(ctx, level, "Distribution run finished", logfields.Outcome(string(report.Outcome)), "summary", report.Summary())
}
