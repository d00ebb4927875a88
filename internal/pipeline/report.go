package pipeline

import (
	"fmt"
	"strings"
	"time"
)

// Mode is the finalize strategy of a run.
type Mode string

const (
	ModeMove    Mode = "move"
	ModeArchive Mode = "archive"
)

// Outcome is the final state of a run.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeWarning  Outcome = "warning"
	OutcomeFailed   Outcome = "failed"
	OutcomeCanceled Outcome = "canceled"
)

// Report describes one pipeline run.
type Report struct {
	RunID    string
	Mode     Mode
	Targets  []string
	Revision string // source HEAD, empty outside a git repository
	Start    time.Time
	End      time.Time
	Stages   []StageExecution // in execution order
	Output   string           // distribution directory or archive file; empty on failure
	Err      error            // the fatal error that ended the run
	Warnings []error          // non-fatal problems (cleanup, cache clean, staging discard)
	Outcome  Outcome
	canceled bool
}

func newReport(runID string, mode Mode, targets []string) *Report {
	return &Report{
		RunID:   runID,
		Mode:    mode,
		Targets: targets,
		Start:   time.Now(),
	}
}

func (r *Report) addStage(ex StageExecution) {
	r.Stages = append(r.Stages, ex)
	if ex.Result == StageResultCanceled {
		r.canceled = true
	}
}

func (r *Report) addWarning(err error) {
	r.Warnings = append(r.Warnings, err)
}

// Stage returns the recorded execution of name.
func (r *Report) Stage(name StageName) (StageExecution, bool) {
	for _, ex := range r.Stages {
		if ex.Stage == name {
			return ex, true
		}
	}
	return StageExecution{}, false
}

// StageResults maps each executed stage to its result.
func (r *Report) StageResults() map[string]string {
	out := make(map[string]string, len(r.Stages))
	for _, ex := range r.Stages {
		out[string(ex.Stage)] = string(ex.Result)
	}
	return out
}

// Duration is the wall-clock time of the run.
func (r *Report) Duration() time.Duration {
	if r.End.IsZero() {
		return time.Since(r.Start)
	}
	return r.End.Sub(r.Start)
}

// finish stamps the end time and derives the outcome.
func (r *Report) finish(err error) {
	r.End = time.Now()
	r.Err = err
	switch {
	case err != nil && r.canceled:
		r.Outcome = OutcomeCanceled
	case err != nil:
		r.Outcome = OutcomeFailed
	case len(r.Warnings) > 0:
		r.Outcome = OutcomeWarning
	default:
		r.Outcome = OutcomeSuccess
	}
}

// ErrorText returns the fatal error message, or "".
func (r *Report) ErrorText() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// Summary returns a human-readable single-line summary.
func (r *Report) Summary() string {
	stages := make([]string, 0, len(r.Stages))
	for _, ex := range r.Stages {
		stages = append(stages, fmt.Sprintf("%s=%s(%s)", ex.Stage, ex.Result, ex.Duration.Truncate(time.Millisecond)))
	}
	return fmt.Sprintf("run=%s mode=%s targets=%d duration=%s warnings=%d stages=[%s] outcome=%s",
		r.RunID, r.Mode, len(r.Targets), r.Duration().Truncate(time.Millisecond), len(r.Warnings), strings.Join(stages, " "), r.Outcome)
}
