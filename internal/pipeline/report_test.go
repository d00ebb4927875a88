package pipeline

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReport_Outcome(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(r *Report)
		err     error
		outcome Outcome
	}{
		{"success", func(*Report) {}, nil, OutcomeSuccess},
		{"warning", func(r *Report) { r.addWarning(errors.New("cache clean failed")) }, nil, OutcomeWarning},
		{"failed", func(*Report) {}, errors.New("boom"), OutcomeFailed},
		{"canceled", func(r *Report) {
			r.addStage(StageExecution{Stage: StageBuild, Result: StageResultCanceled, Err: errors.New("canceled")})
		}, errors.New("canceled"), OutcomeCanceled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newReport("run", ModeMove, []string{"tool"})
			tt.setup(r)
			r.finish(tt.err)
			assert.Equal(t, tt.outcome, r.Outcome)
			assert.False(t, r.End.IsZero())
		})
	}
}

func TestReport_Summary(t *testing.T) {
	r := newReport("abc", ModeArchive, []string{"a", "b"})
	r.addStage(StageExecution{Stage: StageBuild, Result: StageResultSuccess, Duration: 1500 * time.Millisecond})
	r.addStage(StageExecution{Stage: StageAssemble, Result: StageResultFatal, Err: errors.New("x")})
	r.finish(errors.New("x"))

	s := r.Summary()
	assert.Contains(t, s, "run=abc")
	assert.Contains(t, s, "mode=archive")
	assert.Contains(t, s, "targets=2")
	assert.Contains(t, s, "build=success(1.5s)")
	assert.Contains(t, s, "assemble=fatal(0s)")
	assert.Contains(t, s, "outcome=failed")
	assert.Equal(t, "x", r.ErrorText())
}
