package pipeline

import (
	"time"

	"git.home.luguber.info/inful/distbuilder/internal/metrics"
)

// StageName is a strongly-typed identifier for a pipeline stage.
type StageName string

// Canonical stage names.
const (
	StageBuild      StageName = "build"
	StageAssemble   StageName = "assemble"
	StageFinalize   StageName = "finalize"
	StageCleanup    StageName = "cleanup"
	StageCleanCache StageName = "clean_cache"
)

// StageResult captures the high-level outcome of a stage.
type StageResult string

const (
	StageResultSuccess  StageResult = "success"
	StageResultWarning  StageResult = "warning"
	StageResultFatal    StageResult = "fatal"
	StageResultCanceled StageResult = "canceled"
)

// label maps a stage result onto its metrics counter label.
func (r StageResult) label() metrics.ResultLabel {
	switch r {
	case StageResultSuccess:
		return metrics.ResultSuccess
	case StageResultWarning:
		return metrics.ResultWarning
	case StageResultCanceled:
		return metrics.ResultCanceled
	default:
		return metrics.ResultFatal
	}
}

// StageExecution is the structured result of one stage.
type StageExecution struct {
	Stage    StageName
	Result   StageResult
	Duration time.Duration
	Err      error // nil on success
}

// IsSuccess reports whether the stage completed without error.
func (e StageExecution) IsSuccess() bool {
	return e.Err == nil
}
