// Package pipeline runs the build-and-distribute stages.
//
// A run is strictly sequential:
//
//	build -> assemble -> finalize -> (clean_cache)
//
// A failure in build or assemble triggers cleanup, which removes the staging
// directory; once finalize has started, cleanup is never run. Each stage
// yields a StageExecution recorded in the run Report, and the runner stops at
// the first failing stage.
package pipeline
