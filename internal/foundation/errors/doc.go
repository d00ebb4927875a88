// Package errors provides the classified error primitives used across distbuilder.
//
// Every failure the pipeline can report is a ClassifiedError carrying a
// category, a severity, a human readable message, an optional cause and a
// structured context. Pipeline failures additionally carry a sentinel kind so
// callers can test for them with the standard library:
//
//	if errors.Is(err, fe.ErrArtifactMissing) { ... }
//
// The CLI adapter maps categories to process exit codes and renders a single
// line for stderr.
//
// Example usage:
//
//	err := errors.NewError(errors.CategoryBuild, "toolchain exited non-zero").
//		WithKind(errors.ErrBuildFailure).
//		WithContext("target", "hikari_cli").
//		WithCause(runErr).
//		Build()
package errors
