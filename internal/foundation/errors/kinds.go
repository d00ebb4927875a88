package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Sentinel kinds for pipeline failures. Classified errors built by the
// constructors below match these with errors.Is.
var (
	ErrBuildFailure             = stderrors.New("build failure")
	ErrAssetMissing             = stderrors.New("asset folder missing")
	ErrFileMissing              = stderrors.New("file missing")
	ErrArtifactMissing          = stderrors.New("build artifact missing")
	ErrUnsupportedArchiveFormat = stderrors.New("unsupported archive format")
	ErrFinalizeFailure          = stderrors.New("finalize failure")
	ErrLocked                   = stderrors.New("working directory locked")
)

// BuildFailure reports that the toolchain exited non-zero for target.
func BuildFailure(target string, cause error) *ClassifiedError {
	return BuildError(fmt.Sprintf("failed to build %s", target)).
		WithKind(ErrBuildFailure).
		WithCause(cause).
		WithContext("target", target).
		Build()
}

// AssetMissing reports an absent asset folder in the working directory.
func AssetMissing(path string, cause error) *ClassifiedError {
	return FileSystemError(fmt.Sprintf("asset folder %s not found", path)).
		WithKind(ErrAssetMissing).
		WithCause(cause).
		WithContext("path", path).
		Build()
}

// FileMissing reports an absent loose file in the working directory.
func FileMissing(path string, cause error) *ClassifiedError {
	return FileSystemError(fmt.Sprintf("file %s not found", path)).
		WithKind(ErrFileMissing).
		WithCause(cause).
		WithContext("path", path).
		Build()
}

// ArtifactMissing reports a binary the toolchain claimed to build but did not produce.
func ArtifactMissing(target, path string, cause error) *ClassifiedError {
	return BuildError(fmt.Sprintf("binary for %s not found at %s", target, path)).
		WithKind(ErrArtifactMissing).
		WithCause(cause).
		WithContext("target", target).
		WithContext("path", path).
		Build()
}

// UnsupportedArchiveFormat reports an archive destination whose extension is
// not on the allow-list.
func UnsupportedArchiveFormat(destination, ext string, supported []string) *ClassifiedError {
	return ConfigError(fmt.Sprintf("unsupported archive format %q for %s, supported formats are: %s",
		ext, destination, strings.Join(supported, ", "))).
		WithKind(ErrUnsupportedArchiveFormat).
		WithContext("path", destination).
		Build()
}

// Locked reports that another run holds the working directory lock.
func Locked(path, holder string) *ClassifiedError {
	return NewError(CategoryLocked, fmt.Sprintf("another run holds %s (%s)", path, holder)).
		Fatal().
		WithKind(ErrLocked).
		WithContext("path", path).
		Build()
}
