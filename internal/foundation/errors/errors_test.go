package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestClassifiedError(t *testing.T) {
	t.Run("Basic error creation", func(t *testing.T) {
		err := NewError(CategoryConfig, "invalid configuration").
			WithSeverity(SeverityFatal).
			WithContext("file", "distbuilder.yaml").
			Build()

		if err.Category() != CategoryConfig {
			t.Errorf("expected category %s, got %s", CategoryConfig, err.Category())
		}
		if err.Severity() != SeverityFatal {
			t.Errorf("expected severity %s, got %s", SeverityFatal, err.Severity())
		}
		if err.Message() != "invalid configuration" {
			t.Errorf("expected message 'invalid configuration', got %s", err.Message())
		}

		file, exists := err.Context().GetString("file")
		if !exists || file != "distbuilder.yaml" {
			t.Errorf("expected context file=distbuilder.yaml, got %v", file)
		}
	})

	t.Run("Error detection", func(t *testing.T) {
		err := ConfigError("test error").Build()

		if !IsClassified(err) {
			t.Error("expected error to be classified")
		}
		if !HasCategory(err, CategoryConfig) {
			t.Error("expected error to have config category")
		}
		if !err.IsFatal() {
			t.Error("expected config error to be fatal")
		}
	})

	t.Run("Detection through fmt wrapping", func(t *testing.T) {
		inner := BuildError("boom").Build()
		wrapped := fmt.Errorf("outer: %w", inner)

		if GetCategory(wrapped) != CategoryBuild {
			t.Errorf("expected build category through wrap, got %s", GetCategory(wrapped))
		}
		if GetSeverity(wrapped) != SeverityFatal {
			t.Errorf("expected fatal severity through wrap, got %s", GetSeverity(wrapped))
		}
	})

	t.Run("Unclassified defaults", func(t *testing.T) {
		plain := stderrors.New("plain")
		if GetCategory(plain) != CategoryInternal {
			t.Errorf("expected internal category, got %s", GetCategory(plain))
		}
		if GetSeverity(plain) != SeverityError {
			t.Errorf("expected error severity, got %s", GetSeverity(plain))
		}
	})
}

func TestErrorBuilder(t *testing.T) {
	originalErr := stderrors.New("original error")
	err := WrapError(originalErr, CategoryFileSystem, "copy failed").
		Warning().
		WithContext("path", "/tmp/x").
		Build()

	if err.Severity() != SeverityWarning {
		t.Errorf("expected warning severity, got %s", err.Severity())
	}
	if !stderrors.Is(err, originalErr) {
		t.Error("expected wrapped error to match original")
	}
	if err.Cause() != originalErr {
		t.Error("expected cause to be original error")
	}

	withMore := err.WithContext("attempt", 1)
	if _, ok := err.Context().Get("attempt"); ok {
		t.Error("WithContext must not mutate the receiver")
	}
	if v, ok := withMore.Context().Get("attempt"); !ok || v != 1 {
		t.Errorf("expected attempt=1 on derived error, got %v", v)
	}
}

func TestKinds(t *testing.T) {
	cause := stderrors.New("exit status 101")

	tests := []struct {
		name     string
		err      error
		kind     error
		category ErrorCategory
	}{
		{"build failure", BuildFailure("hikari_cli", cause), ErrBuildFailure, CategoryBuild},
		{"asset missing", AssetMissing("templates", cause), ErrAssetMissing, CategoryFileSystem},
		{"file missing", FileMissing("imgui.ini", cause), ErrFileMissing, CategoryFileSystem},
		{"artifact missing", ArtifactMissing("hikari_cli", "target/dist/hikari_cli", cause), ErrArtifactMissing, CategoryBuild},
		{"unsupported format", UnsupportedArchiveFormat("out.tar", "tar", []string{"zip"}), ErrUnsupportedArchiveFormat, CategoryConfig},
		{"finalize", FinalizeError("promote failed").WithCause(cause).Build(), ErrFinalizeFailure, CategoryFinalize},
		{"locked", Locked(".distbuilder.lock", "pid 42"), ErrLocked, CategoryLocked},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !stderrors.Is(tt.err, tt.kind) {
				t.Errorf("expected errors.Is(%v, %v)", tt.err, tt.kind)
			}
			if !stderrors.Is(fmt.Errorf("wrapped: %w", tt.err), tt.kind) {
				t.Error("expected kind to survive fmt wrapping")
			}
			if GetCategory(tt.err) != tt.category {
				t.Errorf("expected category %s, got %s", tt.category, GetCategory(tt.err))
			}
		})
	}

	if stderrors.Is(BuildFailure("a", cause), ErrArtifactMissing) {
		t.Error("build failure must not match artifact missing")
	}
}
