package testing

import (
	"testing"
	"time"

	ggit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// CommitAll initializes a git repository in dir if needed, commits every
// file in it and returns the commit hash.
func CommitAll(t *testing.T, dir, message string) string {
	t.Helper()

	repo, err := ggit.PlainOpen(dir)
	if err != nil {
		repo, err = ggit.PlainInit(dir, false)
		if err != nil {
			t.Fatalf("failed to initialize git repo: %v", err)
		}
	}

	w, err := repo.Worktree()
	if err != nil {
		t.Fatalf("failed to get worktree: %v", err)
	}
	if err := w.AddWithOptions(&ggit.AddOptions{All: true}); err != nil {
		t.Fatalf("failed to stage files: %v", err)
	}
	hash, err := w.Commit(message, &ggit.CommitOptions{
		Author:            &object.Signature{Name: "Test", Email: "test@example.com", When: time.Now()},
		AllowEmptyCommits: true,
	})
	if err != nil {
		t.Fatalf("failed to commit: %v", err)
	}
	return hash.String()
}
