// Package source reports the revision of the source tree a distribution is
// built from.
package source

import (
	"errors"
	"fmt"

	ggit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// shortLen is the number of hash characters reported.
const shortLen = 12

// Revision returns the abbreviated HEAD commit of the git repository that
// contains dir. It returns "" with no error when dir is not inside a
// repository or the repository has no commits yet.
func Revision(dir string) (string, error) {
	repo, err := ggit.PlainOpenWithOptions(dir, &ggit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, ggit.ErrRepositoryNotExists) {
			return "", nil
		}
		return "", fmt.Errorf("open repository: %w", err)
	}

	ref, err := repo.Head()
	if err != nil {
		// Unborn branch: repository initialized without commits.
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("resolve HEAD: %w", err)
	}

	hash := ref.Hash().String()
	if len(hash) > shortLen {
		hash = hash[:shortLen]
	}
	return hash, nil
}
