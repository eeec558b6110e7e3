package buildinfo

import (
	"fmt"

	"github.com/go-git/go-git/v5"
)

// HeadCommit returns the commit SHA checked out in the repository containing
// path. Parent directories are searched for the .git directory.
func HeadCommit(path string) (string, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", fmt.Errorf("opening repository at %s: %w", path, err)
	}
	return headOf(repo)
}

func headOf(repo *git.Repository) (string, error) {
	ref, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("resolving HEAD: %w", err)
	}
	return ref.Hash().String(), nil
}
