package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// isGitURL reports whether a root names a remote repository: a .git
// suffix, scp-style git@host:path, or an ssh:// URL. Plain https URLs
// are treated as web pages.
func isGitURL(root string) bool {
	return strings.HasSuffix(root, ".git") ||
		strings.HasPrefix(root, "git@") ||
		strings.HasPrefix(root, "ssh://")
}

// cloneGitRepo checks out the tip of the default branch of url into a new
// temporary directory. The caller owns the directory.
func cloneGitRepo(url string, progress io.Writer) (string, error) {
	checkout, err := os.MkdirTemp("", "grep-git-")
	if err != nil {
		return "", fmt.Errorf("creating checkout directory: %w", err)
	}
	logger.Debugf("cloning %s into %s", url, checkout)

	opts := &git.CloneOptions{
		URL:           url,
		Progress:      progress,
		Depth:         1,
		ReferenceName: plumbing.HEAD,
		SingleBranch:  true,
		Tags:          git.NoTags,
	}
	if _, err := git.PlainClone(checkout, false, opts); err != nil {
		_ = os.RemoveAll(checkout)
		return "", fmt.Errorf("cloning %s: %w", url, err)
	}
	return checkout, nil
}

// repoFileName names a file of a checkout after the repository URL, so
// results do not show the temporary directory.
func repoFileName(url, checkout, file string) string {
	rel, err := filepath.Rel(checkout, file)
	if err != nil {
		return file
	}
	return strings.TrimSuffix(url, "/") + "/" + filepath.ToSlash(rel)
}
