package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsGitURL(t *testing.T) {
	assert.True(t, isGitURL("https://github.com/user/repo.git"))
	assert.True(t, isGitURL("git@github.com:user/repo"))
	assert.True(t, isGitURL("ssh://git@example.com/repo"))
	assert.False(t, isGitURL("https://github.com/user/repo"))
	assert.False(t, isGitURL("src/main.go"))
}

func TestRepoFileName(t *testing.T) {
	checkout := filepath.Join(string(filepath.Separator), "tmp", "grep-git-123")

	assert.Equal(t, "https://github.com/user/repo.git/cmd/main.go",
		repoFileName("https://github.com/user/repo.git", checkout, filepath.Join(checkout, "cmd", "main.go")))
	assert.Equal(t, "git@github.com:user/repo.git/README.md",
		repoFileName("git@github.com:user/repo.git/", checkout, filepath.Join(checkout, "README.md")))
}

func TestCloneGitRepo_Failure(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nothing-here.git")
	dir, err := cloneGitRepo(missing, nil)
	assert.Error(t, err)
	assert.Empty(t, dir)
}
