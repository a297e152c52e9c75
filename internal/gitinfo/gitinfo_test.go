package gitinfo

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initRepo(t *testing.T) (string, *git.Repository) {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	return dir, repo
}

func commitFile(t *testing.T, dir string, repo *git.Repository, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("content"), 0o644))
	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add(name)
	require.NoError(t, err)
	_, err = wt.Commit("add "+name, &git.CommitOptions{
		Author: &object.Signature{Name: "t", Email: "t@example.com", When: time.Now()},
	})
	require.NoError(t, err)
}

func TestReadNonRepository(t *testing.T) {
	_, ok := Read(t.TempDir())
	assert.False(t, ok)
}

func TestReadEmptyRepositoryNoHead(t *testing.T) {
	dir, _ := initRepo(t)
	_, ok := Read(dir)
	assert.False(t, ok)
}

func TestReadCleanRepository(t *testing.T) {
	dir, repo := initRepo(t)
	commitFile(t, dir, repo, "a.txt")

	info, ok := Read(dir)
	require.True(t, ok)
	assert.NotEmpty(t, info.Branch)
	assert.False(t, info.Dirty)
}

func TestReadDirtyRepository(t *testing.T) {
	dir, repo := initRepo(t)
	commitFile(t, dir, repo, "a.txt")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("new"), 0o644))

	info, ok := Read(dir)
	require.True(t, ok)
	assert.True(t, info.Dirty)
}
