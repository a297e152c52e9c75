// Package gitinfo reads lightweight repository status for display.
package gitinfo

import (
	git "github.com/go-git/go-git/v5"
)

// Info is the repository state shown next to a project in listings.
type Info struct {
	// Branch is the short name of HEAD, or "detached" off-branch.
	Branch string

	// Dirty reports uncommitted changes in the worktree.
	Dirty bool
}

// Read returns repository info for path. Non-repositories and unreadable
// repositories return ok=false; listings simply omit the column.
func Read(path string) (Info, bool) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return Info{}, false
	}

	var info Info
	head, err := repo.Head()
	if err != nil {
		return Info{}, false
	}
	if head.Name().IsBranch() {
		info.Branch = head.Name().Short()
	} else {
		info.Branch = "detached"
	}

	// Worktree status is best-effort: a failure leaves Dirty false
	// rather than dropping the branch name.
	if wt, err := repo.Worktree(); err == nil {
		if status, err := wt.Status(); err == nil {
			info.Dirty = !status.IsClean()
		}
	}
	return info, true
}
