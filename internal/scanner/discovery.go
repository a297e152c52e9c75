package scanner

import (
	"bufio"
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// discover supplements the walk with Spotlight results on macOS. It finds
// repositories outside the configured scan paths by asking mdfind for .git
// directories under the home directory. Anywhere mdfind is absent this is
// a silent no-op.
func (s *Scanner) discover(ctx context.Context, results chan<- Candidate) {
	mdfind, err := exec.LookPath("mdfind")
	if err != nil {
		return
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return
	}

	cmd := exec.CommandContext(ctx, mdfind, "-onlyin", home, "kMDItemFSName == '.git'")
	out, err := cmd.Output()
	if err != nil {
		s.logger.Debug("spotlight discovery failed", zap.Error(err))
		return
	}

	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		gitDir := sc.Text()
		if filepath.Base(gitDir) != ".git" {
			continue
		}
		project := filepath.Dir(gitDir)
		if s.discoveryExcluded(project) {
			continue
		}
		if IsProjectRoot(project) {
			results <- Candidate{Path: project, Name: filepath.Base(project)}
		}
	}
}

// discoveryExcluded rejects Spotlight hits inside dependency or cache
// directories.
func (s *Scanner) discoveryExcluded(path string) bool {
	for _, part := range splitPath(path) {
		if defaultExcludes[part] {
			return true
		}
	}
	return false
}

func splitPath(path string) []string {
	return strings.Split(filepath.Clean(path), string(filepath.Separator))
}
