package orchestrator

import (
	"path"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/rsyncapp/synccore/internal/synclog"
)

// excludeMatcher is a compiled exclude-pattern matcher: a path is excluded
// if any pattern matches the full relative path, the basename, or any
// normal path component (so "node_modules" matches at any depth).
//
// Basename/component matches are case-insensitive on macOS and Windows and
// case-sensitive on Linux, matching each platform's native filesystem
// semantics. Full relative-path matches always honor the pattern's own
// case, since that's what a user who typed a full path presumably
// intended.
type excludeMatcher struct {
	patterns        []string
	caseInsensitive bool
}

func newExcludeMatcher(patterns []string) *excludeMatcher {
	m := &excludeMatcher{caseInsensitive: runtime.GOOS == "darwin" || runtime.GOOS == "windows"}
	for _, p := range patterns {
		if _, err := path.Match(p, "probe"); err != nil {
			synclog.Base().WithField("pattern", p).WithError(err).Warn("ignoring invalid exclude pattern")
			continue
		}
		m.patterns = append(m.patterns, p)
	}
	return m
}

func (m *excludeMatcher) Matches(relPath string) bool {
	relPath = filepath.ToSlash(relPath)
	base := path.Base(relPath)
	components := strings.Split(relPath, "/")

	for _, p := range m.patterns {
		if ok, _ := path.Match(p, relPath); ok {
			return true
		}
		if m.matchFold(p, base) {
			return true
		}
		for _, c := range components {
			if m.matchFold(p, c) {
				return true
			}
		}
	}
	return false
}

func (m *excludeMatcher) matchFold(pattern, candidate string) bool {
	if m.caseInsensitive {
		pattern, candidate = strings.ToLower(pattern), strings.ToLower(candidate)
	}
	ok, _ := path.Match(pattern, candidate)
	return ok
}
