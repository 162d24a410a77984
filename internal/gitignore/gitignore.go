// Package gitignore is a lightweight .gitignore matcher used by the
// scanner to skip ignored files and directories during a walk. It is not a
// full implementation of git's ignore semantics, but covers the common
// cases real repos rely on: comments, blank lines, negation, anchoring,
// directory-only rules, and basename vs. path-segment matching.
package gitignore

import (
	"bufio"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rakivo/stalkr/internal/todomodel"
)

type rule struct {
	pattern  string
	negative bool
	anchored bool
	dirOnly  bool
	hasSlash bool
}

// Matcher answers whether a repo-relative path is ignored, per one
// directory's .gitignore rules.
type Matcher struct {
	root  string
	rules []rule
}

// FindRepoRoot returns the nearest ancestor directory of start that
// contains a .git directory, or start itself if none is found.
func FindRepoRoot(start string) string {
	d := start
	for {
		if fi, err := os.Stat(filepath.Join(d, ".git")); err == nil && fi.IsDir() {
			return d
		}
		parent := filepath.Dir(d)
		if parent == d {
			return start
		}
		d = parent
	}
}

// Load reads base/.gitignore, if present, and returns a Matcher for it. A
// missing .gitignore is not an error: Load returns (nil, nil).
func Load(base string) (*Matcher, error) {
	p := filepath.Join(base, ".gitignore")
	f, err := os.Open(p)
	if err != nil {
		return nil, nil
	}
	defer todomodel.SafeClose(f, p)

	rules := make([]rule, 0, 16)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		neg := false
		if strings.HasPrefix(line, "!") {
			neg = true
			line = strings.TrimSpace(line[1:])
			if line == "" {
				continue
			}
		}
		dirOnly := false
		if strings.HasSuffix(line, "/") {
			dirOnly = true
			line = strings.TrimSuffix(line, "/")
		}
		anchored := false
		if strings.HasPrefix(line, "/") {
			anchored = true
			line = strings.TrimPrefix(line, "/")
		}
		if line == "" {
			continue
		}
		rules = append(rules, rule{
			pattern:  line,
			negative: neg,
			anchored: anchored,
			dirOnly:  dirOnly,
			hasSlash: strings.Contains(line, "/"),
		})
	}
	return &Matcher{root: base, rules: rules}, nil
}

func normalizePath(p string) string {
	return strings.ReplaceAll(p, string(os.PathSeparator), "/")
}

// Match reports whether rel (relative to the Matcher's root) is ignored.
// isDir indicates whether rel names a directory.
func (m *Matcher) Match(rel string, isDir bool) bool {
	if m == nil {
		return false
	}
	rel = normalizePath(rel)
	matched := false
	for _, r := range m.rules {
		if r.dirOnly && !isDir {
			continue
		}
		if r.anchored {
			if matchPattern(r.pattern, rel) {
				matched = !r.negative
			}
			continue
		}
		if !r.hasSlash {
			base := path.Base(rel)
			if matchPattern(r.pattern, base) {
				matched = !r.negative
			}
			if isDir && r.pattern == base {
				matched = !r.negative
			}
			continue
		}
		if matchPattern(r.pattern, rel) {
			matched = !r.negative
			continue
		}
		for i := 0; i < len(rel); i++ {
			if rel[i] == '/' && i+1 < len(rel) {
				suf := rel[i+1:]
				if matchPattern(r.pattern, suf) {
					matched = !r.negative
					break
				}
			}
		}
	}
	return matched
}

func matchPattern(pattern, name string) bool {
	ok, err := path.Match(pattern, name)
	if err != nil {
		return pattern == name
	}
	return ok
}
