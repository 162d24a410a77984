// Package gitcfg resolves a repository's owner/repo pair from its local
// git configuration, so stalkr can talk to a tracker without requiring
// --owner/--repository on every invocation.
package gitcfg

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// OriginURL walks up from dir looking for a .git/config, trying remote in
// turn against: the named remote, remote.pushDefault, the current
// branch's configured remote, and finally any remote found at all. It
// returns the first resolved URL.
func OriginURL(dir, remote string) (string, bool) {
	for {
		configPath := filepath.Join(dir, ".git", "config")
		contents, err := os.ReadFile(configPath)
		if err != nil {
			parent := filepath.Dir(dir)
			if parent == dir {
				return "", false
			}
			dir = parent
			continue
		}
		text := string(contents)

		if url, ok := findRemoteURL(text, remote); ok {
			return url, true
		}
		if pushDefault, ok := findPushDefault(text); ok {
			fmt.Fprintf(os.Stderr, "[falling back to pushDefault]: %s\n", pushDefault)
			if url, ok := findRemoteURL(text, pushDefault); ok {
				return url, true
			}
		}
		if branchRemote, ok := findCurrentBranchRemote(dir, text); ok {
			fmt.Printf("[falling back to branch remote]: %s\n", branchRemote)
			if url, ok := findRemoteURL(text, branchRemote); ok {
				return url, true
			}
		}
		if url, ok := findAnyRemoteURL(text); ok {
			fmt.Println("[falling back to first available remote]")
			return url, true
		}
		return "", false
	}
}

func findRemoteURL(contents, remote string) (string, bool) {
	inTarget := false
	want := fmt.Sprintf("%q", remote)
	for _, raw := range strings.Split(contents, "\n") {
		line := strings.TrimSpace(raw)
		switch {
		case strings.HasPrefix(line, `[remote "`):
			inTarget = strings.Contains(line, want)
		case inTarget && strings.HasPrefix(line, "url"):
			if v, ok := splitEquals(line); ok {
				return v, true
			}
		}
	}
	return "", false
}

func findPushDefault(contents string) (string, bool) {
	inRemoteSection := false
	for _, raw := range strings.Split(contents, "\n") {
		line := strings.TrimSpace(raw)
		switch {
		case strings.HasPrefix(line, "[remote]"):
			inRemoteSection = true
		case strings.HasPrefix(line, "["):
			inRemoteSection = false
		case inRemoteSection && strings.HasPrefix(line, "pushDefault"):
			if v, ok := splitEquals(line); ok {
				return v, true
			}
		}
	}
	return "", false
}

func findCurrentBranchRemote(dir, contents string) (string, bool) {
	headContents, err := os.ReadFile(filepath.Join(dir, ".git", "HEAD"))
	if err != nil {
		return "", false
	}
	head := strings.TrimSpace(string(headContents))
	branch, ok := strings.CutPrefix(head, "ref: refs/heads/")
	if !ok {
		return "", false
	}
	branch = strings.TrimSpace(branch)

	inBranchSection := false
	want := fmt.Sprintf("[branch %q]", branch)
	for _, raw := range strings.Split(contents, "\n") {
		line := strings.TrimSpace(raw)
		switch {
		case strings.HasPrefix(line, want):
			inBranchSection = true
		case strings.HasPrefix(line, "["):
			inBranchSection = false
		case inBranchSection && strings.HasPrefix(line, "remote"):
			if v, ok := splitEquals(line); ok {
				return v, true
			}
		}
	}
	return "", false
}

func findAnyRemoteURL(contents string) (string, bool) {
	inRemote := false
	for _, raw := range strings.Split(contents, "\n") {
		line := strings.TrimSpace(raw)
		switch {
		case strings.HasPrefix(line, `[remote "`):
			inRemote = true
		case inRemote && strings.HasPrefix(line, "url"):
			if v, ok := splitEquals(line); ok {
				return v, true
			}
		}
	}
	return "", false
}

func splitEquals(line string) (string, bool) {
	parts := strings.SplitN(line, "=", 2)
	if len(parts) != 2 {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

// ParseOwnerRepo extracts "owner" and "repo" from a GitHub remote URL in
// either https://github.com/owner/repo(.git) or git@github.com:owner/repo
// form.
func ParseOwnerRepo(url string) (owner, repo string, ok bool) {
	const needleSlash = "github.com/"
	const needleColon = "github.com:"

	pivot := strings.Index(url, needleSlash)
	needleLen := len(needleSlash)
	if pivot < 0 {
		pivot = strings.Index(url, needleColon)
		needleLen = len(needleColon)
	}
	if pivot < 0 {
		return "", "", false
	}

	rest := url[pivot+needleLen:]
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	owner = parts[0]
	repo = strings.TrimSuffix(parts[1], ".git")
	return owner, repo, true
}
