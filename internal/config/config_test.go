package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rakivo/stalkr/internal/todomodel"
)

func writeGitConfig(t *testing.T, dir, content string) {
	t.Helper()
	gitDir := filepath.Join(dir, ".git")
	if err := os.MkdirAll(gitDir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(filepath.Join(gitDir, "config"), []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestNewResolvesOwnerRepoFromGit(t *testing.T) {
	dir := t.TempDir()
	writeGitConfig(t, dir, `
[remote "origin"]
	url = https://github.com/acme/widgets.git
`)

	cfg, err := New(Options{Directory: dir, Mode: todomodel.ModeListing})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if cfg.Owner != "acme" || cfg.Repo != "widgets" {
		t.Fatalf("Owner=%q Repo=%q", cfg.Owner, cfg.Repo)
	}
}

func TestNewListingNeedsNoToken(t *testing.T) {
	cfg, err := New(Options{Owner: "acme", Repo: "widgets", Mode: todomodel.ModeListing})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if cfg.Token != "" {
		t.Fatalf("expected no token resolved for Listing mode")
	}
}

func TestNewReportingRequiresToken(t *testing.T) {
	t.Setenv("STALKR_GITHUB_TOKEN", "")
	os.Unsetenv("STALKR_GITHUB_TOKEN")
	_, err := New(Options{Owner: "acme", Repo: "widgets", Mode: todomodel.ModeReporting})
	if err == nil {
		t.Fatalf("expected an error when no token is set for Reporting mode")
	}
}

func TestNewReportingSimulateSkipsToken(t *testing.T) {
	os.Unsetenv("STALKR_GITHUB_TOKEN")
	cfg, err := New(Options{Owner: "acme", Repo: "widgets", Mode: todomodel.ModeReporting, Simulate: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if cfg.Token != "" {
		t.Fatalf("expected no token required in simulate mode")
	}
}

func TestNewFailsWithoutResolvableRepo(t *testing.T) {
	dir := t.TempDir()
	_, err := New(Options{Directory: dir, Mode: todomodel.ModeListing})
	if err == nil {
		t.Fatalf("expected an error when owner/repo cannot be resolved")
	}
}

func TestProjectURL(t *testing.T) {
	cfg := Config{Owner: "acme", Repo: "widgets"}
	if cfg.ProjectURL() != "https://github.com/acme/widgets" {
		t.Fatalf("ProjectURL() = %q", cfg.ProjectURL())
	}
}
