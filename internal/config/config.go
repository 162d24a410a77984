// Package config resolves a run's effective configuration: which
// repository to file issues against, which token to use, which mode to
// run in, and whether tracker calls should be simulated rather than real.
package config

import (
	"fmt"

	"github.com/rakivo/stalkr/internal/gitcfg"
	"github.com/rakivo/stalkr/internal/todomodel"
	"github.com/rakivo/stalkr/internal/tracker/github"
)

// Config is the fully resolved set of inputs the pipeline needs for one
// run.
type Config struct {
	Directory string
	Owner     string
	Repo      string
	Token     string
	Mode      todomodel.Mode
	Simulate  bool
}

// Options are the raw, possibly-empty inputs gathered from CLI flags.
type Options struct {
	Directory string
	Owner     string
	Repo      string
	Remote    string
	Mode      todomodel.Mode
	Simulate  bool
}

// New resolves opts into a Config, filling in owner/repo from the local
// git remote and the token from the environment when not given explicitly.
// A token is required for Reporting and Purging (both talk to a tracker)
// unless Simulate is set; Listing never needs one.
func New(opts Options) (Config, error) {
	cfg := Config{
		Directory: opts.Directory,
		Owner:     opts.Owner,
		Repo:      opts.Repo,
		Mode:      opts.Mode,
		Simulate:  opts.Simulate,
	}
	if cfg.Directory == "" {
		cfg.Directory = "."
	}

	if cfg.Owner == "" || cfg.Repo == "" {
		remote := opts.Remote
		if remote == "" {
			remote = "origin"
		}
		url, ok := gitcfg.OriginURL(cfg.Directory, remote)
		if !ok {
			return Config{}, fmt.Errorf("config: could not resolve a repository: pass --owner and --repository, or run inside a git repository with a GitHub remote")
		}
		owner, repo, ok := gitcfg.ParseOwnerRepo(url)
		if !ok {
			return Config{}, fmt.Errorf("config: remote url %q is not a recognizable GitHub repository", url)
		}
		if cfg.Owner == "" {
			cfg.Owner = owner
		}
		if cfg.Repo == "" {
			cfg.Repo = repo
		}
	}

	if cfg.Mode != todomodel.ModeListing && !cfg.Simulate {
		token, ok := github.TokenFromEnv()
		if !ok {
			return Config{}, fmt.Errorf("config: %s must be set to run in %s mode (or pass --simulate)", github.TokenEnvVar, cfg.Mode)
		}
		cfg.Token = token
	}

	return cfg, nil
}

// ProjectURL returns the GitHub URL for the resolved owner/repo.
func (c Config) ProjectURL() string {
	return fmt.Sprintf("https://github.com/%s/%s", c.Owner, c.Repo)
}
