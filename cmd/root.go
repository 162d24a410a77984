package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rakivo/stalkr/internal/config"
	"github.com/rakivo/stalkr/internal/pipeline"
	"github.com/rakivo/stalkr/internal/todomodel"
	"github.com/rakivo/stalkr/internal/tracker"
	"github.com/rakivo/stalkr/internal/tracker/github"
)

var (
	flagDirectory  string
	flagOwner      string
	flagRepository string
	flagRemote     string
	flagSimulate   bool
)

// rootCmd is the base command. With no subcommand it behaves exactly like
// "stalkr report": file issues for every untagged TODO in the tree.
var rootCmd = &cobra.Command{
	Use:   "stalkr",
	Short: "Mine TODO comments and reconcile them with GitHub issues",
	Long: `stalkr walks a source tree looking for TODO comments, files a GitHub
issue for each new one, and removes the ones whose issue has since been
closed. Run with no subcommand to report; use 'list' to just see what's
there, or 'purge' to clean up closed TODOs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMode(todomodel.ModeReporting)
	},
}

// Execute runs the CLI. Called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flagDirectory, "directory", "d", ".", "directory to scan")
	pf.StringVar(&flagOwner, "owner", "", "GitHub repository owner (inferred from git remote if omitted)")
	pf.StringVar(&flagRepository, "repository", "", "GitHub repository name (inferred from git remote if omitted)")
	pf.StringVar(&flagRemote, "remote", "origin", "git remote to resolve owner/repository from")
	pf.BoolVar(&flagSimulate, "simulate", false, "simulate tracker calls instead of making them for real")
	rootCmd.MarkFlagsRequiredTogether("owner", "repository")
}

// runMode resolves configuration, wires the pipeline for mode, and runs
// it to completion.
func runMode(mode todomodel.Mode) error {
	cfg, err := config.New(config.Options{
		Directory: flagDirectory,
		Owner:     flagOwner,
		Repo:      flagRepository,
		Remote:    flagRemote,
		Mode:      mode,
		Simulate:  flagSimulate,
	})
	if err != nil {
		return err
	}

	var trk tracker.API
	if !cfg.Simulate && mode != todomodel.ModeListing {
		trk = github.New(cfg.Owner, cfg.Repo, cfg.Token)
	}

	p := pipeline.New(cfg, trk)
	return p.Run(context.Background())
}
