// Package pipeline wires the Scanner, Prompter, Issuer, and Inserter
// stages together according to the active Mode, and owns the run-wide
// counters and interrupt handling.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/rakivo/stalkr/internal/config"
	"github.com/rakivo/stalkr/internal/counters"
	"github.com/rakivo/stalkr/internal/fm"
	"github.com/rakivo/stalkr/internal/inserter"
	"github.com/rakivo/stalkr/internal/issuer"
	"github.com/rakivo/stalkr/internal/prompt"
	"github.com/rakivo/stalkr/internal/scanner"
	"github.com/rakivo/stalkr/internal/todomodel"
	"github.com/rakivo/stalkr/internal/tracker"
	"github.com/rakivo/stalkr/internal/vcs"
)

// maxHTTPConcurrency bounds how many files the Issuer talks to a tracker
// about at once. Grounded on balance_concurrency in the original: eight
// in-flight files per CPU reserved for async work, where two CPUs are
// reserved on machines with at least 8 and one otherwise.
var maxHTTPConcurrency = func() int {
	reservedForAsync := 1
	if runtime.NumCPU() >= 8 {
		reservedForAsync = 2
	}
	return reservedForAsync * 8
}()

// Pipeline owns every stage's shared dependencies for one run.
type Pipeline struct {
	Config  config.Config
	Manager *fm.Manager
	Tracker tracker.API
	Locker  *vcs.Locker
	Stdin   io.Reader
	Stdout  io.Writer
}

// New constructs a Pipeline. tracker may be nil when cfg.Simulate is true
// or the mode is Listing, since neither path calls it.
func New(cfg config.Config, trk tracker.API) *Pipeline {
	return &Pipeline{
		Config:  cfg,
		Manager: fm.New(),
		Tracker: trk,
		Locker:  vcs.NewLocker(cfg.Directory),
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
	}
}

// Run executes the pipeline end to end for the configured mode and prints
// the final summary line.
func (p *Pipeline) Run(ctx context.Context) error {
	counts := counters.New()
	stop := counters.InstallInterruptHandler(counts, verbFor(p.Config.Mode))
	defer stop()

	var err error
	switch p.Config.Mode {
	case todomodel.ModeListing:
		err = p.runListing(counts)
	case todomodel.ModeReporting:
		err = p.runReporting(ctx, counts)
	case todomodel.ModePurging:
		err = p.runPurging(ctx, counts)
	default:
		panic("pipeline: unreachable mode")
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(p.Stdout, counts.Summary(verbFor(p.Config.Mode)))
	return nil
}

func verbFor(mode todomodel.Mode) string {
	switch mode {
	case todomodel.ModeListing:
		return "listed"
	case todomodel.ModeReporting:
		return "reported"
	case todomodel.ModePurging:
		return "purged"
	default:
		panic("pipeline: unreachable mode")
	}
}

func (p *Pipeline) pathOf(id todomodel.FileID) string {
	path, _ := p.Manager.Path(id)
	return path
}

func (p *Pipeline) runListing(counts *counters.Counters) error {
	res, err := scanner.Walk(scanner.Options{Root: p.Config.Directory, Mode: todomodel.ModeListing}, p.Manager)
	if err != nil {
		return fmt.Errorf("pipeline: scan: %w", err)
	}
	counts.AddFound(int64(res.Found))

	batches := make(chan todomodel.ListingBatch, len(res.Batches))
	for _, b := range res.Batches {
		batches <- b.(todomodel.ListingBatch)
	}
	close(batches)

	pr := prompt.New(p.Stdin, p.Stdout, p.pathOf)
	pr.RunListing(batches)
	counts.AddProcessed(int64(pr.Processed()))
	return nil
}

func (p *Pipeline) runReporting(ctx context.Context, counts *counters.Counters) error {
	res, err := scanner.Walk(scanner.Options{Root: p.Config.Directory, Mode: todomodel.ModeReporting}, p.Manager)
	if err != nil {
		return fmt.Errorf("pipeline: scan: %w", err)
	}
	counts.AddFound(int64(res.Found))

	scanned := make(chan todomodel.ReportingBatch, len(res.Batches))
	for _, b := range res.Batches {
		scanned <- b.(todomodel.ReportingBatch)
	}
	close(scanned)

	confirmed := make(chan todomodel.ReportingBatch, len(res.Batches))
	pr := prompt.New(p.Stdin, p.Stdout, p.pathOf)
	pr.RunReporting(scanned, confirmed)
	close(confirmed)

	tags := make(chan todomodel.InsertTags, len(res.Batches))
	is := issuer.New(p.Tracker, p.Manager, p.Config.Simulate, maxHTTPConcurrency, p.pathOf)
	if err := is.RunReporting(ctx, confirmed, tags); err != nil {
		return fmt.Errorf("pipeline: issuer: %w", err)
	}
	close(tags)
	counts.AddProcessed(is.Processed())

	ins := inserter.New(p.Manager, p.Locker)
	if err := ins.RunInsertTags(ctx, tags); err != nil {
		return fmt.Errorf("pipeline: inserter: %w", err)
	}
	return nil
}

func (p *Pipeline) runPurging(ctx context.Context, counts *counters.Counters) error {
	res, err := scanner.Walk(scanner.Options{Root: p.Config.Directory, Mode: todomodel.ModePurging}, p.Manager)
	if err != nil {
		return fmt.Errorf("pipeline: scan: %w", err)
	}

	scanned := make(chan todomodel.PurgingBatch, len(res.Batches))
	for _, b := range res.Batches {
		scanned <- b.(todomodel.PurgingBatch)
	}
	close(scanned)

	candidates := make(chan todomodel.ApplyPurges, len(res.Batches))
	is := issuer.New(p.Tracker, p.Manager, p.Config.Simulate, maxHTTPConcurrency, p.pathOf)
	if err := is.RunPurging(ctx, scanned, candidates); err != nil {
		return fmt.Errorf("pipeline: issuer: %w", err)
	}
	close(candidates)
	counts.AddFound(is.Found())

	confirmed := make(chan todomodel.ApplyPurges, len(res.Batches))
	pr := prompt.New(p.Stdin, p.Stdout, p.pathOf)
	pr.RunPurging(candidates, confirmed)
	close(confirmed)
	counts.AddProcessed(int64(pr.Processed()))

	ins := inserter.New(p.Manager, p.Locker)
	if err := ins.RunApplyPurges(ctx, confirmed); err != nil {
		return fmt.Errorf("pipeline: inserter: %w", err)
	}
	return nil
}
