// Package issuer is the Issuer stage: it takes per-file batches of
// approved TODOs (Reporting/Purging) and talks to a tracker.API to either
// file new issues and request tag insertion, or to check closed state and
// request purges, all under a bounded concurrency budget.
package issuer

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/rakivo/stalkr/internal/fm"
	"github.com/rakivo/stalkr/internal/tracker"
	"github.com/rakivo/stalkr/internal/todomodel"
)

// innerConcurrency bounds the number of tracker calls made concurrently
// within a single file's batch, independent of how many files are being
// processed at once.
const innerConcurrency = 4

// maxPathLen bounds the path column width of progress output.
const maxPathLen = 40

// Issuer drives tracker interaction for one run.
type Issuer struct {
	api      tracker.API
	manager  *fm.Manager
	simulate bool
	maxConc  int64
	pathOf   func(todomodel.FileID) string

	foundClosed atomic.Bool
	found       atomic.Int64
	processed   atomic.Int64
}

// New constructs an Issuer. pathOf resolves a FileID to a display path for
// progress output; maxConcurrency bounds the outer (per-file) fan-out.
// Freshly filed tags are staged on manager's File entries rather than
// carried through the channel to the Inserter.
func New(api tracker.API, manager *fm.Manager, simulate bool, maxConcurrency int, pathOf func(todomodel.FileID) string) *Issuer {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	return &Issuer{api: api, manager: manager, simulate: simulate, maxConc: int64(maxConcurrency), pathOf: pathOf}
}

// Found returns the number of TODOs seen across all batches processed so
// far.
func (is *Issuer) Found() int64 { return is.found.Load() }

// Processed returns the number of TODOs the tracker has finished handling
// (issues filed or closed-state checks completed) so far.
func (is *Issuer) Processed() int64 { return is.processed.Load() }

// FoundClosedTODO reports whether at least one tagged TODO's issue has
// been observed closed during this run.
func (is *Issuer) FoundClosedTODO() bool { return is.foundClosed.Load() }

// RunReporting consumes batches of untagged TODOs, files an issue for
// each, and emits one InsertTags value per file on out.
func (is *Issuer) RunReporting(ctx context.Context, in <-chan todomodel.ReportingBatch, out chan<- todomodel.InsertTags) error {
	sem := semaphore.NewWeighted(is.maxConc)
	var wg sync.WaitGroup
	var firstErr error
	var errMu sync.Mutex

	for batch := range in {
		if err := sem.Acquire(ctx, 1); err != nil {
			return err
		}
		wg.Add(1)
		go func(batch todomodel.ReportingBatch) {
			defer wg.Done()
			defer sem.Release(1)

			_, err := is.postAll(ctx, batch)
			if err != nil {
				errMu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				errMu.Unlock()
				return
			}
			out <- todomodel.InsertTags{File: batch.File}
		}(batch)
	}
	wg.Wait()
	return firstErr
}

// postAll files an issue for each of batch's TODOs, staging a successful
// result's Tag on the File entry itself (via manager.AddTag) rather than
// returning it, so the Inserter drains tags by FileID instead of carrying
// them through the channel. It returns how many tags were staged.
func (is *Issuer) postAll(ctx context.Context, batch todomodel.ReportingBatch) (int, error) {
	sem := semaphore.NewWeighted(innerConcurrency)
	var wg sync.WaitGroup
	var staged atomic.Int64

	for _, todo := range batch.Todos {
		if err := sem.Acquire(ctx, 1); err != nil {
			return int(staged.Load()), err
		}
		wg.Add(1)
		go func(todo todomodel.Todo) {
			defer wg.Done()
			defer sem.Release(1)

			is.found.Add(1)
			n, err := is.postOne(ctx, todo)
			if err != nil {
				fmt.Fprintf(os.Stderr, "issuer: %v\n", err)
				return
			}
			is.manager.AddTag(batch.File, todomodel.Tag{IssueNumber: n, Todo: todo})
			staged.Add(1)
			is.processed.Add(1)
		}(todo)
	}
	wg.Wait()

	return int(staged.Load()), nil
}

func (is *Issuer) postOne(ctx context.Context, todo todomodel.Todo) (int, error) {
	if is.simulate {
		time.Sleep(150 * time.Millisecond)
		return rand.Intn(10_000), nil
	}
	return is.api.PostIssue(ctx, todo.Title, todo.AsIssueBody())
}

// RunPurging consumes batches of tagged TODOs, checks each one's issue
// state, and emits one ApplyPurges value per file (containing only the
// TODOs whose issue turned out to be closed) on out.
func (is *Issuer) RunPurging(ctx context.Context, in <-chan todomodel.PurgingBatch, out chan<- todomodel.ApplyPurges) error {
	sem := semaphore.NewWeighted(is.maxConc)
	var wg sync.WaitGroup
	var firstErr error
	var errMu sync.Mutex

	for batch := range in {
		if err := sem.Acquire(ctx, 1); err != nil {
			return err
		}
		wg.Add(1)
		go func(batch todomodel.PurgingBatch) {
			defer wg.Done()
			defer sem.Release(1)

			purges, err := is.checkAll(ctx, batch)
			if err != nil {
				errMu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				errMu.Unlock()
				return
			}
			if len(purges) > 0 {
				out <- todomodel.ApplyPurges{File: batch.File, Purges: purges}
			}
		}(batch)
	}
	wg.Wait()
	return firstErr
}

func (is *Issuer) checkAll(ctx context.Context, batch todomodel.PurgingBatch) ([]todomodel.Purge, error) {
	sem := semaphore.NewWeighted(innerConcurrency)
	var wg sync.WaitGroup
	purges := make([]*todomodel.Purge, len(batch.Todos))

	for i, todo := range batch.Todos {
		if err := sem.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		wg.Add(1)
		go func(i int, todo todomodel.Todo) {
			defer wg.Done()
			defer sem.Release(1)

			is.found.Add(1)
			closed, err := is.checkIfPurgeNeeded(ctx, todo)
			is.processed.Add(1)
			if err != nil {
				fmt.Fprintf(os.Stderr, "issuer: %v\n", err)
				return
			}
			if closed {
				purges[i] = &todomodel.Purge{
					Tag:   todomodel.Tag{IssueNumber: todo.IssueNumber, Todo: todo},
					Range: todo.PurgeRange(),
				}
			}
		}(i, todo)
	}
	wg.Wait()

	var out []todomodel.Purge
	for _, p := range purges {
		if p != nil {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (is *Issuer) checkIfPurgeNeeded(ctx context.Context, todo todomodel.Todo) (bool, error) {
	if is.simulate {
		return false, nil
	}
	closed, err := is.api.IssueIsClosed(ctx, todo.IssueNumber)
	if err != nil {
		return false, err
	}
	if closed {
		if !is.foundClosed.Swap(true) {
			path := is.pathOf(todo.Loc.FileID)
			fmt.Printf("found closed TODO(#%d) at %s:%d\n", todo.IssueNumber, truncatePath(path, todo.Loc.Line, maxPathLen), todo.Loc.Line)
		}
	}
	return closed, nil
}

// truncatePath abbreviates path so that "path:line" fits within maxLen
// characters, preferring to keep the filename and as many trailing parent
// directories as will fit, prefixed with "...".
func truncatePath(path string, lineNumber int, maxLen int) string {
	lineLen := len(strconv.Itoa(lineNumber)) + 1
	available := maxLen - lineLen
	if available < 0 {
		available = 0
	}
	if len(path) <= available {
		return path
	}

	parts := splitPath(path)
	if len(parts) <= 1 {
		start := len(path) - max0(available-3)
		if start < 0 {
			start = 0
		}
		return "..." + path[start:]
	}

	filename := parts[len(parts)-1]
	remaining := available - 3
	if len(filename) > remaining {
		start := len(filename) - max0(remaining)
		if start < 0 {
			start = 0
		}
		return "..." + filename[start:]
	}
	remaining -= len(filename) + 1

	kept := filename
	for i := len(parts) - 2; i >= 0; i-- {
		p := parts[i]
		if len(p)+1 > remaining {
			break
		}
		kept = p + "/" + kept
		remaining -= len(p) + 1
	}
	return ".../" + kept
}

func splitPath(path string) []string {
	var parts []string
	start := 0
	for i := 0; i < len(path); i++ {
		if path[i] == '/' {
			parts = append(parts, path[start:i])
			start = i + 1
		}
	}
	parts = append(parts, path[start:])
	return parts
}

func max0(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

