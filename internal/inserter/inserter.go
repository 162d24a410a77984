// Package inserter is the final pipeline stage: it stamps "(#N)" tags into
// files for newly filed issues, and cuts purged lines out of files whose
// tagged issue has closed, committing each edit individually through a
// shared vcs.Locker.
package inserter

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/rakivo/stalkr/internal/fm"
	"github.com/rakivo/stalkr/internal/todomodel"
	"github.com/rakivo/stalkr/internal/vcs"
)

// maxConcurrency bounds how many files the Inserter edits at once. Unlike
// the Issuer's network-bound fan-out, this is CPU/IO-bound work against
// the local filesystem and the single shared git index, so it is capped
// low regardless of GOMAXPROCS.
func maxConcurrency() int64 {
	n := runtime.GOMAXPROCS(0)
	if n > 4 {
		n = 4
	}
	if n < 1 {
		n = 1
	}
	return int64(n)
}

// Inserter applies InsertTags and ApplyPurges values to files registered
// with a Manager.
type Inserter struct {
	manager *fm.Manager
	locker  *vcs.Locker
}

// New constructs an Inserter over manager's files, committing edits
// through locker.
func New(manager *fm.Manager, locker *vcs.Locker) *Inserter {
	return &Inserter{manager: manager, locker: locker}
}

// RunInsertTags consumes InsertTags values from in, stamping each file's
// tags into place, one commit per tag.
func (ins *Inserter) RunInsertTags(ctx context.Context, in <-chan todomodel.InsertTags) error {
	sem := semaphore.NewWeighted(maxConcurrency())
	var wg sync.WaitGroup
	var firstErr error
	var mu sync.Mutex

	for v := range in {
		if err := sem.Acquire(ctx, 1); err != nil {
			return err
		}
		wg.Add(1)
		go func(v todomodel.InsertTags) {
			defer wg.Done()
			defer sem.Release(1)
			if err := ins.insertTags(v); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		}(v)
	}
	wg.Wait()
	return firstErr
}

// RunApplyPurges consumes ApplyPurges values from in, cutting each file's
// closed TODOs out, one commit per purge.
func (ins *Inserter) RunApplyPurges(ctx context.Context, in <-chan todomodel.ApplyPurges) error {
	sem := semaphore.NewWeighted(maxConcurrency())
	var wg sync.WaitGroup
	var firstErr error
	var mu sync.Mutex

	for v := range in {
		if err := sem.Acquire(ctx, 1); err != nil {
			return err
		}
		wg.Add(1)
		go func(v todomodel.ApplyPurges) {
			defer wg.Done()
			defer sem.Release(1)
			if err := ins.applyPurges(v); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		}(v)
	}
	wg.Wait()
	return firstErr
}

func (ins *Inserter) insertTags(v todomodel.InsertTags) error {
	f, ok := ins.manager.Get(v.File)
	if !ok {
		return fmt.Errorf("inserter: unknown file id %d", v.File)
	}

	tags := f.DrainTags()
	sort.Slice(tags, func(i, j int) bool {
		return tags[i].Todo.TagInsertionOffset < tags[j].Todo.TagInsertionOffset
	})

	shift := 0
	for _, tag := range tags {
		insertText := []byte(tag.Display())
		insertAt := tag.Todo.TagInsertionOffset + shift

		curLen := f.Len()
		newLen := curLen + len(insertText)
		view, err := f.RemapForWrite(newLen)
		if err != nil {
			return fmt.Errorf("inserter: grow %s: %w", f.Path(), err)
		}

		copy(view[insertAt+len(insertText):newLen], view[insertAt:curLen])
		copy(view[insertAt:insertAt+len(insertText)], insertText)

		if err := f.Flush(); err != nil {
			return fmt.Errorf("inserter: flush %s: %w", f.Path(), err)
		}
		if err := ins.locker.Commit(f.Path(), tag.CommitMessage()); err != nil {
			return fmt.Errorf("inserter: commit %s: %w", f.Path(), err)
		}
		shift += len(insertText)
	}
	return nil
}

func (ins *Inserter) applyPurges(v todomodel.ApplyPurges) error {
	f, ok := ins.manager.Get(v.File)
	if !ok {
		return fmt.Errorf("inserter: unknown file id %d", v.File)
	}

	purges := append([]todomodel.Purge(nil), v.Purges...)
	sort.Slice(purges, func(i, j int) bool {
		return purges[i].Range.Start < purges[j].Range.Start
	})
	for i, j := 0, len(purges)-1; i < j; i, j = i+1, j-1 {
		purges[i], purges[j] = purges[j], purges[i]
	}

	for _, p := range purges {
		view, err := f.RemapForWrite(f.Len())
		if err != nil {
			return fmt.Errorf("inserter: prepare %s: %w", f.Path(), err)
		}
		curLen := len(view)
		start, end := p.Range.Start, p.Range.End
		if end > curLen {
			end = curLen
		}
		tailLen := curLen - end
		copy(view[start:start+tailLen], view[end:curLen])
		newLen := start + tailLen

		if _, err := f.RemapForWrite(newLen); err != nil {
			return fmt.Errorf("inserter: shrink %s: %w", f.Path(), err)
		}
		if err := f.Flush(); err != nil {
			return fmt.Errorf("inserter: flush %s: %w", f.Path(), err)
		}
		if err := ins.locker.Commit(f.Path(), p.CommitMessage()); err != nil {
			return fmt.Errorf("inserter: commit %s: %w", f.Path(), err)
		}
	}
	return nil
}
