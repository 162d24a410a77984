// Package scanner walks a directory tree, opens each non-binary,
// non-ignored file through the File Manager, and scans it line-by-line for
// TODO annotations, producing one ModeValue batch per file that contains
// any.
package scanner

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/rakivo/stalkr/internal/fm"
	"github.com/rakivo/stalkr/internal/gitignore"
	"github.com/rakivo/stalkr/internal/todomodel"
)

// Options configures a Walk.
type Options struct {
	Root       string
	Mode       todomodel.Mode
	IgnoreDirs []string
	// RayonThreads bounds the walker's worker pool. Zero means the
	// scanner derives a default from the CPU count, matching
	// balance_concurrency in the original.
	RayonThreads int
}

// Result is what Walk returns once the tree has been fully scanned.
type Result struct {
	Batches []todomodel.ModeValue
	Found   int
}

// line is one physical line of a file's contents, as a byte range within
// that file (excluding the line terminator) plus whether the terminator
// was present.
type line struct {
	start, end int // [start, end) excludes the trailing '\n'
	hasNL      bool
}

func splitLines(content []byte) []line {
	var lines []line
	start := 0
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			lines = append(lines, line{start: start, end: i, hasNL: true})
			start = i + 1
		}
	}
	if start < len(content) {
		lines = append(lines, line{start: start, end: len(content), hasNL: false})
	}
	return lines
}

// Walk scans every eligible file under opts.Root and reports the TODOs it
// finds, shaped according to opts.Mode.
func Walk(opts Options, manager *fm.Manager) (Result, error) {
	skip := make(map[string]bool, len(opts.IgnoreDirs))
	for _, d := range opts.IgnoreDirs {
		skip[strings.TrimSpace(d)] = true
	}

	repoRoot := gitignore.FindRepoRoot(opts.Root)
	gi, _ := gitignore.Load(repoRoot)

	workers := opts.RayonThreads
	if workers <= 0 {
		cpus := runtime.NumCPU()
		reservedForAsync := 1
		if cpus >= 8 {
			reservedForAsync = 2
		}
		workers = cpus - reservedForAsync - 1
		if workers < 1 {
			workers = 1
		}
	}

	jobs := make(chan string, 64)
	results := make(chan todomodel.ModeValue, 1024)

	var found atomicCounter
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for path := range jobs {
				batch, n, err := scanOneFile(path, opts.Mode, manager)
				if err != nil {
					fmt.Fprintf(os.Stderr, "scanner: %v\n", err)
					continue
				}
				found.add(n)
				if batch != nil {
					results <- batch
				}
			}
		}()
	}

	var walkErr error
	go func() {
		defer close(jobs)
		walkErr = filepath.WalkDir(opts.Root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if d.IsDir() {
				if d.Name() == ".git" {
					return filepath.SkipDir
				}
				if skip[d.Name()] {
					return filepath.SkipDir
				}
				if gi != nil {
					relRepo, _ := filepath.Rel(repoRoot, path)
					if gi.Match(relRepo, true) {
						return filepath.SkipDir
					}
				}
				return nil
			}
			if todomodel.IsBinaryPath(path) {
				return nil
			}
			if gi != nil {
				relRepo, _ := filepath.Rel(repoRoot, path)
				if gi.Match(relRepo, false) {
					return nil
				}
			}
			jobs <- path
			return nil
		})
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	var batches []todomodel.ModeValue
	for b := range results {
		batches = append(batches, b)
	}

	return Result{Batches: batches, Found: found.get()}, walkErr
}

// scanOneFile opens path and scans its contents for TODOs, shaping the
// result per mode. It returns (nil, 0, nil) when the file contains
// nothing relevant to the requested mode. The file is only registered
// with the manager (and so only kept open/mapped) once a non-empty batch
// is known to exist; a file with nothing relevant is opened, scanned, and
// released without ever being registered under the FileID reserved for it.
func scanOneFile(path string, mode todomodel.Mode, manager *fm.Manager) (todomodel.ModeValue, int, error) {
	entry, err := manager.Open(path)
	if err != nil {
		return nil, 0, err
	}

	content := entry.Bytes()
	if bytes.IndexByte(content, 0) >= 0 {
		// Binary content slipped past the extension filter; don't scan it.
		entry.Close()
		return nil, 0, nil
	}

	id := manager.ReserveID()

	lines := splitLines(content)
	var todos []todomodel.Todo

	for i, ln := range lines {
		text := string(content[ln.start:ln.end])
		off, ok := todomodel.IsCommentLine(text)
		if !ok {
			continue
		}
		payload := text[off:]
		todo, ok := todomodel.ExtractTitle(payload, ln.start+off)
		if !ok {
			continue
		}
		todo.Loc = todomodel.Loc{FileID: id, Line: i + 1}
		todo.LineRange = todomodel.ByteRange{Start: ln.start, End: ln.end}
		todo.ColumnZero = len(text) > 0 && text[0] != ' ' && text[0] != '\t'

		var following []string
		for j := i + 1; j < len(lines) && j < i+32; j++ {
			following = append(following, string(content[lines[j].start:lines[j].end]))
		}
		todo.Description = todomodel.ExtractDescription(following)

		switch mode {
		case todomodel.ModeReporting:
			if !todo.Tagged {
				todos = append(todos, todo)
			}
		case todomodel.ModeListing:
			todos = append(todos, todo)
		case todomodel.ModePurging:
			if todo.Tagged {
				todos = append(todos, todo)
			}
		}
	}

	if len(todos) == 0 {
		entry.Close()
		return nil, 0, nil
	}

	if _, err := manager.Finalize(id, entry); err != nil {
		return nil, 0, err
	}

	switch mode {
	case todomodel.ModeReporting:
		return todomodel.ReportingBatch{File: id, Todos: todos}, len(todos), nil
	case todomodel.ModeListing:
		return todomodel.ListingBatch{File: id, Todos: todos}, len(todos), nil
	case todomodel.ModePurging:
		return todomodel.PurgingBatch{File: id, Todos: todos}, len(todos), nil
	default:
		panic("scanner: unreachable mode")
	}
}

type atomicCounter struct {
	mu sync.Mutex
	n  int
}

func (c *atomicCounter) add(n int) {
	c.mu.Lock()
	c.n += n
	c.mu.Unlock()
}

func (c *atomicCounter) get() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}
