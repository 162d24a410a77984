// Package fm is the File Manager: it owns the canonical mapping from path
// to FileID, the bytes backing each registered file (in-memory buffer or
// memory-mapped), and the staging area for edits the Inserter will later
// apply in place.
package fm

import (
	"fmt"
	"os"
	"sync"

	"github.com/blevesearch/mmap-go"

	"github.com/rakivo/stalkr/internal/todomodel"
)

// mmapThreshold mirrors the original's MMAP_THRESHOLD: files at or above
// this size are memory-mapped instead of read fully into a buffer.
const mmapThreshold = 1 << 20 // 1 MiB

// contents is the closed sum type backing a registered file: either an
// owned in-memory buffer or a memory-mapped region. A file keeps the
// variant it was opened with: RemapForWrite resizes a buffer as a buffer
// and a mapping as a mapping.
type contents interface {
	isContents()
	bytes() []byte
}

type bufContents []byte

func (bufContents) isContents()      {}
func (b bufContents) bytes() []byte  { return b }

type mmapContents struct{ m mmap.MMap }

func (mmapContents) isContents()       {}
func (c mmapContents) bytes() []byte   { return c.m }

// File is a single registered file: its canonical path, its current
// contents, and any tags staged for the Inserter to apply.
type File struct {
	id   todomodel.FileID
	path string

	mu          sync.RWMutex
	contents    contents
	file        *os.File // kept open for mmapped files; nil for buffered ones
	dirty       bool
	pendingTags []todomodel.Tag
}

// ID returns the file's dense identifier.
func (f *File) ID() todomodel.FileID { return f.id }

// Path returns the canonical path this entry was registered under.
func (f *File) Path() string { return f.path }

// Bytes returns a read-only snapshot view of the file's current contents.
// The returned slice must not be retained across a RemapForWrite call.
func (f *File) Bytes() []byte {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.contents.bytes()
}

// Len returns the current content length in bytes.
func (f *File) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.contents.bytes())
}

// IsMapped reports whether this file is currently backed by an mmap
// region rather than an owned buffer.
func (f *File) IsMapped() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.contents.(mmapContents)
	return ok
}

// AddTag stages tag for this file. Tags accumulate here rather than
// traveling through a channel; the Inserter drains them with DrainTags
// once it's ready to stamp them into place.
func (f *File) AddTag(tag todomodel.Tag) {
	f.mu.Lock()
	f.pendingTags = append(f.pendingTags, tag)
	f.mu.Unlock()
}

// DrainTags returns and clears the file's staged tags.
func (f *File) DrainTags() []todomodel.Tag {
	f.mu.Lock()
	defer f.mu.Unlock()
	tags := f.pendingTags
	f.pendingTags = nil
	return tags
}

// RemapForWrite grows or shrinks the file's backing storage to newLen and
// returns a mutable view over it. Callers (the Inserter) must hold this
// view only until the next RemapForWrite or Close call. For mmapped files
// this unmaps, truncates the underlying descriptor, and remaps; for
// buffered files it simply reallocates.
func (f *File) RemapForWrite(newLen int) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.dirty = true

	switch c := f.contents.(type) {
	case bufContents:
		grown := make([]byte, newLen)
		copy(grown, c)
		f.contents = bufContents(grown)
		return []byte(f.contents.(bufContents)), nil

	case mmapContents:
		if len(c.m) == newLen {
			return []byte(c.m), nil
		}
		if err := c.m.Unmap(); err != nil {
			return nil, fmt.Errorf("fm: unmap %s: %w", f.path, err)
		}
		if err := f.file.Truncate(int64(newLen)); err != nil {
			return nil, fmt.Errorf("fm: truncate %s: %w", f.path, err)
		}
		if newLen == 0 {
			f.contents = mmapContents{}
			return nil, nil
		}
		remapped, err := mmap.Map(f.file, mmap.RDWR, 0)
		if err != nil {
			return nil, fmt.Errorf("fm: remap %s: %w", f.path, err)
		}
		f.contents = mmapContents{m: remapped}
		return []byte(remapped), nil

	default:
		panic("fm: unreachable content variant")
	}
}

// Flush persists in-memory changes to disk. For an mmapped file this is a
// msync-equivalent flush; for a buffered file it's a plain overwrite.
func (f *File) Flush() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.dirty {
		return nil
	}
	switch c := f.contents.(type) {
	case mmapContents:
		if c.m == nil {
			return nil
		}
		if err := c.m.Flush(); err != nil {
			return fmt.Errorf("fm: flush %s: %w", f.path, err)
		}
	case bufContents:
		if f.file == nil {
			var err error
			f.file, err = os.OpenFile(f.path, os.O_WRONLY|os.O_CREATE, 0o644)
			if err != nil {
				return fmt.Errorf("fm: open %s for write: %w", f.path, err)
			}
		}
		if _, err := f.file.WriteAt(c, 0); err != nil {
			return fmt.Errorf("fm: write %s: %w", f.path, err)
		}
		if err := f.file.Truncate(int64(len(c))); err != nil {
			return fmt.Errorf("fm: truncate %s: %w", f.path, err)
		}
	}
	f.dirty = false
	return nil
}

// Close releases any OS resources (mmap region, open descriptor) held by
// this entry. It does not flush pending writes.
func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var err error
	if c, ok := f.contents.(mmapContents); ok && c.m != nil {
		err = c.m.Unmap()
	}
	if f.file != nil {
		if cerr := f.file.Close(); err == nil {
			err = cerr
		}
		f.file = nil
	}
	return err
}
