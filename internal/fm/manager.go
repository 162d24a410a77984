package fm

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/blevesearch/mmap-go"
	"github.com/cespare/xxhash/v2"

	"github.com/rakivo/stalkr/internal/todomodel"
)

// shardCount is the number of independent lock domains the Manager splits
// its path->FileID and id->File tables across. Grounded on the
// standardbeagle-lci FileContentStore's sharded-map shape: most scanner
// traffic is reads (Bytes) from many goroutines concurrently, with writes
// (Register, RemapForWrite) comparatively rare.
const shardCount = 32

type shard struct {
	mu     sync.RWMutex
	byPath map[string]todomodel.FileID
	byID   map[todomodel.FileID]*File
}

// Manager is the File Manager: the single source of truth for which files
// have been seen, their dense FileIDs, and their current contents.
type Manager struct {
	shards [shardCount]*shard
	nextID atomic.Uint32
}

// New constructs an empty Manager.
func New() *Manager {
	m := &Manager{}
	for i := range m.shards {
		m.shards[i] = &shard{
			byPath: make(map[string]todomodel.FileID),
			byID:   make(map[todomodel.FileID]*File),
		}
	}
	return m
}

func pathShard(shards [shardCount]*shard, path string) *shard {
	return shards[xxhash.Sum64String(path)%shardCount]
}

func idShard(shards [shardCount]*shard, id todomodel.FileID) *shard {
	return shards[uint64(id)%shardCount]
}

// Lookup returns the FileID already registered for path, if any.
func (m *Manager) Lookup(path string) (todomodel.FileID, bool) {
	canon, err := filepath.Abs(path)
	if err != nil {
		canon = path
	}
	s := pathShard(m.shards, canon)
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byPath[canon]
	return id, ok
}

// Get returns the File entry for id, if registered.
func (m *Manager) Get(id todomodel.FileID) (*File, bool) {
	s := idShard(m.shards, id)
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.byID[id]
	return f, ok
}

// AddTag stages tag against id's File entry for the Inserter to drain
// later. It reports false if id isn't registered.
func (m *Manager) AddTag(id todomodel.FileID, tag todomodel.Tag) bool {
	f, ok := m.Get(id)
	if !ok {
		return false
	}
	f.AddTag(tag)
	return true
}

// Open loads path's contents (buffering or mmapping based on its size)
// into a detached File entry, without registering it with the Manager or
// allocating it a FileID. The Scanner uses this to read a file before it
// knows whether the resulting batch will be non-empty; an entry that
// never gets Finalized is never visible to Get/Lookup/CloseAll and should
// be released with Close directly by the caller.
func (m *Manager) Open(path string) (*File, error) {
	canon, err := filepath.Abs(path)
	if err != nil {
		canon = path
	}

	fh, err := os.OpenFile(canon, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("fm: open %s: %w", canon, err)
	}

	info, err := fh.Stat()
	if err != nil {
		fh.Close()
		return nil, fmt.Errorf("fm: stat %s: %w", canon, err)
	}

	if info.Size() >= mmapThreshold {
		mapped, err := mmap.Map(fh, mmap.RDWR, 0)
		if err != nil {
			fh.Close()
			return nil, fmt.Errorf("fm: mmap %s: %w", canon, err)
		}
		return &File{path: canon, contents: mmapContents{m: mapped}, file: fh}, nil
	}

	buf := make([]byte, info.Size())
	if _, err := fh.ReadAt(buf, 0); err != nil && info.Size() > 0 {
		fh.Close()
		return nil, fmt.Errorf("fm: read %s: %w", canon, err)
	}
	fh.Close()
	return &File{path: canon, contents: bufContents(buf)}, nil
}

// ReserveID allocates a dense FileID without registering any entry for
// it. The Scanner reserves one per file up front so a Todo's Loc is
// stable even for files whose entry won't exist until Finalize runs.
func (m *Manager) ReserveID() todomodel.FileID {
	return todomodel.FileID(m.nextID.Add(1))
}

// Finalize registers entry (as returned by Open) under id, making it
// visible to Get/Lookup/CloseAll. Calling Finalize (or Register) twice
// for the same canonical path discards the later entry and returns the
// one already registered, the same dedup Register performs.
func (m *Manager) Finalize(id todomodel.FileID, entry *File) (*File, error) {
	ps := pathShard(m.shards, entry.path)

	ps.mu.Lock()
	if existingID, ok := ps.byPath[entry.path]; ok {
		// Lost a race with another registrar; discard our open and defer
		// to the winner.
		ps.mu.Unlock()
		entry.Close()
		f, _ := m.Get(existingID)
		return f, nil
	}
	entry.id = id
	ps.byPath[entry.path] = id
	ps.mu.Unlock()

	is := idShard(m.shards, id)
	is.mu.Lock()
	is.byID[id] = entry
	is.mu.Unlock()

	return entry, nil
}

// Register opens path, decides between buffering and mmapping based on its
// size, and immediately registers it under a freshly reserved FileID.
// Calling Register twice on the same canonical path returns the existing
// entry rather than re-reading the file. Callers that need to defer
// registration until they know a file is actually relevant (the Scanner)
// should use Open/ReserveID/Finalize directly instead.
func (m *Manager) Register(path string) (*File, error) {
	if id, ok := m.Lookup(path); ok {
		f, _ := m.Get(id)
		return f, nil
	}

	entry, err := m.Open(path)
	if err != nil {
		return nil, err
	}

	return m.Finalize(m.ReserveID(), entry)
}

// Path returns the canonical path registered for id.
func (m *Manager) Path(id todomodel.FileID) (string, bool) {
	f, ok := m.Get(id)
	if !ok {
		return "", false
	}
	return f.Path(), true
}

// CloseAll releases OS resources for every registered file. It does not
// flush pending writes; callers must Flush before calling this.
func (m *Manager) CloseAll() {
	for _, s := range m.shards {
		s.mu.RLock()
		entries := make([]*File, 0, len(s.byID))
		for _, f := range s.byID {
			entries = append(entries, f)
		}
		s.mu.RUnlock()
		for _, f := range entries {
			f.Close()
		}
	}
}
