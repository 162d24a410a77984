// Package todomodel holds the data model shared by every pipeline stage:
// locations, discovered TODOs, issued tags, pending purges, and the
// per-file batch types that travel between stages.
package todomodel

import "fmt"

// FileID is a dense, monotonically allocated identifier for a discovered
// file. The zero value is never issued by a Manager.
type FileID uint32

// Loc is a source location: which file, which 1-based line.
type Loc struct {
	FileID FileID
	Line   int
}

// Display renders the location using a human path instead of the raw FileID.
func (l Loc) Display(path string) string {
	return fmt.Sprintf("%s:%d", path, l.Line)
}
