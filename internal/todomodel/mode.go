package todomodel

// Mode selects which of the three pipeline behaviors a run performs.
type Mode int

const (
	// ModeListing prints discovered TODOs without contacting a tracker.
	ModeListing Mode = iota
	// ModeReporting files an issue for every untagged TODO and tags it.
	ModeReporting
	// ModePurging removes TODOs whose tagged issue has been closed.
	ModePurging
)

// String implements fmt.Stringer for log/error messages.
func (m Mode) String() string {
	switch m {
	case ModeListing:
		return "list"
	case ModeReporting:
		return "report"
	case ModePurging:
		return "purge"
	default:
		return "unknown"
	}
}

// ModeValue is the closed sum type the Scanner emits, one value per file
// that contained at least one relevant TODO. Exactly one of
// ReportingBatch, ListingBatch, or PurgingBatch implements it; callers
// type-assert each value to the variant their mode produces, which panics
// on a misrouted value, matching the "sum type via closed interface" idiom
// used throughout this module.
type ModeValue interface {
	isModeValue()
	FileID() FileID
}

// ReportingBatch carries the untagged TODOs discovered in one file while
// running in Reporting mode.
type ReportingBatch struct {
	File  FileID
	Todos []Todo
}

func (ReportingBatch) isModeValue()     {}
func (b ReportingBatch) FileID() FileID { return b.File }

// ListingBatch carries the TODOs discovered in one file while running in
// Listing mode. Shape mirrors ReportingBatch; they are kept distinct types
// so a misrouted batch fails to compile rather than silently behaving like
// the wrong mode.
type ListingBatch struct {
	File  FileID
	Todos []Todo
}

func (ListingBatch) isModeValue()     {}
func (b ListingBatch) FileID() FileID { return b.File }

// PurgingBatch carries the tagged, already-known-closed-candidate TODOs
// discovered in one file while running in Purging mode.
type PurgingBatch struct {
	File  FileID
	Todos []Todo
}

func (PurgingBatch) isModeValue()     {}
func (b PurgingBatch) FileID() FileID { return b.File }

// InserterValue is the closed sum type that flows from the Issuer (or the
// Prompter, once a user has confirmed a batch) to the Inserter: either a
// set of freshly filed tags to stamp into a file, or a set of purges to cut
// out of it.
type InserterValue interface {
	isInserterValue()
	FileID() FileID
}

// InsertTags asks the Inserter to stamp "(#N)" into File for each tag the
// Issuer staged on its FM entry; the tags themselves travel through FM's
// per-file pending list, not through this value.
type InsertTags struct {
	File FileID
}

func (InsertTags) isInserterValue() {}
func (v InsertTags) FileID() FileID { return v.File }

// ApplyPurges asks the Inserter to delete each Purge's line range from File.
type ApplyPurges struct {
	File   FileID
	Purges []Purge
}

func (ApplyPurges) isInserterValue() {}
func (v ApplyPurges) FileID() FileID { return v.File }
