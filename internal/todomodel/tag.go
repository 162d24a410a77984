package todomodel

import "strconv"

// Tag pairs a freshly filed issue number with the Todo it was filed for.
// It is the unit the Inserter consumes when writing "(#N)" back into a
// file.
type Tag struct {
	IssueNumber int
	Todo        Todo
}

// Display renders the tag the way it appears in source: "(#42)".
func (t Tag) Display() string {
	return "(#" + strconv.Itoa(t.IssueNumber) + ")"
}

// CommitMessage is the message used for the commit that inserts this tag.
func (t Tag) CommitMessage() string {
	return "Add TODO" + t.Display() + ": " + t.Todo.Title
}

// Purge is a closed, tagged TODO slated for removal from the file. Range
// is the half-open byte range, within the owning file's current contents,
// spanning the entire comment line (including its marker) that is to be
// deleted.
type Purge struct {
	Tag   Tag
	Range ByteRange
}

// CommitMessage is the message used for the commit that removes this line.
func (p Purge) CommitMessage() string {
	return "Remove closed TODO" + p.Tag.Display() + ": " + p.Tag.Todo.Title
}

// ByteRange is a half-open [Start, End) byte range into a file's contents.
type ByteRange struct {
	Start int
	End   int
}

// Len returns the number of bytes spanned by the range.
func (r ByteRange) Len() int {
	return r.End - r.Start
}
