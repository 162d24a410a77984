package todomodel

import "strings"

// Marker identifies the comment-introducing token a line starts with.
type Marker int

const (
	// MarkerNone means the line is not a recognized comment line.
	MarkerNone Marker = iota
	MarkerHash        // '#'
	MarkerDash        // '--'
	MarkerSlash       // '//' or '/*'
)

// markerLen returns the byte length of the marker token itself, matching
// the original's is_line_a_comment: '#' is one byte, the rest are two.
func (m Marker) markerLen() int {
	switch m {
	case MarkerHash:
		return 1
	case MarkerDash, MarkerSlash:
		return 2
	default:
		return 0
	}
}

// classifyComment inspects the leading whitespace-trimmed bytes of h and,
// if they form a recognized comment marker, returns the marker kind and the
// byte offset into h just past the marker and any whitespace that follows
// it. It returns (MarkerNone, 0) when h is not a comment line.
func classifyComment(h string) (Marker, int) {
	trimmed := strings.TrimLeft(h, " \t")
	lead := len(h) - len(trimmed)

	var m Marker
	switch {
	case strings.HasPrefix(trimmed, "#"):
		m = MarkerHash
	case strings.HasPrefix(trimmed, "--"):
		m = MarkerDash
	case strings.HasPrefix(trimmed, "//"), strings.HasPrefix(trimmed, "/*"):
		m = MarkerSlash
	default:
		return MarkerNone, 0
	}

	off := lead + m.markerLen()
	for off < len(h) && (h[off] == ' ' || h[off] == '\t') {
		off++
	}
	return m, off
}

// IsCommentLine reports whether line is a recognized single- or block-style
// comment opener and, if so, the byte offset of the first non-whitespace
// byte following the marker.
func IsCommentLine(line string) (offset int, ok bool) {
	m, off := classifyComment(line)
	if m == MarkerNone {
		return 0, false
	}
	return off, true
}
