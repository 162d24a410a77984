package todomodel

import "strings"

// ExtractDescription walks the lines immediately following a TODO's own
// line and accumulates a Description from them. It stops at the first
// line that is blank, is not a recognized comment line, or itself opens a
// new TODO. followingLines must contain only the lines after the TODO
// line, in file order; it is not mutated.
func ExtractDescription(followingLines []string) Description {
	var desc Description
	for _, line := range followingLines {
		off, ok := IsCommentLine(line)
		if !ok {
			break
		}
		payload := strings.TrimSpace(line[off:])
		if payload == "" {
			break
		}
		if strings.HasPrefix(payload, "TODO:") || strings.HasPrefix(payload, "TODO(#") {
			break
		}
		payload = strings.TrimSuffix(payload, "*/")
		payload = strings.TrimSpace(payload)
		if payload == "" {
			break
		}
		desc = append(desc, payload)
	}
	return desc
}
