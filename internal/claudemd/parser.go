package claudemd

import "strings"

// Sections is a CLAUDE.md split around the generated block.
type Sections struct {
	Before     string // content preceding the start marker
	Generated  string // the block including both markers
	After      string // content following the end marker
	HasMarkers bool
}

// Split separates content into the parts before, inside and after the
// generated markers. Without a complete, well-ordered marker pair the whole
// content is returned as After.
func Split(content string) Sections {
	start := strings.Index(content, StartMarker)
	if start == -1 {
		return Sections{After: content}
	}
	rel := strings.Index(content[start:], EndMarker)
	if rel == -1 {
		return Sections{After: content}
	}
	end := start + rel + len(EndMarker)

	return Sections{
		Before:     content[:start],
		Generated:  content[start:end],
		After:      content[end:],
		HasMarkers: true,
	}
}

// HasCustomContent reports whether anything besides the generated block exists.
func (s Sections) HasCustomContent() bool {
	return strings.TrimSpace(s.Before) != "" || strings.TrimSpace(s.After) != ""
}
