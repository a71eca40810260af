// Package tag scans source trees for @CATEGORY:ID traceability markers and
// checks that every requirement is linked from spec through tests and code.
package tag

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// Category is the kind of artifact a TAG marks.
type Category string

const (
	Spec Category = "SPEC"
	Test Category = "TEST"
	Code Category = "CODE"
	Doc  Category = "DOC"
)

// Categories lists every category in chain order.
var Categories = []Category{Spec, Test, Code, Doc}

var pattern = regexp.MustCompile(`@(SPEC|TEST|CODE|DOC):([A-Z][A-Z0-9]*(?:-[A-Z0-9]+)*-[0-9]{3})\b`)

// Tag is one TAG occurrence.
type Tag struct {
	Category Category `json:"category"`
	ID       string   `json:"id"`
	File     string   `json:"file"`
	Line     int      `json:"line"`
}

// String renders the tag as it appears in source, e.g. "@CODE:AUTH-001".
func (t Tag) String() string {
	return "@" + string(t.Category) + ":" + t.ID
}

// Location renders "file:line".
func (t Tag) Location() string {
	return fmt.Sprintf("%s:%d", t.File, t.Line)
}

// ValidID reports whether id is a well-formed TAG ID such as AUTH-001.
func ValidID(id string) bool {
	m := pattern.FindStringSubmatch("@SPEC:" + id)
	return m != nil && m[2] == id
}

// Parse extracts every TAG in r, attributing them to file.
func Parse(r io.Reader, file string) ([]Tag, error) {
	var tags []Tag
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if !strings.Contains(text, "@") {
			continue
		}
		for _, m := range pattern.FindAllStringSubmatch(text, -1) {
			tags = append(tags, Tag{Category: Category(m[1]), ID: m[2], File: file, Line: line})
		}
	}
	return tags, sc.Err()
}

const maxLineSize = 1 << 20
