package document

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-slug"
)

// OutlineEntry is one heading of the document outline.
type OutlineEntry struct {
	Level  int    `json:"level"`
	Title  string `json:"title"`
	Anchor string `json:"anchor"`
}

// Outline lists the root-level headings with unique slug anchors. Repeated
// titles receive -1, -2 suffixes in document order.
func Outline(blocks []Block) []OutlineEntry {
	var entries []OutlineEntry
	seen := map[string]int{}
	for _, b := range blocks {
		h, ok := b.(*Heading)
		if !ok {
			continue
		}
		title := strings.TrimSpace(InlineText(h.Children))
		anchor := anchorFor(title)
		if count, dup := seen[anchor]; dup {
			seen[anchor] = count + 1
			anchor = anchor + "-" + strconv.Itoa(count+1)
		} else {
			seen[anchor] = 0
		}
		entries = append(entries, OutlineEntry{
			Level:  ClampHeadingLevel(h.Level),
			Title:  title,
			Anchor: anchor,
		})
	}
	return entries
}

func anchorFor(title string) string {
	anchor, err := slug.Normalize(title)
	if err != nil || anchor == "" {
		return "section"
	}
	return anchor
}
