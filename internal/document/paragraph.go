package document

import (
	"regexp"
	"strings"
)

// Placeholder returned when a section body contains no detectable prose.
// Callers must render this rather than show an empty section.
const EmptyParagraph = "(No content detected in this section.)"

var paragraphBreak = regexp.MustCompile(`\n\s*\n`)

// Paragraphs normalizes a section body and splits it into paragraphs on
// blank-line boundaries. Always returns at least one entry.
func Paragraphs(body string) []string {
	normalized := Normalize(body)
	parts := paragraphBreak.Split(normalized, -1)

	paragraphs := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			paragraphs = append(paragraphs, trimmed)
		}
	}
	if len(paragraphs) == 0 {
		return []string{EmptyParagraph}
	}
	return paragraphs
}
