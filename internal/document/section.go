package document

import (
	"fmt"
	"regexp"
	"strings"
)

// Section is a titled, contiguous span of a LaTeX document. Span records
// where the body sits in the source text so edited bodies can be spliced
// back in without re-generating the document.
type Section struct {
	Index int
	Title string
	Body  string
	Span  Span
}

// Span is a half-open [Start, End) byte range into the source document.
type Span struct {
	Start int
	End   int
}

var (
	headingPattern = regexp.MustCompile(`\\section\{([^}]*)\}`)
	endMarker      = `\end{document}`
)

// ParseSections splits a full LaTeX document into its \section blocks, in
// source order. A section body runs from the end of its heading to the start
// of the next heading, the \end{document} marker, or the end of the text.
// Empty titles are replaced with "Section N". Returns nil when no headings
// match.
func ParseSections(text string) []Section {
	matches := headingPattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}

	sections := make([]Section, 0, len(matches))
	for i, m := range matches {
		title := strings.TrimSpace(text[m[2]:m[3]])
		if title == "" {
			title = fmt.Sprintf("Section %d", i+1)
		}

		bodyStart := m[1]
		bodyEnd := len(text)
		if i+1 < len(matches) {
			bodyEnd = matches[i+1][0]
		}
		if idx := strings.Index(text[bodyStart:bodyEnd], endMarker); idx >= 0 {
			bodyEnd = bodyStart + idx
		}

		sections = append(sections, Section{
			Index: i + 1,
			Title: title,
			Body:  text[bodyStart:bodyEnd],
			Span:  Span{Start: bodyStart, End: bodyEnd},
		})
	}
	return sections
}

// SectionsOrFallback parses the document and, if no headings are found,
// wraps the entire text in a single synthetic "Document" section.
func SectionsOrFallback(text string) []Section {
	if sections := ParseSections(text); len(sections) > 0 {
		return sections
	}
	return []Section{{
		Index: 1,
		Title: "Document",
		Body:  text,
		Span:  Span{Start: 0, End: len(text)},
	}}
}

// Splice replaces the section's body span in doc with newBody and returns
// the updated document text.
func Splice(doc string, sec Section, newBody string) string {
	return doc[:sec.Span.Start] + newBody + doc[sec.Span.End:]
}
