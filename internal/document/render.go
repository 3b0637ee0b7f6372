package document

import (
	"fmt"
	"html"
	"strings"
)

// RenderedSection is the HTML form of a parsed section, ready for the
// review UI and for persistence as the section's working content.
type RenderedSection struct {
	Index int
	Title string
	HTML  string
}

// Paragraphs that start with one of these tags are embedded media or layout
// fragments produced by tools. They are passed through verbatim instead of
// being escaped as prose.
var rawFragmentPrefixes = []string{
	"<figure", "<img", "<iframe", "<video", "<svg", "<table", "<div",
}

func looksLikeFragment(text string) bool {
	stripped := strings.TrimSpace(text)
	if !strings.HasPrefix(stripped, "<") {
		return false
	}
	lowered := strings.ToLower(stripped)
	for _, prefix := range rawFragmentPrefixes {
		if strings.HasPrefix(lowered, prefix) {
			return true
		}
	}
	return false
}

// RenderParagraphs converts paragraphs into an HTML block. Each paragraph
// gets a stable 1-based anchor id "{sectionID}-p{n}" so the UI can address
// it; fragments are wrapped unescaped, prose is HTML-escaped.
func RenderParagraphs(paragraphs []string, sectionID string) string {
	snippets := make([]string, 0, len(paragraphs))
	for i, para := range paragraphs {
		idx := i + 1
		if looksLikeFragment(para) {
			snippets = append(snippets, fmt.Sprintf(
				"<div id='%s-p%d' class='para html-fragment'><span class='para-index'>(%d)</span> %s</div>",
				sectionID, idx, idx, strings.TrimSpace(para),
			))
			continue
		}
		snippets = append(snippets, fmt.Sprintf(
			"<p id='%s-p%d'><span class='para-index'>(%d)</span> %s</p>",
			sectionID, idx, idx, html.EscapeString(para),
		))
	}
	return strings.Join(snippets, "\n")
}

// RenderSections parses the document (with single-section fallback) and
// renders each section body to its HTML block.
func RenderSections(text string) []RenderedSection {
	sections := SectionsOrFallback(text)
	rendered := make([]RenderedSection, 0, len(sections))
	for _, sec := range sections {
		rendered = append(rendered, RenderedSection{
			Index: sec.Index,
			Title: sec.Title,
			HTML:  RenderParagraphs(Paragraphs(sec.Body), fmt.Sprintf("section%d", sec.Index)),
		})
	}
	return rendered
}

// RenderBody renders a standalone body (an edited section draft) without
// heading context, for preview endpoints.
func RenderBody(body, sectionID string) string {
	return RenderParagraphs(Paragraphs(body), sectionID)
}

// RenderDocumentHTML assembles the full-document view from titled section
// blocks.
func RenderDocumentHTML(sections []RenderedSection) string {
	if len(sections) == 0 {
		return "<p><em>No sections detected.</em></p>"
	}
	blocks := []string{
		"<style>.para-index{font-weight:bold;margin-right:6px;color:#2563eb;} .section-block{margin-bottom:1.5rem;} .section-block h2{margin-bottom:0.5rem;}</style>",
	}
	for _, sec := range sections {
		blocks = append(blocks, fmt.Sprintf(
			"<div class='section-block'><h2>%d. %s</h2>%s</div>",
			sec.Index, html.EscapeString(sec.Title), sec.HTML,
		))
	}
	return strings.Join(blocks, "\n")
}
