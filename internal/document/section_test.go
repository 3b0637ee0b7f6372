package document

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDoc = `\documentclass{article}
\begin{document}
\section{Introduction}
Intro body line.

\section{Core Concepts}
Concepts body.
\subsection{Details}
More text.
\section{Summary}
Closing words.
\end{document}
`

func TestParseSectionsOrderAndTitles(t *testing.T) {
	sections := ParseSections(sampleDoc)
	require.Len(t, sections, 3)

	assert.Equal(t, 1, sections[0].Index)
	assert.Equal(t, "Introduction", sections[0].Title)
	assert.Equal(t, "Core Concepts", sections[1].Title)
	assert.Equal(t, "Summary", sections[2].Title)

	// Bodies cover the text between headings.
	assert.Contains(t, sections[0].Body, "Intro body line.")
	assert.Contains(t, sections[1].Body, "\\subsection{Details}")
	assert.NotContains(t, sections[2].Body, `\end{document}`)
}

func TestParseSectionsSpansMatchSource(t *testing.T) {
	sections := ParseSections(sampleDoc)
	require.Len(t, sections, 3)

	for _, sec := range sections {
		assert.Equal(t, sec.Body, sampleDoc[sec.Span.Start:sec.Span.End],
			"span of %q must address its own body", sec.Title)
	}
	// Spans are ordered and non-overlapping.
	for i := 1; i < len(sections); i++ {
		assert.LessOrEqual(t, sections[i-1].Span.End, sections[i].Span.Start)
	}
}

func TestSpliceRoundTrip(t *testing.T) {
	sections := ParseSections(sampleDoc)
	require.Len(t, sections, 3)

	// Splicing a body back in unchanged reproduces the document byte for byte.
	assert.Equal(t, sampleDoc, Splice(sampleDoc, sections[1], sections[1].Body))

	updated := Splice(sampleDoc, sections[1], "\nRewritten concepts.\n")
	assert.Contains(t, updated, "Rewritten concepts.")
	assert.Contains(t, updated, "Intro body line.")
	assert.Contains(t, updated, "Closing words.")
	assert.NotContains(t, updated, "Concepts body.")
}

func TestParseSectionsSingleHeading(t *testing.T) {
	sections := ParseSections(`\section{Intro}Hello world.`)
	require.Len(t, sections, 1)
	assert.Equal(t, "Intro", sections[0].Title)
	assert.Equal(t, "Hello world.", sections[0].Body)
}

func TestParseSectionsEmptyTitle(t *testing.T) {
	sections := ParseSections(`\section{}body one\section{  }body two`)
	require.Len(t, sections, 2)
	assert.Equal(t, "Section 1", sections[0].Title)
	assert.Equal(t, "Section 2", sections[1].Title)
}

func TestSectionsOrFallback(t *testing.T) {
	plain := "Just some prose without headings."
	sections := SectionsOrFallback(plain)
	require.Len(t, sections, 1)
	assert.Equal(t, "Document", sections[0].Title)
	assert.Equal(t, plain, sections[0].Body)
	assert.Equal(t, Span{Start: 0, End: len(plain)}, sections[0].Span)

	assert.Nil(t, ParseSections(plain))
}

func TestBodyStopsAtEndDocument(t *testing.T) {
	doc := "\\section{Only}body text\n\\end{document}\ntrailing junk"
	sections := ParseSections(doc)
	require.Len(t, sections, 1)
	assert.Equal(t, "body text\n", sections[0].Body)
	assert.False(t, strings.Contains(sections[0].Body, "trailing junk"))
}
