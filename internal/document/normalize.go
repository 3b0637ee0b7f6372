package document

import (
	"regexp"
	"strings"
)

var (
	htmlTagPattern       = regexp.MustCompile(`<[^>]+>`)
	citePattern          = regexp.MustCompile(`\\cite\{[^}]*\}`)
	textbfPattern        = regexp.MustCompile(`\\textbf\{([^}]*)\}`)
	textttPattern        = regexp.MustCompile(`\\texttt\{([^}]*)\}`)
	emphPattern          = regexp.MustCompile(`\\emph\{([^}]*)\}`)
	subsectionPattern    = regexp.MustCompile(`\\subsection\{([^}]*)\}`)
	subsubsectionPattern = regexp.MustCompile(`\\subsubsection\{([^}]*)\}`)
	listEnvPattern       = regexp.MustCompile(`\\(?:begin|end)\{(?:itemize|enumerate)\}`)
)

// Normalize strips markup decoration from a section body down to plain
// paragraph text. The transforms run in a fixed order and the pipeline is
// idempotent: Normalize(Normalize(x)) == Normalize(x).
func Normalize(text string) string {
	text = htmlTagPattern.ReplaceAllString(text, "")
	text = citePattern.ReplaceAllString(text, "")
	text = textbfPattern.ReplaceAllString(text, "$1")
	text = textttPattern.ReplaceAllString(text, "$1")
	text = emphPattern.ReplaceAllString(text, "$1")
	text = subsectionPattern.ReplaceAllString(text, "\n\n$1\n\n")
	text = subsubsectionPattern.ReplaceAllString(text, "\n\n$1\n\n")
	text = listEnvPattern.ReplaceAllString(text, "\n\n")
	text = strings.ReplaceAll(text, `\item`, "- ")
	text = strings.ReplaceAll(text, `\&`, "&")
	text = strings.ReplaceAll(text, "{", "")
	text = strings.ReplaceAll(text, "}", "")
	return text
}
