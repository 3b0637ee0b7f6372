package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeStripsMarkup(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"html tags", "before <img src='x.png'> after", "before  after"},
		{"cite removed", `stated \cite{smith2021} plainly`, "stated  plainly"},
		{"textbf unwrapped", `a \textbf{bold} word`, "a bold word"},
		{"texttt unwrapped", `run \texttt{go vet} now`, "run go vet now"},
		{"emph unwrapped", `an \emph{important} point`, "an important point"},
		{"item to dash", `\item first thing`, "-  first thing"},
		{"escaped ampersand", `tooling \& practice`, "tooling & practice"},
		{"braces stripped", `leftover {group} text`, "leftover group text"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Normalize(tc.in))
		})
	}
}

func TestNormalizeSubsectionBecomesTitleParagraph(t *testing.T) {
	got := Normalize(`intro text\subsection{Details}more text`)
	assert.Equal(t, "intro text\n\nDetails\n\nmore text", got)
}

func TestNormalizeListEnvironment(t *testing.T) {
	got := Normalize("\\begin{itemize}\n\\item one\n\\item two\n\\end{itemize}")
	assert.Contains(t, got, "-  one")
	assert.Contains(t, got, "-  two")
	assert.NotContains(t, got, "itemize")
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		sampleDoc,
		`\textbf{bold} and \cite{ref} and <div>frag</div>`,
		"\\subsection{T}\n\\begin{enumerate}\\item a\\end{enumerate}",
		"plain text with no markup at all",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once))
	}
}

func TestParagraphsSplitAndTrim(t *testing.T) {
	paras := Paragraphs("first block\n\n   \nsecond block\n\n\nthird")
	assert.Equal(t, []string{"first block", "second block", "third"}, paras)
}

func TestParagraphsEmptyBody(t *testing.T) {
	for _, body := range []string{"", "   \n  \n", `\cite{only}`} {
		assert.Equal(t, []string{EmptyParagraph}, Paragraphs(body))
	}
}
