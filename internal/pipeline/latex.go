package pipeline

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	slugInvalid  = regexp.MustCompile(`[^a-z0-9]+`)
	slugCollapse = regexp.MustCompile(`_+`)
)

// Slugify derives a filesystem- and URL-safe identifier from a topic name:
// lowercase, non-alphanumeric runs collapsed to single underscores, trimmed.
func Slugify(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))
	text = slugInvalid.ReplaceAllString(text, "_")
	text = slugCollapse.ReplaceAllString(text, "_")
	text = strings.Trim(text, "_")
	if text == "" {
		return "document"
	}
	return text
}

// SlugFromIdentifier resolves UI-facing identifiers ("topic:foo",
// "results/foo/foo.tex", or a plain topic name) to the topic slug.
func SlugFromIdentifier(identifier string) string {
	ident := strings.TrimSpace(identifier)
	if rest, ok := strings.CutPrefix(ident, "topic:"); ok {
		ident = rest
	}
	if strings.Contains(ident, "/") || strings.HasSuffix(ident, ".tex") {
		if idx := strings.LastIndex(ident, "/"); idx >= 0 {
			ident = ident[idx+1:]
		}
		ident = strings.TrimSuffix(ident, ".tex")
	}
	return Slugify(ident)
}

const preambleTemplate = `\documentclass[11pt]{article}
\usepackage[a4paper,margin=1in]{geometry}
\usepackage{titlesec}
\usepackage{enumitem}
\usepackage{courier}
\usepackage{listings}
\usepackage{xcolor}
\usepackage{hyperref}
\usepackage{tikz}

\title{%s}
\author{Scriptor Research Pipeline}
\date{\today}

\begin{document}
\maketitle
\tableofcontents
\newpage

%% The following content is auto-generated. Remove any agent planning comments or placeholders.
%s

\end{document}
`

// WrapPreamble embeds a generated body in the fixed article template.
func WrapPreamble(topic, body string) string {
	title := strings.NewReplacer("{", "", "}", "").Replace(topic)
	return fmt.Sprintf(preambleTemplate, title, body)
}

// FilterSafe constrains generated text to printable ASCII plus whitespace
// before it reaches the section extractor. Model output occasionally
// smuggles in smart quotes and stray control bytes that break pdflatex.
func FilterSafe(text string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r == '\t' {
			return r
		}
		if r >= 0x20 && r <= 0x7e {
			return r
		}
		return -1
	}, text)
}
