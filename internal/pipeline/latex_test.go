package pipeline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"AI Agent Security":          "ai_agent_security",
		"  Threats & Monitoring!  ":  "threats_monitoring",
		"already_slugged":            "already_slugged",
		"___":                        "document",
		"":                           "document",
		"C++ (modern) -- a survey":   "c_modern_a_survey",
		"Unicode é stripped":         "unicode_stripped",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), "input %q", in)
	}
}

func TestSlugFromIdentifier(t *testing.T) {
	cases := map[string]string{
		"topic:AI Agent Security":                "ai_agent_security",
		"results/ai_agent_security/ai_agent_security.tex": "ai_agent_security",
		"ai_agent_security.tex":                  "ai_agent_security",
		"Plain Topic Name":                       "plain_topic_name",
	}
	for in, want := range cases {
		assert.Equal(t, want, SlugFromIdentifier(in), "input %q", in)
	}
}

func TestWrapPreamble(t *testing.T) {
	full := WrapPreamble("AI {Agent} Security", `\section{Intro}body`)

	assert.True(t, strings.HasPrefix(full, `\documentclass[11pt]{article}`))
	assert.Contains(t, full, `\title{AI Agent Security}`, "braces are stripped from the title")
	assert.Contains(t, full, `\section{Intro}body`)
	assert.Contains(t, full, `\end{document}`)
	assert.Contains(t, full, `\tableofcontents`)
}

func TestFilterSafe(t *testing.T) {
	in := "plain text\nwith\ttabs\r\n"
	assert.Equal(t, in, FilterSafe(in), "printable ASCII and whitespace pass through")
	assert.Equal(t, "smart quotes x", FilterSafe("smart quotes “x”"))
}

func TestFilterSafeStripsNonASCII(t *testing.T) {
	assert.Equal(t, "caf", FilterSafe("café"))
	assert.Equal(t, "x", FilterSafe("x\x00\x1b"))
	assert.Equal(t, "ab", FilterSafe("a—b"))
}
