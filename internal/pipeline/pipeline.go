// Package pipeline turns a research topic into a LaTeX handout through an
// explicit two-stage draft-then-critique exchange with a selected model.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"scriptor/internal/llm"
)

// Instructions is the system prompt for the draft stage. The heading
// outline it dictates is what the section extractor later parses.
const Instructions = `You are an expert technical researcher and LaTeX writer.
Synthesize knowledge from your research and cite references inline (plain URLs).
Structure the response using \section, \subsection, and lists per the outline below.
Provide concrete examples, diagrams, or code listings for technical topics.

\section{Introduction}
\section{Core Concepts}
\section{Threat Tracking}
\section{Threat Monitoring}
\section{Examples and Use Cases}
\section{Ecosystem and Tools}
\section{Summary}`

const critiquePrompt = `You are a critical reviewer and expert in technical writing, cybersecurity, and AI risk management. ` +
	`Thoroughly improve the following LaTeX handout for depth, actionable threat modeling, and monitoring strategies. ` +
	`For each section provide detailed, narrative explanations with context, not just bullet points. ` +
	`Explain why each concept is important for the research topic, how it applies in real-world scenarios, and provide illustrative examples or case studies. ` +
	`Add step-by-step threat modeling approaches and include practical monitoring and mitigation strategies. ` +
	`Cite all facts with inline references and include a 'Best Practices' subsection with actionable recommendations. ` +
	`Remove any agent planning comments or placeholders. Ensure the document is comprehensive, practical, and suitable for a professional audience.`

// Options select the model and output behavior for one run.
type Options struct {
	Topic      string
	Model      string
	Workdir    string
	CompilePDF bool
}

// Result is the full outcome of a pipeline run. PDFPath is empty when
// compilation was skipped or failed; the LaTeX source always survives.
type Result struct {
	Topic      string        `json:"topic"`
	Slug       string        `json:"slug"`
	Body       string        `json:"-"`
	Full       string        `json:"-"`
	TexPath    string        `json:"tex_path"`
	PDFPath    string        `json:"pdf_path,omitempty"`
	Model      string        `json:"model"`
	Transcript []llm.Message `json:"-"`
}

// Pipeline runs the generation workflow with a pluggable model catalog.
type Pipeline struct {
	catalog      *llm.Catalog
	instructions string
}

func New(catalog *llm.Catalog) *Pipeline {
	return &Pipeline{catalog: catalog, instructions: Instructions}
}

// Run drafts, critiques, sanitizes, wraps, and persists a handout for the
// topic. The document lands at {workdir}/{slug}/{slug}.tex. Compilation
// failure is non-fatal; an unusable (empty) model result is not.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Result, error) {
	if strings.TrimSpace(opts.Topic) == "" {
		return nil, fmt.Errorf("topic is required")
	}
	if opts.Workdir == "" {
		opts.Workdir = "topics"
	}

	model := opts.Model
	if model == "" {
		model = p.catalog.DefaultModel()
	}
	client, err := p.catalog.Client(ctx, model)
	if err != nil {
		return nil, err
	}

	draft, transcript, err := p.Draft(ctx, client, opts.Topic)
	if err != nil {
		return nil, fmt.Errorf("draft stage: %w", err)
	}

	improved, critiqueTurns, err := p.Critique(ctx, client, draft)
	if err != nil {
		return nil, fmt.Errorf("critique stage: %w", err)
	}
	transcript = append(transcript, critiqueTurns...)

	body := FilterSafe(improved)
	if strings.TrimSpace(body) == "" {
		return nil, fmt.Errorf("model %s produced no usable output", model)
	}

	full := WrapPreamble(opts.Topic, body)
	slug := Slugify(opts.Topic)
	topicDir := filepath.Join(opts.Workdir, slug)
	if err := os.MkdirAll(topicDir, 0o755); err != nil {
		return nil, err
	}
	texPath := filepath.Join(topicDir, slug+".tex")
	if err := os.WriteFile(texPath, []byte(full), 0o644); err != nil {
		return nil, err
	}

	result := &Result{
		Topic:      opts.Topic,
		Slug:       slug,
		Body:       body,
		Full:       full,
		TexPath:    texPath,
		Model:      model,
		Transcript: transcript,
	}
	if opts.CompilePDF {
		result.PDFPath = compilePDF(ctx, topicDir, slug)
	}
	return result, nil
}

// Draft asks the model for the LaTeX body of a new handout. Contract:
// topic in, non-empty LaTeX body out. A blank reply falls back to a
// skeleton document so downstream stages always have sections to work on.
func (p *Pipeline) Draft(ctx context.Context, client llm.Client, topic string) (string, []llm.Message, error) {
	user := llm.Message{
		Role: "user",
		Content: fmt.Sprintf("Topic: %s\n\nWrite the LaTeX body as specified in your instructions. "+
			"Remember: output ONLY LaTeX, no explanations.", topic),
	}
	messages := []llm.Message{{Role: "system", Content: p.instructions}, user}

	reply, err := client.Chat(ctx, messages)
	if err != nil {
		return "", nil, err
	}
	if strings.TrimSpace(reply) == "" {
		reply = fallbackBody(topic)
	}
	transcript := append(messages, llm.Message{Role: "assistant", Content: reply})
	return reply, transcript, nil
}

// Critique sends the draft back for a review pass. Contract: draft body
// in, improved body out; a blank review keeps the draft rather than
// destroying it.
func (p *Pipeline) Critique(ctx context.Context, client llm.Client, draft string) (string, []llm.Message, error) {
	user := llm.Message{Role: "user", Content: critiquePrompt + "\n\n" + draft}
	messages := []llm.Message{{Role: "system", Content: p.instructions}, user}

	reply, err := client.Chat(ctx, messages)
	if err != nil {
		return "", nil, err
	}
	if strings.TrimSpace(reply) == "" {
		reply = draft
	}
	transcript := append(messages, llm.Message{Role: "assistant", Content: reply})
	return reply, transcript, nil
}

// compilePDF runs pdflatex twice so the table of contents resolves. Any
// failure degrades to "no PDF produced" while keeping the source.
func compilePDF(ctx context.Context, topicDir, slug string) string {
	for i := 0; i < 2; i++ {
		cmd := exec.CommandContext(ctx, "pdflatex", "-interaction=nonstopmode", slug+".tex")
		cmd.Dir = topicDir
		if err := cmd.Run(); err != nil {
			return ""
		}
	}
	return filepath.Join(topicDir, slug+".pdf")
}

func escapeTopic(text string) string {
	return strings.NewReplacer("\\", " ", "{", "", "}", "", "&", "and").Replace(text)
}

// fallbackBody produces a minimal but well-formed handout skeleton when a
// model returns nothing for the draft stage.
func fallbackBody(topic string) string {
	clean := escapeTopic(strings.TrimSpace(topic))
	if clean == "" {
		clean = "the requested topic"
	}
	return fmt.Sprintf(`\section{Introduction}
This handout surveys %s, outlining the core ideas, the current threat landscape, and the tooling ecosystem around it.

\section{Core Concepts}
\subsection{Definitions}
Key terms and building blocks of %s, with pointers to primary sources.

\section{Summary}
%s remains an evolving area; the sections above should be refreshed as new practice and tooling emerges.`,
		clean, clean, clean)
}
