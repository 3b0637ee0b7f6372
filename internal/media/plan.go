package media

import (
	"context"
	"strings"

	"scriptor/internal/llm"
)

const plannerSystemPrompt = `You design visual assets for research documents.
Given a request and the document context, reply with a single JSON object
describing the asset. Use these fields:
  "kind": "diagram" | "chart" | "image"
  "title": short title
  "nodes": list of node labels (diagram)
  "edges": list of ["from", "to"] pairs (diagram)
  "series": list of {"label": string, "values": [numbers]} (chart)
  "x_labels": list of axis labels (chart)
  "chart_kind": "line" | "bar" (chart)
  "text": caption text (image)
Reply with JSON only, no commentary.`

// Planner asks a model to turn a free-form request into a Spec. When the
// model's reply is not valid JSON, the fallback diagram spec is used so
// the caller always gets something renderable.
type Planner struct {
	client llm.Client
}

func NewPlanner(client llm.Client) *Planner {
	return &Planner{client: client}
}

func (p *Planner) Plan(ctx context.Context, request, outline, sectionHTML, slug string) Spec {
	var prompt strings.Builder
	prompt.WriteString("Request: ")
	prompt.WriteString(request)
	if outline != "" {
		prompt.WriteString("\n\nDocument outline:\n")
		prompt.WriteString(outline)
	}
	if sectionHTML != "" {
		prompt.WriteString("\n\nCurrent section content:\n")
		prompt.WriteString(truncatePrompt(sectionHTML, 4000))
	}

	reply, err := p.client.Chat(ctx, []llm.Message{
		{Role: "system", Content: plannerSystemPrompt},
		{Role: "user", Content: prompt.String()},
	})
	if err != nil {
		return FallbackSpec(request, slug)
	}

	spec, err := ParseSpec(extractJSON(reply), slug)
	if err != nil {
		return FallbackSpec(request, slug)
	}
	if spec.Title == "" {
		spec.Title = strings.TrimSpace(request)
	}
	return spec
}

// extractJSON pulls the first {...} object out of a reply that may carry
// markdown fences or prose around the JSON.
func extractJSON(reply string) string {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end <= start {
		return reply
	}
	return reply[start : end+1]
}

func truncatePrompt(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
