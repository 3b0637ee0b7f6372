// Package media renders the diagram, chart, and image assets the review
// UI can embed into sections.
package media

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Kind is the closed set of asset types the renderer supports. Adding a
// kind means extending this enum and the renderer's switch; unknown kinds
// fail at parse time, not at render time.
type Kind int

const (
	KindDiagram Kind = iota
	KindChart
	KindImage
)

func (k Kind) String() string {
	switch k {
	case KindDiagram:
		return "diagram"
	case KindChart:
		return "chart"
	case KindImage:
		return "image"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind maps a spec's kind string onto the enum.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "diagram", "flowchart", "":
		return KindDiagram, nil
	case "chart":
		return KindChart, nil
	case "image":
		return KindImage, nil
	}
	return 0, fmt.Errorf("unsupported media kind %q", s)
}

// Edge is a directed connection between two named nodes.
type Edge struct {
	From string
	To   string
}

// Series is one labeled value sequence of a chart.
type Series struct {
	Label  string    `json:"label"`
	Values []float64 `json:"values"`
}

var defaultPalette = []string{"#2563eb", "#dc2626", "#16a34a", "#f97316"}

// Spec is a declarative description of a single visual asset.
type Spec struct {
	Kind        Kind
	Filename    string
	Title       string
	Description string
	Nodes       []string
	Edges       []Edge
	XLabels     []string
	Series      []Series
	ChartKind   string
	Text        string
	Width       int
	Height      int
	Palette     []string
}

// specJSON mirrors the loose JSON an LLM planner produces. Nodes and edges
// arrive in several shapes and are normalized after decode.
type specJSON struct {
	Kind        string          `json:"kind"`
	Filename    string          `json:"filename"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Nodes       json.RawMessage `json:"nodes"`
	Edges       json.RawMessage `json:"edges"`
	XLabels     []string        `json:"x_labels"`
	Series      []Series        `json:"series"`
	ChartKind   string          `json:"chart_kind"`
	Text        string          `json:"text"`
	Width       int             `json:"width"`
	Height      int             `json:"height"`
	Palette     []string        `json:"palette"`
}

// ParseSpec decodes a JSON media spec, tolerating the loose node/edge
// shapes LLMs emit, and applies defaults.
func ParseSpec(raw string, slug string) (Spec, error) {
	var decoded specJSON
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return Spec{}, err
	}

	kind, err := ParseKind(decoded.Kind)
	if err != nil {
		return Spec{}, err
	}

	spec := Spec{
		Kind:        kind,
		Filename:    strings.TrimSpace(decoded.Filename),
		Title:       decoded.Title,
		Description: decoded.Description,
		Nodes:       normalizeNodes(decoded.Nodes),
		Edges:       normalizeEdges(decoded.Edges),
		XLabels:     decoded.XLabels,
		Series:      decoded.Series,
		ChartKind:   decoded.ChartKind,
		Text:        decoded.Text,
		Width:       decoded.Width,
		Height:      decoded.Height,
		Palette:     decoded.Palette,
	}
	spec.applyDefaults(slug)
	return spec, nil
}

// FallbackSpec is used when the planner model returns unparseable JSON.
func FallbackSpec(description, slug string) Spec {
	title := strings.TrimSpace(description)
	if len(title) > 60 {
		title = title[:60]
	}
	if title == "" {
		title = "Auto Diagram"
	}
	spec := Spec{
		Kind:        KindDiagram,
		Title:       title,
		Description: "Auto-generated diagram",
		Nodes:       []string{"Input", "Processing", "Output"},
		Edges:       []Edge{{From: "Input", To: "Processing"}, {From: "Processing", To: "Output"}},
	}
	spec.applyDefaults(slug)
	return spec
}

func (s *Spec) applyDefaults(slug string) {
	if s.Filename == "" {
		s.Filename = CoerceFilename(slug)
	}
	if s.Width <= 0 {
		s.Width = 1280
	}
	if s.Height <= 0 {
		s.Height = 720
	}
	if len(s.Palette) == 0 {
		s.Palette = defaultPalette
	}
	if s.Kind == KindDiagram {
		if len(s.Nodes) == 0 {
			s.Nodes = []string{"Agent", "Tooling", "Output"}
		}
		if len(s.Edges) == 0 && len(s.Nodes) > 1 {
			s.Edges = []Edge{{From: s.Nodes[0], To: s.Nodes[len(s.Nodes)-1]}}
		}
	}
}

// CoerceFilename builds a unique PNG name scoped to the topic slug.
func CoerceFilename(slug string) string {
	if slug == "" {
		slug = "diagram"
	}
	return fmt.Sprintf("%s_%s.png", slug, uuid.NewString()[:8])
}

var nodeSeparators = regexp.MustCompile(`[,;\n]+`)

func normalizeNodes(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		var nodes []string
		for _, part := range nodeSeparators.Split(asString, -1) {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				nodes = append(nodes, trimmed)
			}
		}
		return nodes
	}
	var asList []any
	if err := json.Unmarshal(raw, &asList); err != nil {
		return nil
	}
	var nodes []string
	for _, item := range asList {
		if text := strings.TrimSpace(fmt.Sprint(item)); text != "" {
			nodes = append(nodes, text)
		}
	}
	return nodes
}

func normalizeEdges(raw json.RawMessage) []Edge {
	if len(raw) == 0 {
		return nil
	}
	var items []any
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		for _, part := range regexp.MustCompile(`[\n;]+`).Split(asString, -1) {
			items = append(items, part)
		}
	} else if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}

	var edges []Edge
	for _, item := range items {
		switch v := item.(type) {
		case []any:
			if len(v) >= 2 {
				from := strings.TrimSpace(fmt.Sprint(v[0]))
				to := strings.TrimSpace(fmt.Sprint(v[1]))
				if from != "" && to != "" {
					edges = append(edges, Edge{From: from, To: to})
				}
			}
		default:
			if edge, ok := splitEdgeText(strings.TrimSpace(fmt.Sprint(v))); ok {
				edges = append(edges, edge)
			}
		}
	}
	return edges
}

func splitEdgeText(text string) (Edge, bool) {
	if text == "" {
		return Edge{}, false
	}
	var parts []string
	switch {
	case strings.Contains(text, "->"):
		parts = strings.SplitN(text, "->", 2)
	case strings.Contains(text, "-"):
		parts = strings.SplitN(text, "-", 2)
	case strings.Contains(text, ","):
		parts = strings.SplitN(text, ",", 2)
	default:
		return Edge{}, false
	}
	from := strings.TrimSpace(parts[0])
	to := strings.TrimSpace(parts[1])
	if from == "" || to == "" {
		return Edge{}, false
	}
	return Edge{From: from, To: to}, true
}
