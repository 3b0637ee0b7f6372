package tools

import (
	"context"
	"strings"
)

// Plan names the tools worth running for a query and why.
type Plan struct {
	Steps []string `json:"plan"`
	Tools []string `json:"tools"`
}

var routeKeywords = []struct {
	tool string
	step string
	keys []string
}{
	{
		tool: "arxiv_search",
		step: "Use arxiv_search for academic papers.",
		keys: []string{"research", "paper", "arxiv", "academic", "study", "journal"},
	},
	{
		tool: "wikipedia_lookup",
		step: "Use wikipedia_lookup for background.",
		keys: []string{"wikipedia", "overview", "history", "background", "definition", "what is"},
	},
	{
		tool: "local_file_search",
		step: "Use local_file_search for on-disk artifacts.",
		keys: []string{"local", "notes", "file"},
	},
	{
		tool: "perplexity_search",
		step: "Use perplexity_search for AI-powered web search with citations.",
		keys: []string{"latest", "current", "news", "recent", "today"},
	},
}

// Route plans which tools to use for a query based on keyword hints. A
// general web search is always included last.
func Route(query string) Plan {
	lowered := strings.ToLower(query)
	plan := Plan{}
	for _, route := range routeKeywords {
		for _, key := range route.keys {
			if strings.Contains(lowered, key) {
				plan.Steps = append(plan.Steps, route.step)
				plan.Tools = append(plan.Tools, route.tool)
				break
			}
		}
	}
	plan.Steps = append(plan.Steps, "Use internet_search for general web info.")
	plan.Tools = append(plan.Tools, "internet_search")
	return plan
}

// DeepSearch runs every tool the router selects and aggregates the
// per-source results. Individual tool failures become error entries; they
// never abort the aggregation.
func (t *Toolset) DeepSearch(ctx context.Context, query string, maxResults int) (Plan, []Result) {
	plan := Route(query)
	results := make([]Result, 0, len(plan.Tools))
	for _, tool := range plan.Tools {
		switch tool {
		case "arxiv_search":
			results = append(results, t.ArxivSearch(ctx, query, maxResults))
		case "wikipedia_lookup":
			results = append(results, t.WikipediaLookup(ctx, query))
		case "local_file_search":
			results = append(results, t.LocalFileSearch(query, ""))
		case "perplexity_search":
			results = append(results, t.PerplexitySearch(ctx, query))
		case "internet_search":
			results = append(results, t.InternetSearch(ctx, query, maxResults))
		}
	}
	return plan, results
}
