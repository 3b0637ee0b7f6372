package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scriptor/internal/config"
)

func TestUnavailableWithoutCredentials(t *testing.T) {
	toolset := New(&config.Config{})
	ctx := context.Background()

	result := toolset.InternetSearch(ctx, "anything", 3)
	assert.Equal(t, StatusUnavailable, result.Status)
	assert.Contains(t, result.Content, "TAVILY_API_KEY")

	result = toolset.PerplexitySearch(ctx, "anything")
	assert.Equal(t, StatusUnavailable, result.Status)
	assert.Contains(t, result.Content, "PERPLEXITY_API_KEY")
}

func TestRouteAlwaysIncludesInternetSearch(t *testing.T) {
	plan := Route("tell me about cooking pasta")
	require.Equal(t, []string{"internet_search"}, plan.Tools)
	require.Len(t, plan.Steps, 1)
}

func TestRouteKeywordSelection(t *testing.T) {
	plan := Route("recent research papers on AI agent security")
	assert.Contains(t, plan.Tools, "arxiv_search")
	assert.Contains(t, plan.Tools, "perplexity_search")
	assert.Equal(t, "internet_search", plan.Tools[len(plan.Tools)-1],
		"general web search always runs last")

	plan = Route("What is the history of cryptography?")
	assert.Contains(t, plan.Tools, "wikipedia_lookup")
	assert.NotContains(t, plan.Tools, "arxiv_search")
}

func TestRouteMatchesOnceDespiteMultipleKeywords(t *testing.T) {
	plan := Route("research paper study on an academic journal")
	count := 0
	for _, tool := range plan.Tools {
		if tool == "arxiv_search" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestDeepSearchAggregates(t *testing.T) {
	toolset := New(&config.Config{})

	// Both selected tools lack credentials, so no request leaves the test.
	plan, results := toolset.DeepSearch(context.Background(), "latest news updates", 2)
	require.Equal(t, []string{"perplexity_search", "internet_search"}, plan.Tools)
	require.Equal(t, len(plan.Tools), len(results))
	for i, result := range results {
		assert.Equal(t, plan.Tools[i], result.Tool)
		// Missing credentials degrade to unavailable results, never an abort.
		assert.Equal(t, StatusUnavailable, result.Status)
	}
}
