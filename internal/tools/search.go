package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// --- Tavily web search ---

type tavilyRequest struct {
	APIKey     string `json:"api_key"`
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
	Topic      string `json:"topic"`
}

type tavilyResponse struct {
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"results"`
}

// InternetSearch runs a Tavily web search and formats the top hits as a
// readable snippet.
func (t *Toolset) InternetSearch(ctx context.Context, query string, maxResults int) Result {
	const tool = "internet_search"
	if strings.TrimSpace(t.tavilyKey) == "" {
		return unavailableResult(tool, "TAVILY_API_KEY")
	}
	if maxResults <= 0 {
		maxResults = 5
	}

	payload, err := json.Marshal(tavilyRequest{
		APIKey:     t.tavilyKey,
		Query:      query,
		MaxResults: maxResults,
		Topic:      "general",
	})
	if err != nil {
		return errorResult(tool, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		"https://api.tavily.com/search", bytes.NewReader(payload))
	if err != nil {
		return errorResult(tool, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return errorResult(tool, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errorResult(tool, fmt.Errorf("tavily http %d", resp.StatusCode))
	}

	var parsed tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return errorResult(tool, err)
	}
	if len(parsed.Results) == 0 {
		return Result{Tool: tool, Status: StatusNoResults, Content: "No search results.", Source: "Tavily"}
	}

	var sb strings.Builder
	for i, item := range parsed.Results {
		if i >= maxResults {
			break
		}
		title := item.Title
		if title == "" {
			title = fmt.Sprintf("Result %d", i+1)
		}
		fmt.Fprintf(&sb, "%d. %s\n%s\n%s\n\n", i+1, title, item.URL, strings.TrimSpace(item.Content))
	}
	return Result{Tool: tool, Status: StatusSuccess, Content: strings.TrimSpace(sb.String()), Source: "Tavily"}
}

// --- Wikipedia ---

type wikipediaSummary struct {
	Extract string `json:"extract"`
}

// WikipediaLookup returns the summary paragraph for an article.
func (t *Toolset) WikipediaLookup(ctx context.Context, query string) Result {
	const tool = "wikipedia_lookup"
	endpoint := "https://en.wikipedia.org/api/rest_v1/page/summary/" +
		url.PathEscape(strings.ReplaceAll(query, " ", "_"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return errorResult(tool, err)
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return errorResult(tool, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errorResult(tool, fmt.Errorf("wikipedia lookup failed with status %d", resp.StatusCode))
	}

	var parsed wikipediaSummary
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return errorResult(tool, err)
	}
	if strings.TrimSpace(parsed.Extract) == "" {
		return Result{Tool: tool, Status: StatusNoResults, Content: "No summary found.", Source: "Wikipedia"}
	}
	return Result{Tool: tool, Status: StatusSuccess, Content: parsed.Extract, Source: "Wikipedia"}
}

// --- arXiv ---

type arxivFeed struct {
	Entries []struct {
		Title string `xml:"title"`
		ID    string `xml:"id"`
	} `xml:"entry"`
}

// ArxivSearch returns formatted title + URL pairs from the arXiv Atom API.
func (t *Toolset) ArxivSearch(ctx context.Context, query string, maxResults int) Result {
	const tool = "arxiv_search"
	if maxResults <= 0 {
		maxResults = 3
	}
	endpoint := fmt.Sprintf(
		"http://export.arxiv.org/api/query?search_query=all:%s&start=0&max_results=%d",
		url.QueryEscape(query), maxResults)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return errorResult(tool, err)
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return errorResult(tool, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errorResult(tool, fmt.Errorf("arxiv search failed with status %d", resp.StatusCode))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errorResult(tool, err)
	}
	var feed arxivFeed
	if err := xml.Unmarshal(raw, &feed); err != nil {
		return errorResult(tool, err)
	}
	if len(feed.Entries) == 0 {
		return Result{Tool: tool, Status: StatusNoResults, Content: "No arXiv results.", Source: "arXiv"}
	}

	parts := make([]string, 0, len(feed.Entries))
	for _, entry := range feed.Entries {
		title := strings.Join(strings.Fields(entry.Title), " ")
		parts = append(parts, title+"\n"+strings.TrimSpace(entry.ID))
	}
	return Result{Tool: tool, Status: StatusSuccess, Content: strings.Join(parts, "\n\n"), Source: "arXiv"}
}

// --- Perplexity ---

type perplexityRequest struct {
	Model       string              `json:"model"`
	Messages    []perplexityMessage `json:"messages"`
	MaxTokens   int                 `json:"max_tokens"`
	Temperature float64             `json:"temperature"`
}

type perplexityMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type perplexityResponse struct {
	Choices []struct {
		Message perplexityMessage `json:"message"`
	} `json:"choices"`
	Citations []string `json:"citations"`
}

// PerplexitySearch asks Perplexity's online model for a sourced answer.
func (t *Toolset) PerplexitySearch(ctx context.Context, query string) Result {
	const tool = "perplexity_search"
	if strings.TrimSpace(t.perplexityKey) == "" {
		return unavailableResult(tool, "PERPLEXITY_API_KEY")
	}

	payload, err := json.Marshal(perplexityRequest{
		Model: "sonar",
		Messages: []perplexityMessage{
			{Role: "system", Content: "You are a helpful research assistant. Provide accurate, well-sourced answers with citations."},
			{Role: "user", Content: query},
		},
		MaxTokens:   1024,
		Temperature: 0.2,
	})
	if err != nil {
		return errorResult(tool, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		"https://api.perplexity.ai/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return errorResult(tool, err)
	}
	req.Header.Set("Authorization", "Bearer "+t.perplexityKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return errorResult(tool, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errorResult(tool, err)
	}
	if resp.StatusCode != http.StatusOK {
		return errorResult(tool, fmt.Errorf("perplexity http %d: %s", resp.StatusCode, truncate(string(raw), 200)))
	}

	var parsed perplexityResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return errorResult(tool, err)
	}
	if len(parsed.Choices) == 0 {
		return Result{Tool: tool, Status: StatusNoResults, Content: "No answer returned.", Source: "Perplexity"}
	}

	content := parsed.Choices[0].Message.Content
	if len(parsed.Citations) > 0 {
		var sb strings.Builder
		sb.WriteString(content)
		sb.WriteString("\n\nSources:\n")
		for i, cite := range parsed.Citations {
			fmt.Fprintf(&sb, "[%d] %s\n", i+1, cite)
		}
		content = strings.TrimSpace(sb.String())
	}
	return Result{Tool: tool, Status: StatusSuccess, Content: content, Source: "Perplexity"}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
