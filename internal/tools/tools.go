// Package tools wraps the external research services (web search,
// encyclopedic lookup, paper search) behind capability objects. A tool
// whose credential is missing reports itself unavailable instead of
// failing the process; upstream errors come back as structured results,
// never panics.
package tools

import (
	"fmt"
	"net/http"
	"time"

	"scriptor/internal/config"
)

// Status values for tool results.
const (
	StatusSuccess     = "success"
	StatusError       = "error"
	StatusNoResults   = "no_results"
	StatusUnavailable = "unavailable"
)

// Result is the uniform outcome of one tool invocation.
type Result struct {
	Tool    string `json:"tool_name"`
	Status  string `json:"status"`
	Content string `json:"content"`
	Source  string `json:"source,omitempty"`
}

func errorResult(tool string, err error) Result {
	return Result{Tool: tool, Status: StatusError, Content: err.Error()}
}

func unavailableResult(tool, credential string) Result {
	return Result{
		Tool:    tool,
		Status:  StatusUnavailable,
		Content: fmt.Sprintf("%s is not configured (set %s to enable it)", tool, credential),
	}
}

// Toolset holds the configured capabilities. Build one at startup and pass
// it to whatever dispatches tool calls.
type Toolset struct {
	client        *http.Client
	tavilyKey     string
	perplexityKey string
}

func New(cfg *config.Config) *Toolset {
	return &Toolset{
		client:        &http.Client{Timeout: 30 * time.Second},
		tavilyKey:     cfg.Tools.TavilyAPIKey,
		perplexityKey: cfg.Tools.PerplexityAPIKey,
	}
}
