// Package llm resolves model selectors like "openai:gpt-4o-mini" to chat
// clients. The catalog is built once from configuration and injected into
// whatever needs a model; there is no process-wide registry.
package llm

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"scriptor/internal/config"
)

// Message is a single chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client is a chat-completion model. Implementations block until the
// provider responds or ctx is done.
type Client interface {
	Chat(ctx context.Context, messages []Message) (string, error)
}

// Provider describes one registered chat model.
type Provider struct {
	Name        string
	Family      string
	Description string
	New         func(ctx context.Context) (Client, error)
}

// Catalog maps provider names to client factories.
type Catalog struct {
	providers    map[string]Provider
	defaultModel string
}

// NewCatalog registers every provider the supplied configuration can back.
// Ollama models are always available (the daemon may still be down, which
// surfaces as a chat error); hosted providers require their API key.
func NewCatalog(cfg *config.Config) *Catalog {
	c := &Catalog{
		providers:    map[string]Provider{},
		defaultModel: cfg.LLM.DefaultModel,
	}

	ollamaURL := cfg.LLM.OllamaURL
	c.Register(Provider{
		Name:        "ollama:llama3",
		Family:      "ollama",
		Description: "Local Ollama llama3 with deterministic sampling",
		New: func(ctx context.Context) (Client, error) {
			return NewOpenAIClient("ollama", "llama3", ollamaURL), nil
		},
	})
	c.Register(Provider{
		Name:        "ollama:gpt-oss",
		Family:      "ollama",
		Description: "gpt-oss via the OpenAI-compatible endpoint exposed by Ollama",
		New: func(ctx context.Context) (Client, error) {
			return NewOpenAIClient("ollama", "gpt-oss", ollamaURL), nil
		},
	})

	if key := cfg.LLM.OpenAIAPIKey; key != "" {
		c.Register(Provider{
			Name:        "openai:gpt-4o-mini",
			Family:      "openai",
			Description: "OpenAI GPT-4o mini",
			New: func(ctx context.Context) (Client, error) {
				return NewOpenAIClient(key, "gpt-4o-mini", ""), nil
			},
		})
	}
	if key := cfg.LLM.GeminiAPIKey; key != "" {
		c.Register(Provider{
			Name:        "gemini:gemini-2.5-flash",
			Family:      "gemini",
			Description: "Google Gemini 2.5 Flash",
			New: func(ctx context.Context) (Client, error) {
				return NewGeminiClient(ctx, key, "gemini-2.5-flash")
			},
		})
	}
	return c
}

// Register adds or replaces a provider. Names are case-insensitive.
func (c *Catalog) Register(p Provider) {
	c.providers[strings.ToLower(p.Name)] = p
}

// Client resolves a provider name to a ready chat client. An empty name
// selects the configured default model.
func (c *Catalog) Client(ctx context.Context, name string) (Client, error) {
	if name == "" {
		name = c.defaultModel
	}
	provider, ok := c.providers[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("llm provider %q is not registered (known: %s)",
			name, strings.Join(c.Names(), ", "))
	}
	return provider.New(ctx)
}

// DefaultModel returns the configured default selector.
func (c *Catalog) DefaultModel() string {
	return c.defaultModel
}

// Names lists registered provider names, sorted.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.providers))
	for name := range c.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
