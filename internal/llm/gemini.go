package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GeminiClient implements Client on top of the Gemini API.
type GeminiClient struct {
	client *genai.Client
	model  string
}

func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &GeminiClient{client: client, model: model}, nil
}

// Chat flattens the conversation into a single prompt. System turns are
// passed as preamble lines; the Gemini API treats the whole thing as one
// user message, which is sufficient for the pipeline's request/response
// exchanges.
func (g *GeminiClient) Chat(ctx context.Context, messages []Message) (string, error) {
	var sb strings.Builder
	for _, msg := range messages {
		switch msg.Role {
		case "system":
			sb.WriteString(msg.Content)
			sb.WriteString("\n\n")
		case "assistant":
			sb.WriteString("Previous reply:\n")
			sb.WriteString(msg.Content)
			sb.WriteString("\n\n")
		default:
			sb.WriteString(msg.Content)
			sb.WriteString("\n\n")
		}
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(sb.String()), nil)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Text()), nil
}
