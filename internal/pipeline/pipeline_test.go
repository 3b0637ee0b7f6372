package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scriptor/internal/config"
	"scriptor/internal/llm"
)

// scriptedClient returns canned replies in order, recording every prompt.
type scriptedClient struct {
	replies []string
	calls   [][]llm.Message
}

func (c *scriptedClient) Chat(ctx context.Context, messages []llm.Message) (string, error) {
	c.calls = append(c.calls, messages)
	reply := ""
	if len(c.replies) > 0 {
		reply = c.replies[0]
		c.replies = c.replies[1:]
	}
	return reply, nil
}

func testCatalog(client llm.Client) *llm.Catalog {
	cfg := &config.Config{}
	cfg.LLM.DefaultModel = "fake:model"
	catalog := llm.NewCatalog(cfg)
	catalog.Register(llm.Provider{
		Name:   "fake:model",
		Family: "fake",
		New: func(ctx context.Context) (llm.Client, error) {
			return client, nil
		},
	})
	return catalog
}

func TestRunDraftAndCritique(t *testing.T) {
	client := &scriptedClient{replies: []string{
		`\section{Introduction}draft intro`,
		`\section{Introduction}improved intro`,
	}}
	pipe := New(testCatalog(client))

	workdir := t.TempDir()
	result, err := pipe.Run(context.Background(), Options{
		Topic:   "AI Agent Security",
		Model:   "fake:model",
		Workdir: workdir,
	})
	require.NoError(t, err)

	// Both stages ran, and the critique output won.
	require.Len(t, client.calls, 2)
	assert.Contains(t, result.Body, "improved intro")
	assert.NotContains(t, result.Body, "draft intro")
	assert.Equal(t, "ai_agent_security", result.Slug)
	assert.Equal(t, "fake:model", result.Model)

	// The document landed at {workdir}/{slug}/{slug}.tex with the preamble.
	wantPath := filepath.Join(workdir, "ai_agent_security", "ai_agent_security.tex")
	assert.Equal(t, wantPath, result.TexPath)
	written, err := os.ReadFile(wantPath)
	require.NoError(t, err)
	assert.Contains(t, string(written), `\documentclass[11pt]{article}`)
	assert.Contains(t, string(written), "improved intro")
	assert.Empty(t, result.PDFPath, "no compile requested")
}

func TestRunBlankDraftFallsBack(t *testing.T) {
	// Draft reply blank, critique reply blank: fallback skeleton survives
	// both stages.
	client := &scriptedClient{replies: []string{"", ""}}
	pipe := New(testCatalog(client))

	result, err := pipe.Run(context.Background(), Options{
		Topic:   "Obscure Topic",
		Workdir: t.TempDir(),
	})
	require.NoError(t, err)
	assert.Contains(t, result.Body, `\section{Introduction}`)
	assert.Contains(t, result.Body, "Obscure Topic")
}

func TestRunUnusableOutput(t *testing.T) {
	// The critique stage replaces the draft with content FilterSafe strips
	// entirely.
	client := &scriptedClient{replies: []string{
		`\section{Introduction}draft`,
		"“”—",
	}}
	pipe := New(testCatalog(client))

	_, err := pipe.Run(context.Background(), Options{
		Topic:   "Topic",
		Workdir: t.TempDir(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no usable output")
}

func TestRunRequiresTopic(t *testing.T) {
	pipe := New(testCatalog(&scriptedClient{}))
	_, err := pipe.Run(context.Background(), Options{Topic: "   "})
	assert.Error(t, err)
}

func TestRunUnknownModel(t *testing.T) {
	pipe := New(testCatalog(&scriptedClient{}))
	_, err := pipe.Run(context.Background(), Options{
		Topic: "Topic",
		Model: "nope:missing",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not registered")
}

func TestDraftTranscript(t *testing.T) {
	client := &scriptedClient{replies: []string{"body text"}}
	pipe := New(testCatalog(client))

	reply, transcript, err := pipe.Draft(context.Background(), client, "Topic")
	require.NoError(t, err)
	assert.Equal(t, "body text", reply)
	require.Len(t, transcript, 3)
	assert.Equal(t, "system", transcript[0].Role)
	assert.Equal(t, "assistant", transcript[2].Role)
}
