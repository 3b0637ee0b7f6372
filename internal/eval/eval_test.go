package eval

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scriptor/internal/config"
	"scriptor/internal/llm"
	"scriptor/internal/pipeline"
)

type staticClient struct{ reply string }

func (c *staticClient) Chat(ctx context.Context, messages []llm.Message) (string, error) {
	return c.reply, nil
}

func testCatalog() *llm.Catalog {
	cfg := &config.Config{}
	cfg.LLM.DefaultModel = "fake:good"
	catalog := llm.NewCatalog(cfg)
	catalog.Register(llm.Provider{
		Name: "fake:good",
		New: func(ctx context.Context) (llm.Client, error) {
			return &staticClient{reply: `\section{Introduction}good body`}, nil
		},
	})
	return catalog
}

func TestRunCollectsOutcomes(t *testing.T) {
	catalog := testCatalog()
	evaluator := New(pipeline.New(catalog), catalog)

	workdir := t.TempDir()
	outcomes := evaluator.Run(context.Background(), "Some Topic", workdir,
		[]string{"fake:good", "missing:model"})
	require.Len(t, outcomes, 2)

	good := outcomes[0]
	assert.Equal(t, "fake:good", good.Model)
	assert.Empty(t, good.Err)
	assert.True(t, strings.HasPrefix(good.TexPath, filepath.Join(workdir, "fake_good")),
		"each model writes under its own subdirectory, got %q", good.TexPath)
	assert.Greater(t, good.BodyBytes, 0)

	// An unknown model fails its own run without stopping the sweep.
	bad := outcomes[1]
	assert.Equal(t, "missing:model", bad.Model)
	assert.Contains(t, bad.Err, "not registered")
}

func TestRunDefaultsToAllModels(t *testing.T) {
	catalog := testCatalog()
	evaluator := New(pipeline.New(catalog), catalog)

	outcomes := evaluator.Run(context.Background(), "Some Topic", t.TempDir(), nil)
	assert.Len(t, outcomes, len(catalog.Names()))
}
