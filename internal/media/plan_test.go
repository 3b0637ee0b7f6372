package media

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scriptor/internal/llm"
)

type cannedClient struct {
	reply string
	err   error
}

func (c *cannedClient) Chat(ctx context.Context, messages []llm.Message) (string, error) {
	return c.reply, c.err
}

func TestPlannerParsesModelJSON(t *testing.T) {
	planner := NewPlanner(&cannedClient{reply: "Here is the spec:\n```json\n" +
		`{"kind":"chart","title":"Latency","series":[{"label":"p99","values":[1,2,3]}]}` +
		"\n```"})

	spec := planner.Plan(context.Background(), "latency chart", "", "", "topic")
	assert.Equal(t, KindChart, spec.Kind)
	assert.Equal(t, "Latency", spec.Title)
	require.Len(t, spec.Series, 1)
	assert.Equal(t, []float64{1, 2, 3}, spec.Series[0].Values)
}

func TestPlannerFallsBackOnBadJSON(t *testing.T) {
	planner := NewPlanner(&cannedClient{reply: "I cannot produce JSON, sorry."})

	spec := planner.Plan(context.Background(), "show the data flow", "", "", "topic")
	assert.Equal(t, KindDiagram, spec.Kind)
	assert.Equal(t, []string{"Input", "Processing", "Output"}, spec.Nodes)
}

func TestPlannerFallsBackOnChatError(t *testing.T) {
	planner := NewPlanner(&cannedClient{err: errors.New("provider down")})

	spec := planner.Plan(context.Background(), "anything", "", "", "topic")
	assert.Equal(t, KindDiagram, spec.Kind)
	assert.NotEmpty(t, spec.Nodes)
}

func TestExtractJSON(t *testing.T) {
	assert.Equal(t, `{"a":1}`, extractJSON("prefix {\"a\":1} suffix"))
	assert.Equal(t, "no braces", extractJSON("no braces"))
}
