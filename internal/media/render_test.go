package media

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodePNG(t *testing.T, path string) {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	_, err = png.Decode(f)
	require.NoError(t, err, "output must be a valid PNG")
}

func TestGenerateDiagram(t *testing.T) {
	root := t.TempDir()
	renderer := NewRenderer(root)

	spec := FallbackSpec("pipeline overview", "my_topic")
	path, err := renderer.Generate(spec, "my_topic")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "my_topic", "media", spec.Filename), path)
	decodePNG(t, path)
}

func TestGenerateChart(t *testing.T) {
	renderer := NewRenderer(t.TempDir())

	spec := Spec{
		Kind:      KindChart,
		Title:     "Throughput",
		Series:    []Series{{Label: "reqs", Values: []float64{1, 4, 2, 8}}},
		XLabels:   []string{"q1", "q2", "q3", "q4"},
		ChartKind: "bar",
	}
	spec.applyDefaults("topic")

	path, err := renderer.Generate(spec, "topic")
	require.NoError(t, err)
	decodePNG(t, path)
}

func TestGenerateImageCard(t *testing.T) {
	renderer := NewRenderer(t.TempDir())

	spec := Spec{Kind: KindImage, Text: "A caption card"}
	spec.applyDefaults("topic")

	path, err := renderer.Generate(spec, "topic")
	require.NoError(t, err)
	decodePNG(t, path)
}

func TestGenerateDiagramRequiresNodes(t *testing.T) {
	renderer := NewRenderer(t.TempDir())

	spec := Spec{Kind: KindDiagram, Width: 100, Height: 100, Palette: defaultPalette,
		Filename: "x.png"}
	_, err := renderer.Generate(spec, "topic")
	assert.Error(t, err)
}
