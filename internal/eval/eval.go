// Package eval runs one topic through the pipeline across several models so
// their outputs can be compared side by side.
package eval

import (
	"context"
	"path/filepath"
	"time"

	"scriptor/internal/llm"
	"scriptor/internal/pipeline"
)

// Outcome records one model's run. Err is set when the run failed; the
// remaining fields describe the produced document otherwise.
type Outcome struct {
	Model     string        `json:"model"`
	TexPath   string        `json:"tex_path,omitempty"`
	PDFPath   string        `json:"pdf_path,omitempty"`
	BodyBytes int           `json:"body_bytes"`
	Elapsed   time.Duration `json:"elapsed_ns"`
	Err       string        `json:"error,omitempty"`
}

// Evaluator runs the comparison. Models are tried sequentially; one model's
// failure never stops the rest.
type Evaluator struct {
	pipeline *pipeline.Pipeline
	catalog  *llm.Catalog
}

func New(pipe *pipeline.Pipeline, catalog *llm.Catalog) *Evaluator {
	return &Evaluator{pipeline: pipe, catalog: catalog}
}

// Run generates the topic once per model. An empty model list means every
// registered provider. Each model writes under its own workdir subdirectory
// so runs do not overwrite each other.
func (e *Evaluator) Run(ctx context.Context, topic, workdir string, models []string) []Outcome {
	if len(models) == 0 {
		models = e.catalog.Names()
	}

	outcomes := make([]Outcome, 0, len(models))
	for _, model := range models {
		start := time.Now()
		result, err := e.pipeline.Run(ctx, pipeline.Options{
			Topic:   topic,
			Model:   model,
			Workdir: filepath.Join(workdir, pipeline.Slugify(model)),
		})
		outcome := Outcome{Model: model, Elapsed: time.Since(start)}
		if err != nil {
			outcome.Err = err.Error()
		} else {
			outcome.TexPath = result.TexPath
			outcome.PDFPath = result.PDFPath
			outcome.BodyBytes = len(result.Body)
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}
