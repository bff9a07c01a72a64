// Package postprocessors turns documents into chunks through an ordered
// chain of processors.
package postprocessors

import (
	"context"
	"fmt"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.PostProcessorPipeline = (*Pipeline)(nil)

// Pipeline chains multiple PostProcessors and runs them in order.
type Pipeline struct {
	processors []driven.PostProcessor
}

// NewPipeline creates a new processing pipeline with the given processors.
// Processors are executed in the order provided.
func NewPipeline(processors ...driven.PostProcessor) *Pipeline {
	return &Pipeline{
		processors: processors,
	}
}

// Stage names a processor and the config it is built with.
type Stage struct {
	Name   string
	Config map[string]any
}

// BuildPipeline builds each stage from the registry, preserving order.
func BuildPipeline(r *Registry, stages ...Stage) (*Pipeline, error) {
	p := NewPipeline()
	for _, st := range stages {
		proc, err := r.Build(st.Name, st.Config)
		if err != nil {
			return nil, fmt.Errorf("build stage %s: %w", st.Name, err)
		}
		p.Add(proc)
	}
	return p, nil
}

// Process runs the document through all processors in order.
// The first processor receives nil chunks and should create them.
// Subsequent processors receive and may modify the chunks.
func (p *Pipeline) Process(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error) {
	if doc == nil {
		return nil, fmt.Errorf("document is nil")
	}

	var chunks []domain.Chunk

	for _, processor := range p.processors {
		var err error
		chunks, err = processor.Process(ctx, doc, chunks)
		if err != nil {
			return nil, fmt.Errorf("processor %s: %w", processor.Name(), err)
		}
	}

	return chunks, nil
}

// Add appends a processor to the pipeline.
func (p *Pipeline) Add(processor driven.PostProcessor) {
	p.processors = append(p.processors, processor)
}

// Len returns the number of processors in the pipeline.
func (p *Pipeline) Len() int {
	return len(p.processors)
}

// Names returns the processor names in execution order.
func (p *Pipeline) Names() []string {
	names := make([]string, len(p.processors))
	for i, proc := range p.processors {
		names[i] = proc.Name()
	}
	return names
}
