// Package indexer orchestrates the corpus build: load documents, chunk and
// classify them, then build the vector store with embeddings. It runs
// exactly once per process, during bootstrap.
package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/verdantscape/knowledge-engine/internal/embedding"
	"github.com/verdantscape/knowledge-engine/internal/knowledge"
	"github.com/verdantscape/knowledge-engine/internal/markdown"
	"github.com/verdantscape/knowledge-engine/internal/source"
	"github.com/verdantscape/knowledge-engine/internal/store"
)

// BuildResult contains statistics about a corpus build.
type BuildResult struct {
	TotalDocs   int
	TotalChunks int
	Categories  map[knowledge.Category]int
	Duration    time.Duration
}

// Pipeline wires the loader, chunker, and embedding provider together.
type Pipeline struct {
	loader   source.Loader
	chunker  *markdown.Chunker
	provider embedding.Provider
	logger   *slog.Logger
}

// NewPipeline creates a build pipeline with the given components.
func NewPipeline(loader source.Loader, chunker *markdown.Chunker, provider embedding.Provider, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		loader:   loader,
		chunker:  chunker,
		provider: provider,
		logger:   logger,
	}
}

// Build loads all documents, chunks them into a classified corpus, and
// builds the vector store. Any load, chunk, or embedding failure is fatal:
// the engine never serves a partially built corpus.
func (p *Pipeline) Build(ctx context.Context) (*store.Store, *BuildResult, error) {
	start := time.Now()

	docs, err := p.loader.Load(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load documents: %w", err)
	}
	p.logger.Info("loaded documents", "count", len(docs))

	chunks, err := p.chunker.ChunkCorpus(docs)
	if err != nil {
		return nil, nil, fmt.Errorf("chunk corpus: %w", err)
	}

	result := &BuildResult{
		TotalDocs:   len(docs),
		TotalChunks: len(chunks),
		Categories:  make(map[knowledge.Category]int),
	}
	for _, chunk := range chunks {
		result.Categories[chunk.Metadata.Category]++
	}
	p.logger.Info("chunked corpus", "chunks", len(chunks), "categories", len(result.Categories))

	vs, err := store.Build(ctx, p.provider, chunks, p.logger)
	if err != nil {
		return nil, nil, fmt.Errorf("build vector store: %w", err)
	}

	result.Duration = time.Since(start)
	p.logger.Info("corpus build complete",
		"docs", result.TotalDocs,
		"chunks", result.TotalChunks,
		"duration", result.Duration,
	)
	return vs, result, nil
}
