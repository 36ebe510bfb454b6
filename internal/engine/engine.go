// Package engine owns the process-wide retrieval singleton: a bootstrap
// that runs at most once per process, after which the immutable retrieval
// service lives until process exit with no explicit teardown.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/verdantscape/knowledge-engine/internal/embedding"
	"github.com/verdantscape/knowledge-engine/internal/indexer"
	"github.com/verdantscape/knowledge-engine/internal/markdown"
	"github.com/verdantscape/knowledge-engine/internal/retrieval"
	"github.com/verdantscape/knowledge-engine/internal/source"
)

// ErrNotInitialized distinguishes "system not ready" from "no results
// found". Queries issued before bootstrap completes fail fast with it
// rather than blocking on the build.
var ErrNotInitialized = errors.New("knowledge engine not initialized")

// Config holds the bootstrap dependencies.
type Config struct {
	Loader   source.Loader
	Provider embedding.Provider
	Strategy *markdown.ChunkingStrategy // nil uses the production default
	Logger   *slog.Logger
}

// Engine is the lock-protected handle around the one-time bootstrap and the
// retrieval service it produces.
type Engine struct {
	mu      sync.Mutex
	ready   chan struct{} // Nil until Init is first called, closed when it finishes
	svc     *retrieval.Service
	result  *indexer.BuildResult
	initErr error
}

// New creates an uninitialized engine.
func New() *Engine {
	return &Engine{}
}

// Init builds the corpus and vector store. The first caller performs the
// build; concurrent callers block on the same in-flight build and share its
// outcome, so the embedding pass over the corpus happens exactly once no
// matter how many goroutines race here. A failed init is terminal for the
// engine: every later call reports the same error.
func (e *Engine) Init(ctx context.Context, cfg Config) error {
	e.mu.Lock()
	if e.ready != nil {
		ready := e.ready
		e.mu.Unlock()
		select {
		case <-ready:
			return e.initErr
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	ready := make(chan struct{})
	e.ready = ready
	e.mu.Unlock()

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	pipeline := indexer.NewPipeline(cfg.Loader, markdown.NewChunker(cfg.Strategy), cfg.Provider, logger)
	vs, result, err := pipeline.Build(ctx)
	if err == nil {
		e.svc = retrieval.NewService(vs, logger)
		e.result = result
	}
	e.initErr = err
	close(ready)
	return err
}

// Service returns the retrieval service. It never blocks: before Init
// completes it fails fast with ErrNotInitialized, and after a failed Init
// it reports the init error.
func (e *Engine) Service() (*retrieval.Service, error) {
	e.mu.Lock()
	ready := e.ready
	e.mu.Unlock()

	if ready == nil {
		return nil, ErrNotInitialized
	}
	select {
	case <-ready:
		if e.initErr != nil {
			return nil, e.initErr
		}
		return e.svc, nil
	default:
		return nil, ErrNotInitialized
	}
}

// BuildResult returns the statistics of the completed build, or nil before
// init completes.
func (e *Engine) BuildResult() *indexer.BuildResult {
	e.mu.Lock()
	ready := e.ready
	e.mu.Unlock()
	if ready == nil {
		return nil
	}
	select {
	case <-ready:
		return e.result
	default:
		return nil
	}
}

// defaultEngine is the process-wide instance used by the package-level
// helpers. It lives from first Init until process exit.
var defaultEngine = New()

// Default returns the process-wide engine.
func Default() *Engine { return defaultEngine }

// Init initializes the process-wide engine.
func Init(ctx context.Context, cfg Config) error { return defaultEngine.Init(ctx, cfg) }

// Service returns the process-wide retrieval service.
func Service() (*retrieval.Service, error) { return defaultEngine.Service() }
