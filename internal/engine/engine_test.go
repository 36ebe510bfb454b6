package engine

import (
	"context"
	"errors"
	"hash/fnv"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdantscape/knowledge-engine/internal/knowledge"
)

const testDoc = `# Sod Installation Pricing

Sod installation typically costs $1.50 to $2.00 per sq ft for most
residential lawns in the region. The final number depends on lot size,
slope, and access for delivery equipment. Soil preparation is included in
standard quotes. Expect the average project to land near the middle of that
range once grading and cleanup are figured in.
`

type fakeLoader struct{}

func (fakeLoader) Load(ctx context.Context) ([]knowledge.Document, error) {
	return []knowledge.Document{{Name: "guide", Content: testDoc}}, nil
}

type failingLoader struct{}

func (failingLoader) Load(ctx context.Context) ([]knowledge.Document, error) {
	return nil, errors.New("source unavailable")
}

// countingProvider counts corpus embedding passes and can hold builds open
// until released, so tests can observe the engine mid-bootstrap.
type countingProvider struct {
	calls   atomic.Int64
	release chan struct{} // Nil means no blocking
}

func (p *countingProvider) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	p.calls.Add(1)
	if p.release != nil {
		select {
		case <-p.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vec := make([]float32, 64)
		for _, token := range strings.Fields(strings.ToLower(text)) {
			h := fnv.New32a()
			h.Write([]byte(token))
			vec[h.Sum32()%64]++
		}
		vectors[i] = vec
	}
	return vectors, nil
}

func testConfig(provider *countingProvider) Config {
	return Config{
		Loader:   fakeLoader{},
		Provider: provider,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestInitOnce(t *testing.T) {
	eng := New()
	provider := &countingProvider{}

	require.NoError(t, eng.Init(context.Background(), testConfig(provider)))

	svc, err := eng.Service()
	require.NoError(t, err)
	require.NotNil(t, svc)
	assert.Equal(t, 1, svc.Store().Size())

	result := eng.BuildResult()
	require.NotNil(t, result)
	assert.Equal(t, 1, result.TotalDocs)
	assert.Equal(t, 1, result.TotalChunks)
	assert.Equal(t, 1, result.Categories[knowledge.CategoryPricing])

	assert.Equal(t, int64(1), provider.calls.Load())
}

func TestInitConcurrentSingleEmbeddingPass(t *testing.T) {
	eng := New()
	provider := &countingProvider{}
	cfg := testConfig(provider)

	var wg sync.WaitGroup
	errs := make([]error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = eng.Init(context.Background(), cfg)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		assert.NoError(t, err, "goroutine %d", i)
	}
	assert.Equal(t, int64(1), provider.calls.Load(),
		"concurrent Init calls must share one embedding pass")

	svc, err := eng.Service()
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestServiceBeforeInit(t *testing.T) {
	eng := New()
	_, err := eng.Service()
	assert.ErrorIs(t, err, ErrNotInitialized)
	assert.Nil(t, eng.BuildResult())
}

func TestServiceDuringInit(t *testing.T) {
	eng := New()
	provider := &countingProvider{release: make(chan struct{})}

	initDone := make(chan error, 1)
	go func() {
		initDone <- eng.Init(context.Background(), testConfig(provider))
	}()

	// The build is held open on the provider; Service must fail fast rather
	// than block.
	_, err := eng.Service()
	assert.ErrorIs(t, err, ErrNotInitialized)

	close(provider.release)
	require.NoError(t, <-initDone)

	svc, err := eng.Service()
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestInitFailureIsShared(t *testing.T) {
	eng := New()
	cfg := Config{
		Loader:   failingLoader{},
		Provider: &countingProvider{},
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	err := eng.Init(context.Background(), cfg)
	require.Error(t, err)

	// A failed init is terminal: later Init calls and Service report it.
	again := eng.Init(context.Background(), cfg)
	assert.Equal(t, err, again)

	_, svcErr := eng.Service()
	require.Error(t, svcErr)
	assert.NotErrorIs(t, svcErr, ErrNotInitialized)
}

func TestInitContextCanceledWhileWaiting(t *testing.T) {
	eng := New()
	provider := &countingProvider{release: make(chan struct{})}

	initDone := make(chan error, 1)
	go func() {
		initDone <- eng.Init(context.Background(), testConfig(provider))
	}()

	// Wait until the first Init is actually in flight before racing it.
	for provider.calls.Load() == 0 {
		time.Sleep(time.Millisecond)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := eng.Init(ctx, testConfig(provider))
	assert.ErrorIs(t, err, context.Canceled)

	close(provider.release)
	require.NoError(t, <-initDone)
}
