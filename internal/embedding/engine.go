package embedding

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/time/rate"

	"github.com/weave-nn/weave/internal/chunking"
	"github.com/weave-nn/weave/internal/core/domain"
	"github.com/weave-nn/weave/internal/core/ports/driven"
	"github.com/weave-nn/weave/internal/logger"
)

// Engine fronts an embedding provider with caching, rate limiting and
// a warmup gate. It satisfies driven.EmbeddingProvider itself, so
// services stay unaware of which layer they talk to.
//
// Warmup must complete before embeddings are served: Embed and
// EmbedBatch calls issued earlier suspend until warmup finishes. A
// failed warmup is fatal; every later call returns the load error.
type Engine struct {
	provider driven.EmbeddingProvider
	cache    driven.EmbeddingCache
	bucket   *rate.Limiter

	warmupOnce sync.Once
	ready      chan struct{} // closed once warmup has run
	warmupErr  error         // written before ready closes

	mu     sync.Mutex
	closed bool
}

var _ driven.EmbeddingProvider = (*Engine)(nil)

// Option configures an Engine.
type Option func(*Engine)

// WithRateLimit throttles provider calls to n per second with the
// given burst. Cache hits are never throttled. Non-positive values
// disable throttling.
func WithRateLimit(n float64, burst int) Option {
	return func(e *Engine) {
		if n <= 0 || burst <= 0 {
			e.bucket = rate.NewLimiter(rate.Inf, 0)
			return
		}
		e.bucket = rate.NewLimiter(rate.Limit(n), burst)
	}
}

// NewEngine creates an engine over the provider. A nil cache disables
// caching. The engine is not ready until Warmup has run.
func NewEngine(provider driven.EmbeddingProvider, cache driven.EmbeddingCache, opts ...Option) *Engine {
	e := &Engine{
		provider: provider,
		cache:    cache,
		bucket:   rate.NewLimiter(rate.Inf, 0),
		ready:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Warmup pre-loads the model by pinging the provider. It runs at most
// once; concurrent and repeated calls share the first outcome. Embed
// calls issued before Warmup completes block until it finishes.
func (e *Engine) Warmup(ctx context.Context) error {
	if e.isClosed() {
		return domain.ErrEngineClosed
	}

	e.warmupOnce.Do(func() {
		defer close(e.ready)
		if err := e.provider.Ping(ctx); err != nil {
			e.warmupErr = fmt.Errorf("%w: %v", domain.ErrModelLoad, err)
			logger.Error("embedding warmup failed: %v", err)
			return
		}
		logger.Debug("embedding model ready: %s (%d dimensions)", e.provider.ModelVersion(), e.provider.Dimensions())
	})

	select {
	case <-e.ready:
		return e.warmupErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

// awaitReady suspends until warmup has finished, then reports its
// outcome. Cancelling ctx releases the caller without failing warmup.
func (e *Engine) awaitReady(ctx context.Context) error {
	select {
	case <-e.ready:
		return e.warmupErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Embed returns the vector for text, serving from the cache when the
// content hash is known. A provider failure is returned as a
// *domain.EmbeddingError and leaves the engine serviceable.
func (e *Engine) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := e.guard(ctx); err != nil {
		return nil, err
	}

	hash := chunking.HashContent(text)
	if e.cache != nil {
		if vec, ok := e.cache.Get(hash); ok {
			return vec, nil
		}
	}

	if err := e.bucket.Wait(ctx); err != nil {
		return nil, err
	}
	vec, err := e.provider.Embed(ctx, text)
	if err != nil {
		return nil, &domain.EmbeddingError{Op: "embed", Cause: err}
	}
	if err := e.checkDimensions(vec); err != nil {
		return nil, &domain.EmbeddingError{Op: "embed", Cause: err}
	}

	if e.cache != nil {
		e.cache.Set(hash, vec)
	}
	return vec, nil
}

// EmbedBatch returns one vector per text in input order. Cached texts
// are served locally; the rest go to the provider in a single batch.
// Any failure fails the whole batch, with no partial results.
func (e *Engine) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := e.guard(ctx); err != nil {
		return nil, err
	}
	if len(texts) == 0 {
		return nil, nil
	}

	out := make([][]float32, len(texts))
	var missing []int
	for i, text := range texts {
		if e.cache != nil {
			if vec, ok := e.cache.Get(chunking.HashContent(text)); ok {
				out[i] = vec
				continue
			}
		}
		missing = append(missing, i)
	}
	if len(missing) == 0 {
		return out, nil
	}

	// One provider request regardless of batch size.
	if err := e.bucket.Wait(ctx); err != nil {
		return nil, err
	}
	batch := make([]string, len(missing))
	for j, i := range missing {
		batch[j] = texts[i]
	}
	vecs, err := e.provider.EmbedBatch(ctx, batch)
	if err != nil {
		return nil, &domain.EmbeddingError{Op: "embedBatch", Cause: err}
	}
	if len(vecs) != len(batch) {
		return nil, &domain.EmbeddingError{
			Op:    "embedBatch",
			Cause: fmt.Errorf("%w: provider returned %d vectors for %d texts", domain.ErrInvalidInput, len(vecs), len(batch)),
		}
	}

	for j, i := range missing {
		if err := e.checkDimensions(vecs[j]); err != nil {
			return nil, &domain.EmbeddingError{Op: "embedBatch", Cause: err}
		}
		out[i] = vecs[j]
		if e.cache != nil {
			e.cache.Set(chunking.HashContent(texts[i]), vecs[j])
		}
	}
	return out, nil
}

// guard rejects calls on a closed engine and suspends until warmup has
// completed. The closed state is re-checked after waking: callers that
// were parked on the warmup gate when Close ran must not reach the
// provider.
func (e *Engine) guard(ctx context.Context) error {
	if e.isClosed() {
		return domain.ErrEngineClosed
	}
	if err := e.awaitReady(ctx); err != nil {
		return err
	}
	if e.isClosed() {
		return domain.ErrEngineClosed
	}
	return nil
}

func (e *Engine) isClosed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

// checkDimensions rejects provider output that does not match the
// model's declared vector size.
func (e *Engine) checkDimensions(vec []float32) error {
	if want := e.provider.Dimensions(); len(vec) != want {
		return fmt.Errorf("%w: got %d, want %d", domain.ErrDimensionMismatch, len(vec), want)
	}
	return nil
}

// Dimensions returns the provider's embedding vector size.
func (e *Engine) Dimensions() int {
	return e.provider.Dimensions()
}

// ModelVersion returns the provider's model identifier.
func (e *Engine) ModelVersion() string {
	return e.provider.ModelVersion()
}

// Ping forwards a health check to the provider once warmup has
// completed.
func (e *Engine) Ping(ctx context.Context) error {
	if err := e.guard(ctx); err != nil {
		return err
	}
	return e.provider.Ping(ctx)
}

// CacheLen returns the number of cached vectors, 0 without a cache.
func (e *Engine) CacheLen() int {
	if e.cache == nil {
		return 0
	}
	return e.cache.Len()
}

// Close releases the provider and cache. Calls after Close return
// domain.ErrEngineClosed. Close is idempotent.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.mu.Unlock()

	// Unblock embed calls still waiting on warmup.
	e.warmupOnce.Do(func() {
		e.warmupErr = domain.ErrEngineClosed
		close(e.ready)
	})

	if e.cache != nil {
		e.cache.Close()
	}
	return e.provider.Close()
}
