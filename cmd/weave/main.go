// Command weave is the semantic memory engine CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/weave-nn/weave/cgo/onnx"
	memcache "github.com/weave-nn/weave/internal/adapters/driven/cache/memory"
	"github.com/weave-nn/weave/internal/adapters/driven/cache/ristretto"
	fileconfig "github.com/weave-nn/weave/internal/adapters/driven/config/file"
	"github.com/weave-nn/weave/internal/adapters/driven/embedding/ollama"
	"github.com/weave-nn/weave/internal/adapters/driven/embedding/openai"
	"github.com/weave-nn/weave/internal/adapters/driven/keyword/bleve"
	memstorage "github.com/weave-nn/weave/internal/adapters/driven/storage/memory"
	"github.com/weave-nn/weave/internal/adapters/driven/storage/sqlite"
	"github.com/weave-nn/weave/internal/adapters/driving/cli"
	"github.com/weave-nn/weave/internal/chunking"
	"github.com/weave-nn/weave/internal/config"
	"github.com/weave-nn/weave/internal/core/ports/driven"
	"github.com/weave-nn/weave/internal/core/services"
	"github.com/weave-nn/weave/internal/embedding"
	"github.com/weave-nn/weave/internal/logger"
	"github.com/weave-nn/weave/internal/vectorstore"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	defer logger.Sync()

	configStore, err := fileconfig.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}

	settingsService := services.NewSettingsService(configStore)
	cfg, err := settingsService.Engine()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Storage: durable when a data dir is configured, in-memory otherwise.
	var (
		chunkStore     driven.ChunkStore
		embeddingStore driven.EmbeddingStore
		keyword        driven.KeywordSearcher
		sqlStore       *sqlite.Store
	)
	if cfg.DataDir != "" {
		sqlStore, err = sqlite.NewStore(cfg.DataDir)
		if err != nil {
			return fmt.Errorf("opening storage: %w", err)
		}
		defer sqlStore.Close()
		chunkStore = sqlStore.ChunkStore()
		embeddingStore = sqlStore.EmbeddingStore()

		keyword, err = bleve.New(filepath.Join(cfg.DataDir, "keyword.bleve"))
		if err != nil {
			return fmt.Errorf("opening keyword index: %w", err)
		}
	} else {
		memChunks := memstorage.NewChunkStore()
		chunkStore = memChunks
		embeddingStore = memstorage.NewEmbeddingStore(memChunks)

		keyword, err = bleve.NewMemOnly()
		if err != nil {
			return fmt.Errorf("opening keyword index: %w", err)
		}
	}
	defer keyword.Close()

	provider, err := newProvider(cfg)
	if err != nil {
		return fmt.Errorf("creating embedding provider: %w", err)
	}

	var cache driven.EmbeddingCache
	if cfg.CacheEntries > 0 {
		cache, err = ristretto.New(cfg.CacheEntries)
		if err != nil {
			return fmt.Errorf("creating embedding cache: %w", err)
		}
	} else {
		cache = memcache.New()
	}

	engine := embedding.NewEngine(provider, cache,
		embedding.WithRateLimit(cfg.RateLimit, rateBurst(cfg.RateLimit)))
	defer engine.Close()

	// Warm up in the background so fast commands (version, settings)
	// never wait on the model; embed calls block until it finishes.
	go engine.Warmup(ctx) //nolint:errcheck

	vectors := vectorstore.New(embeddingStore, engine.ModelVersion(), cfg.Dimensions)
	defer vectors.Close()
	if err := vectors.LoadIndex(ctx); err != nil {
		return fmt.Errorf("rebuilding vector index: %w", err)
	}

	selector := chunking.NewSelector()
	enricher := chunking.NewEnricher()

	memoryService, err := services.NewMemoryService(
		selector, enricher, chunkStore, embeddingStore, keyword, vectors, engine)
	if err != nil {
		return fmt.Errorf("creating memory service: %w", err)
	}

	searchService, err := services.NewSearchService(chunkStore, keyword, vectors, engine, cfg)
	if err != nil {
		return fmt.Errorf("creating search service: %w", err)
	}

	cli.Inject(memoryService, searchService, settingsService)
	return cli.ExecuteContext(ctx)
}

// newProvider selects the embedding backend from the config.
func newProvider(cfg config.Config) (driven.EmbeddingProvider, error) {
	switch cfg.Provider {
	case "ollama":
		return ollama.NewProvider(ollama.Config{
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
		}), nil
	case "openai":
		return openai.NewProvider(openai.Config{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
		})
	case "onnx":
		return onnx.New(onnx.Config{
			ModelPath:  cfg.Model,
			Dimensions: cfg.Dimensions,
		})
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
}

// rateBurst sizes the limiter burst to roughly one second of calls.
func rateBurst(limit float64) int {
	if limit < 1 {
		return 1
	}
	return int(limit)
}
