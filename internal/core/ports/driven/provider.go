package driven

import "context"

// EmbeddingProvider generates vector embeddings from text. It is the
// raw encoder behind the embedding engine: no caching, no warmup gate,
// no rate limiting. Those live in the engine that wraps it.
//
// Implementations include:
//   - Ollama (nomic-embed-text, all-minilm)
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
//   - Local ONNX runtime models (build-tagged)
type EmbeddingProvider interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts, preserving
	// input order with 1:1 correspondence. A failing item fails the
	// whole batch; partial results are never returned.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g., 384, 1536).
	// Fixed per model and identical for every vector produced.
	Dimensions() int

	// ModelVersion identifies the model, recorded on every stored
	// embedding so re-embedding under a new model is distinguishable.
	ModelVersion() string

	// Ping validates the provider is reachable with a lightweight
	// request. Called during warmup; failure there is fatal.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
