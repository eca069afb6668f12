// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the engine to function:
//
//   - ChunkStore: Durable chunk persistence
//   - EmbeddingStore: Durable embedding persistence
//   - EmbeddingProvider: Generates vector embeddings (Ollama, OpenAI, ONNX)
//   - KeywordSearcher: Full-text search over chunks (Bleve). The lexical
//     half of hybrid search
//   - VectorIndex: Cosine similarity search over stored embeddings
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
//   - EmbeddingCache: Content-hash keyed vector cache. Without it every
//     embed call reaches the provider
//
// # Degradation
//
// Hybrid search tolerates one of KeywordSearcher or the semantic path
// (EmbeddingProvider + VectorIndex) failing per query, answering from the
// other signal with the response flagged degraded.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
