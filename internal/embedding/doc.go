// Package embedding provides the embedding engine: the caching,
// rate-limited front door to an embedding provider.
//
// The engine wraps a raw driven.EmbeddingProvider with the behaviour
// providers themselves do not carry: a warmup gate (embed calls made
// before the model is loaded block until warmup finishes), a
// contentHash → vector cache so unchanged content never reaches the
// provider twice, proactive rate limiting, and typed error wrapping.
// A provider failure during steady state returns an error for that
// call only; the engine keeps serving.
package embedding
