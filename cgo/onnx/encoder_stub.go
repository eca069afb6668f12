//go:build !onnx

package onnx

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/weave-nn/weave/internal/core/domain"
	"github.com/weave-nn/weave/internal/core/ports/driven"
)

// Ensure Encoder implements the interface.
var _ driven.EmbeddingProvider = (*Encoder)(nil)

// DefaultDimensions matches all-MiniLM-L6-v2.
const DefaultDimensions = 384

// Config holds configuration for the ONNX encoder.
type Config struct {
	// ModelPath is the path to the ONNX model file.
	ModelPath string

	// TokenizerPath is the path to the tokenizer.json vocabulary.
	TokenizerPath string

	// LibraryPath overrides the ONNX Runtime shared library location.
	LibraryPath string

	// Dimensions is the embedding vector size (default 384).
	Dimensions int
}

// Encoder generates embeddings with a local ONNX model.
// This is a stub for builds without the onnx tag.
type Encoder struct {
	modelPath  string
	dimensions int
}

// New creates an ONNX encoder.
// This is a stub for builds without the onnx tag.
func New(cfg Config) (*Encoder, error) {
	if cfg.Dimensions == 0 {
		cfg.Dimensions = DefaultDimensions
	}
	return &Encoder{
		modelPath:  cfg.ModelPath,
		dimensions: cfg.Dimensions,
	}, nil
}

// Embed generates a vector embedding for the given text.
func (e *Encoder) Embed(_ context.Context, _ string) ([]float32, error) {
	return nil, domain.ErrNotImplemented
}

// EmbedBatch generates embeddings for multiple texts.
func (e *Encoder) EmbedBatch(_ context.Context, _ []string) ([][]float32, error) {
	return nil, domain.ErrNotImplemented
}

// Dimensions returns the embedding vector size.
func (e *Encoder) Dimensions() int {
	return e.dimensions
}

// ModelVersion identifies the model and its dimension.
func (e *Encoder) ModelVersion() string {
	return fmt.Sprintf("onnx:%s@%d", filepath.Base(e.modelPath), e.dimensions)
}

// Ping reports that the runtime is unavailable, which makes warmup
// fail instead of deferring the error to the first embed call.
func (e *Encoder) Ping(_ context.Context) error {
	return fmt.Errorf("onnx runtime not compiled in: %w", domain.ErrNotImplemented)
}

// Close releases resources.
func (e *Encoder) Close() error {
	return nil
}
