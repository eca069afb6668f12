// Package onnx provides a local embedding provider backed by ONNX
// Runtime, for MiniLM-class sentence encoders. The real implementation
// is built with the "onnx" tag; the default build ships a stub whose
// operations return domain.ErrNotImplemented, so selecting the onnx
// provider without the runtime fails loudly at warmup.
package onnx
