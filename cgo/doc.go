// Package cgo isolates native-runtime bindings from the pure Go core.
//
// Sub-packages:
//   - onnx: ONNX Runtime bindings for local embedding inference
package cgo
