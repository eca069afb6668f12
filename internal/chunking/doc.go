// Package chunking segments raw content into retrievable chunks.
//
// Four strategies cover the content shapes the memory engine ingests:
//
//   - event-based: splits on phase-transition markers, preserving
//     temporal order
//   - semantic-boundary: cuts where lexical similarity between adjacent
//     windows dips below a threshold
//   - preference-signal: extracts decision-point sentences with a small
//     surrounding window
//   - step-based: splits on ordinal/step markers, one chunk per step
//
// The Selector owns the strategy registry and maps content
// classifications to chunkers. The Enricher finalises chunker output:
// ids, prev/next links, content hashes, timestamps.
//
// Chunkers emit unfinalised chunks: no ids, indexes relative to the
// call. Tokenisation, boundary detection and similarity scoring are
// pure functions so every chunker stays independently testable.
package chunking
