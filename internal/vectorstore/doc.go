// Package vectorstore provides the in-memory cosine similarity index
// over durably stored embeddings.
//
// The store owns both layers: Store and Delete write through to the
// durable embedding rows and mirror the change in memory inside one
// logical operation, so a search never observes one layer without the
// other. Search is an exact linear scan; at the few thousand entries a
// personal memory store holds, a scan beats approximate-index
// maintenance cost. LoadIndex is the only rebuild path: it reloads the
// full index from storage under the write lock, repairing and logging
// any rows that no longer fit the running model.
package vectorstore
