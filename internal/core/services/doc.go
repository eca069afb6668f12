// Package services implements the driving port interfaces.
//
// MemoryService runs the indexing pipeline (select strategy, chunk,
// enrich, embed, store in every layer), SearchService fuses the
// keyword and semantic ranking signals, and SettingsService manages
// the validated engine configuration. Services orchestrate calls to
// driven ports and the core chunking package; they hold no storage of
// their own.
package services
