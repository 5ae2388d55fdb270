// Package settings persists the assistant's settings document.
//
// The document is a single JSON file shared with the assistant process. Every
// mutation loads the whole document, edits it, and replaces the file
// atomically while holding a cross-process lock, so the panel daemon and the
// CLI never interleave a read-modify-write cycle.
package settings
