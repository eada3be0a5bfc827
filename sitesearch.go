// Package sitesearch provides a small, CLI-based single-site search engine.
// It crawls one website breadth-first, builds an inverted index mapping
// words to the pages they occur on (with per-page occurrence counts),
// persists the index between sessions, and answers queries for pages that
// contain every word of a query.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., http/, goquery/, sqlite/).
package sitesearch
