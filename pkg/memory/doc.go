// Package memory defines the memory record model shared by the store,
// vector index, and retrieval engine.
//
// Invariants:
// - Tags are stored as a JSON-encoded list of lowercase strings.
// - A malformed tag encoding decodes to no tags rather than an error.
// - CreatedAt drives recency decay during ranking.
package memory
