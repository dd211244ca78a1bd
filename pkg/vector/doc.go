// Package vector provides the vector index contract, two backing
// implementations (sqlite-vec and chromem), embedding providers, and a
// fallback wrapper that degrades gracefully when the index is down.
//
// Invariants:
// - Query similarity scores are in [0,1] (cosine distance transformed).
// - The fallback wrapper in optional mode turns store failures into
//   empty results so non-vector paths keep working.
package vector
