// Package retrieval ranks candidate memories and packs them into
// context budgets.
//
// Invariants:
// - Ranking is a pure function: identical inputs yield identical order,
//   with ties broken by input order (stable sort).
// - Ranked output never contains a record excluded by a project or tag
//   filter.
// - Packed output never exceeds the configured character budget.
package retrieval
