// Package reconcile merges ERS nomenclature, prices and stock into the local catalog.
//
// A run moves through fixed stages (fetching, deduplicating, resolving, matching,
// persisting) and records each transition in its Report. The catalog is written
// once, after every entry was merged, so a failed run leaves it untouched.
//
// Matching is driven by DefaultRules, an ordered list of identity rules: stored
// codes first, then articles, external ids and finally fuzzy names.
package reconcile
