// Package fetch pages through the ERS nomenclature listing.
//
// The ERS exposes the same nomenclature through several pagination shapes, and
// which of them returns the full catalog depends on how the account is set up.
// A Fetcher tries each Strategy in order and keeps the output of the first one
// that returns at least MinItems products.
package fetch
