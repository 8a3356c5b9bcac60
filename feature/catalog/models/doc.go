// Package models defines the catalog item document shared by the catalog stores,
// the HTTP API and the reconciliation engine.
package models
