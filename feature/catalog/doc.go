// Package catalog serves the local product catalog.
//
// It exposes read-only HTTP endpoints over the configured catalog store
// (listing with filters, single item lookup, xlsx export) and holds the keyword
// Categorizer used when a sync run creates new items.
//
// # Endpoints
//
//   - GET /catalog?category=&inStock=&q=
//   - GET /catalog/:id
//   - GET /catalog/export
//
// Persistence lives in the store subpackage and the item document in models.
package catalog
