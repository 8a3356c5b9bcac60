// Package ers is the client for the External Retail System (ERS), the remote
// source of truth for prices, stock, companies and warehouses.
//
// The ERS is inconsistent about payload shapes: lists come bare or wrapped in
// items/rows/data/result, ids and prices come as numbers or strings, and the next
// cursor is called nextCursor, cursor or next depending on the endpoint. The client
// absorbs all of that and returns typed values.
//
// # Errors
//
// Failures are classified with sentinel errors so callers can decide what to do:
//   - ErrConfiguration: missing settings or a rejected token; never retried.
//   - ErrTransient / ErrInvalidResponse: worth retrying (see Retryable).
//   - ErrNotFound: drives fallbacks (next warehouse rule, lookup miss).
//   - ErrRejected: a malformed request.
package ers
