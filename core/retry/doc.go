// Package retry runs an operation again after failures, waiting with exponential backoff.
//
// The fetch strategies wrap every ERS page request in Do. Errors that cannot succeed
// on a second try (bad configuration, malformed requests) are wrapped with Permanent
// and end the loop at once.
//
// # Usage
//
//	p := retry.Default() // 3 retries: 1s, 2s, 4s
//	page, err := retry.DoValue(ctx, p, func(ctx context.Context) (Page, error) {
//	    return client.Page(ctx, cursor)
//	})
package retry
