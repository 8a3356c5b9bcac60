package ers

import "errors"

var (
	// ErrConfiguration means required settings or credentials are missing or rejected.
	ErrConfiguration = errors.New("ers: configuration error")
	// ErrTransient is a network failure, 5xx or 429 that may pass on retry.
	ErrTransient = errors.New("ers: temporarily unavailable")
	// ErrNotFound means the requested price list, company, warehouse or item does not exist.
	ErrNotFound = errors.New("ers: not found")
	// ErrInvalidResponse means the payload could not be decoded.
	ErrInvalidResponse = errors.New("ers: invalid response")
	// ErrRejected means the ERS refused the request as malformed.
	ErrRejected = errors.New("ers: request rejected")
)

// Retryable reports whether a failed call may succeed when repeated.
func Retryable(err error) bool {
	return errors.Is(err, ErrTransient) || errors.Is(err, ErrInvalidResponse)
}
