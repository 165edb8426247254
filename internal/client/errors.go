package client

import "errors"

// Provider failures are classified so the orchestration layer can decide
// whether a retry is worthwhile.
var (
	// ErrTransient marks failures that may succeed on retry: network errors,
	// timeouts, rate-limit rejections and upstream 5xx responses.
	ErrTransient = errors.New("transient provider error")

	// ErrPermanent marks failures that will not succeed on retry: malformed
	// payloads, unknown competitions, auth failures.
	ErrPermanent = errors.New("permanent provider error")
)

// IsTransient reports whether err is retryable.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}

// IsPermanent reports whether err is known not to be retryable.
func IsPermanent(err error) bool {
	return errors.Is(err, ErrPermanent)
}
