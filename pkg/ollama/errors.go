package ollama

import "errors"

var (
	// ErrUnavailable marks transient failures: the Ollama server is not
	// reachable or answered with a server-side error. Callers may retry.
	ErrUnavailable = errors.New("ollama unavailable")

	// ErrInvalidModel marks a generation request against a model the
	// server does not serve. Retrying cannot succeed.
	ErrInvalidModel = errors.New("model not available")
)

// IsRetryable reports whether the error is worth retrying.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
