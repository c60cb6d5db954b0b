package llm

import "errors"

var (
	// ErrUnavailable indicates the backend cannot be reached or is not
	// configured with a usable credential.
	ErrUnavailable = errors.New("llm backend unavailable")

	// ErrQuotaExceeded indicates the backend rejected the call because a
	// usage or rate limit was hit.
	ErrQuotaExceeded = errors.New("llm quota exceeded")

	// ErrTimeout indicates the LLM request exceeded the configured timeout.
	ErrTimeout = errors.New("llm request timed out")

	// ErrEmptyResponse indicates the backend answered without any text.
	ErrEmptyResponse = errors.New("llm returned an empty response")

	// ErrInvalidOutput indicates the LLM response could not be parsed
	// into the expected structured format.
	ErrInvalidOutput = errors.New("invalid llm output format")
)
