package simulation

import "fmt"

// ValidationError reports malformed or out-of-range simulation input.
// Validation failures are deterministic; retrying the same request will fail
// the same way, so callers should surface the message and stop.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func validationErrorf(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// InvalidCorrelationError reports a correlation matrix that could not be
// repaired to positive semi-definite within the bounded jitter budget, or
// one whose shape does not match the asset count.
type InvalidCorrelationError struct {
	Msg string
}

func (e *InvalidCorrelationError) Error() string {
	return e.Msg
}

func correlationErrorf(format string, args ...interface{}) error {
	return &InvalidCorrelationError{Msg: fmt.Sprintf(format, args...)}
}

// DataUnavailableError reports a failed spot-price resolution for a ticker.
// It is raised before any simulation work begins; the engine never starts
// path generation with a missing or garbage spot price.
type DataUnavailableError struct {
	Ticker string
	Err    error
}

func (e *DataUnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("market data unavailable for %q: %v", e.Ticker, e.Err)
	}
	return fmt.Sprintf("market data unavailable for %q", e.Ticker)
}

func (e *DataUnavailableError) Unwrap() error {
	return e.Err
}
