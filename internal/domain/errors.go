package domain

import "errors"

// Error taxonomy for the classification pipeline. Errors are wrapped with
// fmt.Errorf("...: %w", ...) at the point of failure and tested with errors.Is.
var (
	// ErrInvalidArgument reports a violated precondition: an unknown tie-break
	// or compressor name, k outside [1, len(labels)], or mismatched lengths
	// between distances, labels and corpus.
	ErrInvalidArgument = errors.New("ncdc: invalid argument")

	// ErrComputation reports a failed compression call. The failure is fatal
	// for the whole batch; no partial results are returned.
	ErrComputation = errors.New("ncdc: computation failed")
)
