package common

import "errors"

var (
	// ErrDuplicateDocument marks a candidate whose title or url is
	// already present in the corpus. Duplicates are filtered and
	// counted, never surfaced as batch failures.
	ErrDuplicateDocument = errors.New("duplicate document")

	// ErrMalformedDocument marks a candidate missing required fields.
	// The document is skipped and the batch continues.
	ErrMalformedDocument = errors.New("malformed document")

	// ErrDimensionMismatch marks an embedding whose dimension does not
	// match the configured vector size. The document stays in the
	// corpus but is excluded from retrieval.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrNotFound marks a lookup miss, e.g. a graph query for an
	// entity that was never extracted.
	ErrNotFound = errors.New("not found")
)

// TransientError wraps a store, network or embedding-service failure
// that is worth retrying with backoff.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return e.Err.Error()
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// Transient marks err as retryable. Returns nil for a nil err.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Err: err}
}

// IsTransient reports whether any error in err's chain is transient.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
