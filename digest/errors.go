package digest

import "fmt"

// UnsupportedAlgorithmError is returned when a selector
// does not name a supported algorithm. No hashing is done
// in that case.
type UnsupportedAlgorithmError struct {
	Selector string
}

func (e *UnsupportedAlgorithmError) Error() string {
	return fmt.Sprintf("unsupported algorithm: %q", e.Selector)
}

// DigestError wraps a failure reported by the hashing
// engine.
type DigestError struct {
	Algorithm Algorithm
	Err       error
}

func (e *DigestError) Error() string {
	return fmt.Sprintf(
		"failed to calculate %s hash: %v",
		e.Algorithm, e.Err,
	)
}

func (e *DigestError) Unwrap() error {
	return e.Err
}
