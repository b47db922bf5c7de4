package fetcher

import (
	"errors"
	"fmt"
)

// ErrUnsupportedScheme is wrapped by FetchError when the URL
// scheme has no source.
var ErrUnsupportedScheme = errors.New("unsupported url scheme")

// FetchError reports a failed fetch. StatusCode and Reason
// are set when the server answered with a non-success
// status; Err holds the transport or decoding failure
// otherwise.
type FetchError struct {
	URL        string
	StatusCode int
	Reason     string
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf(
			"failed to fetch resource %s: HTTP %d: %s",
			e.URL, e.StatusCode, e.Reason,
		)
	}

	return fmt.Sprintf(
		"failed to fetch resource %s: %v", e.URL, e.Err,
	)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
