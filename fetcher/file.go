package fetcher

import (
	"io"
	"os"
)

// ReadFile returns the bytes of a local file, for hashing
// build outputs before they are published. Failures are
// reported as *FetchError with the path as URL.
func ReadFile(pa string) (result []byte, retErr error) {
	fi, err := os.Open(pa) //nolint:gosec // path is caller-provided by design
	if err != nil {
		return nil, &FetchError{URL: pa, Err: err}
	}

	defer func() {
		if closeErr := fi.Close(); closeErr != nil && retErr == nil {
			retErr = &FetchError{URL: pa, Err: closeErr}
		}
	}()

	data, err := io.ReadAll(fi)
	if err != nil {
		return nil, &FetchError{URL: pa, Err: err}
	}

	return data, nil
}
