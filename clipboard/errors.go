package clipboard

import (
	"errors"
	"fmt"
)

// ErrNoDocument is wrapped by ClipboardError when the
// fallback path is needed but the host has no document.
var ErrNoDocument = errors.New("no document available for fallback copy")

// Reason records why the fallback path was taken.
type Reason string

// Fallback reasons.
const (
	ReasonInsecureContext Reason = "insecure context"
	ReasonUnavailable     Reason = "clipboard unavailable"
	ReasonSecureFailed    Reason = "clipboard write refused"
)

// ClipboardError is returned when every copy path failed.
type ClipboardError struct {
	Reason Reason
	Err    error
}

func (e *ClipboardError) Error() string {
	return fmt.Sprintf(
		"failed to copy to clipboard (%s): %v",
		e.Reason, e.Err,
	)
}

func (e *ClipboardError) Unwrap() error {
	return e.Err
}
