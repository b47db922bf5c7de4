package clipboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Writer is a direct clipboard capability. WriteText may
// block until the platform accepts or refuses the write.
type Writer interface {
	WriteText(ctx context.Context, text string) error
}

// Document creates transient fields for the fallback copy
// path.
type Document interface {
	CreateField(text string) (Field, error)
}

// Field is a hidden, focusable text field holding the text
// to copy. Remove must be safe to call after any other
// method failed.
type Field interface {
	Focus() error
	Select() error
	ExecCopy() error
	Remove() error
}

// Host bundles the capabilities the environment offers.
// A nil Clipboard means no direct clipboard access; a nil
// Document disables the fallback.
type Host struct {
	SecureContext bool
	Clipboard     Writer
	Document      Document
}

// Copy places text on the clipboard. The direct path runs
// when the context is secure and a clipboard is available;
// otherwise, or when the direct write is refused, the
// document fallback runs. A *ClipboardError is returned
// when no path succeeded.
func Copy(ctx context.Context, host Host, text string) error {
	reason := ReasonInsecureContext

	var secureErr error

	switch {
	case host.SecureContext && host.Clipboard != nil:
		slog.Debug("copying with clipboard writer")

		secureErr = host.Clipboard.WriteText(ctx, text)
		if secureErr == nil {
			return nil
		}

		if ctx.Err() != nil {
			return &ClipboardError{
				Reason: ReasonSecureFailed,
				Err:    secureErr,
			}
		}

		reason = ReasonSecureFailed

		slog.Debug(
			"clipboard writer refused, trying fallback",
			"error", secureErr,
		)
	case host.Clipboard == nil:
		reason = ReasonUnavailable
	}

	if host.Document == nil {
		return &ClipboardError{
			Reason: reason,
			Err:    errors.Join(secureErr, ErrNoDocument),
		}
	}

	slog.Debug("copying with document fallback", "reason", reason)

	if err := copyWithField(host.Document, text); err != nil {
		return &ClipboardError{
			Reason: reason,
			Err:    errors.Join(secureErr, err),
		}
	}

	return nil
}

// copyWithField runs the legacy copy sequence on a fresh
// field. The field is removed on every path.
func copyWithField(doc Document, text string) (retErr error) {
	const errCtx = "fallback copy"

	field, err := doc.CreateField(text)
	if err != nil {
		return fmt.Errorf("%s: creating field: %w", errCtx, err)
	}

	defer func() {
		if rmErr := field.Remove(); rmErr != nil {
			retErr = errors.Join(
				retErr,
				fmt.Errorf("%s: removing field: %w", errCtx, rmErr),
			)
		}
	}()

	if err := field.Focus(); err != nil {
		return fmt.Errorf("%s: focusing field: %w", errCtx, err)
	}

	if err := field.Select(); err != nil {
		return fmt.Errorf("%s: selecting field: %w", errCtx, err)
	}

	if err := field.ExecCopy(); err != nil {
		return fmt.Errorf("%s: copy command: %w", errCtx, err)
	}

	return nil
}
