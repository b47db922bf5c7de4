package clipboard

import (
	"context"
	"os"

	atotto "github.com/atotto/clipboard"
)

// System writes to the operating system clipboard through
// the platform tool (pbcopy, wl-copy, xclip, xsel or the
// Windows API).
type System struct{}

// Available reports whether a platform clipboard tool was
// found.
func (System) Available() bool {
	return !atotto.Unsupported
}

// WriteText copies text and waits for the platform tool to
// finish or for ctx to end, whichever comes first. The tool
// cannot be interrupted: after ctx ends it keeps running, so
// text may still reach the clipboard once WriteText has
// returned ctx.Err().
func (System) WriteText(ctx context.Context, text string) error {
	done := make(chan error, 1)

	go func() {
		done <- atotto.WriteAll(text)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// DetectHost builds the host for a command-line process
// writing to out. The session counts as secure when it is
// not a remote shell; the document fallback emits OSC 52
// sequences to out.
func DetectHost(out *os.File) Host {
	host := Host{
		SecureContext: localSession(),
		Document:      &Terminal{Out: out},
	}

	if sys := (System{}); sys.Available() {
		host.Clipboard = sys
	}

	return host
}

func localSession() bool {
	return os.Getenv("SSH_CONNECTION") == "" &&
		os.Getenv("SSH_TTY") == ""
}
