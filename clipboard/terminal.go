package clipboard

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// ErrNotTerminal is returned by the terminal copy command
// when the output is not attached to a terminal.
var ErrNotTerminal = errors.New("output is not a terminal")

// Terminal is a Document whose fields are private temp
// files and whose copy command is an OSC 52 escape
// sequence, which terminal emulators turn into a clipboard
// write even over remote shells.
type Terminal struct {
	// Out receives the escape sequence.
	Out io.Writer
	// Dir holds the transient field files. Empty means
	// os.TempDir.
	Dir string
	// AssumeTerminal skips the terminal check on Out.
	AssumeTerminal bool
}

// CreateField stores text in a new 0600 temp file.
func (t *Terminal) CreateField(text string) (Field, error) {
	const errCtx = "creating terminal field"

	fi, err := os.CreateTemp(t.Dir, ".sri-clip-*")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	fd := &terminalField{doc: t, path: fi.Name()}

	_, err = fi.WriteString(text)
	if closeErr := fi.Close(); err == nil {
		err = closeErr
	}

	if err != nil {
		return nil, errors.Join(
			fmt.Errorf("%s: %w", errCtx, err),
			fd.Remove(),
		)
	}

	return fd, nil
}

func (t *Terminal) isTerminal() bool {
	if t.AssumeTerminal {
		return true
	}

	fi, ok := t.Out.(*os.File)

	return ok && term.IsTerminal(int(fi.Fd()))
}

type terminalField struct {
	doc       *Terminal
	path      string
	handle    *os.File
	selection []byte
}

// Focus opens the field for reading.
func (fd *terminalField) Focus() error {
	if fd.handle != nil {
		return nil
	}

	handle, err := os.Open(fd.path)
	if err != nil {
		return err
	}

	fd.handle = handle

	return nil
}

// Select reads the whole field into the selection.
func (fd *terminalField) Select() error {
	if fd.handle == nil {
		return errors.New("field is not focused")
	}

	if _, err := fd.handle.Seek(0, io.SeekStart); err != nil {
		return err
	}

	sel, err := io.ReadAll(fd.handle)
	if err != nil {
		return err
	}

	fd.selection = sel

	return nil
}

// ExecCopy writes the selection to the terminal as an OSC
// 52 clipboard sequence.
func (fd *terminalField) ExecCopy() error {
	if fd.doc.Out == nil || !fd.doc.isTerminal() {
		return ErrNotTerminal
	}

	seq := "\x1b]52;c;" +
		base64.StdEncoding.EncodeToString(fd.selection) +
		"\a"

	_, err := io.WriteString(fd.doc.Out, seq)

	return err
}

// Remove closes and deletes the field file. Calling it
// twice is harmless.
func (fd *terminalField) Remove() error {
	var errs []error

	if fd.handle != nil {
		errs = append(errs, fd.handle.Close())
		fd.handle = nil
	}

	if err := os.Remove(fd.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		errs = append(errs, err)
	}

	fd.selection = nil

	return errors.Join(errs...)
}
