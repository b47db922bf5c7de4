package clipboard_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byte4ever/rules_sri/clipboard"
)

func TestTerminal_field_is_private_file(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	doc := &clipboard.Terminal{Out: &bytes.Buffer{}, Dir: dir}

	fd, err := doc.CreateField("secret-ish")
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	info, err := os.Stat(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	require.NoError(t, fd.Remove())
	require.NoError(t, fd.Remove())

	entries, err = os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestTerminal_select_requires_focus(t *testing.T) {
	t.Parallel()

	doc := &clipboard.Terminal{Out: &bytes.Buffer{}, Dir: t.TempDir()}

	fd, err := doc.CreateField("x")
	require.NoError(t, err)

	t.Cleanup(func() { _ = fd.Remove() })

	assert.Error(t, fd.Select())
}

func TestTerminal_create_in_missing_dir(t *testing.T) {
	t.Parallel()

	doc := &clipboard.Terminal{
		Out: &bytes.Buffer{},
		Dir: filepath.Join(t.TempDir(), "missing"),
	}

	_, err := doc.CreateField("x")

	assert.ErrorContains(t, err, "creating terminal field")
}
