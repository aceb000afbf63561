package shardio

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = "ID 7\n0 1 2\n3 4\n"

func compress(t *testing.T, ext string, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	var w io.WriteCloser
	switch ext {
	case ".gz":
		w = gzip.NewWriter(&buf)
	case ".zst":
		enc, err := zstd.NewWriter(&buf)
		require.NoError(t, err)
		w = enc
	case ".lz4":
		w = lz4.NewWriter(&buf)
	default:
		return data
	}
	_, err := w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestOpen_Compressed(t *testing.T) {
	for _, ext := range []string{"", ".gz", ".zst", ".lz4"} {
		t.Run("ext"+ext, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "0"+ext)
			require.NoError(t, os.WriteFile(path, compress(t, ext, []byte(sample)), 0o644))

			rc, err := Open(path)
			require.NoError(t, err)
			defer func() { _ = rc.Close() }()

			got, err := io.ReadAll(rc)
			require.NoError(t, err)
			assert.Equal(t, sample, string(got))
		})
	}
}

func TestOpen_Missing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "1"), []byte(sample), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "2.zst"), compress(t, ".zst", []byte(sample)), 0o644))

	got, err := Resolve(filepath.Join(dir, "1"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "1"), got)

	got, err = Resolve(filepath.Join(dir, "2"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "2.zst"), got)

	_, err = Resolve(filepath.Join(dir, "3"))
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "0")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	var got []string
	err := Lines(path, func(n int, line string) error {
		got = append(got, line)
		if n == 2 {
			return io.EOF
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"ID 7", "0 1 2"}, got)
}

func TestLines_PropagatesError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "0")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	boom := errors.New("boom")
	err := Lines(path, func(int, string) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestAtomicFile_Commit(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out", "82")
	require.NoError(t, os.MkdirAll(filepath.Dir(dest), 0o755))
	require.NoError(t, os.WriteFile(dest, []byte("stale"), 0o644))

	af, err := CreateAtomic(dest)
	require.NoError(t, err)
	_, err = af.Write([]byte("fresh\n"))
	require.NoError(t, err)

	// destination untouched until Commit
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "stale", string(data))

	require.NoError(t, af.Commit())
	data, err = os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "fresh\n", string(data))

	entries, err := os.ReadDir(filepath.Dir(dest))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestAtomicFile_Abort(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "82")

	af, err := CreateAtomic(dest)
	require.NoError(t, err)
	_, err = af.Write([]byte("partial"))
	require.NoError(t, err)
	require.NoError(t, af.Abort())

	_, err = os.Stat(dest)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, err = af.Write([]byte("late"))
	assert.ErrorIs(t, err, os.ErrClosed)
}
