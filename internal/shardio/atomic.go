package shardio

import (
	"bufio"
	"errors"
	"os"
	"path/filepath"
)

const (
	defaultBufSize  = 64 * 1024
	defaultFileMode = 0o644
	defaultDirMode  = 0o755
)

// AtomicFile is an output file that only replaces its destination on Commit.
// Until then all writes go to a temporary file in the same directory.
type AtomicFile struct {
	dest string
	tmp  *os.File
	buf  *bufio.Writer
	done bool
}

// CreateAtomic prepares an AtomicFile for dest, creating parent directories.
func CreateAtomic(dest string) (*AtomicFile, error) {
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, defaultDirMode); err != nil {
		return nil, err
	}
	tmp, err := os.CreateTemp(dir, ".tmp-"+filepath.Base(dest)+"-*")
	if err != nil {
		return nil, err
	}
	_ = os.Chmod(tmp.Name(), defaultFileMode)

	return &AtomicFile{
		dest: dest,
		tmp:  tmp,
		buf:  bufio.NewWriterSize(tmp, defaultBufSize),
	}, nil
}

// Write buffers p into the temporary file.
func (a *AtomicFile) Write(p []byte) (int, error) {
	if a.done {
		return 0, os.ErrClosed
	}
	return a.buf.Write(p)
}

// Commit flushes, syncs and renames the temporary file over the destination.
func (a *AtomicFile) Commit() error {
	if a.done {
		return os.ErrClosed
	}
	a.done = true

	tmpPath := a.tmp.Name()
	if err := a.buf.Flush(); err != nil {
		_ = a.tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := a.tmp.Sync(); err != nil {
		_ = a.tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := a.tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, a.dest); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}

// Abort discards the temporary file. It is a no-op after Commit.
func (a *AtomicFile) Abort() error {
	if a.done {
		return nil
	}
	a.done = true
	return errors.Join(a.tmp.Close(), os.Remove(a.tmp.Name()))
}
