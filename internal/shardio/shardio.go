// Package shardio opens corpus shard files and writes output shards atomically.
//
// Shards may be stored plain or compressed. A compressed shard keeps its
// numeric name and adds one of the extensions in Extensions.
package shardio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// MaxLineSize bounds a single corpus line. Document shards carry a whole
// sentence per line, so the bufio default of 64 KiB is too small.
const MaxLineSize = 16 << 20

// Extensions lists the compressed variants Resolve tries, in order.
var Extensions = []string{".gz", ".zst", ".lz4"}

// Resolve returns the path of the shard stored at base. The plain file wins;
// otherwise the first compressed variant that exists is returned. When none
// exists the error wraps fs.ErrNotExist.
func Resolve(base string) (string, error) {
	if _, err := os.Stat(base); err == nil {
		return base, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}

	for _, ext := range Extensions {
		candidate := base + ext
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", &fs.PathError{Op: "resolve", Path: base, Err: fs.ErrNotExist}
}

// Open opens path for reading, decompressing by extension.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		zr, err := gzip.NewReader(f)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("gzip %s: %w", path, err)
		}
		return &stackedReader{Reader: zr, closers: []func() error{zr.Close, f.Close}}, nil
	case ".zst":
		dec, err := zstd.NewReader(f)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("zstd %s: %w", path, err)
		}
		return &stackedReader{Reader: dec, closers: []func() error{
			func() error { dec.Close(); return nil },
			f.Close,
		}}, nil
	case ".lz4":
		return &stackedReader{Reader: lz4.NewReader(f), closers: []func() error{f.Close}}, nil
	default:
		return f, nil
	}
}

// stackedReader reads from a decompressor and closes it before the file.
type stackedReader struct {
	io.Reader
	closers []func() error
}

func (s *stackedReader) Close() error {
	var errs []error
	for _, c := range s.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewScanner returns a line scanner sized for corpus shards.
func NewScanner(r io.Reader) *bufio.Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), MaxLineSize)
	return sc
}

// Lines calls fn for every line of the file at path with its 1-based line
// number. Returning io.EOF from fn stops the scan without error.
func Lines(path string, fn func(n int, line string) error) error {
	rc, err := Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = rc.Close() }()

	sc := NewScanner(rc)
	n := 0
	for sc.Scan() {
		n++
		if err := fn(n, sc.Text()); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("scan %s: %w", path, err)
	}
	return nil
}
