// Package index maps article identifiers to the document shard holding them.
package index

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"golang.org/x/sync/errgroup"

	"github.com/jamesainslie/go-conllize/internal/shardio"
)

// ErrArticleNotFound indicates an article id absent from every scanned shard.
var ErrArticleNotFound = errors.New("index: article not found")

// ArticleID identifies a Wikipedia article across the corpus.
type ArticleID int64

// Option configures Build.
type Option func(*options)

type options struct {
	concurrency int
	logger      *slog.Logger
}

// WithConcurrency sets how many shards are scanned at once (default: 1).
func WithConcurrency(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// WithLogger sets the logger (default: slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// Index is an immutable article -> shard path table.
type Index struct {
	paths   map[ArticleID]string
	ids     *roaring64.Bitmap
	shards  int
	skipped []int
}

// Build scans shard files dir/0 .. dir/shardCount-1 once. A line whose first
// field is "ID" maps its second field to that shard. Shards that cannot be
// opened are skipped and reported by Skipped. When an id appears in several
// shards the highest shard number wins.
func Build(ctx context.Context, dir string, shardCount int, opts ...Option) (*Index, error) {
	o := options{concurrency: 1, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if shardCount < 0 {
		return nil, fmt.Errorf("index: negative shard count %d", shardCount)
	}

	found := make([][]ArticleID, shardCount)
	paths := make([]string, shardCount)
	missing := make([]bool, shardCount)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)
	for n := range shardCount {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			path, ids, err := scanShard(filepath.Join(dir, strconv.Itoa(n)))
			if err != nil {
				var pathErr *fs.PathError
				if errors.As(err, &pathErr) {
					o.logger.Debug("skipping shard", "shard", n, "error", err)
					missing[n] = true
					return nil
				}
				return fmt.Errorf("shard %d: %w", n, err)
			}
			paths[n] = path
			found[n] = ids
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	idx := &Index{
		paths:  make(map[ArticleID]string),
		ids:    roaring64.New(),
		shards: shardCount,
	}
	for n, ids := range found {
		if missing[n] {
			idx.skipped = append(idx.skipped, n)
			continue
		}
		for _, id := range ids {
			idx.add(id, paths[n])
		}
	}

	if len(idx.skipped) > 0 {
		o.logger.Warn("document shards skipped", "count", len(idx.skipped), "scanned", shardCount)
	}
	return idx, nil
}

// scanShard returns the resolved path of a shard and the article ids it holds.
// Open and read failures come back as *fs.PathError.
func scanShard(base string) (string, []ArticleID, error) {
	path, err := shardio.Resolve(base)
	if err != nil {
		return "", nil, err
	}

	var ids []ArticleID
	err = shardio.Lines(path, func(_ int, line string) error {
		id, ok := ParseHeader(line)
		if ok {
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		var pathErr *fs.PathError
		if !errors.As(err, &pathErr) {
			err = &fs.PathError{Op: "read", Path: path, Err: err}
		}
		return "", nil, err
	}
	return path, ids, nil
}

// ParseHeader reports whether line is an "ID <article_id>" header and returns
// the id. Headers with a missing or non-integer id are not headers.
func ParseHeader(line string) (ArticleID, bool) {
	fields := strings.Fields(line)
	if len(fields) < 2 || fields[0] != "ID" {
		return 0, false
	}
	id, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return ArticleID(id), true
}

// IsHeader reports whether the first field of line is "ID", regardless of
// whether the id itself parses.
func IsHeader(line string) bool {
	fields := strings.Fields(line)
	return len(fields) > 0 && fields[0] == "ID"
}

func (idx *Index) add(id ArticleID, path string) {
	idx.paths[id] = path
	idx.ids.Add(uint64(id))
}

// Lookup returns the shard path holding the article.
func (idx *Index) Lookup(id ArticleID) (string, error) {
	path, ok := idx.paths[id]
	if !ok {
		return "", fmt.Errorf("%w: %d", ErrArticleNotFound, id)
	}
	return path, nil
}

// Contains reports whether the article was indexed.
func (idx *Index) Contains(id ArticleID) bool {
	return idx.ids.Contains(uint64(id))
}

// Len returns the number of distinct indexed articles.
func (idx *Index) Len() int { return len(idx.paths) }

// Shards returns the number of shard slots scanned.
func (idx *Index) Shards() int { return idx.shards }

// Skipped returns the shard numbers that could not be opened, ascending.
func (idx *Index) Skipped() []int { return append([]int(nil), idx.skipped...) }

// Articles returns a copy of the set of indexed article ids. Negative ids
// appear as their two's complement.
func (idx *Index) Articles() *roaring64.Bitmap { return idx.ids.Clone() }
