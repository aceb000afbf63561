package conllize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jamesainslie/go-conllize/annotation"
	"github.com/jamesainslie/go-conllize/conll"
	"github.com/jamesainslie/go-conllize/document"
	"github.com/jamesainslie/go-conllize/index"
	"github.com/jamesainslie/go-conllize/internal/shardio"
	"github.com/jamesainslie/go-conllize/internal/stats"
	"github.com/jamesainslie/go-conllize/label"
	"github.com/jamesainslie/go-conllize/vocab"
)

// ShardResult is the outcome of converting one annotation shard.
type ShardResult = stats.Shard

// BatchResult is the outcome of a ConvertAll run.
type BatchResult = stats.Batch

// Config locates the corpus and the output. Relative directory and
// vocabulary names are resolved against CorpusRoot.
type Config struct {
	CorpusRoot     string
	DocumentsDir   string
	AnnotationsDir string
	DocumentVocab  string
	EntityVocab    string
	OutputRoot     string
	DocumentShards int
	ShardFirst     int
	ShardLast      int
}

// DefaultConfig returns the layout of the published WiFiNE release.
func DefaultConfig() Config {
	return Config{
		CorpusRoot:     "../WiFiNE_original",
		DocumentsDir:   "Documents",
		AnnotationsDir: "FineEntity",
		DocumentVocab:  "document.vocab",
		EntityVocab:    "figer.vocab",
		OutputRoot:     "../WiFiNE_CoNLLized",
		DocumentShards: 3242,
		ShardFirst:     82,
		ShardLast:      99,
	}
}

func (c Config) validate() error {
	switch {
	case c.CorpusRoot == "":
		return fmt.Errorf("%w: corpus root not set", ErrInvalidConfig)
	case c.OutputRoot == "":
		return fmt.Errorf("%w: output root not set", ErrInvalidConfig)
	case c.DocumentShards <= 0:
		return fmt.Errorf("%w: document shards must be > 0 (got %d)", ErrInvalidConfig, c.DocumentShards)
	case c.ShardFirst < 0 || c.ShardFirst > c.ShardLast:
		return fmt.Errorf("%w: shard range [%d, %d]", ErrInvalidConfig, c.ShardFirst, c.ShardLast)
	}
	return nil
}

func (c Config) corpusPath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.CorpusRoot, name)
}

// AnnotationPath returns the path of annotation shard n.
func (c Config) AnnotationPath(n int) string {
	return filepath.Join(c.corpusPath(c.AnnotationsDir), strconv.Itoa(n))
}

// OutputPath returns the path shard n is written to.
func (c Config) OutputPath(n int) string {
	return filepath.Join(c.OutputRoot, strconv.Itoa(n))
}

// Converter turns annotation shards into CoNLL files.
// It is safe for concurrent use.
type Converter struct {
	cfg      Config
	words    *vocab.Vocabulary
	entities *vocab.Vocabulary
	index    *index.Index
	loader   *document.Loader
	workers  int
	column   int
	logger   *slog.Logger
}

// New loads both vocabularies and indexes the document shards.
func New(ctx context.Context, cfg Config, opts ...Option) (*Converter, error) {
	o := defaultConfig()
	for _, opt := range opts {
		opt(&o)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	words, err := vocab.Load(cfg.corpusPath(cfg.DocumentVocab))
	if err != nil {
		return nil, fmt.Errorf("document vocabulary: %w", err)
	}
	entities, err := vocab.Load(cfg.corpusPath(cfg.EntityVocab))
	if err != nil {
		return nil, fmt.Errorf("entity vocabulary: %w", err)
	}
	o.logger.Info("vocabularies loaded",
		"words", words.Len(),
		"words_path", words.Path(),
		"entities", entities.Len(),
		"entities_path", entities.Path(),
		"duration", time.Since(start))

	start = time.Now()
	idx, err := index.Build(ctx, cfg.corpusPath(cfg.DocumentsDir), cfg.DocumentShards,
		index.WithConcurrency(o.indexWorkers),
		index.WithLogger(o.logger))
	if err != nil {
		return nil, fmt.Errorf("building index: %w", err)
	}
	o.logger.Info("article index built",
		"articles", idx.Len(),
		"shards", idx.Shards(),
		"skipped", len(idx.Skipped()),
		"duration", time.Since(start))

	return &Converter{
		cfg:      cfg,
		words:    words,
		entities: entities,
		index:    idx,
		loader:   document.NewLoader(words),
		workers:  o.workers,
		column:   o.column,
		logger:   o.logger,
	}, nil
}

// Index returns the article index built by New.
func (c *Converter) Index() *index.Index { return c.index }

// ConvertShard converts annotation shard n into the output file n.
func (c *Converter) ConvertShard(ctx context.Context, n int) (ShardResult, error) {
	st, err := c.ConvertFile(ctx, c.cfg.AnnotationPath(n), c.cfg.OutputPath(n))
	st.Index = n
	return st, err
}

// ConvertFile converts one annotation shard. The output replaces outputPath
// only when every article converted; on error any previous file is left as
// it was.
func (c *Converter) ConvertFile(ctx context.Context, annotationPath, outputPath string) (ShardResult, error) {
	start := time.Now()
	st := ShardResult{Index: -1, Input: annotationPath, Output: outputPath}

	err := c.convertFile(ctx, annotationPath, outputPath, &st)
	st.Duration = time.Since(start)
	if err != nil {
		st.Err = err
		return st, err
	}

	c.logger.Info("shard converted",
		"input", annotationPath,
		"articles", st.Articles,
		"lines", st.Lines,
		"sentences", st.Sentences,
		"tokens", st.Tokens,
		"skipped", st.Skipped,
		"duration", st.Duration)
	return st, nil
}

func (c *Converter) convertFile(ctx context.Context, annotationPath, outputPath string, st *ShardResult) error {
	path, err := shardio.Resolve(annotationPath)
	if err != nil {
		return fmt.Errorf("annotation shard: %w", err)
	}
	st.Input = path

	r, err := annotation.Open(path, c.entities, annotation.WithSkipHandler(func(e *annotation.ParseError) {
		c.logger.Debug("skipping annotation line", "path", e.Path, "line", e.Line, "error", e.Err)
	}))
	if err != nil {
		return err
	}
	defer func() { _ = r.Close() }()

	out, err := shardio.CreateAtomic(outputPath)
	if err != nil {
		return err
	}
	w := conll.NewWriter(out, conll.WithColumn(c.column))

	for r.Next() {
		if err := ctx.Err(); err != nil {
			_ = out.Abort()
			return err
		}

		g := r.Group()
		st.Skipped += g.Skipped
		if !st.AddArticle(uint64(g.Article)) {
			st.Duplicates++
			c.logger.Warn("duplicate article in shard", "path", path, "article", g.Article, "line", g.Line)
		}

		if err := c.convertArticle(w, &g, st); err != nil {
			_ = out.Abort()
			return fmt.Errorf("article %d (%s:%d): %w", g.Article, path, g.Line, err)
		}
		st.Articles, st.Lines = w.Articles(), w.Lines()
	}
	if err := r.Err(); err != nil {
		_ = out.Abort()
		return err
	}

	if err := w.Flush(); err != nil {
		_ = out.Abort()
		return err
	}
	return out.Commit()
}

// convertArticle looks up the sentences covered by g and writes them
// labeled. A group without valid records covers the whole article.
func (c *Converter) convertArticle(w *conll.Writer, g *annotation.Group, st *ShardResult) error {
	if !c.index.Contains(g.Article) {
		return fmt.Errorf("%w: %d not among %d indexed articles", index.ErrArticleNotFound, g.Article, c.index.Len())
	}
	path, err := c.index.Lookup(g.Article)
	if err != nil {
		return err
	}

	first, last := 0, document.Unbounded
	if g.HasBounds {
		first, last = g.SentenceMin, g.SentenceMax
	}
	sentences, err := c.loader.Load(path, g.Article, first, last)
	if err != nil {
		return err
	}
	if g.HasBounds && len(sentences) < g.Sentences() {
		c.logger.Debug("article shorter than annotated range",
			"article", g.Article,
			"sentences", len(sentences),
			"annotated", g.Sentences())
	}

	spans := g.SentenceSpans()
	words := make([][]string, len(sentences))
	labels := make([][]string, len(sentences))
	for i, s := range sentences {
		var sp []label.Span
		if i < len(spans) {
			sp = spans[i]
		}
		if label.Overlaps(sp) {
			st.Overlaps++
			c.logger.Warn("overlapping entity spans", "article", g.Article, "sentence", first+i)
		}
		words[i] = s
		labels[i] = label.Resolve(len(s), sp)
		st.AddSentence(labels[i], label.Outside)
	}

	return w.WriteArticle(words, labels)
}

// ConvertAll converts every shard in [ShardFirst, ShardLast]. A failed shard
// does not stop the others; when any failed the returned error wraps
// ErrPartialBatch and each shard error.
func (c *Converter) ConvertAll(ctx context.Context) (*BatchResult, error) {
	start := time.Now()
	batch := &BatchResult{
		RunID:  uuid.NewString(),
		Shards: make([]ShardResult, c.cfg.ShardLast-c.cfg.ShardFirst+1),
	}
	logger := c.logger.With("run", batch.RunID)
	logger.Info("batch started",
		"first", c.cfg.ShardFirst,
		"last", c.cfg.ShardLast,
		"workers", c.workers)

	var g errgroup.Group
	g.SetLimit(c.workers)
	for i := range batch.Shards {
		n := c.cfg.ShardFirst + i
		g.Go(func() error {
			st, err := c.ConvertShard(ctx, n)
			if err != nil {
				logger.Error("shard failed", "shard", n, "error", err)
			}
			batch.Shards[i] = st
			return nil
		})
	}
	_ = g.Wait()
	batch.Duration = time.Since(start)

	failed := batch.Failed()
	totals := batch.Totals()
	uncovered := c.index.Articles()
	uncovered.AndNot(totals.ArticleIDs)
	batch.Uncovered = uncovered.GetCardinality()
	logger.Info("batch finished",
		"shards", len(batch.Shards),
		"failed", len(failed),
		"articles", totals.Articles,
		"distinct", totals.Distinct(),
		"uncovered", batch.Uncovered,
		"sentences", totals.Sentences,
		"duration", batch.Duration)

	if len(failed) == 0 {
		return batch, nil
	}
	errs := []error{ErrPartialBatch}
	for _, s := range failed {
		errs = append(errs, fmt.Errorf("shard %d: %w", s.Index, s.Err))
	}
	return batch, errors.Join(errs...)
}
