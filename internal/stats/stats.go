// Package stats accumulates conversion counts per shard and per run.
package stats

import (
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
)

// Shard holds the outcome of converting one annotation shard.
type Shard struct {
	Index        int // shard number, -1 for a single-file run
	Input        string
	Output       string
	Articles     int
	Lines        int // DOCSTART and token lines written
	Sentences    int
	Tokens       int
	EntityTokens int
	Skipped      int            // malformed annotation lines
	Overlaps     int            // sentences with overlapping spans
	Duplicates   int            // article ids seen more than once in the shard
	Labels       map[string]int // entity label -> token count, "O" excluded
	ArticleIDs   *roaring64.Bitmap
	Duration     time.Duration
	Err          error
}

// AddSentence records one labeled sentence.
func (s *Shard) AddSentence(labels []string, outside string) {
	s.Sentences++
	s.Tokens += len(labels)
	for _, l := range labels {
		if l == outside {
			continue
		}
		s.EntityTokens++
		if s.Labels == nil {
			s.Labels = make(map[string]int)
		}
		s.Labels[l]++
	}
}

// AddArticle records an article id and reports whether it is new to the
// shard.
func (s *Shard) AddArticle(id uint64) bool {
	if s.ArticleIDs == nil {
		s.ArticleIDs = roaring64.New()
	}
	return s.ArticleIDs.CheckedAdd(id)
}

// Distinct returns the number of distinct article ids recorded.
func (s Shard) Distinct() uint64 {
	if s.ArticleIDs == nil {
		return 0
	}
	return s.ArticleIDs.GetCardinality()
}

// Failed reports whether the shard ended with an error.
func (s Shard) Failed() bool { return s.Err != nil }

// Batch holds the results of a multi-shard run in shard order.
type Batch struct {
	RunID    string
	Shards   []Shard
	Duration time.Duration

	// Uncovered counts indexed articles that no shard of the run referenced.
	Uncovered uint64
}

// Totals sums the counts of all shards, failed ones included.
func (b *Batch) Totals() Shard {
	t := Shard{Index: -1, Labels: make(map[string]int), ArticleIDs: roaring64.New()}
	for _, s := range b.Shards {
		t.Articles += s.Articles
		t.Lines += s.Lines
		t.Sentences += s.Sentences
		t.Tokens += s.Tokens
		t.EntityTokens += s.EntityTokens
		t.Skipped += s.Skipped
		t.Overlaps += s.Overlaps
		t.Duplicates += s.Duplicates
		for l, n := range s.Labels {
			t.Labels[l] += n
		}
		if s.ArticleIDs != nil {
			t.ArticleIDs.Or(s.ArticleIDs)
		}
	}
	t.Duration = b.Duration
	return t
}

// Failed returns the shards that ended with an error.
func (b *Batch) Failed() []Shard {
	var failed []Shard
	for _, s := range b.Shards {
		if s.Failed() {
			failed = append(failed, s)
		}
	}
	return failed
}

// EntityRatio returns the share of tokens carrying an entity label.
func (s Shard) EntityRatio() float64 {
	if s.Tokens == 0 {
		return 0
	}
	return float64(s.EntityTokens) / float64(s.Tokens)
}

// TopLabels returns up to n labels by descending token count, ties by name.
func (s Shard) TopLabels(n int) []string {
	names := slices.Collect(maps.Keys(s.Labels))
	slices.SortFunc(names, func(a, b string) int {
		if d := s.Labels[b] - s.Labels[a]; d != 0 {
			return d
		}
		return strings.Compare(a, b)
	})
	if n >= 0 && len(names) > n {
		names = names[:n]
	}
	return names
}
