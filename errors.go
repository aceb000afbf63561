package conllize

import (
	"errors"

	"github.com/jamesainslie/go-conllize/document"
	"github.com/jamesainslie/go-conllize/index"
	"github.com/jamesainslie/go-conllize/vocab"
)

// Sentinel errors for conditions callers may need to handle differently.
var (
	// ErrInvalidConfig indicates a Config that cannot drive a run.
	ErrInvalidConfig = errors.New("conllize: invalid configuration")

	// ErrPartialBatch indicates that at least one shard of a batch failed.
	// The other shards were still converted.
	ErrPartialBatch = errors.New("conllize: batch completed with failed shards")
)

// IsLookup reports whether err stems from a corpus integrity problem: a
// vocabulary index out of range, an article missing from the index or its
// shard, or a malformed token. Such errors abort the article's shard.
func IsLookup(err error) bool {
	return errors.Is(err, vocab.ErrOutOfRange) ||
		errors.Is(err, index.ErrArticleNotFound) ||
		errors.Is(err, document.ErrArticleMissing) ||
		errors.Is(err, document.ErrMalformedToken)
}
