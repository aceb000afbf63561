// Package document extracts tokenized article sentences from document shards.
package document

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jamesainslie/go-conllize/index"
	"github.com/jamesainslie/go-conllize/internal/shardio"
	"github.com/jamesainslie/go-conllize/vocab"
)

var (
	// ErrArticleMissing indicates the shard does not contain the article.
	ErrArticleMissing = errors.New("document: article not in shard")

	// ErrMalformedToken indicates a sentence token that is not an integer.
	ErrMalformedToken = errors.New("document: malformed token index")
)

// Sentence is an ordered list of token strings.
type Sentence []string

// Unbounded as the last sentence index keeps every sentence to the end of the article.
const Unbounded = -1

// Loader resolves document shard lines through the document vocabulary.
// It is safe for concurrent use.
type Loader struct {
	words *vocab.Vocabulary
}

// NewLoader returns a Loader resolving token indices through words.
func NewLoader(words *vocab.Vocabulary) *Loader {
	return &Loader{words: words}
}

// Load returns the sentences of article whose running index lies in
// [first, last], positioned at index-first. The scan stops at the first "ID"
// line after the article. A last of Unbounded keeps all sentences from first.
func (l *Loader) Load(path string, article index.ArticleID, first, last int) ([]Sentence, error) {
	var (
		sentences []Sentence
		inside    bool
		senIdx    = -1
	)

	err := shardio.Lines(path, func(n int, line string) error {
		if index.IsHeader(line) {
			id, ok := index.ParseHeader(line)
			if ok && id == article {
				inside = true
				return nil
			}
			if inside {
				return io.EOF
			}
			return nil
		}
		if !inside {
			return nil
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			return nil
		}

		senIdx++
		if last != Unbounded && senIdx > last {
			return io.EOF
		}
		if senIdx < first {
			return nil
		}

		sentence := make(Sentence, len(fields))
		for i, f := range fields {
			wi, err := strconv.Atoi(f)
			if err != nil {
				return fmt.Errorf("%w: %q at %s:%d", ErrMalformedToken, f, path, n)
			}
			word, err := l.words.Lookup(wi)
			if err != nil {
				return fmt.Errorf("article %d sentence %d: %w", article, senIdx, err)
			}
			sentence[i] = word
		}
		sentences = append(sentences, sentence)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !inside {
		return nil, fmt.Errorf("%w: article %d in %s", ErrArticleMissing, article, path)
	}
	return sentences, nil
}
