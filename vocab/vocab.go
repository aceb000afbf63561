// Package vocab loads index-addressed vocabularies such as document.vocab
// and figer.vocab.
package vocab

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/jamesainslie/go-conllize/internal/shardio"
)

var (
	// ErrNotFound indicates the vocabulary file does not exist.
	ErrNotFound = errors.New("vocab: file not found")

	// ErrOutOfRange indicates an index outside the vocabulary.
	ErrOutOfRange = errors.New("vocab: index out of range")
)

// Vocabulary is an immutable index -> token table. The index of an entry is
// the 0-based line number it was read from.
type Vocabulary struct {
	path  string
	items []string
}

// Load reads a vocabulary file. The first whitespace-separated field of each
// line is the entry; a blank line still occupies its index as "".
// Duplicate entries are kept.
func Load(path string) (*Vocabulary, error) {
	var items []string
	err := shardio.Lines(path, func(_ int, line string) error {
		word := ""
		if fields := strings.Fields(line); len(fields) > 0 {
			word = fields[0]
		}
		items = append(items, word)
		return nil
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("loading vocabulary: %w", err)
	}

	return &Vocabulary{path: path, items: items}, nil
}

// New builds a Vocabulary from a slice. The slice is copied.
func New(items []string) *Vocabulary {
	return &Vocabulary{items: append([]string(nil), items...)}
}

// Lookup returns the entry at index i.
func (v *Vocabulary) Lookup(i int) (string, error) {
	if i < 0 || i >= len(v.items) {
		return "", fmt.Errorf("%w: %d (size %d)", ErrOutOfRange, i, len(v.items))
	}
	return v.items[i], nil
}

// Len returns the number of entries.
func (v *Vocabulary) Len() int { return len(v.items) }

// Path returns the file the vocabulary was loaded from, or "" for New.
func (v *Vocabulary) Path() string { return v.path }
