// Package annotation reads FIGER annotation shards one article at a time.
//
// A shard is a sequence of "ID <article_id>" headers, each followed by
// records of the form
//
//	<sentence> <begin> <end_exclusive> <mention_type> <entity_type> [...]
//
// Records that do not parse are skipped and never affect their article.
package annotation

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/jamesainslie/go-conllize/index"
	"github.com/jamesainslie/go-conllize/internal/shardio"
	"github.com/jamesainslie/go-conllize/label"
	"github.com/jamesainslie/go-conllize/vocab"
)

// NamedEntity is the mention type of records that produce label spans.
const NamedEntity = 0

// recordFields is the number of leading fields a record must carry.
const recordFields = 5

var (
	// ErrShortRecord indicates a record with fewer than five fields.
	ErrShortRecord = errors.New("annotation: short record")

	// ErrBadField indicates a record field that is not a valid integer.
	ErrBadField = errors.New("annotation: bad field")

	// ErrBadHeader indicates an "ID" line without an integer article id.
	ErrBadHeader = errors.New("annotation: bad article header")

	// ErrOrphanRecord indicates a record outside any valid article.
	ErrOrphanRecord = errors.New("annotation: record outside article")
)

// ParseError describes a skipped line.
type ParseError struct {
	Path string
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %v", e.Path, e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Record is one parsed annotation. End is inclusive.
type Record struct {
	Sentence    int
	Begin       int
	End         int
	MentionType int
	Label       string // entity type resolved through the entity vocabulary
}

// Group holds the valid records of one article.
type Group struct {
	Article index.ArticleID
	Line    int // line of the article's ID header

	// SentenceMin and SentenceMax bound the sentence indices of Records.
	// They are meaningful only when HasBounds is set.
	SentenceMin int
	SentenceMax int
	HasBounds   bool

	Records []Record
	Skipped int
}

func (g *Group) add(r Record) {
	if !g.HasBounds {
		g.SentenceMin, g.SentenceMax, g.HasBounds = r.Sentence, r.Sentence, true
	} else {
		g.SentenceMin = min(g.SentenceMin, r.Sentence)
		g.SentenceMax = max(g.SentenceMax, r.Sentence)
	}
	g.Records = append(g.Records, r)
}

// Sentences returns the number of sentences spanned by the group's bounds.
func (g *Group) Sentences() int {
	if !g.HasBounds {
		return 0
	}
	return g.SentenceMax - g.SentenceMin + 1
}

// SentenceSpans returns the named-entity spans of each sentence in
// [SentenceMin, SentenceMax], indexed relative to SentenceMin and ordered by
// Begin. Every sentence gets its own slice.
func (g *Group) SentenceSpans() [][]label.Span {
	spans := make([][]label.Span, g.Sentences())
	for _, r := range g.Records {
		if r.MentionType != NamedEntity {
			continue
		}
		i := r.Sentence - g.SentenceMin
		spans[i] = append(spans[i], label.Span{Begin: r.Begin, End: r.End, Label: r.Label})
	}
	for _, s := range spans {
		slices.SortStableFunc(s, func(a, b label.Span) int { return a.Begin - b.Begin })
	}
	return spans
}

// Option configures a Reader.
type Option func(*Reader)

// WithSkipHandler registers fn to be called for every skipped line.
func WithSkipHandler(fn func(*ParseError)) Option {
	return func(r *Reader) {
		r.onSkip = fn
	}
}

// Reader yields article groups from an annotation shard in file order.
type Reader struct {
	path     string
	rc       io.ReadCloser
	sc       *bufio.Scanner
	entities *vocab.Vocabulary
	onSkip   func(*ParseError)

	line    int
	current *Group
	group   Group
	err     error
	done    bool
}

// Open opens an annotation shard. Entity indices are resolved through
// entities; a record whose index is out of range is skipped.
func Open(path string, entities *vocab.Vocabulary, opts ...Option) (*Reader, error) {
	rc, err := shardio.Open(path)
	if err != nil {
		return nil, err
	}
	r := NewReader(rc, entities, opts...)
	r.path = path
	r.rc = rc
	return r, nil
}

// NewReader reads annotations from an arbitrary stream. Close does not
// close src.
func NewReader(src io.Reader, entities *vocab.Vocabulary, opts ...Option) *Reader {
	r := &Reader{
		sc:       shardio.NewScanner(src),
		entities: entities,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Next advances to the next article group. It returns false at the end of
// the shard or on a read error; check Err afterwards.
func (r *Reader) Next() bool {
	if r.done {
		return false
	}

	for r.sc.Scan() {
		r.line++
		text := r.sc.Text()

		if index.IsHeader(text) {
			prev := r.current
			if id, ok := index.ParseHeader(text); ok {
				r.current = &Group{Article: id, Line: r.line}
			} else {
				r.current = nil
				r.skip(text, ErrBadHeader)
			}
			if prev != nil {
				r.group = *prev
				return true
			}
			continue
		}

		if strings.TrimSpace(text) == "" {
			continue
		}
		if r.current == nil {
			r.skip(text, ErrOrphanRecord)
			continue
		}

		rec, err := r.parseRecord(text)
		if err != nil {
			r.current.Skipped++
			r.skip(text, err)
			continue
		}
		r.current.add(rec)
	}

	r.done = true
	if err := r.sc.Err(); err != nil {
		r.err = fmt.Errorf("reading %s: %w", r.path, err)
		return false
	}
	if r.current != nil {
		r.group = *r.current
		r.current = nil
		return true
	}
	return false
}

func (r *Reader) parseRecord(text string) (Record, error) {
	fields := strings.Fields(text)
	if len(fields) < recordFields {
		return Record{}, ErrShortRecord
	}

	var v [recordFields]int
	for i := range v {
		n, err := strconv.Atoi(fields[i])
		if err != nil {
			return Record{}, fmt.Errorf("%w: %q", ErrBadField, fields[i])
		}
		v[i] = n
	}
	if v[0] < 0 {
		return Record{}, fmt.Errorf("%w: negative sentence index %d", ErrBadField, v[0])
	}

	name, err := r.entities.Lookup(v[4])
	if err != nil {
		return Record{}, err
	}

	return Record{
		Sentence:    v[0],
		Begin:       v[1],
		End:         v[2] - 1,
		MentionType: v[3],
		Label:       name,
	}, nil
}

func (r *Reader) skip(text string, err error) {
	if r.onSkip != nil {
		r.onSkip(&ParseError{Path: r.path, Line: r.line, Text: text, Err: err})
	}
}

// Group returns the group produced by the last successful Next.
func (r *Reader) Group() Group { return r.group }

// Err returns the first read error, if any.
func (r *Reader) Err() error { return r.err }

// Close releases the underlying file when the Reader was created by Open.
func (r *Reader) Close() error {
	if r.rc == nil {
		return nil
	}
	rc := r.rc
	r.rc = nil
	return rc.Close()
}
