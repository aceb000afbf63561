// Package conll writes labeled sentences in the CoNLL-2003 column layout.
//
// Each article opens with a -DOCSTART- line. Every sentence is preceded by
// a blank line and holds one "<token><padding><label>" line per token.
// Consecutive articles are separated by one extra blank line.
package conll

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// DocStart is the token of the document marker line.
const DocStart = "-DOCSTART-"

// DefaultColumn is the column at which labels start.
const DefaultColumn = 20

// ErrLabelMismatch indicates sentences and labels of different shapes.
var ErrLabelMismatch = errors.New("conll: labels do not match sentences")

// Option configures a Writer.
type Option func(*Writer)

// WithColumn sets the label column (default: DefaultColumn).
func WithColumn(n int) Option {
	return func(w *Writer) {
		if n > 0 {
			w.column = n
		}
	}
}

// Writer appends articles to an output stream.
type Writer struct {
	w        *bufio.Writer
	column   int
	articles int
	lines    int
}

// NewWriter returns a Writer buffering into w. Call Flush when done.
func NewWriter(w io.Writer, opts ...Option) *Writer {
	cw := &Writer{
		w:      bufio.NewWriter(w),
		column: DefaultColumn,
	}
	for _, opt := range opts {
		opt(cw)
	}
	return cw
}

// WriteArticle writes one article. labels[i][j] is the label of
// sentences[i][j].
func (w *Writer) WriteArticle(sentences [][]string, labels [][]string) error {
	if len(sentences) != len(labels) {
		return fmt.Errorf("%w: %d sentences, %d label rows", ErrLabelMismatch, len(sentences), len(labels))
	}
	for i := range sentences {
		if len(sentences[i]) != len(labels[i]) {
			return fmt.Errorf("%w: sentence %d has %d tokens, %d labels",
				ErrLabelMismatch, i, len(sentences[i]), len(labels[i]))
		}
	}

	if w.articles > 0 {
		if err := w.w.WriteByte('\n'); err != nil {
			return err
		}
	}
	if err := w.writeLine(DocStart, "O"); err != nil {
		return err
	}
	for i, sentence := range sentences {
		if err := w.w.WriteByte('\n'); err != nil {
			return err
		}
		for j, token := range sentence {
			if err := w.writeLine(token, labels[i][j]); err != nil {
				return err
			}
		}
	}
	w.articles++
	return nil
}

func (w *Writer) writeLine(token, label string) error {
	pad := w.column - utf8.RuneCountInString(token)
	if pad < 1 {
		pad = 1
	}
	if _, err := w.w.WriteString(token); err != nil {
		return err
	}
	if _, err := w.w.WriteString(strings.Repeat(" ", pad)); err != nil {
		return err
	}
	if _, err := w.w.WriteString(label); err != nil {
		return err
	}
	w.lines++
	return w.w.WriteByte('\n')
}

// Flush writes buffered data to the underlying writer.
func (w *Writer) Flush() error { return w.w.Flush() }

// Articles returns the number of articles written.
func (w *Writer) Articles() int { return w.articles }

// Lines returns the number of marker and token lines written.
func (w *Writer) Lines() int { return w.lines }
