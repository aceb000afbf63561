// Package label assigns entity labels to token positions from span lists.
package label

// Outside is the label of a token not covered by any entity span.
const Outside = "O"

// Span is an inclusive token range [Begin, End] carrying one entity label.
type Span struct {
	Begin int
	End   int
	Label string
}

// Contains reports whether position p lies within the span.
func (s Span) Contains(p int) bool {
	return s.Begin <= p && p <= s.End
}

// Resolve returns one label per token position in [0, n).
//
// spans must be ordered by Begin. A position takes the label of the first
// span containing it, or Outside. The scan for a position stops at the first
// span beginning after it; spans that ended before it are passed over.
func Resolve(n int, spans []Span) []string {
	if n <= 0 {
		return nil
	}

	labels := make([]string, n)
	for p := range labels {
		labels[p] = Outside
		for _, s := range spans {
			if s.Begin > p {
				break
			}
			if s.Contains(p) {
				labels[p] = s.Label
				break
			}
		}
	}
	return labels
}

// Overlaps reports whether any two spans share a position. spans must be
// ordered by Begin. Resolve keeps the first match for shared positions.
func Overlaps(spans []Span) bool {
	maxEnd := -1
	for i, s := range spans {
		if i > 0 && s.Begin <= maxEnd {
			return true
		}
		if s.End > maxEnd {
			maxEnd = s.End
		}
	}
	return false
}
