// Package span provides half-open integer interval arithmetic shared by the
// tokenizer, the reconciler and the span-map reindexer.
//
// All spans are [Start, End): Start is the offset of the first covered rune and
// End is one past the last. An empty span (Start == End) marks a position.
package span

import "fmt"

// Span is a half-open interval of rune offsets.
type Span struct {
	Start int `yaml:"start" json:"start"`
	End   int `yaml:"end" json:"end"`
}

// New returns a span, swapping the bounds if they are reversed.
func New(start, end int) Span {
	if end < start {
		start, end = end, start
	}
	return Span{Start: start, End: end}
}

// At returns an empty span positioned at pos (a caret).
func At(pos int) Span {
	return Span{Start: pos, End: pos}
}

// Len returns the number of offsets covered.
func (s Span) Len() int {
	return s.End - s.Start
}

// IsEmpty reports whether the span covers nothing.
func (s Span) IsEmpty() bool {
	return s.End <= s.Start
}

// IsCaret is an alias of IsEmpty used when the span is a selection.
func (s Span) IsCaret() bool {
	return s.Start == s.End
}

// Contains reports whether x lies in [Start, End).
func (s Span) Contains(x int) bool {
	return s.Start <= x && x < s.End
}

// StrictlyContains reports whether x lies in (Start, End), i.e. a caret at x
// would split the span.
func (s Span) StrictlyContains(x int) bool {
	return s.Start < x && x < s.End
}

// Shift moves both bounds by delta, forward (+delta) or backward (-delta).
func (s Span) Shift(delta int, forward bool) Span {
	if !forward {
		delta = -delta
	}
	return Span{Start: s.Start + delta, End: s.End + delta}
}

// Intersect returns the overlap of a and b. ok is false when they are disjoint.
func Intersect(a, b Span) (Span, bool) {
	start := max(a.Start, b.Start)
	end := min(a.End, b.End)
	if end < start {
		return Span{}, false
	}
	return Span{Start: start, End: end}, true
}

// Overlaps reports whether a and b share at least one offset.
func Overlaps(a, b Span) bool {
	return a.Start < b.End && b.Start < a.End
}

// Between reports lo <= x <= hi (closed on both ends).
func Between(x, lo, hi int) bool {
	return x >= lo && x <= hi
}

func (s Span) String() string {
	return fmt.Sprintf("[%d,%d)", s.Start, s.End)
}
