package spanmap

import (
	"math"
	"slices"
	"unicode"

	"github.com/zjrosen/mentions/internal/log"
	"github.com/zjrosen/mentions/internal/span"
	"github.com/zjrosen/mentions/internal/textdiff"
)

// EditKind classifies an edit by its net effect on text length.
type EditKind int

const (
	Unchanged EditKind = iota
	Growth
	Shrink
	Replace
)

func (k EditKind) String() string {
	switch k {
	case Unchanged:
		return "unchanged"
	case Growth:
		return "growth"
	case Shrink:
		return "shrink"
	case Replace:
		return "replace"
	default:
		return "unknown"
	}
}

// EditSummary describes what Apply did to the map.
type EditSummary struct {
	Kind    EditKind
	Delta   int
	Edits   []textdiff.Edit
	Removed []Entry
}

// Apply reindexes the map for a change from oldText to newText. Entries
// touched by a deletion, or split by an insertion, decay to plain text and
// are removed; entries after each edit shift by its delta.
func (m *Map) Apply(oldText, newText string) EditSummary {
	edits := textdiff.Edits(m.differ.Chars(oldText, newText))

	summary := EditSummary{Edits: edits}
	for _, e := range edits {
		summary.Delta += e.Delta()
	}
	switch {
	case len(edits) == 0:
		summary.Kind = Unchanged
		return summary
	case summary.Delta > 0:
		summary.Kind = Growth
	case summary.Delta < 0:
		summary.Kind = Shrink
	default:
		summary.Kind = Replace
	}

	// Later edits first, so earlier edits still see old-text offsets.
	for _, e := range slices.Backward(edits) {
		summary.Removed = append(summary.Removed, m.applyEdit(e)...)
	}

	log.Debug(log.CatSpanMap, "applied edit",
		"kind", summary.Kind, "delta", summary.Delta,
		"edits", len(edits), "removed", len(summary.Removed), "entries", len(m.entries))

	return summary
}

func (m *Map) applyEdit(e textdiff.Edit) []Entry {
	removed := span.Span{Start: e.At, End: e.At + e.Removed}

	var damaged []Entry
	m.entries = slices.DeleteFunc(m.entries, func(x Entry) bool {
		hit := span.Overlaps(x.Span, removed) || (e.Added > 0 && x.Span.StrictlyContains(e.At))
		if hit {
			damaged = append(damaged, x)
		}
		return hit
	})
	if len(damaged) > 0 {
		m.version++
	}

	delta := e.Delta()
	if delta != 0 {
		m.Reindex(span.Span{Start: removed.End, End: math.MaxInt}, abs(delta), delta > 0)
	}
	return damaged
}

// Insert replaces the keyword typed before the caret with trigger+rec.Name
// followed by a space, and records the new mention. The keyword starts at
// the last trigger before the caret that starts the text or follows
// whitespace; with no such trigger the label is inserted at the caret.
//
// It returns the new text and the caret after the inserted space.
func (m *Map) Insert(text string, sel span.Span, rec Record, trigger string) (string, int) {
	runes := []rune(text)
	caret := min(max(sel.End, 0), len(runes))

	start := keywordStart(runes, []rune(trigger), caret)
	if start < 0 {
		start = caret
	}

	label := []rune(trigger + rec.Name)
	out := slices.Concat(runes[:start], label, []rune(" "), runes[caret:])

	m.applyEdit(textdiff.Edit{At: start, Removed: caret - start, Added: len(label) + 1})
	m.Add(Entry{Span: span.Span{Start: start, End: start + len(label)}, Record: rec})

	log.Debug(log.CatSpanMap, "inserted mention", "id", rec.ID, "at", start, "len", len(label))

	return string(out), start + len(label) + 1
}

func keywordStart(runes, trigger []rune, caret int) int {
	if len(trigger) == 0 {
		return -1
	}
	for i := caret - len(trigger); i >= 0; i-- {
		if slices.Equal(runes[i:i+len(trigger)], trigger) {
			if i > 0 && !unicode.IsSpace(runes[i-1]) {
				return -1
			}
			return i
		}
		if runes[i] == '\n' {
			return -1
		}
	}
	return -1
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
