// Package spanmap tracks mentions as a side map of spans over display text
// that carries no markup. The map is kept sorted by start offset and is
// reindexed in place as the text grows or shrinks around it.
//
// Offsets are rune offsets; spans are half-open.
package spanmap

import (
	"slices"

	"github.com/zjrosen/mentions/internal/span"
	"github.com/zjrosen/mentions/internal/textdiff"
)

// Record is the metadata attached to a mention span.
type Record struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}

// Entry is a mention span with its record.
type Entry struct {
	Span   span.Span `yaml:"span" json:"span"`
	Record Record    `yaml:"record" json:"record"`
}

// Map holds non-overlapping entries sorted by Span.Start. It is owned by a
// single editor and is not safe for concurrent use.
type Map struct {
	entries []Entry
	version uint64
	differ  *textdiff.Differ
}

// New creates an empty map. differ is used by Apply; nil selects the default.
func New(differ *textdiff.Differ) *Map {
	if differ == nil {
		differ = textdiff.New(textdiff.DefaultTimeout)
	}
	return &Map{differ: differ}
}

// Version increments on every mutation.
func (m *Map) Version() uint64 { return m.version }

// Len returns the number of entries.
func (m *Map) Len() int { return len(m.entries) }

// Entries returns a copy of the entries in start order.
func (m *Map) Entries() []Entry { return slices.Clone(m.entries) }

// Add records e, dropping any existing entry it overlaps.
func (m *Map) Add(e Entry) {
	m.entries = slices.DeleteFunc(m.entries, func(x Entry) bool {
		return span.Overlaps(x.Span, e.Span)
	})
	i, _ := slices.BinarySearchFunc(m.entries, e.Span.Start, func(x Entry, start int) int {
		return x.Span.Start - start
	})
	m.entries = slices.Insert(m.entries, i, e)
	m.version++
}

// Remove deletes the entry with exactly sp and reports whether one existed.
func (m *Map) Remove(sp span.Span) bool {
	i := slices.IndexFunc(m.entries, func(x Entry) bool { return x.Span == sp })
	if i < 0 {
		return false
	}
	m.entries = slices.Delete(m.entries, i, i+1)
	m.version++
	return true
}

// At returns the entry covering pos.
func (m *Map) At(pos int) (Entry, bool) {
	i := slices.IndexFunc(m.entries, func(x Entry) bool { return x.Span.Contains(pos) })
	if i < 0 {
		return Entry{}, false
	}
	return m.entries[i], true
}

// Last returns the entry with the greatest start.
func (m *Map) Last() (Entry, bool) {
	if len(m.entries) == 0 {
		return Entry{}, false
	}
	return m.entries[len(m.entries)-1], true
}

// Selected returns the entries whose first or last character lies within
// the closed range [sel.Start, sel.End].
func (m *Map) Selected(sel span.Span) []Entry {
	var out []Entry
	for _, e := range m.entries {
		if selected(e.Span, sel) {
			out = append(out, e)
		}
	}
	return out
}

func selected(s, sel span.Span) bool {
	return span.Between(s.Start, sel.Start, sel.End) || span.Between(s.End-1, sel.Start, sel.End)
}

// Reindex shifts the entries selected by region by delta, forward on growth
// and backward on shrinkage.
func (m *Map) Reindex(region span.Span, delta int, forward bool) {
	if delta == 0 {
		return
	}
	shifted := false
	for i, e := range m.entries {
		if selected(e.Span, region) {
			m.entries[i].Span = e.Span.Shift(delta, forward)
			shifted = true
		}
	}
	if shifted {
		m.version++
	}
}
