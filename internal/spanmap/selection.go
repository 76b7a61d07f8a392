package spanmap

import "github.com/zjrosen/mentions/internal/span"

// SnapSelection widens or narrows sel so that no boundary falls strictly
// inside a mention. A growing selection (wider than prev) snaps outward to
// include the whole mention; a shrinking one snaps away from it.
func (m *Map) SnapSelection(sel, prev span.Span) span.Span {
	growing := prev.Len() < sel.Len()
	for _, e := range m.entries {
		s := e.Span
		if growing {
			if s.StrictlyContains(sel.Start) {
				sel.Start = s.Start
			}
			if s.StrictlyContains(sel.End) {
				sel.End = s.End
			}
			continue
		}
		if s.StrictlyContains(sel.Start) {
			sel.Start = s.End
		}
		if s.StrictlyContains(sel.End) {
			sel.End = s.Start
		}
	}
	if sel.Start > sel.End {
		sel.End = sel.Start
	}
	return sel
}

// MoveCursor moves a caret that landed strictly inside a mention to the
// mention's edge in the direction of travel. While tracking (a keyword is
// being typed) the selection is returned unchanged.
func (m *Map) MoveCursor(sel, prev span.Span, tracking bool) span.Span {
	if tracking {
		return sel
	}
	for _, e := range m.entries {
		if !e.Span.StrictlyContains(sel.Start) {
			continue
		}
		if prev.Start > sel.Start {
			return span.At(e.Span.Start)
		}
		return span.At(e.Span.End)
	}
	return sel
}
