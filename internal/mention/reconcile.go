package mention

import (
	"slices"

	"github.com/zjrosen/mentions/internal/log"
	"github.com/zjrosen/mentions/internal/textdiff"
	"github.com/zjrosen/mentions/internal/textutil"
)

// Reconciler folds edits of the plain text back into parts and a raw value.
type Reconciler struct {
	differ *textdiff.Differ
}

// NewReconciler creates a reconciler using differ; nil selects the default.
func NewReconciler(differ *textdiff.Differ) *Reconciler {
	if differ == nil {
		differ = textdiff.New(textdiff.DefaultTimeout)
	}
	return &Reconciler{differ: differ}
}

var defaultReconciler = NewReconciler(nil)

// Reconcile is Reconciler.Reconcile with the default differ.
func Reconcile(parts []Part, oldPlain, newPlain string) (string, []Part) {
	return defaultReconciler.Reconcile(parts, oldPlain, newPlain)
}

// Reconcile diffs oldPlain against newPlain and replays the diff over parts,
// which must partition oldPlain. Unchanged regions reuse the old parts
// (keeping mention metadata) when a part survives whole, and decay to plain
// text when only a fragment survives. Inserted text becomes plain parts.
//
// It returns the new raw value and parts partitioning newPlain.
func (r *Reconciler) Reconcile(parts []Part, oldPlain, newPlain string) (string, []Part) {
	if oldPlain == newPlain {
		out := slices.Clone(parts)
		return Value(out), out
	}

	base := 0
	if len(parts) > 0 {
		base = parts[0].Span.Start
	}

	var next []Part
	cursor := base
	for _, c := range r.differ.Chars(oldPlain, newPlain) {
		switch c.Op {
		case textdiff.Delete:
			cursor += c.Count
		case textdiff.Insert:
			next = append(next, PlainTextPart(c.Text, 0))
		case textdiff.Equal:
			if c.Count == 0 {
				continue
			}
			interval := PartsInterval(parts, cursor, c.Count)
			if len(interval) == 0 {
				log.Warn(log.CatReconcile, "no parts cover unchanged run",
					"cursor", cursor, "count", c.Count, "parts", len(parts))
			}
			next = append(next, interval...)
			cursor += c.Count
		}
	}

	if len(next) == 0 {
		next = []Part{PlainTextPart("", base)}
	}
	next = reposition(mergePlain(next), base)
	value := Value(next)

	log.Debug(log.CatReconcile, "reconciled edit",
		"old_len", textutil.RuneLen(oldPlain), "new_len", textutil.RuneLen(newPlain),
		"parts_before", len(parts), "parts_after", len(next))

	return value, next
}

// PartsInterval returns the parts covering [cursor, cursor+count) of the text
// partitioned by parts. A part lying wholly inside the interval is reused as
// is; a part cut by either end is replaced by a plain part holding the
// surviving fragment, dropping any mention metadata. Synthesized parts keep
// old-text spans.
//
// An interval that does not start and end inside known parts yields nil.
func PartsInterval(parts []Part, cursor, count int) []Part {
	if count <= 0 {
		return nil
	}
	end := cursor + count

	first := slices.IndexFunc(parts, func(p Part) bool {
		return cursor >= p.Span.Start && cursor < p.Span.End
	})
	last := slices.IndexFunc(parts, func(p Part) bool {
		return end > p.Span.Start && end <= p.Span.End
	})
	if first < 0 || last < 0 || last < first {
		return nil
	}

	var out []Part

	fp := parts[first]
	if fp.Span.Start == cursor && fp.Span.End <= end {
		out = append(out, fp)
	} else {
		from := cursor - fp.Span.Start
		out = append(out, PlainTextPart(textutil.RuneSlice(fp.Text, from, from+count), cursor))
	}

	if last > first {
		out = append(out, parts[first+1:last]...)

		lp := parts[last]
		if lp.Span.End == end && lp.Span.Start >= cursor {
			out = append(out, lp)
		} else {
			out = append(out, PlainTextPart(textutil.RuneSlice(lp.Text, 0, end-lp.Span.Start), lp.Span.Start))
		}
	}

	return out
}
