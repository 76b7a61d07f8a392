// Package textdiff computes character-level diffs between two renderings of
// the same text. Counts are measured in runes so they line up with the offsets
// used by the mention model.
package textdiff

import (
	"time"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DefaultTimeout bounds a single diff. When exceeded the diff degrades to a
// coarser (still valid) result rather than failing.
const DefaultTimeout = time.Second

// Op classifies a run of characters.
type Op int

const (
	// Equal is a run present in both texts.
	Equal Op = iota
	// Insert is a run present only in the new text.
	Insert
	// Delete is a run present only in the old text.
	Delete
)

func (o Op) String() string {
	switch o {
	case Equal:
		return "equal"
	case Insert:
		return "insert"
	case Delete:
		return "delete"
	default:
		return "unknown"
	}
}

// Change is one typed run of a diff.
type Change struct {
	Op    Op
	Text  string
	Count int // rune count of Text
}

// Differ computes diffs with a fixed configuration.
type Differ struct {
	dmp *diffmatchpatch.DiffMatchPatch
}

// New creates a Differ. A zero or negative timeout disables the time bound.
func New(timeout time.Duration) *Differ {
	dmp := diffmatchpatch.New()
	if timeout < 0 {
		timeout = 0
	}
	dmp.DiffTimeout = timeout
	return &Differ{dmp: dmp}
}

var defaultDiffer = New(DefaultTimeout)

// Chars diffs old against new with the default differ.
func Chars(oldText, newText string) []Change {
	return defaultDiffer.Chars(oldText, newText)
}

// Chars returns the ordered runs turning oldText into newText. Replaying the
// Equal and Insert runs yields newText; the Equal and Delete runs consume
// exactly oldText.
//
// No semantic cleanup is applied: merging small equalities into larger
// delete/insert pairs would make untouched mentions look edited.
func (d *Differ) Chars(oldText, newText string) []Change {
	if oldText == newText {
		if oldText == "" {
			return nil
		}
		return []Change{{Op: Equal, Text: oldText, Count: utf8.RuneCountInString(oldText)}}
	}

	diffs := d.dmp.DiffMain(oldText, newText, false)
	changes := make([]Change, 0, len(diffs))
	for _, df := range diffs {
		if df.Text == "" {
			continue
		}
		var op Op
		switch df.Type {
		case diffmatchpatch.DiffInsert:
			op = Insert
		case diffmatchpatch.DiffDelete:
			op = Delete
		default:
			op = Equal
		}
		changes = append(changes, Change{
			Op:    op,
			Text:  df.Text,
			Count: utf8.RuneCountInString(df.Text),
		})
	}
	return changes
}

// Edit is a contiguous modification expressed in old-text coordinates:
// Removed runes starting at At were replaced by Added runes.
type Edit struct {
	At      int
	Removed int
	Added   int
}

// Delta is the net change in length caused by the edit.
func (e Edit) Delta() int {
	return e.Added - e.Removed
}

// Edits folds a change list into contiguous edits. Adjacent delete and insert
// runs at the same position form a single replacement.
func Edits(changes []Change) []Edit {
	var edits []Edit
	cursor := 0
	var pending *Edit

	flush := func() {
		if pending != nil {
			edits = append(edits, *pending)
			pending = nil
		}
	}

	for _, c := range changes {
		switch c.Op {
		case Equal:
			flush()
			cursor += c.Count
		case Delete:
			if pending == nil {
				pending = &Edit{At: cursor}
			}
			pending.Removed += c.Count
			cursor += c.Count
		case Insert:
			if pending == nil {
				pending = &Edit{At: cursor}
			}
			pending.Added += c.Count
		}
	}
	flush()

	return edits
}

// Apply replays changes and returns the reconstructed new text. It exists for
// verification of the diff contract.
func Apply(changes []Change) (oldText, newText string) {
	var o, n []byte
	for _, c := range changes {
		switch c.Op {
		case Equal:
			o = append(o, c.Text...)
			n = append(n, c.Text...)
		case Delete:
			o = append(o, c.Text...)
		case Insert:
			n = append(n, c.Text...)
		}
	}
	return string(o), string(n)
}
