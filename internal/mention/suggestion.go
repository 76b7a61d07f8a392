package mention

import (
	"slices"

	"github.com/zjrosen/mentions/internal/log"
	"github.com/zjrosen/mentions/internal/textutil"
)

// separator is inserted after a mention when its type asks for one.
const separator = " "

// Composition is the outcome of inserting a suggestion.
type Composition struct {
	// Value is the new raw value.
	Value string
	// Parts partition the new plain text.
	Parts []Part
	// Caret is the plain-text offset just after the inserted mention and
	// any separator.
	Caret int
}

// InsertSuggestion replaces the keyword typed before the caret with a mention
// of s and returns the new raw value. ok is false when the caret is outside
// every part, which means parts and plainText are out of sync.
func InsertSuggestion(parts []Part, mt *MentionType, plainText string, sel Selection, s Suggestion) (string, bool) {
	c, ok := ComposeSuggestion(parts, mt, plainText, sel, s)
	if !ok {
		return "", false
	}
	return c.Value, true
}

type insertMode int

const (
	insertInside insertMode = iota
	insertBefore
	insertAfter
)

// ComposeSuggestion is InsertSuggestion returning the composed parts and the
// caret position as well.
//
// The keyword replaced runs from the last trigger before the caret, within
// the caret's part, up to the caret; with no trigger the mention is inserted
// at the caret. A caret on the edge of a mention inserts beside it, so
// repeated insertions at the end of the text append.
func ComposeSuggestion(parts []Part, mt *MentionType, plainText string, sel Selection, s Suggestion) (Composition, bool) {
	caret := sel.End
	idx, mode := locateInsertion(parts, caret)
	if idx < 0 {
		log.Warn(log.CatSuggest, "caret outside all parts; parts and plain text out of sync",
			"caret", caret, "parts", len(parts), "plain_len", textutil.RuneLen(plainText))
		return Composition{}, false
	}

	var (
		current        Part
		prefix, suffix []Part
	)
	switch mode {
	case insertInside:
		current, prefix, suffix = parts[idx], parts[:idx], parts[idx+1:]
	case insertBefore:
		current, prefix, suffix = PlainTextPart("", caret), parts[:idx], parts[idx:]
	case insertAfter:
		current, prefix, suffix = PlainTextPart("", caret), parts[:idx+1], parts[idx+1:]
	}

	text := []rune(current.Text)
	local := caret - current.Span.Start
	start := lastIndexBefore(text, []rune(mt.Trigger), local)
	if start < 0 {
		start = local
	}

	sep := ""
	if mt.InsertSpaceAfter {
		plain := []rune(plainText)
		if caret >= len(plain) || plain[caret] == '\n' {
			sep = separator
		}
	}

	mentionPart := MentionPart(mt, suggestionData(mt, s), 0)

	base := 0
	if len(parts) > 0 {
		base = parts[0].Span.Start
	}
	composed := reposition(slices.Concat(
		prefix,
		[]Part{
			PlainTextPart(string(text[:start]), 0),
			mentionPart,
			PlainTextPart(sep+string(text[local:]), 0),
		},
		suffix,
	), base)

	mentionIdx := len(prefix) + 1
	result := Composition{
		Value: Value(composed),
		Parts: composed,
		Caret: composed[mentionIdx].Span.End + textutil.RuneLen(sep),
	}

	log.Debug(log.CatSuggest, "inserted suggestion",
		"trigger", mt.Trigger, "id", s.ID, "caret", caret, "new_caret", result.Caret)

	return result, true
}

// suggestionData returns the metadata a later parse of the suggestion's
// markup yields, so the composed label survives re-tokenizing the value.
// Markup the pattern does not match falls back to the suggestion's fields.
func suggestionData(mt *MentionType, s Suggestion) MentionData {
	markup := mt.markup(s)
	if m := mt.Pattern.FindStringSubmatch(markup); m != nil && m[0] == markup {
		data := MentionDataFromMatch(m, mt.Pattern.SubexpNames())
		if data.Trigger == mt.Trigger {
			return data
		}
	}
	return MentionData{ID: s.ID, Name: s.Name, Trigger: mt.Trigger, Original: markup}
}

// locateInsertion finds the part hosting a caret. Plain and pattern parts
// win; a caret touching only a mention inserts before or after it.
func locateInsertion(parts []Part, caret int) (int, insertMode) {
	touches := func(p Part) bool {
		return caret >= p.Span.Start && caret <= p.Span.End
	}

	if i := slices.IndexFunc(parts, func(p Part) bool { return !p.IsMention() && touches(p) }); i >= 0 {
		return i, insertInside
	}

	i := slices.IndexFunc(parts, touches)
	if i < 0 {
		return -1, insertInside
	}
	if caret == parts[i].Span.Start {
		return i, insertBefore
	}
	return i, insertAfter
}
