package mention

import (
	"slices"
	"unicode"

	"github.com/zjrosen/mentions/internal/span"
)

// Keywords reports, per mention trigger, the keyword being typed at the
// caret. A trigger is present in the result only when it is active; an empty
// keyword means the caret sits right after the trigger.
//
// A trigger is active when the selection is a caret inside a non-mention
// part, the nearest preceding trigger lies within that part, starts the text
// or follows whitespace, and no newline and at most AllowedSpacesCount spaces
// separate it from the caret.
func Keywords(parts []Part, plainText string, sel Selection, types []PartType) map[string]string {
	out := make(map[string]string)
	if !sel.IsCaret() {
		return out
	}

	caret := sel.End
	idx := slices.IndexFunc(parts, func(p Part) bool {
		return caret > p.Span.Start && caret <= p.Span.End
	})
	if idx < 0 || parts[idx].IsMention() {
		return out
	}

	runes := []rune(plainText)
	if caret > len(runes) {
		return out
	}

	for _, mt := range MentionTypes(types) {
		if keyword, ok := keywordFor(runes, parts[idx].Span, caret, mt); ok {
			out[mt.Trigger] = keyword
		}
	}
	return out
}

func keywordFor(runes []rune, part span.Span, caret int, mt *MentionType) (string, bool) {
	trigger := []rune(mt.Trigger)
	at := lastIndexBefore(runes, trigger, caret)
	if at < 0 || at < part.Start {
		return "", false
	}
	if at > 0 && !unicode.IsSpace(runes[at-1]) {
		return "", false
	}

	spaces := 0
	for i := caret - 1; i >= at+len(trigger); i-- {
		switch runes[i] {
		case '\n':
			return "", false
		case ' ':
			spaces++
			if spaces > mt.AllowedSpacesCount {
				return "", false
			}
		}
	}

	return string(runes[at+len(trigger) : caret]), true
}

// lastIndexBefore returns the start of the last occurrence of needle that
// ends at or before limit, or -1.
func lastIndexBefore(haystack, needle []rune, limit int) int {
	if len(needle) == 0 {
		return -1
	}
	limit = min(limit, len(haystack))
	for i := limit - len(needle); i >= 0; i-- {
		if slices.Equal(haystack[i:i+len(needle)], needle) {
			return i
		}
	}
	return -1
}
