package mention

import (
	"strings"

	"github.com/zjrosen/mentions/internal/span"
	"github.com/zjrosen/mentions/internal/textutil"
)

// PlainTextPart builds a plain part whose span starts at offset.
func PlainTextPart(text string, offset int) Part {
	return Part{
		Text: text,
		Span: span.Span{Start: offset, End: offset + textutil.RuneLen(text)},
	}
}

// MentionPart builds a mention part labelled by mt.
func MentionPart(mt *MentionType, data MentionData, offset int) Part {
	text := mt.label(data)
	return Part{
		Text: text,
		Span: span.Span{Start: offset, End: offset + textutil.RuneLen(text)},
		Type: mt,
		Data: &data,
	}
}

// PatternPart builds a part for a pattern match displayed verbatim.
func PatternPart(pt PartType, text string, offset int) Part {
	return Part{
		Text: text,
		Span: span.Span{Start: offset, End: offset + textutil.RuneLen(text)},
		Type: pt,
	}
}

// MentionDataFromMatch extracts mention data from a regexp submatch slice.
// Named groups "trigger", "id" and "name" win over positional groups 1 and 2.
func MentionDataFromMatch(match []string, names []string) MentionData {
	data := MentionData{Match: match}
	if len(match) == 0 {
		return data
	}
	data.Original = match[0]

	named := func(name string) (string, bool) {
		for i, n := range names {
			if n == name && i < len(match) {
				return match[i], true
			}
		}
		return "", false
	}

	if v, ok := named("trigger"); ok {
		data.Trigger = v
	} else if len(match) > 1 {
		data.Trigger = match[1]
	}
	if v, ok := named("id"); ok {
		data.ID = v
	} else if len(match) > 2 {
		data.ID = match[2]
	}
	if v, ok := named("name"); ok {
		data.Name = v
	}
	return data
}

// Value serializes parts back into a raw value: mentions contribute their
// original markup, everything else its text.
func Value(parts []Part) string {
	var b strings.Builder
	for _, p := range parts {
		if p.Data != nil {
			b.WriteString(p.Data.Original)
		} else {
			b.WriteString(p.Text)
		}
	}
	return b.String()
}

// PlainText concatenates the display text of parts.
func PlainText(parts []Part) string {
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(p.Text)
	}
	return b.String()
}

// reposition returns parts with spans laid out contiguously from offset.
func reposition(parts []Part, offset int) []Part {
	out := make([]Part, len(parts))
	pos := offset
	for i, p := range parts {
		n := textutil.RuneLen(p.Text)
		p.Span = span.Span{Start: pos, End: pos + n}
		out[i] = p
		pos += n
	}
	return out
}

// mergePlain joins runs of adjacent plain parts so a keyword typed across
// several keystrokes lives in a single part, as it would after a fresh parse.
func mergePlain(parts []Part) []Part {
	out := make([]Part, 0, len(parts))
	for _, p := range parts {
		if n := len(out); n > 0 && p.IsPlain() && out[n-1].IsPlain() {
			out[n-1].Text += p.Text
			out[n-1].Span.End = p.Span.End
			continue
		}
		out = append(out, p)
	}
	return out
}
