package spanmap

import (
	"regexp"
	"strings"

	"github.com/zjrosen/mentions/internal/log"
	"github.com/zjrosen/mentions/internal/span"
	"github.com/zjrosen/mentions/internal/textdiff"
	"github.com/zjrosen/mentions/internal/textutil"
)

// Trigger prefixes every mention label produced from markup.
const Trigger = "@"

// markupRe matches "@[name](id:xxx)".
var markupRe = regexp.MustCompile(`@\[([^\]]+?)\]\(id:([^\]]+?)\)`)

// Parse decodes mention markup line by line into display text, where each
// mention shows as "@name", and a map of the mention spans in that text.
func Parse(raw string, differ *textdiff.Differ) (string, *Map) {
	m := New(differ)
	if raw == "" {
		return "", m
	}

	var b strings.Builder
	pos := 0
	for i, line := range strings.Split(raw, "\n") {
		if i > 0 {
			b.WriteByte('\n')
			pos++
		}
		last := 0
		for _, loc := range markupRe.FindAllStringSubmatchIndex(line, -1) {
			before := line[last:loc[0]]
			b.WriteString(before)
			pos += textutil.RuneLen(before)

			label := Trigger + line[loc[2]:loc[3]]
			b.WriteString(label)
			n := textutil.RuneLen(label)
			m.entries = append(m.entries, Entry{
				Span:   span.Span{Start: pos, End: pos + n},
				Record: Record{ID: line[loc[4]:loc[5]], Name: line[loc[2]:loc[3]]},
			})
			pos += n
			last = loc[1]
		}
		rest := line[last:]
		b.WriteString(rest)
		pos += textutil.RuneLen(rest)
	}

	log.Debug(log.CatSpanMap, "parsed markup", "mentions", len(m.entries), "len", pos)

	return b.String(), m
}

// Raw encodes text back into markup, replacing every mapped span with
// "@[name](id:xxx)". Entries that no longer fit text are skipped.
func (m *Map) Raw(text string) string {
	var b strings.Builder
	for _, seg := range m.Segments(text) {
		if seg.Entry == nil {
			b.WriteString(seg.Text)
			continue
		}
		b.WriteString("@[" + seg.Entry.Record.Name + "](id:" + seg.Entry.Record.ID + ")")
	}
	return b.String()
}

// Segment is a run of display text, either plain or a mapped mention.
type Segment struct {
	Text  string
	Entry *Entry
}

// Segments splits text into plain and mention segments in order. An empty
// plain segment is never produced.
func (m *Map) Segments(text string) []Segment {
	runes := []rune(text)
	var out []Segment
	pos := 0
	for _, e := range m.entries {
		if e.Span.Start < pos || e.Span.End > len(runes) {
			log.Warn(log.CatSpanMap, "entry outside text", "span", e.Span, "len", len(runes))
			continue
		}
		if e.Span.Start > pos {
			out = append(out, Segment{Text: string(runes[pos:e.Span.Start])})
		}
		out = append(out, Segment{Text: string(runes[e.Span.Start:e.Span.End]), Entry: &e})
		pos = e.Span.End
	}
	if pos < len(runes) {
		out = append(out, Segment{Text: string(runes[pos:])})
	}
	return out
}
