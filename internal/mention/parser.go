package mention

import (
	"fmt"
	"slices"
	"strings"

	"github.com/zjrosen/mentions/internal/span"
	"github.com/zjrosen/mentions/internal/textutil"
)

// Parser tokenizes raw values against an ordered, validated list of part
// types. Earlier types take priority: text they match is never offered to
// later types, and the text around each match is.
type Parser struct {
	types []PartType
}

// NewParser validates types and returns a parser for them.
func NewParser(types ...PartType) (*Parser, error) {
	for i, pt := range types {
		if err := validatePartType(pt); err != nil {
			return nil, fmt.Errorf("part type %d: %w", i, err)
		}
	}
	return &Parser{types: slices.Clone(types)}, nil
}

// MustParser is NewParser for statically known part types; it panics on error.
func MustParser(types ...PartType) *Parser {
	p, err := NewParser(types...)
	if err != nil {
		panic(err)
	}
	return p
}

// Types returns the part types in priority order.
func (p *Parser) Types() []PartType {
	return slices.Clone(p.types)
}

// Parse tokenizes raw with spans starting at 0.
func (p *Parser) Parse(raw string) Result {
	return p.ParseAt(raw, 0)
}

// Parse validates types and tokenizes raw in one call.
func Parse(raw string, types []PartType) (Result, error) {
	p, err := NewParser(types...)
	if err != nil {
		return Result{}, err
	}
	return p.Parse(raw), nil
}

// parseTask is a unit of pending work: either text still to be matched
// against types[typeIdx:], or a finished part awaiting its span.
type parseTask struct {
	text    string
	typeIdx int
	part    *Part
}

// ParseAt tokenizes raw with spans starting at offset.
//
// Work is kept on an explicit stack rather than recursing per type, so deeply
// layered inputs cannot exhaust the goroutine stack. Tasks are pushed in
// reverse document order, which makes the pops come out left to right and
// lets spans be assigned from a running position.
func (p *Parser) ParseAt(raw string, offset int) Result {
	var (
		parts []Part
		plain strings.Builder
		pos   = offset
	)

	emit := func(part Part) {
		n := textutil.RuneLen(part.Text)
		part.Span = span.Span{Start: pos, End: pos + n}
		pos += n
		parts = append(parts, part)
		plain.WriteString(part.Text)
	}

	stack := []parseTask{{text: raw}}
	for len(stack) > 0 {
		task := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if task.part != nil {
			emit(*task.part)
			continue
		}
		if task.typeIdx >= len(p.types) {
			emit(PlainTextPart(task.text, 0))
			continue
		}

		pt := p.types[task.typeIdx]
		matches := pt.Expr().FindAllStringSubmatchIndex(task.text, -1)
		if len(matches) == 0 {
			stack = append(stack, parseTask{text: task.text, typeIdx: task.typeIdx + 1})
			continue
		}

		expanded := expandMatches(task, pt, matches)
		for i := len(expanded) - 1; i >= 0; i-- {
			stack = append(stack, expanded[i])
		}
	}

	return Result{Parts: parts, PlainText: plain.String()}
}

// expandMatches splits task.text around the matches of pt, in document order.
// Unmatched text, and mention markup whose trigger belongs to another mention
// type, is handed to the next type.
func expandMatches(task parseTask, pt PartType, matches [][]int) []parseTask {
	next := task.typeIdx + 1
	text := task.text
	out := make([]parseTask, 0, 2*len(matches)+1)

	if matches[0][0] != 0 {
		out = append(out, parseTask{text: text[:matches[0][0]], typeIdx: next})
	}

	for i, m := range matches {
		matched := text[m[0]:m[1]]

		switch typ := pt.(type) {
		case *MentionType:
			data := MentionDataFromMatch(submatches(text, m), typ.Pattern.SubexpNames())
			if data.Trigger != typ.Trigger {
				out = append(out, parseTask{text: matched, typeIdx: next})
			} else {
				part := MentionPart(typ, data, 0)
				out = append(out, parseTask{part: &part})
			}
		default:
			part := PatternPart(pt, matched, 0)
			out = append(out, parseTask{part: &part})
		}

		if m[1] != len(text) {
			end := len(text)
			if i+1 < len(matches) {
				end = matches[i+1][0]
			}
			out = append(out, parseTask{text: text[m[1]:end], typeIdx: next})
		}
	}

	return out
}

// submatches converts an index match into strings; unmatched groups are "".
func submatches(text string, m []int) []string {
	out := make([]string, len(m)/2)
	for i := range out {
		if lo, hi := m[2*i], m[2*i+1]; lo >= 0 && hi >= 0 {
			out[i] = text[lo:hi]
		}
	}
	return out
}

func validatePartType(pt PartType) error {
	switch typ := pt.(type) {
	case nil:
		return fmt.Errorf("%w: nil part type", ErrInvalidPartType)
	case *MentionType:
		if typ == nil {
			return fmt.Errorf("%w: nil mention type", ErrInvalidPartType)
		}
		return typ.Validate()
	case *PatternType:
		if typ == nil || typ.Pattern == nil {
			return fmt.Errorf("%w: pattern type has no pattern", ErrInvalidPartType)
		}
	default:
		if pt.Expr() == nil {
			return fmt.Errorf("%w: part type %T has no pattern", ErrInvalidPartType, pt)
		}
	}
	return nil
}
