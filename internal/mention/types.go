// Package mention segments raw rich-text values into typed parts and keeps
// that segmentation consistent while the rendered plain text is edited.
//
// A raw value such as "Hello <@123>" is tokenized against an ordered list of
// part types into Parts ("Hello ", "@123") whose spans partition the plain
// text. Edits to the plain text are folded back into a raw value by diffing
// old and new plain text and replaying the diff over the old Parts, so
// mention metadata survives edits that do not touch it.
//
// All offsets are rune offsets into the plain text; spans are half-open.
package mention

import (
	"errors"
	"fmt"
	"regexp"
	"slices"

	"github.com/zjrosen/mentions/internal/span"
)

// ErrInvalidPartType is returned when a part type cannot be used for parsing.
var ErrInvalidPartType = errors.New("invalid part type")

// Style tags understood by renderers.
const (
	TagHashtag   = "hashtag"
	TagItalic    = "italic"
	TagMention   = "mention"
	TagStrong    = "strong"
	TagUnderline = "underline"
)

// Selection is a caret (Start == End) or a selected range of the plain text.
type Selection = span.Span

// PartType is a rule recognizing a kind of markup in raw values.
type PartType interface {
	// Expr returns the pattern locating this type's markup.
	Expr() *regexp.Regexp
	// Tag returns the style tag renderers use for parts of this type.
	Tag() string
}

// PatternType matches arbitrary substrings (hashtags, URLs) that are displayed
// verbatim.
type PatternType struct {
	Name    string
	Pattern *regexp.Regexp
	Style   string
}

// Expr implements PartType.
func (t *PatternType) Expr() *regexp.Regexp { return t.Pattern }

// Tag implements PartType.
func (t *PatternType) Tag() string {
	if t.Style != "" {
		return t.Style
	}
	return t.Name
}

// RenderPosition places a mention type's suggestion list relative to the input.
type RenderPosition string

const (
	RenderTop    RenderPosition = "top"
	RenderBottom RenderPosition = "bottom"
)

// LabelFunc produces the display label of a mention.
type LabelFunc func(MentionData) string

// MarkupFunc produces the raw markup persisted for a chosen suggestion.
type MarkupFunc func(trigger string, s Suggestion) string

// MentionType matches mention markup carrying a trigger and an id. Its
// pattern must expose them as named groups "trigger" and "id", or as the
// first two positional groups. An optional "name" group fills MentionData.Name.
type MentionType struct {
	Name    string
	Trigger string
	Pattern *regexp.Regexp
	Style   string

	// Label renders the mention; DefaultLabel when nil.
	Label LabelFunc
	// Markup serializes a chosen suggestion; DefaultMarkup when nil.
	Markup MarkupFunc

	// AllowedSpacesCount is how many spaces a keyword may contain before the
	// trigger stops being active.
	AllowedSpacesCount int
	// InsertSpaceAfter appends a space after an inserted mention when the
	// caret is at the end of the text or of a line.
	InsertSpaceAfter bool
	RenderPosition   RenderPosition
}

// Expr implements PartType.
func (t *MentionType) Expr() *regexp.Regexp { return t.Pattern }

// Tag implements PartType.
func (t *MentionType) Tag() string {
	if t.Style != "" {
		return t.Style
	}
	return TagMention
}

// Validate reports configuration errors that would make parsing misbehave.
func (t *MentionType) Validate() error {
	if t.Trigger == "" {
		return fmt.Errorf("%w: mention type %q has an empty trigger", ErrInvalidPartType, t.Name)
	}
	if t.Pattern == nil {
		return fmt.Errorf("%w: mention type %q has no pattern", ErrInvalidPartType, t.Name)
	}
	names := t.Pattern.SubexpNames()
	if slices.Contains(names, "trigger") && slices.Contains(names, "id") {
		return nil
	}
	if t.Pattern.NumSubexp() >= 2 {
		return nil
	}
	return fmt.Errorf("%w: mention type %q pattern %q needs trigger and id groups",
		ErrInvalidPartType, t.Name, t.Pattern.String())
}

func (t *MentionType) label(data MentionData) string {
	if t.Label != nil {
		return t.Label(data)
	}
	return DefaultLabel(data)
}

func (t *MentionType) markup(s Suggestion) string {
	if t.Markup != nil {
		return t.Markup(t.Trigger, s)
	}
	return DefaultMarkup(t.Trigger, s)
}

// DefaultLabel renders trigger followed by the name, or the id when no name
// is known.
func DefaultLabel(data MentionData) string {
	if data.Name != "" {
		return data.Trigger + data.Name
	}
	return data.Trigger + data.ID
}

// DefaultMarkup renders "<" + trigger + id + ">".
func DefaultMarkup(trigger string, s Suggestion) string {
	return "<" + trigger + s.ID + ">"
}

// MentionData is the metadata of a resolved mention. Original is the raw
// markup and is what gets written back when the value is serialized; it
// cannot be recovered from the label.
type MentionData struct {
	ID       string   `yaml:"id" json:"id"`
	Name     string   `yaml:"name,omitempty" json:"name,omitempty"`
	Trigger  string   `yaml:"trigger" json:"trigger"`
	Original string   `yaml:"original" json:"original"`
	Match    []string `yaml:"-" json:"-"`
}

// Part is one segment of the plain text. A Part without Type is plain text;
// a Part with Data is a mention.
type Part struct {
	Text string       `yaml:"text" json:"text"`
	Span span.Span    `yaml:"span" json:"span"`
	Type PartType     `yaml:"-" json:"-"`
	Data *MentionData `yaml:"data,omitempty" json:"data,omitempty"`
}

// IsPlain reports whether p carries no part type.
func (p Part) IsPlain() bool { return p.Type == nil }

// IsMention reports whether p carries mention metadata.
func (p Part) IsMention() bool { return p.Data != nil }

// Suggestion is a candidate a caller may insert for an active keyword. Only
// ID is interpreted by this package.
type Suggestion struct {
	ID    string            `yaml:"id" json:"id"`
	Name  string            `yaml:"name,omitempty" json:"name,omitempty"`
	Extra map[string]string `yaml:"extra,omitempty" json:"extra,omitempty"`
}

// Result is the output of tokenizing a raw value.
type Result struct {
	Parts     []Part
	PlainText string
}

// MentionTypes returns the mention types among types, in order.
func MentionTypes(types []PartType) []*MentionType {
	var out []*MentionType
	for _, pt := range types {
		if mt, ok := pt.(*MentionType); ok {
			out = append(out, mt)
		}
	}
	return out
}

// MentionTypesAt returns the mention types whose suggestions render at pos.
// Types without a position render at the top.
func MentionTypesAt(types []PartType, pos RenderPosition) []*MentionType {
	var out []*MentionType
	for _, mt := range MentionTypes(types) {
		p := mt.RenderPosition
		if p == "" {
			p = RenderTop
		}
		if p == pos {
			out = append(out, mt)
		}
	}
	return out
}
