package config

import (
	"fmt"
	"regexp"
	"strings"
	"text/template"

	"github.com/zjrosen/mentions/internal/log"
	"github.com/zjrosen/mentions/internal/mention"
)

// NameLookup resolves a mention id to a suggestion, typically from the
// directory, so labels can show names the markup does not carry.
type NameLookup func(id string) (mention.Suggestion, bool)

// BuildPartTypes compiles declarations into part types, in order. lookup
// may be nil.
func BuildPartTypes(types []PartTypeConfig, lookup NameLookup) ([]mention.PartType, error) {
	if err := ValidatePartTypes(types); err != nil {
		return nil, err
	}

	out := make([]mention.PartType, 0, len(types))
	for _, pt := range types {
		re := regexp.MustCompile(pt.Pattern)

		if !pt.IsMention() {
			out = append(out, &mention.PatternType{Name: pt.Name, Pattern: re, Style: pt.Style})
			continue
		}

		mt := &mention.MentionType{
			Name:               pt.Name,
			Trigger:            pt.Trigger,
			Pattern:            re,
			Style:              pt.Style,
			AllowedSpacesCount: pt.AllowedSpaces,
			InsertSpaceAfter:   pt.InsertSpaceAfter,
			RenderPosition:     mention.RenderPosition(pt.RenderPosition),
		}
		if pt.Label != "" || lookup != nil {
			mt.Label = labelFunc(pt, lookup)
		}
		if pt.Markup != "" {
			mt.Markup = markupFunc(pt)
		}
		if err := mt.Validate(); err != nil {
			return nil, fmt.Errorf("%w: part type %s: %w", ErrInvalidConfig, pt.Name, err)
		}
		out = append(out, mt)
	}

	log.Debug(log.CatConfig, "built part types", "count", len(out))
	return out, nil
}

func labelFunc(pt PartTypeConfig, lookup NameLookup) mention.LabelFunc {
	var tmpl *template.Template
	if pt.Label != "" {
		tmpl = template.Must(template.New(pt.Name + ".label").Parse(pt.Label))
	}

	return func(data mention.MentionData) string {
		if data.Name == "" && lookup != nil {
			if s, ok := lookup(data.ID); ok {
				data.Name = s.Name
			}
		}
		if tmpl == nil {
			return mention.DefaultLabel(data)
		}
		var b strings.Builder
		if err := tmpl.Execute(&b, data); err != nil {
			log.Warn(log.CatConfig, "label template failed", "type", pt.Name, "id", data.ID, "error", err)
			return mention.DefaultLabel(data)
		}
		return b.String()
	}
}

type markupData struct {
	Trigger string
	ID      string
	Name    string
}

func markupFunc(pt PartTypeConfig) mention.MarkupFunc {
	tmpl := template.Must(template.New(pt.Name + ".markup").Parse(pt.Markup))

	return func(trigger string, s mention.Suggestion) string {
		var b strings.Builder
		if err := tmpl.Execute(&b, markupData{Trigger: trigger, ID: s.ID, Name: s.Name}); err != nil {
			log.Warn(log.CatConfig, "markup template failed", "type", pt.Name, "id", s.ID, "error", err)
			return mention.DefaultMarkup(trigger, s)
		}
		return b.String()
	}
}
