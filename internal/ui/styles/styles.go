// Package styles contains Lip Gloss style definitions.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/mentions/internal/mention"
)

var (
	// Text hierarchy
	TextPrimaryColor     = lipgloss.AdaptiveColor{Light: "#333333", Dark: "#CCCCCC"}
	TextMutedColor       = lipgloss.AdaptiveColor{Light: "#999999", Dark: "#696969"} // Hints, help text, footers
	TextPlaceholderColor = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#777777"}

	// Borders
	BorderDefaultColor = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#696969"}
	BorderFocusColor   = lipgloss.AdaptiveColor{Light: "#54A0FF", Dark: "#54A0FF"}

	// Status
	StatusSuccessColor = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	StatusErrorColor   = lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF8787"}

	// Selection indicator color (">" prefix in the suggestion list)
	SelectionIndicatorColor = lipgloss.AdaptiveColor{Light: "#1A5276", Dark: "#FFFFFF"}

	// Part tags (Catppuccin Mocha accents)
	TagMentionColor   = lipgloss.AdaptiveColor{Light: "#1E66F5", Dark: "#89B4FA"} // blue
	TagHashtagColor   = lipgloss.AdaptiveColor{Light: "#40A02B", Dark: "#A6E3A1"} // green
	TagStrongColor    = lipgloss.AdaptiveColor{Light: "#D20F39", Dark: "#F38BA8"} // red
	TagItalicColor    = lipgloss.AdaptiveColor{Light: "#8839EF", Dark: "#CBA6F7"} // mauve
	TagUnderlineColor = lipgloss.AdaptiveColor{Light: "#179299", Dark: "#94E2D5"} // teal

	SelectionIndicatorStyle = lipgloss.NewStyle().Bold(true).Foreground(SelectionIndicatorColor)

	PlaceholderStyle = lipgloss.NewStyle().Foreground(TextPlaceholderColor)

	StatusBarStyle = lipgloss.NewStyle().
			Foreground(TextMutedColor).
			Padding(0, 1)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(StatusErrorColor).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().Foreground(StatusSuccessColor)

	tagStyles = buildTagStyles()
)

func buildTagStyles() map[string]lipgloss.Style {
	return map[string]lipgloss.Style{
		mention.TagMention:   lipgloss.NewStyle().Foreground(TagMentionColor).Bold(true),
		mention.TagHashtag:   lipgloss.NewStyle().Foreground(TagHashtagColor),
		mention.TagStrong:    lipgloss.NewStyle().Foreground(TagStrongColor).Bold(true),
		mention.TagItalic:    lipgloss.NewStyle().Foreground(TagItalicColor).Italic(true),
		mention.TagUnderline: lipgloss.NewStyle().Foreground(TagUnderlineColor).Underline(true),
	}
}

// TagStyle returns the style for parts tagged tag. Unknown tags render
// unstyled.
func TagStyle(tag string) lipgloss.Style {
	if s, ok := tagStyles[tag]; ok {
		return s
	}
	return lipgloss.NewStyle()
}

// PartStyle returns the style for a part: color overrides the tag's
// foreground when set.
func PartStyle(tag, color string) lipgloss.Style {
	s := TagStyle(tag)
	if color != "" {
		s = s.Foreground(lipgloss.Color(color))
	}
	return s
}
