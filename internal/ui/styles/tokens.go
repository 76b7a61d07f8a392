package styles

// ColorToken represents a named, themeable color.
type ColorToken string

// Color tokens users can override under theme.colors.
const (
	TokenTextPrimary     ColorToken = "text.primary"
	TokenTextMuted       ColorToken = "text.muted"
	TokenTextPlaceholder ColorToken = "text.placeholder"

	TokenBorderDefault ColorToken = "border.default"
	TokenBorderFocus   ColorToken = "border.focus"

	TokenStatusSuccess ColorToken = "status.success"
	TokenStatusError   ColorToken = "status.error"

	TokenSelectionIndicator ColorToken = "selection.indicator"

	TokenTagMention   ColorToken = "tag.mention"
	TokenTagHashtag   ColorToken = "tag.hashtag"
	TokenTagStrong    ColorToken = "tag.strong"
	TokenTagItalic    ColorToken = "tag.italic"
	TokenTagUnderline ColorToken = "tag.underline"
)

// AllTokens returns every themeable token.
func AllTokens() []ColorToken {
	return []ColorToken{
		TokenTextPrimary,
		TokenTextMuted,
		TokenTextPlaceholder,
		TokenBorderDefault,
		TokenBorderFocus,
		TokenStatusSuccess,
		TokenStatusError,
		TokenSelectionIndicator,
		TokenTagMention,
		TokenTagHashtag,
		TokenTagStrong,
		TokenTagItalic,
		TokenTagUnderline,
	}
}
