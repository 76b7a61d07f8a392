package styles

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ThemeConfig mirrors config.ThemeConfig with colors already flattened.
type ThemeConfig struct {
	Mode   string
	Colors map[string]string
}

// styleRebuilders lets dependent packages refresh cached styles.
var styleRebuilders []func()

// RegisterStyleRebuilder adds a callback run after ApplyTheme.
func RegisterStyleRebuilder(fn func()) {
	styleRebuilders = append(styleRebuilders, fn)
}

// ApplyTheme validates and applies color overrides, then rebuilds styles.
// Nothing is applied when any override is invalid.
func ApplyTheme(cfg ThemeConfig) error {
	switch cfg.Mode {
	case "":
	case "light":
		lipgloss.SetHasDarkBackground(false)
	case "dark":
		lipgloss.SetHasDarkBackground(true)
	default:
		return fmt.Errorf("unknown theme mode: %s", cfg.Mode)
	}

	colors := make(map[ColorToken]string, len(cfg.Colors))
	for key, value := range cfg.Colors {
		token := ColorToken(key)
		if !slices.Contains(AllTokens(), token) {
			return fmt.Errorf("unknown color token: %s", key)
		}
		if !isValidHexColor(value) {
			return fmt.Errorf("invalid hex color for %s: %s", key, value)
		}
		colors[token] = value
	}

	applyColors(colors)
	rebuildStyles()
	return nil
}

func applyColors(colors map[ColorToken]string) {
	targets := map[ColorToken]*lipgloss.AdaptiveColor{
		TokenTextPrimary:        &TextPrimaryColor,
		TokenTextMuted:          &TextMutedColor,
		TokenTextPlaceholder:    &TextPlaceholderColor,
		TokenBorderDefault:      &BorderDefaultColor,
		TokenBorderFocus:        &BorderFocusColor,
		TokenStatusSuccess:      &StatusSuccessColor,
		TokenStatusError:        &StatusErrorColor,
		TokenSelectionIndicator: &SelectionIndicatorColor,
		TokenTagMention:         &TagMentionColor,
		TokenTagHashtag:         &TagHashtagColor,
		TokenTagStrong:          &TagStrongColor,
		TokenTagItalic:          &TagItalicColor,
		TokenTagUnderline:       &TagUnderlineColor,
	}
	for token, hex := range colors {
		*targets[token] = lipgloss.AdaptiveColor{Light: hex, Dark: hex}
	}
}

// rebuildStyles recreates styles, which capture colors at creation time.
func rebuildStyles() {
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

	for _, fn := range styleRebuilders {
		fn()
	}
}

func isValidHexColor(s string) bool {
	if !strings.HasPrefix(s, "#") {
		return false
	}
	hex := s[1:]
	if len(hex) != 3 && len(hex) != 6 {
		return false
	}
	_, err := strconv.ParseUint(hex, 16, 64)
	return err == nil
}
