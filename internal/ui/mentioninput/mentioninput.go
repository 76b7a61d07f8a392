// Package mentioninput provides a multi-line text input that highlights the
// parts of a mention value and reports its caret in plain-text runes.
package mentioninput

import (
	"strings"
	"unicode"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"

	"github.com/zjrosen/mentions/internal/mention"
	"github.com/zjrosen/mentions/internal/ui/styles"
)

// Model is the editable plain text of a mention value.
type Model struct {
	value       []rune
	cursor      int // rune offset, 0 = before first char
	focused     bool
	width       int
	placeholder string

	parts  []mention.Part
	colors map[string]string // part type name -> hex
}

// New creates an unfocused, empty input.
func New() Model {
	return Model{width: 40}
}

// Value returns the plain text.
func (m Model) Value() string {
	return string(m.value)
}

// SetValue replaces the plain text and clamps the cursor.
func (m *Model) SetValue(v string) {
	m.value = []rune(v)
	m.cursor = min(m.cursor, len(m.value))
}

// Cursor returns the caret as a rune offset.
func (m Model) Cursor() int {
	return m.cursor
}

// SetCursor moves the caret, clamped to the text.
func (m *Model) SetCursor(pos int) {
	m.cursor = min(max(pos, 0), len(m.value))
}

// SetParts sets the parts used for highlighting. Parts that do not spell
// the current value are ignored when rendering.
func (m *Model) SetParts(parts []mention.Part) {
	m.parts = parts
}

// SetTypeColors overrides the color of parts by part type name.
func (m *Model) SetTypeColors(colors map[string]string) {
	m.colors = colors
}

// Focused returns whether the input is focused.
func (m Model) Focused() bool {
	return m.focused
}

// Focus focuses the input.
func (m *Model) Focus() {
	m.focused = true
}

// Blur removes focus from the input.
func (m *Model) Blur() {
	m.focused = false
}

// SetWidth sets the display width.
func (m *Model) SetWidth(w int) {
	m.width = max(w, 1)
}

// Width returns the display width.
func (m Model) Width() int {
	return m.width
}

// SetPlaceholder sets the text shown when the input is empty and blurred.
func (m *Model) SetPlaceholder(p string) {
	m.placeholder = p
}

// Height returns the number of display lines the content needs.
func (m Model) Height() int {
	return strings.Count(m.View(), "\n") + 1
}

// InsertNewline inserts a line break at the caret.
func (m *Model) InsertNewline() {
	m.insert([]rune{'\n'})
}

// Update handles key messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.focused {
		return m, nil
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.Type {
	case tea.KeyLeft:
		if keyMsg.Alt {
			m.cursor = prevWordStart(m.value, m.cursor)
		} else if m.cursor > 0 {
			m.cursor--
		}
	case tea.KeyRight:
		if keyMsg.Alt {
			m.cursor = nextWordEnd(m.value, m.cursor)
		} else if m.cursor < len(m.value) {
			m.cursor++
		}
	case tea.KeyCtrlF:
		m.cursor = nextWordEnd(m.value, m.cursor)
	case tea.KeyCtrlB:
		m.cursor = prevWordStart(m.value, m.cursor)
	case tea.KeyHome, tea.KeyCtrlA:
		m.cursor = lineStart(m.value, m.cursor)
	case tea.KeyEnd, tea.KeyCtrlE:
		m.cursor = lineEnd(m.value, m.cursor)
	case tea.KeyBackspace:
		if m.cursor > 0 {
			m.value = append(m.value[:m.cursor-1:m.cursor-1], m.value[m.cursor:]...)
			m.cursor--
		}
	case tea.KeyDelete:
		if m.cursor < len(m.value) {
			m.value = append(m.value[:m.cursor:m.cursor], m.value[m.cursor+1:]...)
		}
	case tea.KeyCtrlK:
		m.value = append(m.value[:m.cursor:m.cursor], m.value[lineEnd(m.value, m.cursor):]...)
	case tea.KeyCtrlU:
		start := lineStart(m.value, m.cursor)
		m.value = append(m.value[:start:start], m.value[m.cursor:]...)
		m.cursor = start
	case tea.KeyRunes:
		if keyMsg.Alt && len(keyMsg.Runes) == 1 {
			switch keyMsg.Runes[0] {
			case 'f':
				m.cursor = nextWordEnd(m.value, m.cursor)
				return m, nil
			case 'b':
				m.cursor = prevWordStart(m.value, m.cursor)
				return m, nil
			}
		}
		m.insert(keyMsg.Runes)
	case tea.KeySpace:
		m.insert([]rune{' '})
	}

	return m, nil
}

func (m *Model) insert(rs []rune) {
	next := make([]rune, 0, len(m.value)+len(rs))
	next = append(next, m.value[:m.cursor]...)
	next = append(next, rs...)
	next = append(next, m.value[m.cursor:]...)
	m.value = next
	m.cursor += len(rs)
}

// ANSI codes for the cursor; only reverse video is toggled so surrounding
// styles survive.
const (
	cursorOn  = "\x1b[7m"
	cursorOff = "\x1b[27m"
)

// View renders the highlighted text wrapped to the input width.
func (m Model) View() string {
	if len(m.value) == 0 {
		if m.focused {
			return cursorOn + " " + cursorOff
		}
		return styles.PlaceholderStyle.Render(m.placeholder)
	}

	out := m.highlight()
	out = wordwrap.String(out, m.width)
	return wrap.String(out, m.width)
}

// highlight renders each part in its style, with the cursor when focused.
func (m Model) highlight() string {
	parts := m.parts
	if mention.PlainText(parts) != string(m.value) {
		parts = []mention.Part{mention.PlainTextPart(string(m.value), 0)}
	}

	var b strings.Builder
	pos := 0
	for _, p := range parts {
		text := []rune(p.Text)
		style, styled := m.partStyle(p)
		render := func(s string) string {
			if styled {
				return renderLines(style, s)
			}
			return s
		}
		cut := m.cursor - pos
		if m.focused && cut >= 0 && cut < len(text) {
			b.WriteString(render(string(text[:cut])))
			b.WriteString(cursorCell(text[cut]))
			b.WriteString(render(string(text[cut+1:])))
		} else {
			b.WriteString(render(string(text)))
		}
		pos += len(text)
	}
	if m.focused && m.cursor >= len(m.value) {
		b.WriteString(cursorOn + " " + cursorOff)
	}
	return b.String()
}

func (m Model) partStyle(p mention.Part) (lipgloss.Style, bool) {
	if p.IsPlain() {
		return lipgloss.Style{}, false
	}
	return styles.PartStyle(p.Type.Tag(), m.colors[typeName(p.Type)]), true
}

func typeName(pt mention.PartType) string {
	switch t := pt.(type) {
	case *mention.MentionType:
		return t.Name
	case *mention.PatternType:
		return t.Name
	}
	return ""
}

// renderLines styles s line by line so line breaks stay outside escape codes.
func renderLines(style lipgloss.Style, s string) string {
	if s == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = style.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}

func cursorCell(r rune) string {
	if r == '\n' {
		return cursorOn + " " + cursorOff + "\n"
	}
	return cursorOn + string(r) + cursorOff
}

func lineStart(s []rune, pos int) int {
	for pos > 0 && s[pos-1] != '\n' {
		pos--
	}
	return pos
}

func lineEnd(s []rune, pos int) int {
	for pos < len(s) && s[pos] != '\n' {
		pos++
	}
	return pos
}

// nextWordEnd skips non-word runes, then word runes.
func nextWordEnd(s []rune, pos int) int {
	for pos < len(s) && !isWordChar(s[pos]) {
		pos++
	}
	for pos < len(s) && isWordChar(s[pos]) {
		pos++
	}
	return pos
}

// prevWordStart skips non-word runes backward, then word runes.
func prevWordStart(s []rune, pos int) int {
	for pos > 0 && !isWordChar(s[pos-1]) {
		pos--
	}
	for pos > 0 && isWordChar(s[pos-1]) {
		pos--
	}
	return pos
}

func isWordChar(c rune) bool {
	return unicode.IsLetter(c) || unicode.IsDigit(c) || c == '_'
}
