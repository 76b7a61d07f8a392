// Package suggestions renders the candidate list shown while a mention
// keyword is being typed.
package suggestions

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/mentions/internal/keys"
	"github.com/zjrosen/mentions/internal/mention"
	"github.com/zjrosen/mentions/internal/ui/styles"
)

const defaultWidth = 30

// Model holds the list state for one mention type.
type Model struct {
	title    string
	items    []mention.Suggestion
	selected int
	width    int
	keys     keys.EditorKeyMap
}

// New creates an empty list titled title.
func New(title string) Model {
	return Model{
		title: title,
		width: defaultWidth,
		keys:  keys.DefaultEditorKeyMap(),
	}
}

// SetItems replaces the candidates; the selection resets to the first one.
func (m Model) SetItems(items []mention.Suggestion) Model {
	m.items = items
	m.selected = 0
	return m
}

// SetWidth sets the box width.
func (m Model) SetWidth(width int) Model {
	m.width = width
	return m
}

// Len returns the number of candidates.
func (m Model) Len() int {
	return len(m.items)
}

// Title returns the list title.
func (m Model) Title() string {
	return m.title
}

// Selected returns the highlighted candidate.
func (m Model) Selected() (mention.Suggestion, bool) {
	if m.selected >= 0 && m.selected < len(m.items) {
		return m.items[m.selected], true
	}
	return mention.Suggestion{}, false
}

// Update moves the highlight; movement wraps around.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || len(m.items) == 0 {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, m.keys.Down):
		m.selected = (m.selected + 1) % len(m.items)
	case key.Matches(keyMsg, m.keys.Up):
		m.selected = (m.selected - 1 + len(m.items)) % len(m.items)
	}
	return m, nil
}

// View renders the boxed list, or nothing when it is empty.
func (m Model) View() string {
	if len(m.items) == 0 {
		return ""
	}

	inner := max(m.width-2, 4)
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(styles.TextPrimaryColor).PaddingLeft(1)
	idStyle := lipgloss.NewStyle().Foreground(styles.TextMutedColor)

	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(styles.BorderDefaultColor).Render(strings.Repeat("─", inner)))

	for i, s := range m.items {
		label := s.Name
		if label == "" {
			label = s.ID
		}
		label = styles.TruncateString(label, inner-2)
		id := ""
		if s.Name != "" {
			if room := inner - 2 - lipgloss.Width(label) - 1; room > 2 {
				id = " " + idStyle.Render(styles.TruncateString(s.ID, room))
			}
		}

		b.WriteString("\n")
		if i == m.selected {
			b.WriteString(styles.SelectionIndicatorStyle.Render(">") + " " + lipgloss.NewStyle().Bold(true).Render(label) + id)
		} else {
			b.WriteString("  " + label + id)
		}
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.BorderDefaultColor).
		Width(inner).
		Render(b.String())
}
