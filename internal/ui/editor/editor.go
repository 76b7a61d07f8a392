// Package editor is the interactive mention editor: a highlighted input
// driving a session, with suggestion lists above and below it.
package editor

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/zjrosen/mentions/internal/directory"
	"github.com/zjrosen/mentions/internal/keys"
	"github.com/zjrosen/mentions/internal/log"
	"github.com/zjrosen/mentions/internal/mention"
	"github.com/zjrosen/mentions/internal/pubsub"
	"github.com/zjrosen/mentions/internal/session"
	"github.com/zjrosen/mentions/internal/span"
	"github.com/zjrosen/mentions/internal/ui/mentioninput"
	"github.com/zjrosen/mentions/internal/ui/styles"
	"github.com/zjrosen/mentions/internal/ui/suggestions"
)

// DefaultLimit caps each suggestion list.
const DefaultLimit = 8

// Config wires the editor to its collaborators.
type Config struct {
	Session *session.Session
	// Directory supplies suggestions; nil shows none.
	Directory *directory.Directory
	// Limit caps each suggestion list; zero means DefaultLimit.
	Limit int
	// TypeColors overrides part colors by part type name.
	TypeColors map[string]string
	// Save persists the raw value on ctrl+s; nil disables saving.
	Save func(value string) error
	Title string
}

// SavedMsg reports the outcome of a save.
type SavedMsg struct {
	Err error
}

type list struct {
	mt    *mention.MentionType
	model suggestions.Model
}

// Model is the editor's Bubble Tea model.
type Model struct {
	ctx    context.Context
	cancel context.CancelFunc

	cfg   Config
	sess  *session.Session
	input mentioninput.Model
	keys  keys.EditorKeyMap
	help  help.Model

	changes <-chan pubsub.Event[session.Change]
	logs    *log.LogListener

	top, bottom []list
	dismissed   bool
	showRaw     bool
	status      string
	statusErr   bool
	lastLog     string
	version     int
	width       int
	height      int
}

// New creates an editor showing the session's current value.
func New(cfg Config) Model {
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultLimit
	}
	if cfg.Title == "" {
		cfg.Title = "Message"
	}

	ctx, cancel := context.WithCancel(context.Background())

	input := mentioninput.New()
	input.SetPlaceholder("Type @ to mention someone")
	input.SetTypeColors(cfg.TypeColors)
	input.Focus()

	snap := cfg.Session.Snapshot()
	input.SetValue(snap.PlainText)
	input.SetParts(snap.Parts)
	input.SetCursor(snap.Selection.End)

	return Model{
		ctx:     ctx,
		cancel:  cancel,
		cfg:     cfg,
		sess:    cfg.Session,
		input:   input,
		keys:    keys.DefaultEditorKeyMap(),
		help:    help.New(),
		changes: cfg.Session.Subscribe(ctx),
		logs:    log.NewListener(ctx),
		version: snap.Version,
		width:   80,
	}
}

// Init starts listening for session changes and log entries.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{pubsub.ListenCmd(m.ctx, m.changes)}
	if m.logs != nil {
		cmds = append(cmds, m.logs.Listen())
	}
	return tea.Batch(cmds...)
}

// Value returns the current raw value.
func (m Model) Value() string {
	return m.sess.Value()
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.input.SetWidth(max(m.width-4, 10))
		m.help.Width = m.width
		m.resizeLists()
		return m, nil

	case pubsub.Event[session.Change]:
		m.version = msg.Payload.Version
		return m, pubsub.ListenCmd(m.ctx, m.changes)

	case pubsub.Event[string]:
		m.lastLog = strings.TrimSpace(msg.Payload)
		return m, m.logs.Listen()

	case SavedMsg:
		if msg.Err != nil {
			m.setStatus("save failed: "+msg.Err.Error(), true)
		} else {
			m.setStatus("saved", false)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.cancel()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.ToggleRaw):
		m.showRaw = !m.showRaw
		return m, nil
	case key.Matches(msg, m.keys.Save):
		return m, m.save()
	}

	if l := m.activeList(); l != nil {
		switch {
		case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Down):
			l.model, _ = l.model.Update(msg)
			return m, nil
		case key.Matches(msg, m.keys.Accept):
			m.pick(l)
			return m, nil
		case key.Matches(msg, m.keys.Dismiss):
			m.dismissed = true
			return m, nil
		}
	}

	before, beforeCursor := m.input.Value(), m.input.Cursor()
	if key.Matches(msg, m.keys.Newline) {
		m.input.InsertNewline()
	} else {
		m.input, _ = m.input.Update(msg)
	}

	switch {
	case m.input.Value() != before:
		m.dismissed = false
		m.changeText()
	case m.input.Cursor() != beforeCursor:
		m.dismissed = false
		m.sess.SetSelection(span.At(m.input.Cursor()))
	default:
		return m, nil
	}
	m.refreshSuggestions()
	return m, nil
}

func (m *Model) changeText() {
	cursor := m.input.Cursor()
	change, err := m.sess.ChangeText(m.ctx, m.input.Value())
	if err != nil {
		m.setStatus(err.Error(), true)
		return
	}
	m.input.SetValue(change.PlainText)
	m.input.SetParts(change.Parts)
	m.input.SetCursor(cursor)
	m.sess.SetSelection(span.At(m.input.Cursor()))
	if change.Decayed > 0 {
		m.setStatus(fmt.Sprintf("%d mention(s) became plain text", change.Decayed), false)
	}
}

func (m *Model) pick(l *list) {
	s, ok := l.model.Selected()
	if !ok {
		return
	}
	change, err := m.sess.PickSuggestion(m.ctx, l.mt, s)
	if err != nil {
		m.setStatus(err.Error(), true)
		return
	}
	m.input.SetValue(change.PlainText)
	m.input.SetParts(change.Parts)
	m.input.SetCursor(change.Selection.End)
	m.refreshSuggestions()
}

func (m Model) save() tea.Cmd {
	if m.cfg.Save == nil {
		return nil
	}
	value, save := m.sess.Value(), m.cfg.Save
	return func() tea.Msg {
		return SavedMsg{Err: save(value)}
	}
}

// refreshSuggestions rebuilds the lists for the keywords active at the caret.
func (m *Model) refreshSuggestions() {
	m.top = m.listsAt(mention.RenderTop)
	m.bottom = m.listsAt(mention.RenderBottom)
	m.resizeLists()
}

func (m *Model) listsAt(pos mention.RenderPosition) []list {
	if m.cfg.Directory == nil {
		return nil
	}
	var out []list
	for _, active := range m.sess.SuggestionTypes(pos) {
		items := m.candidates(active.Type, active.Keyword)
		if len(items) == 0 {
			continue
		}
		out = append(out, list{
			mt:    active.Type,
			model: suggestions.New(active.Type.Trigger + active.Keyword).SetItems(items),
		})
	}
	return out
}

// candidates searches the directory, keeping entries whose "type" extra is
// unset or names mt.
func (m *Model) candidates(mt *mention.MentionType, keyword string) []mention.Suggestion {
	all := m.cfg.Directory.Search(keyword, 0)
	all = slices.DeleteFunc(all, func(s mention.Suggestion) bool {
		t := s.Extra["type"]
		return t != "" && t != mt.Name
	})
	if len(all) > m.cfg.Limit {
		all = all[:m.cfg.Limit]
	}
	return all
}

func (m *Model) resizeLists() {
	w := min(max(m.width/2, 24), 48)
	for i := range m.top {
		m.top[i].model = m.top[i].model.SetWidth(w)
	}
	for i := range m.bottom {
		m.bottom[i].model = m.bottom[i].model.SetWidth(w)
	}
}

// activeList is the list keys go to: the first visible one.
func (m *Model) activeList() *list {
	if m.dismissed {
		return nil
	}
	if len(m.top) > 0 {
		return &m.top[0]
	}
	if len(m.bottom) > 0 {
		return &m.bottom[0]
	}
	return nil
}

func (m *Model) setStatus(s string, isErr bool) {
	m.status, m.statusErr = s, isErr
}

// View renders the editor.
func (m Model) View() string {
	var sections []string

	if !m.dismissed {
		for _, l := range m.top {
			sections = append(sections, l.model.View())
		}
	}

	inputHeight := m.input.Height() + 2
	sections = append(sections, styles.RenderPane(m.input.View(), m.cfg.Title, m.width, inputHeight, true))

	if !m.dismissed {
		for _, l := range m.bottom {
			sections = append(sections, l.model.View())
		}
	}

	if m.showRaw {
		raw := wordwrap.String(m.sess.Value(), max(m.width-4, 10))
		sections = append(sections, styles.RenderPane(raw, "Raw value", m.width, strings.Count(raw, "\n")+3, false))
	}

	sections = append(sections, m.statusLine(), m.help.View(m.keys))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) statusLine() string {
	parts := []string{fmt.Sprintf("v%d", m.version)}
	if m.status != "" {
		if m.statusErr {
			parts = append(parts, styles.ErrorStyle.Render(m.status))
		} else {
			parts = append(parts, styles.SuccessStyle.Render(m.status))
		}
	}
	if m.lastLog != "" {
		parts = append(parts, styles.TruncateString(m.lastLog, max(m.width/2, 20)))
	}
	return styles.StatusBarStyle.Render(strings.Join(parts, " · "))
}
