// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package widget

import (
	"context"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/opsdesk/internal/chat"
	"github.com/jeranaias/opsdesk/internal/session"
	"github.com/jeranaias/opsdesk/internal/ui/render"
	"github.com/jeranaias/opsdesk/internal/ui/styles"
)

// =============================================================================
// OPTIONS
// =============================================================================

// DefaultSuggestionLimit caps the table picker.
const DefaultSuggestionLimit = 6

// Options configures the widget.
type Options struct {
	Theme *styles.Theme

	// Markdown renders finished replies. Nil shows them as plain text with
	// highlighted code fences.
	Markdown *render.Markdown

	// MaxFPS caps repaints while a reply streams (default 30).
	MaxFPS int

	// SuggestionLimit caps the table picker (default 6).
	SuggestionLimit int

	Logger *slog.Logger
}

// inputEdits collects writes the input coordinator asks the view to make.
// The hooks run inside Update, so the edits are applied before it returns.
type inputEdits struct {
	set   bool
	text  string
	focus bool
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the Bubble Tea model of the assistant widget. It is a thin shell:
// the controller owns the conversation and the input coordinator owns the
// composer state.
type Model struct {
	ctrl   *chat.Controller
	store  *session.Store
	input  *chat.InputCoordinator
	live   *liveReply
	edits  *inputEdits
	theme  *styles.Theme
	md     *render.Markdown
	keys   KeyMap
	logger *slog.Logger

	textInput textinput.Model
	viewport  viewport.Model
	spinner   spinner.Model

	width  int
	height int
	ready  bool

	open     bool
	selected int
	limit    int
	frame    time.Duration
	ticking  bool
	spinning bool
	lastErr  error
}

// New creates the widget for ctrl. The catalog feeds @-mention suggestions.
// New installs the widget as the controller's sink.
func New(ctrl *chat.Controller, catalog chat.Catalog, opts Options) Model {
	if opts.Theme == nil {
		opts.Theme = styles.NewTheme()
	}
	if opts.SuggestionLimit <= 0 {
		opts.SuggestionLimit = DefaultSuggestionLimit
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ti := textinput.New()
	ti.Placeholder = "Ask about your data, @ to mention a table"
	ti.Prompt = "> "
	ti.PromptStyle = opts.Theme.InputPrompt
	ti.CharLimit = 4000
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = opts.Theme.Spinner

	edits := &inputEdits{}
	hooks := chat.InputHooks{
		SetText: func(s string) {
			edits.set = true
			edits.text = s
		},
		Focus: func() { edits.focus = true },
	}

	live := newLiveReply(NewStreamingBuffer(defaultBatchSize, opts.MaxFPS))
	ctrl.SetSink(live)

	return Model{
		ctrl:      ctrl,
		store:     ctrl.Store(),
		input:     chat.NewInputCoordinator(catalog, ctrl, hooks),
		live:      live,
		edits:     edits,
		theme:     opts.Theme,
		md:        opts.Markdown,
		keys:      DefaultKeyMap(),
		logger:    logger.With("component", "widget"),
		textInput: ti,
		viewport:  viewport.New(80, 20),
		spinner:   sp,
		open:      ctrl.Store().WidgetOpen(),
		limit:     opts.SuggestionLimit,
		frame:     frameInterval(opts.MaxFPS),
	}
}

// Init starts listening for controller changes.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitForChange(m.ctrl.Changes()))
}

// Open reports whether the widget is expanded.
func (m Model) Open() bool {
	return m.open
}

// Input returns the input coordinator behind the composer.
func (m Model) Input() *chat.InputCoordinator {
	return m.input
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.theme.SetSize(msg.Width, msg.Height)
		m.textInput.Width = max(10, msg.Width-8)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case ChangedMsg:
		m.refresh()
		cmd := m.startStreamingCmds()
		return m, tea.Batch(cmd, waitForChange(m.ctrl.Changes()))

	case StreamTickMsg:
		return m.handleStreamTick()

	case spinner.TickMsg:
		if !m.streaming() {
			m.spinning = false
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.refresh()
		return m, cmd

	case ClearedMsg:
		m.lastErr = msg.Err
		if msg.Err != nil {
			m.logger.Error("clear failed", "error", msg.Err)
		}
		m.refresh()
		return m, nil

	case ToggledMsg:
		if msg.Err != nil {
			m.lastErr = msg.Err
			m.logger.Error("failed to persist widget state", "open", msg.Open, "error", msg.Err)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}
	if key.Matches(msg, m.keys.Toggle) {
		return m.toggle()
	}
	if !m.open {
		if key.Matches(msg, m.keys.Submit) {
			return m.toggle()
		}
		return m, nil
	}

	inMention, _ := m.input.MentionMode()

	switch {
	case key.Matches(msg, m.keys.Stop):
		m.ctrl.Stop()
		return m, nil

	case key.Matches(msg, m.keys.Clear):
		ctrl := m.ctrl
		return m, func() tea.Msg {
			return ClearedMsg{Err: ctrl.Clear(context.Background())}
		}

	case key.Matches(msg, m.keys.RemoveMention):
		if pending := m.input.PendingMentions(); len(pending) > 0 {
			m.input.OnMentionRemove(pending[len(pending)-1].ID)
			m.refresh()
		}
		return m, nil

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.ViewUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.ViewDown()
		return m, nil

	case inMention && key.Matches(msg, m.keys.SuggestUp):
		if m.selected > 0 {
			m.selected--
		}
		return m, nil

	case inMention && key.Matches(msg, m.keys.SuggestDown):
		if m.selected < len(m.input.Suggestions(m.limit))-1 {
			m.selected++
		}
		return m, nil

	case inMention && (key.Matches(msg, m.keys.Complete) || key.Matches(msg, m.keys.Submit)):
		if suggestions := m.input.Suggestions(m.limit); len(suggestions) > 0 {
			idx := min(m.selected, len(suggestions)-1)
			m.input.OnMentionSelect(suggestions[idx].Name)
			m.selected = 0
			m.applyEdits()
			m.refresh()
			return m, nil
		}
		m.input.HandleKey(chat.KeyEvent{Key: chat.KeyEnter})
		return m, nil

	case key.Matches(msg, m.keys.Escape):
		if !m.input.HandleKey(chat.KeyEvent{Key: chat.KeyEscape}) && m.streaming() {
			m.ctrl.Stop()
		}
		m.selected = 0
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		if !m.input.HandleKey(chat.KeyEvent{Key: chat.KeyEnter}) {
			return m, nil
		}
		m.applyEdits()
		m.refresh()
		cmd := m.startStreamingCmds()
		return m, cmd
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	before, beforeFilter := m.input.MentionMode()
	m.input.OnInputChange(m.textInput.Value(), m.textInput.Position())
	if after, filter := m.input.MentionMode(); after != before || filter != beforeFilter {
		m.selected = 0
	}
	m.refresh()
	return m, cmd
}

func (m Model) toggle() (tea.Model, tea.Cmd) {
	m.open = !m.open
	if m.open {
		m.textInput.Focus()
	} else {
		m.textInput.Blur()
	}
	m.refresh()

	store, open := m.store, m.open
	return m, func() tea.Msg {
		return ToggledMsg{Open: open, Err: store.SetWidgetOpen(context.Background(), open)}
	}
}

// applyEdits copies text and focus changes requested by the coordinator
// into the text input.
func (m *Model) applyEdits() {
	if m.edits.set {
		m.textInput.SetValue(m.edits.text)
		m.textInput.SetCursor(m.input.Cursor())
		m.edits.set = false
	}
	if m.edits.focus {
		m.textInput.Focus()
		m.edits.focus = false
	}
}

// =============================================================================
// STREAMING
// =============================================================================

func (m Model) streaming() bool {
	_, ok := m.ctrl.Active()
	return ok
}

// startStreamingCmds starts the frame tick and spinner when a reply is live.
func (m *Model) startStreamingCmds() tea.Cmd {
	if !m.streaming() {
		return nil
	}
	var cmds []tea.Cmd
	if !m.ticking {
		m.ticking = true
		cmds = append(cmds, streamTickCmd(m.frame))
	}
	if !m.spinning {
		m.spinning = true
		cmds = append(cmds, m.spinner.Tick)
	}
	return tea.Batch(cmds...)
}

func (m Model) handleStreamTick() (tea.Model, tea.Cmd) {
	if m.live.flush(false) {
		m.refresh()
	}
	if m.streaming() || m.live.pending() {
		return m, streamTickCmd(m.frame)
	}
	m.ticking = false
	m.refresh()
	return m, nil
}

// refresh re-renders the conversation into the viewport and sizes it to
// the space left by the header and the composer.
func (m *Model) refresh() {
	if !m.ready {
		return
	}
	atBottom := m.viewport.AtBottom()
	m.viewport.Width = m.width
	m.viewport.Height = max(1, m.height-m.chromeHeight())
	m.viewport.SetContent(m.renderMessages(m.width))
	if atBottom || m.streaming() {
		m.viewport.GotoBottom()
	}
}
