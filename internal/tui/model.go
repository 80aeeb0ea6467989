package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/hay-kot/casekit/internal/converter"
	"github.com/hay-kot/casekit/internal/core/config"
	"github.com/hay-kot/casekit/internal/core/history"
	"github.com/hay-kot/casekit/internal/core/shortcut"
	"github.com/hay-kot/casekit/internal/styles"
)

// UIState represents the current state of the TUI.
type UIState int

const (
	stateNormal UIState = iota
	stateConfirming
	stateLoadingFile
	stateHistory
	stateEditingOptions
)

// Key constants for event handling.
const (
	keyEnter = "enter"
	keyEsc   = "esc"
	keyCtrlC = "ctrl+c"
)

// Options configures the TUI behavior.
type Options struct {
	Logger      zerolog.Logger
	InitialFile string // Loaded as the input on start (optional)
}

// StateMsg carries a session snapshot into the program. Send it from a
// Session.Subscribe callback.
type StateMsg converter.State

// opDoneMsg is sent when a queued session operation finishes.
type opDoneMsg struct {
	syncInput bool
}

// Model is the main Bubble Tea model for the TUI.
type Model struct {
	ctx     context.Context
	session *converter.Session
	log     zerolog.Logger
	handler *KeybindingHandler
	ops     *opQueue

	state    UIState
	focus    FocusArea
	st       converter.State
	modal    Modal
	form     *OptionsForm
	width    int
	height   int
	quitting bool

	input     textarea.Model
	lastInput string
	output    viewport.Model
	picker    MethodPicker
	options   OptionsPanel
	pathInput textinput.Model
	spinner   spinner.Model
	help      help.Model

	history []history.Entry

	initialFile string
}

// New creates a new TUI model over sess. Call Close once the program exits.
func New(ctx context.Context, sess *converter.Session, cfg *config.Config, opts Options) Model {
	st := sess.Snapshot()

	ta := textarea.New()
	ta.Placeholder = "Type or paste text..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetValue(st.Input)
	ta.Focus()

	pi := textinput.New()
	pi.Prompt = "path: "
	pi.Placeholder = "file to load"

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	h := help.New()
	h.Styles.ShortKey = dimStyle
	h.Styles.ShortDesc = dimStyle
	h.Styles.ShortSeparator = dimStyle
	h.ShortSeparator = " " + iconDot + " "

	m := Model{
		ctx:         ctx,
		session:     sess,
		log:         opts.Logger.With().Str("component", "tui").Logger(),
		handler:     NewKeybindingHandler(cfg.Bindings(), cfg.FocusSearchKey),
		ops:         newOpQueue(),
		state:       stateNormal,
		focus:       FocusInput,
		input:       ta,
		lastInput:   st.Input,
		output:      viewport.New(0, 0),
		picker:      NewMethodPicker(sess.Registry().Methods()),
		options:     NewOptionsPanel(),
		pathInput:   pi,
		spinner:     s,
		help:        h,
		initialFile: opts.InitialFile,
	}
	m.applyState(st)
	return m
}

// Close stops the operation queue after pending operations finish.
func (m Model) Close() {
	m.ops.close()
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textarea.Blink, m.spinner.Tick}
	if m.initialFile != "" {
		sess, ctx, path := m.session, m.ctx, m.initialFile
		cmds = append(cmds, m.ops.do(func() { sess.LoadPath(ctx, path) }, true))
	}
	return tea.Batch(cmds...)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case StateMsg:
		m.applyState(converter.State(msg))
		return m, nil

	case opDoneMsg:
		if msg.syncInput {
			m.input.SetValue(m.session.Snapshot().Input)
			m.lastInput = m.input.Value()
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.state == stateEditingOptions && m.form != nil {
		return m.updateOptionsForm(msg)
	}

	// Cursor blink and other internal messages
	var cmd tea.Cmd
	if m.focus == FocusInput {
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd
}

// applyState copies a session snapshot into the widgets.
func (m *Model) applyState(st converter.State) {
	m.st = st
	m.picker.SetSelected(st.Selected)
	if method, ok := m.session.Registry().Method(st.Selected); ok {
		m.options.SetMethod(method, st.Options)
	}
	m.output.SetContent(st.Output)
}

// layout sizes the panels to the window. The left column holds input and
// output, the right column the picker, options and previews.
func (m *Model) layout() {
	// banner (4) + status line (1) + help (1)
	contentHeight := max(m.height-6, 6)
	rightWidth := max(m.width/3, 28)
	leftWidth := max(m.width-rightWidth-4, 20)

	// panel border (2) + title (1)
	textHeight := max(contentHeight/2-3, 1)
	m.input.SetWidth(leftWidth - 2)
	m.input.SetHeight(textHeight)
	m.output.Width = leftWidth - 2
	m.output.Height = textHeight

	m.picker.SetSize(rightWidth-4, contentHeight/2-2)
	m.pathInput.Width = max(m.width/2, 20)
}

// handleKey processes key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keyStr := msg.String()

	if keyStr == keyCtrlC {
		m.quitting = true
		return m, tea.Quit
	}

	// Handle modal states first
	switch m.state {
	case stateConfirming:
		return m.handleConfirmModalKey(keyStr)
	case stateLoadingFile:
		return m.handleLoadFileKey(msg, keyStr)
	case stateHistory:
		return m.handleHistoryKey(keyStr)
	case stateEditingOptions:
		return m.handleOptionsFormKey(msg, keyStr)
	}

	if action, ok := m.handler.Resolve(msg, m.focus.typing()); ok {
		return m.runAction(action)
	}

	switch keyStr {
	case "tab":
		return m.focusOn(m.focus.next())
	case "shift+tab", keyEsc:
		return m.focusOn(FocusInput)
	case "ctrl+p":
		return m, m.do(func(ctx context.Context, s *converter.Session) { s.PasteInput(ctx) }, true)
	case "ctrl+o":
		m.state = stateLoadingFile
		m.pathInput.SetValue("")
		return m, m.pathInput.Focus()
	case "ctrl+l":
		m.history = m.session.History()
		m.state = stateHistory
		return m, nil
	}

	if slot, ok := previewSlotKey(keyStr); ok {
		if slot < len(m.st.Previews) {
			name := m.st.Previews[slot].Key
			return m, m.do(func(ctx context.Context, s *converter.Session) { s.QuickTransform(ctx, name) }, false)
		}
		return m, nil
	}

	switch m.focus {
	case FocusSearch:
		return m.handleSearchKey(msg, keyStr)
	case FocusOptions:
		return m.handleOptionsKey(msg)
	default:
		return m.handleInputKey(msg)
	}
}

// previewSlotKey maps alt+1 through alt+9 to a zero-based preview slot.
func previewSlotKey(keyStr string) (int, bool) {
	digit, ok := strings.CutPrefix(keyStr, "alt+")
	if !ok || len(digit) != 1 {
		return 0, false
	}
	n, err := strconv.Atoi(digit)
	if err != nil || n < 1 {
		return 0, false
	}
	return n - 1, true
}

// do queues an operation against the session.
func (m Model) do(fn func(ctx context.Context, s *converter.Session), syncInput bool) tea.Cmd {
	ctx, sess := m.ctx, m.session
	return m.ops.do(func() { fn(ctx, sess) }, syncInput)
}

// runAction executes a resolved shortcut.
func (m Model) runAction(action shortcut.Action) (tea.Model, tea.Cmd) {
	switch action {
	case shortcut.ActionFocusSearch:
		return m.focusOn(FocusSearch)
	case shortcut.ActionClearHistory:
		if m.st.HistoryLen == 0 {
			return m, nil
		}
		m.modal = NewModal("Clear history", fmt.Sprintf("Discard %d history entries?", m.st.HistoryLen), action)
		m.state = stateConfirming
		return m, nil
	}

	syncInput := action == shortcut.ActionUndo ||
		action == shortcut.ActionRedo ||
		action == shortcut.ActionSwap ||
		action == shortcut.ActionClear

	return m, m.do(func(ctx context.Context, s *converter.Session) {
		s.HandleAction(ctx, action)
	}, syncInput)
}

// focusOn moves key focus to area.
func (m Model) focusOn(area FocusArea) (tea.Model, tea.Cmd) {
	m.input.Blur()
	m.picker.Blur()
	m.options.Blur()
	m.focus = area

	switch area {
	case FocusSearch:
		return m, m.picker.Focus()
	case FocusOptions:
		m.options.Focus()
		return m, nil
	default:
		return m, m.input.Focus()
	}
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	text := m.input.Value()
	if text == m.lastInput {
		return m, cmd
	}
	m.lastInput = text

	ctx, sess := m.ctx, m.session
	return m, tea.Batch(cmd, m.ops.doLatest(opSetInput, func() {
		sess.SetInputText(ctx, text)
	}, false))
}

func (m Model) handleSearchKey(msg tea.KeyMsg, keyStr string) (tea.Model, tea.Cmd) {
	switch keyStr {
	case keyEnter, "alt+p":
		method, ok := m.picker.Current()
		if !ok {
			return m, nil
		}
		name := method.Name
		pin := keyStr == "alt+p"
		m.picker.SetSelected(name)

		model, focusCmd := m.focusOn(FocusInput)
		return model, tea.Batch(focusCmd, m.do(func(ctx context.Context, s *converter.Session) {
			if pin {
				s.QuickTransform(ctx, name)
				return
			}
			s.SetSelectedTransformation(ctx, name)
		}, false))
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	return m, cmd
}

func (m Model) handleOptionsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == keyEnter {
		return m.openOptionsForm()
	}

	var change *optionChange
	m.options, change = m.options.Update(msg)
	if change == nil {
		return m, nil
	}

	log := m.log
	return m, m.do(func(ctx context.Context, s *converter.Session) {
		if err := s.SetOption(ctx, change.key, change.value); err != nil {
			log.Warn().Err(err).Str("option", change.key).Msg("failed to set option")
		}
	}, false)
}

// openOptionsForm shows the form for the selected method's options.
func (m Model) openOptionsForm() (tea.Model, tea.Cmd) {
	method, ok := m.session.Registry().Method(m.st.Selected)
	if !ok || len(method.Options) == 0 {
		return m, nil
	}

	m.form = NewOptionsForm(method, m.st.Options)
	m.state = stateEditingOptions
	return m, m.form.Form().Init()
}

// handleOptionsFormKey handles keys while the options form is shown.
func (m Model) handleOptionsFormKey(msg tea.KeyMsg, keyStr string) (tea.Model, tea.Cmd) {
	if keyStr == keyEsc {
		m.form = nil
		m.state = stateNormal
		return m, nil
	}
	return m.updateOptionsForm(msg)
}

// updateOptionsForm routes a message to the form and applies the result
// once it is submitted.
func (m Model) updateOptionsForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	model, cmd := m.form.Form().Update(msg)
	f, ok := model.(*huh.Form)
	if !ok {
		return m, cmd
	}
	m.form.form = f

	switch f.State {
	case huh.StateCompleted:
		opts, err := m.form.Result()
		m.form = nil
		m.state = stateNormal
		if err != nil {
			m.log.Warn().Err(err).Msg("invalid options")
			return m, nil
		}

		log := m.log
		return m, m.do(func(ctx context.Context, s *converter.Session) {
			if err := s.SetOptions(ctx, opts); err != nil {
				log.Warn().Err(err).Msg("failed to set options")
			}
		}, false)
	case huh.StateAborted:
		m.form = nil
		m.state = stateNormal
		return m, nil
	}
	return m, cmd
}

// handleConfirmModalKey handles keys while a confirmation prompt is shown.
func (m Model) handleConfirmModalKey(keyStr string) (tea.Model, tea.Cmd) {
	var outcome modalOutcome
	m.modal, outcome = m.modal.Update(keyStr)

	switch outcome {
	case modalConfirmed:
		action := m.modal.Action()
		m.state = stateNormal
		return m, m.do(func(ctx context.Context, s *converter.Session) {
			s.HandleAction(ctx, action)
		}, false)
	case modalCancelled:
		m.state = stateNormal
	}
	return m, nil
}

func (m Model) handleLoadFileKey(msg tea.KeyMsg, keyStr string) (tea.Model, tea.Cmd) {
	switch keyStr {
	case keyEnter:
		path := strings.TrimSpace(m.pathInput.Value())
		m.pathInput.Blur()
		m.state = stateNormal
		if path == "" {
			return m, nil
		}
		return m, m.do(func(ctx context.Context, s *converter.Session) { s.LoadPath(ctx, path) }, true)
	case keyEsc:
		m.pathInput.Blur()
		m.state = stateNormal
		return m, nil
	}

	var cmd tea.Cmd
	m.pathInput, cmd = m.pathInput.Update(msg)
	return m, cmd
}

func (m Model) handleHistoryKey(keyStr string) (tea.Model, tea.Cmd) {
	switch keyStr {
	case keyEsc, "ctrl+l", "q":
		m.state = stateNormal
		m.history = nil
	}
	return m, nil
}

// helpKeys returns the bindings shown in the footer.
func (m Model) helpKeys() []key.Binding {
	bindings := []key.Binding{
		key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "focus")),
	}
	if m.focus == FocusSearch {
		bindings = append(bindings, m.picker.KeyMap()...)
		bindings = append(bindings, key.NewBinding(key.WithKeys("alt+p"), key.WithHelp("alt+p", "pin preview")))
	}
	bindings = append(bindings, m.handler.KeyBindings()...)
	bindings = append(bindings,
		key.NewBinding(key.WithKeys("alt+1"), key.WithHelp("alt+1-9", "preview")),
		key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("ctrl+p", "paste")),
		key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "open")),
		key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "history")),
		key.NewBinding(key.WithKeys(keyCtrlC), key.WithHelp("ctrl+c", "quit")),
	)
	return bindings
}

// View renders the TUI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	switch m.state {
	case stateConfirming:
		return m.modal.Overlay(m.width, m.height)
	case stateHistory:
		return m.historyView()
	case stateEditingOptions:
		if m.form != nil {
			content := lipgloss.JoinVertical(lipgloss.Left,
				modalTitleStyle.Render(m.form.Method().Label+" options"),
				"",
				m.form.View(),
			)
			return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modalStyle.Render(content))
		}
	}

	return m.mainView()
}

func (m Model) mainView() string {
	left := lipgloss.JoinVertical(lipgloss.Left,
		m.panel("Input", m.input.View(), m.focus == FocusInput),
		m.panel("Output", m.output.View(), false),
	)
	right := lipgloss.JoinVertical(lipgloss.Left,
		m.panel("", m.picker.View(), m.focus == FocusSearch),
		m.panel("", m.options.View(), m.focus == FocusOptions),
		m.panel("", m.previewsView(), false),
	)

	footer := m.help.ShortHelpView(m.helpKeys())
	if m.state == stateLoadingFile {
		footer = m.pathInput.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		bannerStyle.Render(styles.Banner),
		m.statusLine(),
		lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right),
		helpStyle.Render(footer),
	)
}

func (m Model) panel(title, body string, focused bool) string {
	style := panelStyle
	if focused {
		style = panelFocusedStyle
	}
	if title != "" {
		header := titleBlurredStyle.Render(title)
		if focused {
			header = titleStyle.Render(title)
		}
		body = header + "\n" + body
	}
	return style.Render(body)
}

func (m Model) statusLine() string {
	st := m.st

	label := st.Selected
	if method, ok := m.session.Registry().Method(st.Selected); ok {
		label = method.Label
	}

	parts := []string{selectedStyle.Render(label)}
	parts = append(parts, dimStyle.Render(fmt.Sprintf("%d chars %s %d words %s %d/%d history",
		st.Stats.OutputChars, iconDot, st.Stats.OutputWords, iconDot, st.HistoryIndex+1, st.HistoryLen)))

	switch {
	case st.Processing:
		parts = append(parts, m.spinner.View())
	case st.Pending:
		parts = append(parts, dimStyle.Render("…"))
	case st.Error != "":
		parts = append(parts, errorStyle.Render(st.Error))
	case st.Copied:
		parts = append(parts, successStyle.Render("Copied!"))
	}

	return " " + strings.Join(parts, "  ")
}

func (m Model) previewsView() string {
	lines := []string{titleBlurredStyle.Render("Previews")}
	if len(m.st.Previews) == 0 {
		return lines[0] + "\n" + dimStyle.Render("  none")
	}

	width := max(m.width/3-6, 10)
	for i, slot := range m.st.Previews {
		num := " "
		if i < 9 {
			num = strconv.Itoa(i + 1)
		}
		out := strings.ReplaceAll(slot.Output, "\n", " ")
		lines = append(lines, fmt.Sprintf("%s %s %s",
			dimStyle.Render(num),
			normalStyle.Render(pad(truncate(slot.Label, 14), 14)),
			truncate(out, width-17)))
	}
	return strings.Join(lines, "\n")
}

func (m Model) historyView() string {
	lines := []string{titleStyle.Render(fmt.Sprintf("History (%d of %d kept)", len(m.history), m.st.HistoryMax)), ""}
	if len(m.history) == 0 {
		lines = append(lines, dimStyle.Render("  no transformations yet"))
	}

	width := max(m.width-30, 20)
	for i := len(m.history) - 1; i >= 0; i-- {
		e := m.history[i]

		marker := " "
		style := normalStyle
		if i == m.st.HistoryIndex {
			marker = iconSelected
			style = selectedStyle
		}

		lines = append(lines, fmt.Sprintf("%s %s  %s  %s",
			marker,
			dimStyle.Render(e.Timestamp.Format("15:04:05")),
			style.Render(pad(e.Transformation, 18)),
			truncate(strings.ReplaceAll(e.Output, "\n", " "), width)))
	}

	lines = append(lines, "", warnStyle.Render(" undo/redo move through these entries"), helpStyle.Render("esc close"))
	return lipgloss.NewStyle().Padding(1, 2).Render(strings.Join(lines, "\n"))
}
