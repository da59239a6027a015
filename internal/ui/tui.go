// Package ui provides the optional terminal interface.
package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/nibzard/tasker-go/internal/logging"
	"github.com/nibzard/tasker-go/internal/storage"
	"github.com/nibzard/tasker-go/internal/task"
)

// TUIOption configures the TUI behavior.
type TUIOption func(*tuiConfig)

type tuiConfig struct {
	showIndex bool
	logger    *log.Logger
	title     string
}

// WithShowIndex sets whether indices are shown initially.
func WithShowIndex(enabled bool) TUIOption {
	return func(c *tuiConfig) {
		c.showIndex = enabled
	}
}

// WithLogger sets the logger used for save failures.
func WithLogger(logger *log.Logger) TUIOption {
	return func(c *tuiConfig) {
		c.logger = logger
	}
}

// WithTitle sets the heading, usually the task file path.
func WithTitle(title string) TUIOption {
	return func(c *tuiConfig) {
		c.title = title
	}
}

// RunTUI loads tasks from repo and runs the terminal UI until the user quits.
func RunTUI(ctx context.Context, repo storage.Repository, opts ...TUIOption) error {
	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}

	model, err := newTUIModel(repo, opts...)
	if err != nil {
		return err
	}
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = program.Run()
	return err
}

type inputMode int

const (
	modeBrowse inputMode = iota
	modeAddMain
	modeAddSub
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	cursorStyle = lipgloss.NewStyle().Bold(true)
	doneStyle   = lipgloss.NewStyle().Faint(true).Strikethrough(true)
	statusStyle = lipgloss.NewStyle().Italic(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

type tuiModel struct {
	store     *task.Store
	repo      storage.Repository
	logger    *log.Logger
	title     string
	cursor    int
	showIndex bool
	showHelp  bool
	mode      inputMode
	input     []rune
	status    string
	statusErr bool
}

func newTUIModel(repo storage.Repository, opts ...TUIOption) (*tuiModel, error) {
	c := &tuiConfig{showIndex: true}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logging.Discard()
	}

	tasks, err := repo.Load()
	if err != nil {
		return nil, fmt.Errorf("loading tasks: %w", err)
	}

	return &tuiModel{
		store:     task.NewStore(tasks),
		repo:      repo,
		logger:    c.logger,
		title:     c.title,
		showIndex: c.showIndex,
	}, nil
}

func (m *tuiModel) Init() tea.Cmd {
	return nil
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	if m.mode != modeBrowse {
		return m.updateInput(key)
	}

	switch key.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < m.store.Len()-1 {
			m.cursor++
		}
	case "x", "enter":
		m.toggleSelected()
	case "d":
		m.apply(m.store.Remove(m.cursor), "Removed task")
	case "D":
		m.store.CompleteAll()
		m.apply(nil, "Completed all tasks")
	case "X":
		m.store.Clear()
		m.apply(nil, "Removed all tasks")
	case "a":
		m.startInput(modeAddMain)
	case "s":
		m.startInput(modeAddSub)
	case "i":
		m.showIndex = !m.showIndex
	case "h", "?":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

func (m *tuiModel) updateInput(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		m.mode = modeBrowse
		m.input = nil
	case tea.KeyEnter:
		m.commitInput()
	case tea.KeyBackspace:
		if len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}
	case tea.KeySpace:
		m.input = append(m.input, ' ')
	case tea.KeyRunes:
		m.input = append(m.input, key.Runes...)
	}
	return m, nil
}

func (m *tuiModel) startInput(mode inputMode) {
	m.mode = mode
	m.input = nil
	m.status = ""
}

func (m *tuiModel) commitInput() {
	name := strings.Join(strings.Fields(string(m.input)), " ")
	mode := m.mode
	m.mode = modeBrowse
	m.input = nil

	if v, ok := m.repo.(storage.NameValidator); ok {
		if err := v.ValidateName(name); err != nil {
			m.setStatus(err.Error(), true)
			return
		}
	}
	if mode == modeAddSub {
		m.apply(m.store.AddSub(name), "Added sub-task")
	} else {
		m.store.AddMain(name)
		m.apply(nil, "Added task")
	}
	if m.store.Len() > 0 && !m.statusErr {
		m.cursor = m.store.Len() - 1
	}
}

func (m *tuiModel) toggleSelected() {
	t, err := m.store.Task(m.cursor)
	if err != nil {
		m.setStatus(err.Error(), true)
		return
	}
	if t.Completed {
		m.apply(m.store.MarkUndone(m.cursor), "Marked undone")
		return
	}
	m.apply(m.store.MarkDone(m.cursor), "Marked done")
}

// apply reports err or persists the list after a successful change.
func (m *tuiModel) apply(err error, done string) {
	if err != nil {
		m.setStatus(err.Error(), true)
		return
	}
	if m.cursor >= m.store.Len() {
		m.cursor = max(m.store.Len()-1, 0)
	}
	if err := m.repo.Save(m.store.Tasks()); err != nil {
		m.logger.Error("Failed to save tasks", "err", err)
		m.setStatus("save failed: "+err.Error(), true)
		return
	}
	m.setStatus(done, false)
}

func (m *tuiModel) setStatus(msg string, isErr bool) {
	m.status = msg
	m.statusErr = isErr
}

func (m *tuiModel) View() string {
	var b strings.Builder
	writeTitle(&b, m.title)

	if m.showHelp {
		writeHelp(&b)
		writeFooter(&b)
		return b.String()
	}

	tasks := m.store.Tasks()
	if len(tasks) == 0 {
		b.WriteString("  No tasks yet. Press a to add one.\n")
	}
	for i, t := range tasks {
		b.WriteString(formatRow(i, t, i == m.cursor, m.showIndex))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch m.mode {
	case modeAddMain:
		b.WriteString("New task: " + string(m.input) + "_\n\n")
	case modeAddSub:
		b.WriteString("New sub-task: " + string(m.input) + "_\n\n")
	}

	if m.status != "" {
		if m.statusErr {
			b.WriteString(errorStyle.Render("Error: "+m.status) + "\n\n")
		} else {
			b.WriteString(statusStyle.Render(m.status) + "\n\n")
		}
	}

	writeFooter(&b)
	return b.String()
}

func formatRow(index int, t task.Task, selected, showIndex bool) string {
	pointer := "  "
	if selected {
		pointer = "> "
	}
	line := t.String()
	if showIndex {
		line = fmt.Sprintf("%d %s", index, line)
	}
	if t.Completed {
		line = doneStyle.Render(line)
	}
	if selected {
		return cursorStyle.Render(pointer) + line
	}
	return pointer + line
}

func writeTitle(b *strings.Builder, path string) {
	title := "Tasker"
	if path != "" {
		title += " - " + path
	}
	b.WriteString(titleStyle.Render(title) + "\n")
	b.WriteString(strings.Repeat("=", len(title)) + "\n\n")
}

func writeHelp(b *strings.Builder) {
	b.WriteString("Keyboard Shortcuts\n\n")
	b.WriteString("  up/k, down/j  Move selection\n")
	b.WriteString("  x, enter      Toggle done (done also completes sub-tasks)\n")
	b.WriteString("  a             Add a task\n")
	b.WriteString("  s             Add a sub-task to the last main task\n")
	b.WriteString("  d             Remove the task and its sub-tasks\n")
	b.WriteString("  D             Mark all tasks done\n")
	b.WriteString("  X             Remove all tasks\n")
	b.WriteString("  i             Toggle indices\n")
	b.WriteString("  h, ?          Toggle this help screen\n")
	b.WriteString("  q, ctrl+c     Quit\n\n")
}

func writeFooter(b *strings.Builder) {
	b.WriteString("Press h for help | q to quit\n")
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
