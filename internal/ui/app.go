// Package ui renders the task dashboard using the Bubble Tea
// architecture. The model holds no task state of its own; every view is
// derived from the engine on each render, and engine change signals are
// turned into refresh messages.
package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"taskpad/internal/app"
	"taskpad/internal/config"
	"taskpad/internal/filter"
	"taskpad/internal/task"
)

// inputMode tracks what the text input is being used for.
type inputMode int

const (
	modeNormal inputMode = iota
	modeAdding
	modeSearching
)

// Model is the dashboard model.
type Model struct {
	engine *app.Engine
	theme  config.ThemeConfig
	styles *Styles
	keys   KeyMap

	input      textinput.Model
	mode       inputMode
	cursor     int
	width      int
	height     int
	showHelp   bool
	confirmDel *task.Task
	quitting   bool

	status      string
	statusErr   bool
	statusUntil time.Time

	changes   <-chan struct{}
	cancelSub func()
}

// NewModel creates a dashboard over a live engine.
func NewModel(engine *app.Engine, theme config.ThemeConfig) *Model {
	input := textinput.New()
	input.CharLimit = task.MaxTextLen

	changes, cancel := engine.Subscribe()

	m := &Model{
		engine:    engine,
		theme:     theme,
		keys:      DefaultKeyMap(),
		input:     input,
		changes:   changes,
		cancelSub: cancel,
	}
	m.styles = NewStyles(&theme, engine.IsDarkMode())
	return m
}

// Messages.
type (
	engineChangedMsg struct{}
	tickMsg          time.Time

	taskAddedMsg struct {
		task *task.Task
		err  error
	}
)

// waitForChange blocks on the engine's change channel.
func (m *Model) waitForChange() tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-m.changes; !ok {
			return nil
		}
		return engineChangedMsg{}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func addTaskCmd(engine *app.Engine, text string) tea.Cmd {
	return func() tea.Msg {
		t, err := engine.AddTask(context.Background(), text)
		return taskAddedMsg{task: t, err: err}
	}
}

// Init starts the change listener and the status expiry ticker.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.waitForChange(), tickCmd())
}

// Update handles all messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case engineChangedMsg:
		m.styles = NewStyles(&m.theme, m.engine.IsDarkMode())
		m.clampCursor()
		return m, m.waitForChange()

	case taskAddedMsg:
		if msg.err != nil {
			m.setStatus("Add task: "+msg.err.Error(), true)
		} else {
			m.setStatus("Added: "+truncateText(msg.task.Text, 40), false)
		}
		return m, nil

	case tickMsg:
		if m.status != "" && !m.statusUntil.IsZero() && time.Now().After(m.statusUntil) {
			m.status = ""
			m.statusErr = false
			m.statusUntil = time.Time{}
		}
		return m, tickCmd()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	if m.confirmDel != nil {
		switch msg.String() {
		case "y", "Y", "enter":
			target := m.confirmDel
			m.confirmDel = nil
			if _, err := m.engine.DeleteTask(target.ID); err != nil {
				m.setStatus("Delete: "+err.Error(), true)
			} else {
				m.setStatus("Deleted: "+truncateText(target.Text, 40), false)
			}
		default:
			m.confirmDel = nil
			m.setStatus("Canceled", false)
		}
		return m, nil
	}

	switch m.mode {
	case modeAdding:
		switch {
		case key.Matches(msg, m.keys.Confirm):
			text := m.input.Value()
			m.input.Reset()
			m.input.Blur()
			m.mode = modeNormal
			if strings.TrimSpace(text) == "" {
				return m, nil
			}
			return m, addTaskCmd(m.engine, text)
		case key.Matches(msg, m.keys.Cancel):
			m.input.Reset()
			m.input.Blur()
			m.mode = modeNormal
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd

	case modeSearching:
		switch {
		case key.Matches(msg, m.keys.Confirm):
			m.input.Blur()
			m.mode = modeNormal
			return m, nil
		case key.Matches(msg, m.keys.Cancel):
			m.input.Reset()
			m.input.Blur()
			m.mode = modeNormal
			m.engine.ClearSearch()
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		m.engine.SetSearch(m.input.Value())
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		m.cancelSub()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.Add):
		if m.engine.IsSubmitting() {
			m.setStatus("A task is already being added", true)
			return m, nil
		}
		m.mode = modeAdding
		m.input.Reset()
		m.input.Placeholder = "What needs doing?"
		return m, m.input.Focus()

	case key.Matches(msg, m.keys.Search):
		m.mode = modeSearching
		m.input.Reset()
		m.input.SetValue(m.engine.FilterPrefs().SearchQuery)
		m.input.Placeholder = "Search tasks"
		return m, m.input.Focus()

	case key.Matches(msg, m.keys.Toggle):
		if t, ok := m.selectedTask(); ok {
			if _, err := m.engine.ToggleTask(t.ID); err != nil {
				m.setStatus("Toggle: "+err.Error(), true)
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.Delete):
		if t, ok := m.selectedTask(); ok {
			m.confirmDel = &t
		}
		return m, nil

	case key.Matches(msg, m.keys.ClearCompleted):
		n := m.engine.ClearCompleted()
		m.setStatus(fmt.Sprintf("Cleared %d completed", n), false)
		return m, nil

	case key.Matches(msg, m.keys.CycleFilter):
		m.engine.SetFilter(nextFilter(m.engine.FilterPrefs().CurrentFilter))
		return m, nil

	case key.Matches(msg, m.keys.CycleSort):
		p := m.engine.FilterPrefs()
		m.engine.SetSorting(nextSortKey(p.SortBy), p.SortOrder)
		return m, nil

	case key.Matches(msg, m.keys.ToggleOrder):
		m.engine.ToggleSortOrder()
		return m, nil

	case key.Matches(msg, m.keys.ResetFilters):
		m.engine.ResetFilters()
		m.setStatus("Filters reset", false)
		return m, nil

	case key.Matches(msg, m.keys.ToggleTheme):
		m.engine.ToggleTheme()
		m.styles = NewStyles(&m.theme, m.engine.IsDarkMode())
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.engine.FilteredTasks())-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, m.keys.Top):
		m.cursor = 0
		return m, nil

	case key.Matches(msg, m.keys.Bottom):
		if n := len(m.engine.FilteredTasks()); n > 0 {
			m.cursor = n - 1
		}
		return m, nil
	}

	return m, nil
}

func nextFilter(f filter.Filter) filter.Filter {
	switch f {
	case filter.FilterAll:
		return filter.FilterPending
	case filter.FilterPending:
		return filter.FilterCompleted
	default:
		return filter.FilterAll
	}
}

func nextSortKey(k filter.SortKey) filter.SortKey {
	switch k {
	case filter.SortCreated:
		return filter.SortUpdated
	case filter.SortUpdated:
		return filter.SortText
	case filter.SortText:
		return filter.SortStatus
	default:
		return filter.SortCreated
	}
}

func (m *Model) selectedTask() (task.Task, bool) {
	visible := m.engine.FilteredTasks()
	if len(visible) == 0 || m.cursor < 0 || m.cursor >= len(visible) {
		m.setStatus("No task selected", true)
		return task.Task{}, false
	}
	return visible[m.cursor], true
}

func (m *Model) clampCursor() {
	n := len(m.engine.FilteredTasks())
	if n == 0 {
		m.cursor = 0
	} else if m.cursor >= n {
		m.cursor = n - 1
	}
}

func (m *Model) setStatus(msg string, isErr bool) {
	m.status = msg
	m.statusErr = isErr
	ttl := 5 * time.Second
	if isErr {
		ttl = 8 * time.Second
	}
	m.statusUntil = time.Now().Add(ttl)
}

// View renders the dashboard.
func (m *Model) View() string {
	if m.quitting {
		return m.renderGoodbye()
	}
	if m.showHelp {
		return m.renderHelpOverlay()
	}

	var b strings.Builder
	b.WriteString(m.renderTitleBar())
	b.WriteString("\n")
	b.WriteString(m.renderFilterBar())
	b.WriteString("\n\n")
	b.WriteString(m.renderTasks())
	b.WriteString("\n")

	if m.mode == modeAdding || m.mode == modeSearching {
		prompt := "add"
		if m.mode == modeSearching {
			prompt = "search"
		}
		b.WriteString(m.styles.InputPromptStyle.Render(prompt+"> ") + m.input.View())
		b.WriteString("\n")
	}

	b.WriteString(m.renderHelpBar())
	return b.String()
}

func (m *Model) renderTitleBar() string {
	title := m.styles.TitleStyle.Render(" taskpad ")

	stats := m.engine.TaskStats()
	summary := m.styles.StatLabelStyle.Render(
		fmt.Sprintf("%d/%d done (%d%%)", stats.Completed, stats.Total, stats.CompletionPercentage))

	if m.engine.IsSubmitting() {
		summary += "  " + m.styles.StatusStyle.Render("adding…")
	}

	return title + "  " + summary
}

func (m *Model) renderFilterBar() string {
	counts := m.engine.TaskCounts()
	p := m.engine.FilterPrefs()

	var parts []string
	for _, f := range []filter.Filter{filter.FilterAll, filter.FilterPending, filter.FilterCompleted} {
		n := counts.All
		switch f {
		case filter.FilterPending:
			n = counts.Pending
		case filter.FilterCompleted:
			n = counts.Completed
		}
		label := fmt.Sprintf("%s (%d)", f, n)
		if f == p.CurrentFilter {
			parts = append(parts, m.styles.FilterActiveStyle.Render("["+label+"]"))
		} else {
			parts = append(parts, m.styles.CountStyle.Render(" "+label+" "))
		}
	}

	line := strings.Join(parts, " ")
	if m.engine.HasActiveFilters() {
		line += "  " + m.styles.HeaderStyle.Render(m.engine.FilterDescription())
	}
	return line
}

func (m *Model) renderTasks() string {
	visible := m.engine.FilteredTasks()
	if len(visible) == 0 {
		info := m.engine.SearchInfo()
		if info.HasQuery && !info.HasResults {
			return m.styles.CountStyle.Render(fmt.Sprintf("  No tasks match %q", info.Query))
		}
		return m.styles.CountStyle.Render("  No tasks yet. Press 'a' to add one.")
	}

	var b strings.Builder
	for i, t := range visible {
		checkbox := m.styles.TaskCheckboxPending
		textStyle := m.styles.TaskPendingStyle
		if t.Completed {
			checkbox = m.styles.TaskCheckboxDone
			textStyle = m.styles.TaskDoneStyle
		}

		line := fmt.Sprintf("%s %s", checkbox, textStyle.Render(t.Text))
		if i == m.cursor {
			line = m.styles.TaskSelectedStyle.Render("> ") + line
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) renderHelpBar() string {
	if m.confirmDel != nil {
		return m.styles.ErrorStyle.Render("Delete \""+truncateText(m.confirmDel.Text, 40)+"\"? ") +
			m.styles.HelpStyle.Render("[y/enter] delete  [any] cancel")
	}
	if m.status != "" {
		if m.statusErr {
			return m.styles.ErrorStyle.Render(m.status)
		}
		return m.styles.StatusStyle.Render(m.status)
	}
	if m.mode != modeNormal {
		return m.styles.RenderHelp("enter", "confirm", "esc", "cancel")
	}
	return m.styles.RenderHelp(
		"a", "add",
		"/", "search",
		"d", "done",
		"x", "del",
		"f", "filter",
		"s", "sort",
		"t", "theme",
		"?", "help",
	)
}

func (m *Model) renderHelpOverlay() string {
	rows := [][2]string{
		{"a", "add a task"},
		{"d / space / enter", "toggle done"},
		{"x", "delete selected task"},
		{"C", "clear completed tasks"},
		{"/", "search"},
		{"f", "cycle status filter"},
		{"s", "cycle sort key"},
		{"o", "toggle sort order"},
		{"r", "reset filters"},
		{"t", "toggle dark mode"},
		{"j/k", "move selection"},
		{"g/G", "jump to top/bottom"},
		{"q", "quit"},
	}

	var b strings.Builder
	b.WriteString(m.styles.InputPromptStyle.Render("Keys"))
	b.WriteString("\n\n")
	for _, r := range rows {
		b.WriteString(fmt.Sprintf("  %s  %s\n",
			m.styles.HelpKeyStyle.Render(fmt.Sprintf("%-18s", r[0])),
			m.styles.HelpStyle.Render(r[1])))
	}
	b.WriteString("\n")
	b.WriteString(m.styles.CountStyle.Render("Press any key to close"))

	content := b.String()
	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	return content
}

func (m *Model) renderGoodbye() string {
	stats := m.engine.TaskStats()
	var b strings.Builder
	b.WriteString("\n  See you later!\n\n")
	if stats.Total > 0 {
		b.WriteString(fmt.Sprintf("  Tasks: %d/%d (%d%%)\n\n",
			stats.Completed, stats.Total, stats.CompletionPercentage))
	}
	return b.String()
}

func truncateText(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}

// Run starts the Bubble Tea program over a live engine.
func Run(engine *app.Engine, theme config.ThemeConfig) error {
	m := NewModel(engine, theme)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
