package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"taskpad/internal/filter"
)

func TestViewShowsSeededTasks(t *testing.T) {
	setupTest(t)
	m := newTestModel(t, false)

	view := m.View()
	if !strings.Contains(view, "Welcome to your To-Do app!") {
		t.Errorf("view missing welcome task:\n%s", view)
	}
	if !strings.Contains(view, "taskpad") {
		t.Errorf("view missing title bar:\n%s", view)
	}
	if !strings.Contains(view, "0/3 done") {
		t.Errorf("view missing stats summary:\n%s", view)
	}
}

func TestViewEmptyState(t *testing.T) {
	setupTest(t)
	m := newTestModel(t, true)

	view := m.View()
	if !strings.Contains(view, "No tasks yet") {
		t.Errorf("empty view missing hint:\n%s", view)
	}
}

func TestAddTaskFlow(t *testing.T) {
	setupTest(t)
	m := newTestModel(t, true)

	pressRune(m, 'a')
	if m.mode != modeAdding {
		t.Fatal("'a' did not enter add mode")
	}

	typeText(m, "write tests")
	cmd := pressKey(m, tea.KeyEnter)
	if cmd == nil {
		t.Fatal("confirming add produced no command")
	}

	// Execute the async add the way the runtime would.
	msg := cmd()
	added, ok := msg.(taskAddedMsg)
	if !ok {
		t.Fatalf("unexpected message type %T", msg)
	}
	if added.err != nil {
		t.Fatalf("add failed: %v", added.err)
	}
	if added.task.Text != "write tests" {
		t.Errorf("added text = %q", added.task.Text)
	}

	if !strings.Contains(m.View(), "write tests") {
		t.Error("new task not rendered")
	}
}

func TestAddBlankIsNoop(t *testing.T) {
	setupTest(t)
	m := newTestModel(t, true)

	pressRune(m, 'a')
	typeText(m, "   ")
	if cmd := pressKey(m, tea.KeyEnter); cmd != nil {
		t.Error("blank input should not produce an add command")
	}
	if m.mode != modeNormal {
		t.Error("confirm did not leave add mode")
	}
}

func TestAddCancel(t *testing.T) {
	setupTest(t)
	m := newTestModel(t, true)

	pressRune(m, 'a')
	typeText(m, "discard me")
	pressKey(m, tea.KeyEsc)

	if m.mode != modeNormal {
		t.Error("esc did not leave add mode")
	}
	if strings.Contains(m.View(), "discard me") {
		t.Error("canceled input leaked into the view")
	}
}

func TestToggleKey(t *testing.T) {
	setupTest(t)
	m := newTestModel(t, false)

	pressRune(m, 'd')
	if !strings.Contains(m.View(), "1/3 done") {
		t.Errorf("toggle did not complete the selected task:\n%s", m.View())
	}

	pressRune(m, 'd')
	if !strings.Contains(m.View(), "0/3 done") {
		t.Error("second toggle did not revert")
	}
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	setupTest(t)
	m := newTestModel(t, false)

	pressRune(m, 'x')
	if m.confirmDel == nil {
		t.Fatal("'x' did not ask for confirmation")
	}
	if !strings.Contains(m.View(), "Delete") {
		t.Error("confirmation prompt not rendered")
	}

	// Any non-confirming key cancels.
	pressRune(m, 'n')
	if m.confirmDel != nil {
		t.Error("cancel did not clear the confirmation")
	}
	if len(m.engine.FilteredTasks()) != 3 {
		t.Error("canceled delete removed a task")
	}

	pressRune(m, 'x')
	pressRune(m, 'y')
	if len(m.engine.FilteredTasks()) != 2 {
		t.Error("confirmed delete did not remove the task")
	}
}

func TestSearchUpdatesEngineLive(t *testing.T) {
	setupTest(t)
	m := newTestModel(t, false)

	pressRune(m, '/')
	if m.mode != modeSearching {
		t.Fatal("'/' did not enter search mode")
	}

	typeText(m, "welcome")
	if got := m.engine.FilterPrefs().SearchQuery; got != "welcome" {
		t.Errorf("live search query = %q", got)
	}
	if n := len(m.engine.FilteredTasks()); n != 1 {
		t.Errorf("search shows %d tasks, want 1", n)
	}

	// Esc clears the query entirely.
	pressKey(m, tea.KeyEsc)
	if m.engine.FilterPrefs().SearchQuery != "" {
		t.Error("esc did not clear the search")
	}
}

func TestFilterAndSortKeys(t *testing.T) {
	setupTest(t)
	m := newTestModel(t, false)

	pressRune(m, 'f')
	if m.engine.FilterPrefs().CurrentFilter != filter.FilterPending {
		t.Error("'f' did not cycle to pending")
	}
	pressRune(m, 'f')
	pressRune(m, 'f')
	if m.engine.FilterPrefs().CurrentFilter != filter.FilterAll {
		t.Error("filter cycle did not wrap around")
	}

	pressRune(m, 's')
	if m.engine.FilterPrefs().SortBy != filter.SortUpdated {
		t.Error("'s' did not cycle the sort key")
	}

	pressRune(m, 'o')
	if m.engine.FilterPrefs().SortOrder != filter.OrderDesc {
		t.Error("'o' did not toggle the order")
	}

	pressRune(m, 'r')
	if m.engine.HasActiveFilters() {
		t.Error("'r' did not reset filters")
	}
}

func TestThemeToggleKey(t *testing.T) {
	setupTest(t)
	m := newTestModel(t, false)

	before := m.engine.IsDarkMode()
	pressRune(m, 't')
	if m.engine.IsDarkMode() == before {
		t.Error("'t' did not toggle the theme")
	}
}

func TestCursorNavigation(t *testing.T) {
	setupTest(t)
	m := newTestModel(t, false)

	pressRune(m, 'j')
	pressRune(m, 'j')
	if m.cursor != 2 {
		t.Errorf("cursor = %d, want 2", m.cursor)
	}
	pressRune(m, 'j') // bottom, must not overrun
	if m.cursor != 2 {
		t.Errorf("cursor overran to %d", m.cursor)
	}
	pressRune(m, 'k')
	if m.cursor != 1 {
		t.Errorf("cursor = %d, want 1", m.cursor)
	}
	pressRune(m, 'g')
	if m.cursor != 0 {
		t.Errorf("'g' cursor = %d, want 0", m.cursor)
	}
	pressRune(m, 'G')
	if m.cursor != 2 {
		t.Errorf("'G' cursor = %d, want 2", m.cursor)
	}
}

func TestHelpOverlay(t *testing.T) {
	setupTest(t)
	m := newTestModel(t, false)

	pressRune(m, '?')
	if !m.showHelp {
		t.Fatal("'?' did not open help")
	}
	if !strings.Contains(m.View(), "toggle dark mode") {
		t.Error("help overlay missing bindings")
	}

	pressRune(m, 'z') // any key closes
	if m.showHelp {
		t.Error("help did not close")
	}
}

func TestQuit(t *testing.T) {
	setupTest(t)
	m := newTestModel(t, false)

	cmd := pressRune(m, 'q')
	if cmd == nil {
		t.Fatal("'q' produced no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("'q' did not quit")
	}
	if !strings.Contains(m.View(), "See you later!") {
		t.Error("goodbye view not rendered")
	}
}

func TestClearCompletedKey(t *testing.T) {
	setupTest(t)
	m := newTestModel(t, false)

	pressRune(m, 'd') // complete the first task
	pressRune(m, 'C')
	if n := len(m.engine.FilteredTasks()); n != 2 {
		t.Errorf("%d tasks after clear, want 2", n)
	}
	if !strings.Contains(m.View(), "Cleared 1 completed") {
		t.Error("status message not shown")
	}
}

func TestEngineChangeRefreshesStyles(t *testing.T) {
	setupTest(t)
	m := newTestModel(t, false)

	// A change signal re-derives styles and clamps the cursor.
	m.cursor = 99
	m.Update(engineChangedMsg{})
	if m.cursor != 2 {
		t.Errorf("cursor not clamped: %d", m.cursor)
	}
}
