package ui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"taskpad/internal/app"
	"taskpad/internal/config"
	"taskpad/internal/kv"
)

// setupTest prepares the test environment for deterministic rendering.
// It disables colors to ensure consistent output across environments.
func setupTest(t *testing.T) {
	t.Helper()
	lipgloss.SetColorProfile(termenv.Ascii)
}

// newTestModel builds a model over a live in-memory engine. The engine
// starts with the welcome tasks unless skipSample is set.
func newTestModel(t *testing.T, skipSample bool) *Model {
	t.Helper()

	engine := app.New(app.Options{
		Store:          kv.NewMemStore(),
		Debounce:       10 * time.Millisecond,
		SkipSampleData: skipSample,
	})
	if err := engine.Init(); err != nil {
		t.Fatalf("engine init failed: %v", err)
	}
	t.Cleanup(func() {
		if engine.Phase() == app.PhaseLive {
			engine.Close()
		}
	})

	return NewModel(engine, config.Default().Theme)
}

// pressRune feeds a single printable key to the model.
func pressRune(m *Model, r rune) tea.Cmd {
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	return cmd
}

// pressKey feeds a special key (enter, esc) to the model.
func pressKey(m *Model, kt tea.KeyType) tea.Cmd {
	_, cmd := m.Update(tea.KeyMsg{Type: kt})
	return cmd
}

// typeText feeds text rune by rune, as a terminal would deliver it.
func typeText(m *Model, s string) {
	for _, r := range s {
		pressRune(m, r)
	}
}
