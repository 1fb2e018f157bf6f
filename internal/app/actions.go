package app

import (
	"context"

	"taskpad/internal/filter"
	"taskpad/internal/persist"
	"taskpad/internal/task"
	"taskpad/internal/theme"
)

// This file is the unified action surface and read-view set exposed to
// the UI collaborator. UI code calls these instead of reaching into
// individual components; nothing here mutates task fields directly.
// Mutations are accepted only in the live phase: once Close has run,
// nothing would persist them, so they fail or no-op instead.

// AddTask validates and appends a new task.
func (e *Engine) AddTask(ctx context.Context, text string) (*task.Task, error) {
	if !e.live() {
		return nil, ErrNotLive
	}
	return e.tasks.Add(ctx, text)
}

// ToggleTask flips a task's completed state.
func (e *Engine) ToggleTask(id int) (*task.Task, error) {
	if !e.live() {
		return nil, ErrNotLive
	}
	return e.tasks.Toggle(id)
}

// UpdateTask applies a partial update to a task.
func (e *Engine) UpdateTask(id int, u task.Update) (*task.Task, error) {
	if !e.live() {
		return nil, ErrNotLive
	}
	return e.tasks.Apply(id, u)
}

// DeleteTask removes a task, returning the removed value.
func (e *Engine) DeleteTask(id int) (*task.Task, error) {
	if !e.live() {
		return nil, ErrNotLive
	}
	return e.tasks.Delete(id)
}

// ClearCompleted removes all completed tasks, returning the count.
func (e *Engine) ClearCompleted() int {
	if !e.live() {
		return 0
	}
	return e.tasks.ClearCompleted()
}

// MarkAllComplete completes every task.
func (e *Engine) MarkAllComplete() {
	if !e.live() {
		return
	}
	e.tasks.MarkAllComplete()
}

// MarkAllIncomplete reopens every task.
func (e *Engine) MarkAllIncomplete() {
	if !e.live() {
		return
	}
	e.tasks.MarkAllIncomplete()
}

// IsSubmitting reports whether a task submission is in flight.
func (e *Engine) IsSubmitting() bool {
	return e.tasks.IsSubmitting()
}

// SetFilter applies a status filter; unknown values are ignored.
func (e *Engine) SetFilter(f filter.Filter) {
	if !e.live() {
		return
	}
	e.filters.SetFilter(f)
	e.notifyChanged()
}

// SetSearch replaces the search query.
func (e *Engine) SetSearch(query string) {
	if !e.live() {
		return
	}
	e.filters.SetSearch(query)
	e.notifyChanged()
}

// ClearSearch empties the search query.
func (e *Engine) ClearSearch() {
	if !e.live() {
		return
	}
	e.filters.ClearSearch()
	e.notifyChanged()
}

// SetSorting applies a sort key and order; unknown values are ignored.
func (e *Engine) SetSorting(key filter.SortKey, order filter.SortOrder) {
	if !e.live() {
		return
	}
	e.filters.SetSorting(key, order)
	e.notifyChanged()
}

// ToggleSortOrder flips between ascending and descending.
func (e *Engine) ToggleSortOrder() {
	if !e.live() {
		return
	}
	e.filters.ToggleSortOrder()
	e.notifyChanged()
}

// ResetFilters returns the filter selection to the defaults.
func (e *Engine) ResetFilters() {
	if !e.live() {
		return
	}
	e.filters.Reset()
	e.notifyChanged()
}

// SetTheme records an explicit dark/light choice.
func (e *Engine) SetTheme(dark bool) {
	if !e.live() {
		return
	}
	e.theme.SetTheme(dark)
}

// ToggleTheme flips dark mode as an explicit choice.
func (e *Engine) ToggleTheme() {
	if !e.live() {
		return
	}
	e.theme.Toggle()
}

// UseSystemTheme drops the manual preference and follows the system.
func (e *Engine) UseSystemTheme() {
	if !e.live() {
		return
	}
	e.theme.UseSystemPreference()
}

// ExportData returns the persisted snapshot wrapped with export
// metadata, or false when nothing is persisted yet.
func (e *Engine) ExportData() (string, bool) {
	return e.ctrl.Export()
}

// ImportData persists an export payload and, on success, rehydrates all
// in-memory state from storage through the usual repair path.
func (e *Engine) ImportData(serialized string) bool {
	if !e.live() {
		return false
	}
	if !e.ctrl.Import(serialized) {
		return false
	}
	e.hydrate()
	e.notifyChanged()
	return true
}

// ClearAll wipes persisted and in-memory state back to first-run
// defaults, minus the sample tasks.
func (e *Engine) ClearAll() {
	if !e.live() {
		return
	}
	e.ctrl.Clear()
	e.tasks.Reset()
	e.filters.Reset()
	e.theme.UseSystemPreference()
}

// SortedTasks is the store's default display order: pending first, then
// completed, each ascending by id.
func (e *Engine) SortedTasks() []task.Task {
	return e.tasks.Sorted()
}

// FilteredTasks runs the filter/search/sort pipeline over current tasks.
func (e *Engine) FilteredTasks() []task.Task {
	return e.filters.Apply(e.tasks.Tasks())
}

// TaskCounts tallies tasks per status bucket.
func (e *Engine) TaskCounts() filter.Counts {
	return filter.CountsFor(e.tasks.Tasks())
}

// TaskStats summarizes the collection with completion percentage.
func (e *Engine) TaskStats() task.Stats {
	return e.tasks.Stats()
}

// SearchInfo summarizes how the query affects the visible set.
func (e *Engine) SearchInfo() filter.SearchInfo {
	return e.filters.SearchInfoFor(e.tasks.Tasks())
}

// FilterPrefs returns the current filter selection.
func (e *Engine) FilterPrefs() filter.Prefs {
	return e.filters.Prefs()
}

// HasActiveFilters reports whether any selection differs from defaults.
func (e *Engine) HasActiveFilters() bool {
	return e.filters.HasActiveFilters()
}

// FilterDescription renders the selection as a readable summary.
func (e *Engine) FilterDescription() string {
	return e.filters.Description()
}

// IsDarkMode reports the effective theme.
func (e *Engine) IsDarkMode() bool {
	return e.theme.IsDarkMode()
}

// ThemeInfo describes the effective theme.
func (e *Engine) ThemeInfo() theme.Info {
	return e.theme.Info()
}

// AccessibilityInfo reports environment accessibility signals.
func (e *Engine) AccessibilityInfo() theme.Accessibility {
	return e.theme.AccessibilityInfo()
}

// StorageInfo estimates durable storage usage.
func (e *Engine) StorageInfo() persist.Info {
	return e.ctrl.StorageInfo()
}

// StorageAvailable probes the durable store.
func (e *Engine) StorageAvailable() bool {
	return e.ctrl.IsAvailable()
}

// Stats aggregates task, storage, theme, and filter state for display.
type Stats struct {
	Tasks         task.Stats          `json:"tasks"`
	Storage       persist.Info        `json:"storage"`
	Theme         theme.Info          `json:"theme"`
	Accessibility theme.Accessibility `json:"accessibility"`
	Filters       FilterStats         `json:"filters"`
}

// FilterStats describes the active filter selection.
type FilterStats struct {
	Active      bool          `json:"active"`
	Description string        `json:"description"`
	Counts      filter.Counts `json:"counts"`
}

// AppStats aggregates everything the info view needs.
func (e *Engine) AppStats() Stats {
	return Stats{
		Tasks:         e.TaskStats(),
		Storage:       e.StorageInfo(),
		Theme:         e.ThemeInfo(),
		Accessibility: e.AccessibilityInfo(),
		Filters: FilterStats{
			Active:      e.HasActiveFilters(),
			Description: e.FilterDescription(),
			Counts:      e.TaskCounts(),
		},
	}
}
