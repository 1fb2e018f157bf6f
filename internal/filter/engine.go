// Package filter derives filtered, searched, and sorted task views.
// The pipeline is pure: given the same tasks and criteria it always
// produces the same output, regardless of prior calls.
package filter

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"taskpad/internal/task"
)

// Filter selects tasks by completion status.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterPending   Filter = "pending"
	FilterCompleted Filter = "completed"
)

// SortKey selects the comparison key for ordering.
type SortKey string

const (
	SortCreated SortKey = "created"
	SortUpdated SortKey = "updated"
	SortText    SortKey = "text"
	SortStatus  SortKey = "status"
)

// SortOrder selects ascending or descending order.
type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

func validFilter(f Filter) bool {
	return f == FilterAll || f == FilterPending || f == FilterCompleted
}

func validSortKey(k SortKey) bool {
	return k == SortCreated || k == SortUpdated || k == SortText || k == SortStatus
}

func validSortOrder(o SortOrder) bool {
	return o == OrderAsc || o == OrderDesc
}

// Prefs is the serializable filter selection, persisted alongside tasks
// for continuity across sessions.
type Prefs struct {
	CurrentFilter Filter    `json:"currentFilter"`
	SearchQuery   string    `json:"searchQuery"`
	SortBy        SortKey   `json:"sortBy"`
	SortOrder     SortOrder `json:"sortOrder"`
}

// DefaultPrefs returns the filter defaults: everything visible, sorted
// by creation time ascending.
func DefaultPrefs() Prefs {
	return Prefs{
		CurrentFilter: FilterAll,
		SearchQuery:   "",
		SortBy:        SortCreated,
		SortOrder:     OrderAsc,
	}
}

// Counts holds task totals per status bucket.
type Counts struct {
	All       int `json:"all"`
	Pending   int `json:"pending"`
	Completed int `json:"completed"`
}

// CountsFor tallies tasks per status bucket.
func CountsFor(tasks []task.Task) Counts {
	c := Counts{All: len(tasks)}
	for _, t := range tasks {
		if t.Completed {
			c.Completed++
		} else {
			c.Pending++
		}
	}
	return c
}

// SearchInfo summarizes how the search query affects the visible set.
// IsFiltered is true when a non-empty query changed the visible count
// relative to the status-filtered-only count.
type SearchInfo struct {
	HasQuery      bool   `json:"hasQuery"`
	Query         string `json:"query"`
	OriginalCount int    `json:"originalCount"`
	FilteredCount int    `json:"filteredCount"`
	HasResults    bool   `json:"hasResults"`
	IsFiltered    bool   `json:"isFiltered"`
}

// State holds the user's current filter selection. Mutators validate the
// requested value against the enumerated option set; invalid values are
// silently ignored, preserving the current selection.
type State struct {
	mu    sync.Mutex
	prefs Prefs
}

// NewState creates filter state at the defaults.
func NewState() *State {
	return &State{prefs: DefaultPrefs()}
}

// Prefs returns the current selection.
func (s *State) Prefs() Prefs {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefs
}

// SetFilter applies a status filter if it is a known value.
func (s *State) SetFilter(f Filter) {
	if !validFilter(f) {
		return
	}
	s.mu.Lock()
	s.prefs.CurrentFilter = f
	s.mu.Unlock()
}

// SetSearch replaces the search query. Any string is a valid query.
func (s *State) SetSearch(query string) {
	s.mu.Lock()
	s.prefs.SearchQuery = query
	s.mu.Unlock()
}

// ClearSearch empties the search query.
func (s *State) ClearSearch() {
	s.SetSearch("")
}

// SetSorting applies a sort key and order. Each value is validated
// independently; an unknown value leaves the current one in place.
func (s *State) SetSorting(key SortKey, order SortOrder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if validSortKey(key) {
		s.prefs.SortBy = key
	}
	if validSortOrder(order) {
		s.prefs.SortOrder = order
	}
}

// ToggleSortOrder flips between ascending and descending.
func (s *State) ToggleSortOrder() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.prefs.SortOrder == OrderAsc {
		s.prefs.SortOrder = OrderDesc
	} else {
		s.prefs.SortOrder = OrderAsc
	}
}

// Reset returns the selection to the defaults.
func (s *State) Reset() {
	s.mu.Lock()
	s.prefs = DefaultPrefs()
	s.mu.Unlock()
}

// Restore applies a persisted selection through the validated setters,
// so foreign or stale values are rejected exactly like local ones.
func (s *State) Restore(p Prefs) {
	s.SetFilter(p.CurrentFilter)
	s.SetSearch(p.SearchQuery)
	s.SetSorting(p.SortBy, p.SortOrder)
}

// HasActiveFilters reports whether any selection differs from the defaults.
func (s *State) HasActiveFilters() bool {
	p := s.Prefs()
	return p.CurrentFilter != FilterAll ||
		strings.TrimSpace(p.SearchQuery) != "" ||
		p.SortBy != SortCreated ||
		p.SortOrder != OrderAsc
}

// Description renders the current selection as a human-readable summary.
func (s *State) Description() string {
	p := s.Prefs()
	var parts []string
	if p.CurrentFilter != FilterAll {
		parts = append(parts, fmt.Sprintf("showing %s tasks", p.CurrentFilter))
	}
	if strings.TrimSpace(p.SearchQuery) != "" {
		parts = append(parts, fmt.Sprintf("searching for %q", p.SearchQuery))
	}
	if p.SortBy != SortCreated || p.SortOrder != OrderAsc {
		parts = append(parts, fmt.Sprintf("sorted by %s (%s)", p.SortBy, p.SortOrder))
	}
	if len(parts) == 0 {
		return "showing all tasks"
	}
	return strings.Join(parts, ", ")
}

// Apply runs the full pipeline for the current selection.
func (s *State) Apply(tasks []task.Task) []task.Task {
	p := s.Prefs()
	return Pipeline(tasks, p)
}

// SearchInfoFor computes the search summary for the current selection.
func (s *State) SearchInfoFor(tasks []task.Task) SearchInfo {
	p := s.Prefs()
	statusOnly := ByStatus(tasks, p.CurrentFilter)
	visible := Pipeline(tasks, p)

	hasQuery := strings.TrimSpace(p.SearchQuery) != ""
	return SearchInfo{
		HasQuery:      hasQuery,
		Query:         p.SearchQuery,
		OriginalCount: len(statusOnly),
		FilteredCount: len(visible),
		HasResults:    len(visible) > 0,
		IsFiltered:    hasQuery && len(visible) != len(statusOnly),
	}
}

// Pipeline applies status filter, search filter, and sort in order.
func Pipeline(tasks []task.Task, p Prefs) []task.Task {
	out := ByStatus(tasks, p.CurrentFilter)
	out = BySearch(out, p.SearchQuery)
	return Sort(out, p.SortBy, p.SortOrder)
}

// ByStatus keeps tasks matching the status filter.
func ByStatus(tasks []task.Task, f Filter) []task.Task {
	out := make([]task.Task, 0, len(tasks))
	for _, t := range tasks {
		switch f {
		case FilterPending:
			if t.Completed {
				continue
			}
		case FilterCompleted:
			if !t.Completed {
				continue
			}
		}
		out = append(out, t)
	}
	return out
}

// BySearch keeps tasks whose text contains the trimmed query,
// case-insensitively. An empty query passes everything through.
func BySearch(tasks []task.Task, query string) []task.Task {
	term := strings.ToLower(strings.TrimSpace(query))
	if term == "" {
		out := make([]task.Task, len(tasks))
		copy(out, tasks)
		return out
	}

	out := make([]task.Task, 0, len(tasks))
	for _, t := range tasks {
		if strings.Contains(strings.ToLower(t.Text), term) {
			out = append(out, t)
		}
	}
	return out
}

// Sort stably orders tasks by the chosen key. Tasks comparing equal keep
// their relative input order. Descending negates the comparison.
func Sort(tasks []task.Task, key SortKey, order SortOrder) []task.Task {
	out := make([]task.Task, len(tasks))
	copy(out, tasks)

	var col *collate.Collator
	if key == SortText {
		col = collate.New(language.Und)
	}

	sort.SliceStable(out, func(i, j int) bool {
		c := compare(out[i], out[j], key, col)
		if order == OrderDesc {
			c = -c
		}
		return c < 0
	})
	return out
}

func compare(a, b task.Task, key SortKey, col *collate.Collator) int {
	switch key {
	case SortUpdated:
		return compareTimes(updatedOrCreated(a), updatedOrCreated(b))
	case SortText:
		return col.CompareString(a.Text, b.Text)
	case SortStatus:
		// Incomplete before complete, tie broken by creation time.
		if a.Completed != b.Completed {
			if a.Completed {
				return 1
			}
			return -1
		}
		return compareTimes(a.CreatedAt, b.CreatedAt)
	default: // SortCreated
		return compareTimes(a.CreatedAt, b.CreatedAt)
	}
}

func updatedOrCreated(t task.Task) time.Time {
	if t.UpdatedAt.IsZero() {
		return t.CreatedAt
	}
	return t.UpdatedAt
}

func compareTimes(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	default:
		return 0
	}
}
