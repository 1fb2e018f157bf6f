package filter

import (
	"testing"
	"time"

	"taskpad/internal/task"
)

func taskAt(id int, text string, completed bool, created time.Time) task.Task {
	return task.Task{
		ID:        id,
		Text:      text,
		Completed: completed,
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func sampleTasks() []task.Task {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return []task.Task{
		taskAt(1, "Buy groceries", false, base),
		taskAt(2, "Walk the dog", true, base.Add(time.Hour)),
		taskAt(3, "buy stamps", false, base.Add(2*time.Hour)),
		taskAt(4, "Call dentist", true, base.Add(3*time.Hour)),
	}
}

func TestByStatus(t *testing.T) {
	tasks := sampleTasks()

	tests := []struct {
		filter  Filter
		wantIDs []int
	}{
		{FilterAll, []int{1, 2, 3, 4}},
		{FilterPending, []int{1, 3}},
		{FilterCompleted, []int{2, 4}},
	}

	for _, tt := range tests {
		t.Run(string(tt.filter), func(t *testing.T) {
			got := ByStatus(tasks, tt.filter)
			assertIDs(t, got, tt.wantIDs)
		})
	}
}

func TestBySearch(t *testing.T) {
	tasks := sampleTasks()

	tests := []struct {
		name    string
		query   string
		wantIDs []int
	}{
		{"empty query passes all", "", []int{1, 2, 3, 4}},
		{"whitespace query passes all", "   ", []int{1, 2, 3, 4}},
		{"case insensitive", "BUY", []int{1, 3}},
		{"substring", "og", []int{2}},
		{"trimmed before matching", "  dog  ", []int{2}},
		{"no match", "zzz", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BySearch(tasks, tt.query)
			assertIDs(t, got, tt.wantIDs)
		})
	}
}

func TestSort(t *testing.T) {
	tasks := sampleTasks()

	tests := []struct {
		name    string
		key     SortKey
		order   SortOrder
		wantIDs []int
	}{
		{"created asc", SortCreated, OrderAsc, []int{1, 2, 3, 4}},
		{"created desc", SortCreated, OrderDesc, []int{4, 3, 2, 1}},
		{"text asc", SortText, OrderAsc, []int{1, 3, 4, 2}},
		{"status asc pending first", SortStatus, OrderAsc, []int{1, 3, 2, 4}},
		{"status desc completed first", SortStatus, OrderDesc, []int{4, 2, 3, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sort(tasks, tt.key, tt.order)
			assertIDs(t, got, tt.wantIDs)
		})
	}
}

func TestSortDoesNotMutateInput(t *testing.T) {
	tasks := sampleTasks()
	Sort(tasks, SortCreated, OrderDesc)
	if tasks[0].ID != 1 {
		t.Error("Sort mutated its input slice")
	}
}

func TestSortUpdatedFallsBackToCreated(t *testing.T) {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	a := taskAt(1, "a", false, base.Add(2*time.Hour))
	a.UpdatedAt = time.Time{}
	b := taskAt(2, "b", false, base)

	got := Sort([]task.Task{a, b}, SortUpdated, OrderAsc)
	assertIDs(t, got, []int{2, 1})
}

func TestStateValidation(t *testing.T) {
	s := NewState()

	s.SetFilter("bogus")
	if s.Prefs().CurrentFilter != FilterAll {
		t.Error("invalid filter was accepted")
	}

	s.SetFilter(FilterCompleted)
	if s.Prefs().CurrentFilter != FilterCompleted {
		t.Error("valid filter was rejected")
	}

	// Each sorting value validates independently.
	s.SetSorting("bogus", OrderDesc)
	p := s.Prefs()
	if p.SortBy != SortCreated {
		t.Errorf("invalid sort key was accepted: %s", p.SortBy)
	}
	if p.SortOrder != OrderDesc {
		t.Errorf("valid order alongside invalid key was rejected: %s", p.SortOrder)
	}

	s.SetSorting(SortText, "bogus")
	p = s.Prefs()
	if p.SortBy != SortText {
		t.Errorf("valid key alongside invalid order was rejected: %s", p.SortBy)
	}
	if p.SortOrder != OrderDesc {
		t.Errorf("invalid order was accepted: %s", p.SortOrder)
	}
}

func TestStateRestoreRejectsForeignValues(t *testing.T) {
	s := NewState()
	s.Restore(Prefs{
		CurrentFilter: "someday",
		SearchQuery:   "milk",
		SortBy:        SortUpdated,
		SortOrder:     "sideways",
	})

	p := s.Prefs()
	if p.CurrentFilter != FilterAll {
		t.Errorf("foreign filter adopted: %s", p.CurrentFilter)
	}
	if p.SearchQuery != "milk" {
		t.Errorf("search query lost: %q", p.SearchQuery)
	}
	if p.SortBy != SortUpdated {
		t.Errorf("valid sort key rejected: %s", p.SortBy)
	}
	if p.SortOrder != OrderAsc {
		t.Errorf("foreign sort order adopted: %s", p.SortOrder)
	}
}

func TestToggleSortOrder(t *testing.T) {
	s := NewState()
	s.ToggleSortOrder()
	if s.Prefs().SortOrder != OrderDesc {
		t.Error("expected desc after first toggle")
	}
	s.ToggleSortOrder()
	if s.Prefs().SortOrder != OrderAsc {
		t.Error("expected asc after second toggle")
	}
}

func TestHasActiveFiltersAndDescription(t *testing.T) {
	s := NewState()
	if s.HasActiveFilters() {
		t.Error("defaults reported as active filters")
	}
	if s.Description() != "showing all tasks" {
		t.Errorf("default description = %q", s.Description())
	}

	s.SetSearch("   ") // whitespace-only query is not an active filter
	if s.HasActiveFilters() {
		t.Error("whitespace query reported as active filter")
	}

	s.SetFilter(FilterPending)
	s.SetSearch("milk")
	if !s.HasActiveFilters() {
		t.Error("active selection not reported")
	}
	desc := s.Description()
	if desc == "" || desc == "showing all tasks" {
		t.Errorf("unexpected description: %q", desc)
	}

	s.Reset()
	if s.HasActiveFilters() {
		t.Error("filters still active after reset")
	}
}

func TestPipelineOrder(t *testing.T) {
	tasks := sampleTasks()
	got := Pipeline(tasks, Prefs{
		CurrentFilter: FilterPending,
		SearchQuery:   "buy",
		SortBy:        SortCreated,
		SortOrder:     OrderDesc,
	})
	assertIDs(t, got, []int{3, 1})
}

func TestSearchInfoFor(t *testing.T) {
	tasks := sampleTasks()
	s := NewState()

	info := s.SearchInfoFor(tasks)
	if info.HasQuery || info.IsFiltered || !info.HasResults {
		t.Errorf("default search info = %+v", info)
	}
	if info.OriginalCount != 4 || info.FilteredCount != 4 {
		t.Errorf("counts = %d/%d, want 4/4", info.OriginalCount, info.FilteredCount)
	}

	s.SetSearch("buy")
	info = s.SearchInfoFor(tasks)
	if !info.HasQuery || !info.IsFiltered {
		t.Errorf("search info after query = %+v", info)
	}
	if info.FilteredCount != 2 {
		t.Errorf("filtered count = %d, want 2", info.FilteredCount)
	}

	s.SetSearch("zzz")
	info = s.SearchInfoFor(tasks)
	if info.HasResults {
		t.Error("no-match query reported results")
	}
}

func TestCountsFor(t *testing.T) {
	c := CountsFor(sampleTasks())
	if c.All != 4 || c.Pending != 2 || c.Completed != 2 {
		t.Errorf("counts = %+v", c)
	}
}

func assertIDs(t *testing.T, tasks []task.Task, want []int) {
	t.Helper()
	if len(tasks) != len(want) {
		t.Fatalf("got %d tasks %v, want ids %v", len(tasks), taskIDs(tasks), want)
	}
	for i, id := range want {
		if tasks[i].ID != id {
			t.Errorf("position %d: got id %d, want %d (full order %v)", i, tasks[i].ID, id, taskIDs(tasks))
		}
	}
}

func taskIDs(tasks []task.Task) []int {
	out := make([]int, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}
