package task

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"
	"time"
)

// Store holds the task collection and the next-id allocator.
//
// The store is the single writer of task state: the orchestrator's
// action surface and the cross-instance syncer mutate it, everything
// else holds read-only copies. A mutex guards against the watcher
// goroutine interleaving with local mutations.
type Store struct {
	mu         sync.Mutex
	tasks      []Task
	nextID     int
	submitting bool

	now     func() time.Time // injectable clock for deterministic tests
	latency time.Duration    // simulated submit latency for Add

	subMu sync.Mutex
	subs  []chan struct{}
}

// DefaultSubmitLatency mirrors the submission affordance of the original
// UI: Add suspends briefly while the submitting flag is set.
const DefaultSubmitLatency = 300 * time.Millisecond

// NewStore creates an empty store with the allocator at 1.
func NewStore() *Store {
	return &Store{
		tasks:   []Task{},
		nextID:  1,
		now:     time.Now,
		latency: DefaultSubmitLatency,
	}
}

// SetNowFunc overrides the clock used for timestamps.
// Passing nil resets it to time.Now.
func (s *Store) SetNowFunc(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if now == nil {
		s.now = time.Now
		return
	}
	s.now = now
}

// SetSubmitLatency overrides the simulated latency used by Add.
// Tests set this to zero.
func (s *Store) SetSubmitLatency(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d < 0 {
		d = 0
	}
	s.latency = d
}

// Subscribe registers a change listener. The returned channel receives a
// signal after every committed mutation; signals are coalesced, never
// blocking the mutator. The second return value unsubscribes.
func (s *Store) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	s.subMu.Lock()
	s.subs = append(s.subs, ch)
	s.subMu.Unlock()

	cancel := func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		for i, sub := range s.subs {
			if sub == ch {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				break
			}
		}
	}
	return ch, cancel
}

func (s *Store) notify() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default: // listener already has a pending signal
		}
	}
}

// Add validates and appends a new task, assigning the next id.
//
// Empty text (after trimming) fails with ErrEmptyText; text longer than
// MaxTextLen fails with ErrTextTooLong. The call suspends for the
// configured submit latency with IsSubmitting reporting true for the
// duration. Overlapping calls are not serialized here; both may commit.
func (s *Store) Add(ctx context.Context, text string) (*Task, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, ErrEmptyText
	}
	if len(trimmed) > MaxTextLen {
		return nil, ErrTextTooLong
	}

	s.mu.Lock()
	s.submitting = true
	latency := s.latency
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.submitting = false
		s.mu.Unlock()
	}()

	if latency > 0 {
		select {
		case <-time.After(latency):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	s.mu.Lock()
	now := s.now()
	t := Task{
		ID:        s.nextID,
		Text:      trimmed,
		Completed: false,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.nextID++
	s.tasks = append(s.tasks, t)
	s.mu.Unlock()

	s.notify()
	return &t, nil
}

// IsSubmitting reports whether an Add call is currently in flight.
func (s *Store) IsSubmitting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitting
}

// Toggle flips a task's completed flag and refreshes its UpdatedAt.
func (s *Store) Toggle(id int) (*Task, error) {
	s.mu.Lock()
	var toggled *Task
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks[i].Completed = !s.tasks[i].Completed
			s.tasks[i].UpdatedAt = s.now()
			t := s.tasks[i]
			toggled = &t
			break
		}
	}
	s.mu.Unlock()

	if toggled == nil {
		return nil, ErrNotFound
	}
	s.notify()
	return toggled, nil
}

// Apply mutates a task in place with the given partial update and
// refreshes UpdatedAt. Text updates are validated like Add.
func (s *Store) Apply(id int, u Update) (*Task, error) {
	var text string
	if u.Text != nil {
		text = strings.TrimSpace(*u.Text)
		if text == "" {
			return nil, ErrEmptyText
		}
		if len(text) > MaxTextLen {
			return nil, ErrTextTooLong
		}
	}

	s.mu.Lock()
	var updated *Task
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			if u.Text != nil {
				s.tasks[i].Text = text
			}
			if u.Completed != nil {
				s.tasks[i].Completed = *u.Completed
			}
			s.tasks[i].UpdatedAt = s.now()
			t := s.tasks[i]
			updated = &t
			break
		}
	}
	s.mu.Unlock()

	if updated == nil {
		return nil, ErrNotFound
	}
	s.notify()
	return updated, nil
}

// Delete removes a task and returns it, or ErrNotFound if absent.
func (s *Store) Delete(id int) (*Task, error) {
	s.mu.Lock()
	var removed *Task
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			t := s.tasks[i]
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			removed = &t
			break
		}
	}
	s.mu.Unlock()

	if removed == nil {
		return nil, ErrNotFound
	}
	s.notify()
	return removed, nil
}

// ClearCompleted removes all completed tasks and returns the count removed.
func (s *Store) ClearCompleted() int {
	s.mu.Lock()
	kept := s.tasks[:0]
	removed := 0
	for _, t := range s.tasks {
		if t.Completed {
			removed++
			continue
		}
		kept = append(kept, t)
	}
	s.tasks = kept
	s.mu.Unlock()

	if removed > 0 {
		s.notify()
	}
	return removed
}

// MarkAllComplete sets every task completed, refreshing UpdatedAt only
// for tasks whose value actually changes.
func (s *Store) MarkAllComplete() {
	s.setAll(true)
}

// MarkAllIncomplete sets every task pending, refreshing UpdatedAt only
// for tasks whose value actually changes.
func (s *Store) MarkAllIncomplete() {
	s.setAll(false)
}

func (s *Store) setAll(completed bool) {
	s.mu.Lock()
	changed := false
	for i := range s.tasks {
		if s.tasks[i].Completed != completed {
			s.tasks[i].Completed = completed
			s.tasks[i].UpdatedAt = s.now()
			changed = true
		}
	}
	s.mu.Unlock()

	if changed {
		s.notify()
	}
}

// Reset clears all tasks and returns the allocator to 1.
func (s *Store) Reset() {
	s.mu.Lock()
	s.tasks = []Task{}
	s.nextID = 1
	s.mu.Unlock()
	s.notify()
}

// Replace adopts a whole task collection and allocator value, as after
// hydration or a cross-instance update. The allocator is clamped so it
// always exceeds the highest adopted id.
func (s *Store) Replace(tasks []Task, nextID int) {
	s.mu.Lock()
	s.tasks = make([]Task, len(tasks))
	copy(s.tasks, tasks)
	if nextID < 1 {
		nextID = 1
	}
	for _, t := range s.tasks {
		if t.ID >= nextID {
			nextID = t.ID + 1
		}
	}
	s.nextID = nextID
	s.mu.Unlock()
	s.notify()
}

// Seed populates the store with the built-in welcome tasks, used on
// first run when no persisted snapshot exists.
func (s *Store) Seed() {
	s.mu.Lock()
	now := s.now()
	s.tasks = []Task{
		{ID: 1, Text: "Welcome to your To-Do app! 👋", CreatedAt: now, UpdatedAt: now},
		{ID: 2, Text: "Try adding a new task above", CreatedAt: now, UpdatedAt: now},
		{ID: 3, Text: "Mark this task as complete", CreatedAt: now, UpdatedAt: now},
	}
	s.nextID = 4
	s.mu.Unlock()
	s.notify()
}

// Get returns a copy of the task with the given id.
func (s *Store) Get(id int) (*Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tasks {
		if t.ID == id {
			c := t
			return &c, true
		}
	}
	return nil, false
}

// Tasks returns a copy of the task collection in insertion order.
func (s *Store) Tasks() []Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// NextID returns the allocator's next id value.
func (s *Store) NextID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextID
}

// Sorted returns the store's default display order: pending tasks
// first, completed last, each group ascending by id (insertion order).
// This ordering is independent of the filter engine's sort.
func (s *Store) Sorted() []Task {
	out := s.Tasks()
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Completed != out[j].Completed {
			return !out[i].Completed
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Stats summarizes the collection.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Stats{Total: len(s.tasks)}
	for _, t := range s.tasks {
		if t.Completed {
			st.Completed++
		} else {
			st.Pending++
		}
	}
	if st.Total > 0 {
		st.CompletionPercentage = int(math.Round(float64(st.Completed) / float64(st.Total) * 100))
	}
	return st
}
