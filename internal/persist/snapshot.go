// Package persist serializes the application snapshot to a durable
// key-value store and defends every read path against malformed or
// stale data. Durability failures are logged and reported as boolean
// results; in-memory state stays authoritative when the store misbehaves.
package persist

import (
	"encoding/json"
	"time"

	"taskpad/internal/filter"
	"taskpad/internal/task"
	"taskpad/internal/theme"
)

// FormatVersion is written into snapshots and export envelopes.
const FormatVersion = "1.0"

// Snapshot is the full persisted state: the unit of durability and of
// cross-instance synchronization. It is always written whole; readers
// ignore unknown fields and repair missing ones.
type Snapshot struct {
	Tasks      []task.Task   `json:"tasks"`
	NextTaskID int           `json:"nextTaskId"`
	Filters    *filter.Prefs `json:"filters,omitempty"`
	Theme      *theme.Prefs  `json:"theme,omitempty"`
	Version    string        `json:"version,omitempty"`
}

// Payload is a decoded but untrusted snapshot. Tasks stay loosely typed
// until ValidateAndRepair normalizes them; filter and theme selections
// are applied through validated setters by the caller.
type Payload struct {
	Tasks      any
	NextTaskID int
	Filters    *filter.Prefs
	Theme      *theme.Prefs
	Version    string
}

// ParsePayload parses raw snapshot JSON defensively for callers outside
// the controller's own load path, such as the cross-instance syncer.
func ParsePayload(data []byte) (*Payload, error) {
	return decodePayload(data)
}

// decodePayload parses raw snapshot JSON defensively. Only the top-level
// object shape is required; every field is optional and individually
// coerced. Both the canonical nested layout and the legacy flat layout
// (top-level currentFilter, isDarkMode, nextId) are understood.
func decodePayload(data []byte) (*Payload, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	p := &Payload{Tasks: raw["tasks"]}

	if n, ok := asInt(raw["nextTaskId"]); ok {
		p.NextTaskID = n
	} else if n, ok := asInt(raw["nextId"]); ok {
		p.NextTaskID = n
	}

	if s, ok := raw["version"].(string); ok {
		p.Version = s
	}

	p.Filters = decodeFilterPrefs(raw)
	p.Theme = decodeThemePrefs(raw)

	return p, nil
}

func decodeFilterPrefs(raw map[string]any) *filter.Prefs {
	src := raw
	if nested, ok := raw["filters"].(map[string]any); ok {
		src = nested
	} else if _, ok := raw["currentFilter"]; !ok {
		return nil
	}

	prefs := &filter.Prefs{}
	if s, ok := src["currentFilter"].(string); ok {
		prefs.CurrentFilter = filter.Filter(s)
	}
	if s, ok := src["searchQuery"].(string); ok {
		prefs.SearchQuery = s
	}
	if s, ok := src["sortBy"].(string); ok {
		prefs.SortBy = filter.SortKey(s)
	}
	if s, ok := src["sortOrder"].(string); ok {
		prefs.SortOrder = filter.SortOrder(s)
	}
	return prefs
}

func decodeThemePrefs(raw map[string]any) *theme.Prefs {
	src := raw
	if nested, ok := raw["theme"].(map[string]any); ok {
		src = nested
	}
	dark, ok := src["isDarkMode"].(bool)
	if !ok {
		return nil
	}
	manual, _ := src["hasManualPreference"].(bool)
	return &theme.Prefs{IsDarkMode: dark, HasManualPreference: manual}
}

// validateAndRepair normalizes untrusted task data into canonical tasks.
//
// Non-array input yields an empty collection with the allocator at 1.
// Per task: a missing or non-positive id is synthesized as
// fallbackNextID+index, completed is coerced to a boolean, and absent or
// unparseable timestamps are back-filled (updatedAt falls back to
// createdAt before "now"). The returned allocator value is
// max(fallbackNextID, maxID+1), the sole authority for allocator
// recovery after a reload or import.
func validateAndRepair(raw any, fallbackNextID int, now time.Time) ([]task.Task, int) {
	items, ok := raw.([]any)
	if !ok {
		return []task.Task{}, 1
	}
	if fallbackNextID < 1 {
		fallbackNextID = 1
	}

	tasks := make([]task.Task, 0, len(items))
	for i, item := range items {
		fields, _ := item.(map[string]any)

		t := task.Task{}
		if id, ok := asInt(fields["id"]); ok && id > 0 {
			t.ID = id
		} else {
			t.ID = fallbackNextID + i
		}
		if s, ok := fields["text"].(string); ok {
			t.Text = s
		}
		t.Completed = truthy(fields["completed"])

		created, createdOK := asTime(fields["createdAt"])
		if !createdOK {
			created = now
		}
		t.CreatedAt = created

		if updated, ok := asTime(fields["updatedAt"]); ok {
			t.UpdatedAt = updated
		} else if createdOK {
			t.UpdatedAt = created
		} else {
			t.UpdatedAt = now
		}

		tasks = append(tasks, t)
	}

	nextID := fallbackNextID
	for _, t := range tasks {
		if t.ID >= nextID {
			nextID = t.ID + 1
		}
	}
	return tasks, nextID
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	default:
		return 0, false
	}
}

func asTime(v any) (time.Time, bool) {
	s, ok := v.(string)
	if !ok {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// truthy mirrors the loose boolean coercion persisted data may have been
// written under: zero numbers, empty strings, and nil are false.
func truthy(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case float64:
		return b != 0
	case string:
		return b != ""
	case nil:
		return false
	default:
		return true
	}
}
