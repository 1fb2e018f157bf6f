// Package task owns the canonical task list and its id allocator.
// All mutations go through the Store; readers only ever see copies.
package task

import (
	"errors"
	"time"
)

// MaxTextLen is the maximum allowed length of task text after trimming.
const MaxTextLen = 200

var (
	// ErrEmptyText is returned when task text is empty after trimming.
	ErrEmptyText = errors.New("task text is required")

	// ErrTextTooLong is returned when task text exceeds MaxTextLen.
	ErrTextTooLong = errors.New("task text too long (max 200)")

	// ErrNotFound is returned when no task has the requested id.
	ErrNotFound = errors.New("task not found")
)

// Task represents a single todo item.
//
// Ids are positive integers assigned once at creation and never reused.
// Timestamps serialize as RFC 3339 strings; UpdatedAt never precedes
// CreatedAt.
type Task struct {
	ID        int       `json:"id"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Update describes a partial task mutation. Nil fields are left unchanged.
type Update struct {
	Text      *string
	Completed *bool
}

// Stats summarizes the task collection.
type Stats struct {
	Total                int `json:"total"`
	Completed            int `json:"completed"`
	Pending              int `json:"pending"`
	CompletionPercentage int `json:"completionPercentage"`
}
