package persist

import (
	"testing"
	"time"

	"taskpad/internal/kv"
)

// FuzzDecodePayload throws arbitrary bytes at the snapshot decoder and
// repair path. Whatever comes in, decoding must not panic, and a decoded
// payload must repair to a consistent collection: ids positive, the
// allocator above every id.
func FuzzDecodePayload(f *testing.F) {
	f.Add([]byte(`{}`))
	f.Add([]byte(`{"tasks": []}`))
	f.Add([]byte(`{"tasks": "garbage", "nextTaskId": -5}`))
	f.Add([]byte(`{"tasks": [{"id": "x", "completed": 1}], "nextId": 2}`))
	f.Add([]byte(`{"tasks": [{"id": 3, "createdAt": "bogus"}], "currentFilter": "all"}`))
	f.Add([]byte(`[1,2,3]`))
	f.Add([]byte(`null`))
	f.Add([]byte(`{"theme": {"isDarkMode": "maybe"}}`))

	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

	f.Fuzz(func(t *testing.T, data []byte) {
		payload, err := decodePayload(data)
		if err != nil {
			return
		}

		tasks, nextID := validateAndRepair(payload.Tasks, payload.NextTaskID, now)
		if nextID < 1 {
			t.Fatalf("allocator below 1: %d", nextID)
		}
		for _, task := range tasks {
			if task.ID <= 0 {
				t.Fatalf("non-positive id survived repair: %d", task.ID)
			}
			if task.ID >= nextID {
				t.Fatalf("allocator %d does not exceed id %d", nextID, task.ID)
			}
			if task.CreatedAt.IsZero() || task.UpdatedAt.IsZero() {
				t.Fatalf("zero timestamp survived repair: %+v", task)
			}
		}
	})
}

// FuzzImport feeds arbitrary strings to the import path. Rejected input
// must leave persisted state untouched; accepted input must load.
func FuzzImport(f *testing.F) {
	f.Add(`{"tasks": [], "nextTaskId": 1}`)
	f.Add(`{"tasks": [{"id": 1, "text": "a"}], "exportedAt": "x", "version": "1.0"}`)
	f.Add(`{nope`)
	f.Add(`[]`)
	f.Add(`{"tasks": 7}`)

	f.Fuzz(func(t *testing.T, serialized string) {
		store := kv.NewMemStore()
		c := New(store, "", nil)
		c.Save(testSnapshot())
		before, _, _ := store.Get(DefaultKey)

		if !c.Import(serialized) {
			after, _, _ := store.Get(DefaultKey)
			if string(before) != string(after) {
				t.Fatal("rejected import modified persisted state")
			}
			return
		}

		if c.Load() == nil {
			t.Fatal("accepted import does not load")
		}
	})
}
