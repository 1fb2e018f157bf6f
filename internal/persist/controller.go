package persist

import (
	"crypto/sha256"
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"taskpad/internal/kv"
	"taskpad/internal/task"
)

// DefaultKey is the well-known storage key the snapshot lives under.
const DefaultKey = "taskpad-data"

// AssumedQuota is the assumed capacity of the durable store, used only
// for the usage estimate in Info, never for enforcement.
const AssumedQuota = 5 * 1024 * 1024

// probeKey is the throwaway key used by IsAvailable.
const probeKey = "__taskpad_probe__"

// Info estimates storage usage against the assumed quota.
type Info struct {
	Used            int64   `json:"used"`
	Quota           int64   `json:"quota"`
	Available       int64   `json:"available"`
	UsagePercentage float64 `json:"usagePercentage"`
}

// Controller owns the snapshot's round trips through the durable store.
// Every failure path degrades to "keep prior good state": save reports
// false, load reports nil, nothing panics or partially applies.
type Controller struct {
	store kv.Store
	key   string
	log   *log.Logger
	now   func() time.Time

	mu        sync.Mutex
	lastSaved [sha256.Size]byte
	hasSaved  bool
}

// New creates a controller over the given store and key. A nil logger
// falls back to the default logger.
func New(store kv.Store, key string, logger *log.Logger) *Controller {
	if key == "" {
		key = DefaultKey
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Controller{
		store: store,
		key:   key,
		log:   logger,
		now:   time.Now,
	}
}

// SetNowFunc overrides the clock used for repair back-fill and export
// metadata. Passing nil resets it to time.Now.
func (c *Controller) SetNowFunc(now func() time.Time) {
	if now == nil {
		now = time.Now
	}
	c.now = now
}

// Key returns the storage key the controller reads and writes.
func (c *Controller) Key() string {
	return c.key
}

// Save serializes the snapshot under the well-known key. Storage
// failures are logged and reported as false, never propagated; the
// caller's in-memory state remains authoritative either way.
func (c *Controller) Save(snap *Snapshot) bool {
	if snap == nil {
		return false
	}
	if snap.Version == "" {
		snap.Version = FormatVersion
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		c.log.Warn("failed to serialize snapshot", "err", err)
		return false
	}
	if err := c.store.Set(c.key, data); err != nil {
		c.log.Warn("failed to save snapshot", "err", err)
		return false
	}

	c.mu.Lock()
	c.lastSaved = sha256.Sum256(data)
	c.hasSaved = true
	c.mu.Unlock()
	return true
}

// Load reads and decodes the persisted payload. Absence and parse
// failures both yield nil (the latter logged); task data inside the
// payload is still untrusted until ValidateAndRepair.
func (c *Controller) Load() *Payload {
	data, ok, err := c.store.Get(c.key)
	if err != nil {
		c.log.Warn("failed to load snapshot", "err", err)
		return nil
	}
	if !ok {
		return nil
	}

	payload, err := decodePayload(data)
	if err != nil {
		c.log.Warn("failed to parse snapshot", "err", err)
		return nil
	}
	return payload
}

// ValidateAndRepair normalizes untrusted task data, synthesizing ids,
// coercing completed flags, and back-filling timestamps. The returned
// allocator value always exceeds every returned id.
func (c *Controller) ValidateAndRepair(raw any, fallbackNextID int) ([]task.Task, int) {
	return validateAndRepair(raw, fallbackNextID, c.now())
}

// WasLocalWrite reports whether data is byte-identical to the last value
// this controller saved. The cross-instance syncer uses it to drop
// echoes of its own writes.
func (c *Controller) WasLocalWrite(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hasSaved && sha256.Sum256(data) == c.lastSaved
}

// exportEnvelope wraps the persisted snapshot with export metadata.
type exportEnvelope struct {
	ExportedAt string `json:"exportedAt"`
	Version    string `json:"version"`
}

// Export wraps the currently persisted snapshot with exportedAt/version
// metadata, pretty-printed. Returns false when nothing is persisted yet.
func (c *Controller) Export() (string, bool) {
	data, ok, err := c.store.Get(c.key)
	if err != nil || !ok {
		if err != nil {
			c.log.Warn("failed to read snapshot for export", "err", err)
		}
		return "", false
	}

	var value map[string]any
	if err := json.Unmarshal(data, &value); err != nil {
		c.log.Warn("persisted snapshot is not valid JSON", "err", err)
		return "", false
	}

	value["exportedAt"] = c.now().UTC().Format(time.RFC3339)
	value["version"] = FormatVersion

	out, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		c.log.Warn("failed to serialize export", "err", err)
		return "", false
	}
	return string(out), true
}

// Import parses an export payload, strips the export metadata, and
// persists the remainder under the well-known key. Malformed input fails
// closed without touching existing persisted state. In-memory state is
// not updated here; the caller reloads through Load + ValidateAndRepair.
func (c *Controller) Import(serialized string) bool {
	value, err := parseImport([]byte(serialized))
	if err != nil {
		c.log.Warn("rejected import", "err", err)
		return false
	}

	delete(value, "exportedAt")
	delete(value, "version")

	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		c.log.Warn("failed to serialize import", "err", err)
		return false
	}
	if err := c.store.Set(c.key, data); err != nil {
		c.log.Warn("failed to persist import", "err", err)
		return false
	}

	c.mu.Lock()
	c.lastSaved = sha256.Sum256(data)
	c.hasSaved = true
	c.mu.Unlock()
	return true
}

// Clear removes the persisted snapshot.
func (c *Controller) Clear() bool {
	if err := c.store.Delete(c.key); err != nil {
		c.log.Warn("failed to clear snapshot", "err", err)
		return false
	}
	return true
}

// StorageInfo estimates usage of the durable store for the snapshot key.
func (c *Controller) StorageInfo() Info {
	var used int64
	if data, ok, err := c.store.Get(c.key); err == nil && ok {
		used = int64(len(data))
	}
	info := Info{
		Used:      used,
		Quota:     AssumedQuota,
		Available: AssumedQuota - used,
	}
	if info.Quota > 0 {
		info.UsagePercentage = float64(used) / float64(info.Quota) * 100
	}
	return info
}

// IsAvailable probes the durable store with a throwaway write and
// delete, so callers can choose to degrade to in-memory-only mode.
func (c *Controller) IsAvailable() bool {
	if err := c.store.Set(probeKey, []byte("probe")); err != nil {
		return false
	}
	if err := c.store.Delete(probeKey); err != nil {
		return false
	}
	return true
}
