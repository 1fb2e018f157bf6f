// Package app wires the task store, filter engine, persistence
// controller, theme state, and cross-instance syncer into one engine
// with a single action surface for UI code.
package app

import (
	"errors"
	stdsync "sync"
	"time"

	"github.com/charmbracelet/log"

	"taskpad/internal/filter"
	"taskpad/internal/kv"
	"taskpad/internal/persist"
	"taskpad/internal/sync"
	"taskpad/internal/task"
	"taskpad/internal/theme"
)

// Phase is the engine lifecycle state.
type Phase int

const (
	PhaseUninitialized Phase = iota
	PhaseHydrating
	PhaseLive
	PhaseClosed
)

// ErrNotLive is returned when Init or Close is called out of order.
var ErrNotLive = errors.New("engine is not live")

// Options configures an Engine.
type Options struct {
	// Store is the durable key-value store. Required.
	Store kv.Store

	// Notifier delivers storage change events from other execution
	// contexts. Nil disables cross-instance sync. The engine takes
	// ownership and closes it on Close.
	Notifier sync.Notifier

	// Key overrides the well-known storage key.
	Key string

	// Logger receives persistence and sync diagnostics.
	Logger *log.Logger

	// Debounce is the auto-save quiet period. Zero uses the default.
	Debounce time.Duration

	// SystemPrefersDark and ReducedMotion are the environment's
	// read-only accessibility signals at startup.
	SystemPrefersDark bool
	ReducedMotion     bool

	// SkipSampleData suppresses the welcome tasks on first run.
	SkipSampleData bool

	// ReadOnly suppresses the auto-save watcher and the Close flush, so
	// the engine never writes to the store. Used by headless read paths
	// that must not disturb persisted state or another live instance.
	ReadOnly bool
}

// Engine is the app orchestrator. It owns startup hydration, the
// debounced auto-save watcher, cross-instance sync, and the final
// synchronous flush on teardown.
type Engine struct {
	mu    stdsync.Mutex
	phase Phase

	tasks   *task.Store
	filters *filter.State
	theme   *theme.Manager
	ctrl    *persist.Controller
	syncer  *sync.Syncer
	log     *log.Logger

	debounce       time.Duration
	skipSample     bool
	readOnly       bool
	notifier       sync.Notifier
	saveEvents     chan struct{}
	cancelAutoSave persist.CancelFunc
	cancelStoreSub func()
	forwardDone    chan struct{}

	subMu stdsync.Mutex
	subs  []chan struct{}
}

// New creates an engine over the given options. Call Init to hydrate.
func New(opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = persist.DefaultDebounce
	}

	tasks := task.NewStore()
	filters := filter.NewState()
	themes := theme.NewManager()
	themes.SetSystemPreference(opts.SystemPrefersDark)
	themes.SetReducedMotion(opts.ReducedMotion)

	ctrl := persist.New(opts.Store, opts.Key, logger)

	e := &Engine{
		phase:      PhaseUninitialized,
		tasks:      tasks,
		filters:    filters,
		theme:      themes,
		ctrl:       ctrl,
		log:        logger,
		debounce:   debounce,
		skipSample: opts.SkipSampleData,
		readOnly:   opts.ReadOnly,
		notifier:   opts.Notifier,
	}
	if opts.Notifier != nil {
		e.syncer = sync.NewSyncer(opts.Notifier, ctrl, tasks, filters, themes, logger)
	}
	return e
}

// Phase returns the current lifecycle phase.
func (e *Engine) Phase() Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase
}

// live reports whether the engine currently accepts mutations.
func (e *Engine) live() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase == PhaseLive
}

// Init hydrates state from storage (or seeds defaults), then registers
// the auto-save watcher and cross-instance sync. After Init returns the
// engine is live.
func (e *Engine) Init() error {
	e.mu.Lock()
	if e.phase != PhaseUninitialized {
		e.mu.Unlock()
		return ErrNotLive
	}
	e.phase = PhaseHydrating
	e.mu.Unlock()

	e.hydrate()

	// Watchers are installed after hydration so restoring state does
	// not immediately re-save it.
	e.saveEvents = make(chan struct{}, 1)
	e.forwardDone = make(chan struct{})

	storeCh, cancelSub := e.tasks.Subscribe()
	e.cancelStoreSub = cancelSub
	go func() {
		for {
			select {
			case _, ok := <-storeCh:
				if !ok {
					return
				}
				e.notifyChanged()
			case <-e.forwardDone:
				return
			}
		}
	}()

	e.theme.SetOnChange(e.notifyChanged)
	if !e.readOnly {
		e.cancelAutoSave = e.ctrl.AutoSave(e.saveEvents, e.snapshot, e.debounce)
	}

	if e.syncer != nil {
		e.syncer.Start()
	}

	e.mu.Lock()
	e.phase = PhaseLive
	e.mu.Unlock()
	return nil
}

// hydrate loads-or-initializes all state. Reused after imports.
func (e *Engine) hydrate() {
	payload := e.ctrl.Load()
	if payload == nil {
		if e.skipSample {
			e.tasks.Reset()
		} else {
			e.tasks.Seed()
		}
		e.theme.UseSystemPreference()
		return
	}

	repaired, nextID := e.ctrl.ValidateAndRepair(payload.Tasks, payload.NextTaskID)
	e.tasks.Replace(repaired, nextID)
	if payload.Filters != nil {
		e.filters.Restore(*payload.Filters)
	}
	e.theme.Restore(payload.Theme)
}

// snapshot builds the full persisted state from current values.
func (e *Engine) snapshot() *persist.Snapshot {
	prefs := e.filters.Prefs()
	themePrefs := e.theme.Prefs()
	return &persist.Snapshot{
		Tasks:      e.tasks.Tasks(),
		NextTaskID: e.tasks.NextID(),
		Filters:    &prefs,
		Theme:      &themePrefs,
		Version:    persist.FormatVersion,
	}
}

// Close performs the final synchronous save (bypassing the debounce, so
// no pending timer is lost), then cancels the auto-save watcher and
// unsubscribes cross-instance sync, in that order. A read-only engine
// skips the save entirely: writing back what it hydrated could clobber
// changes another instance persisted in the meantime.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.phase != PhaseLive {
		e.mu.Unlock()
		return ErrNotLive
	}
	e.phase = PhaseClosed
	e.mu.Unlock()

	if !e.readOnly {
		e.ctrl.Save(e.snapshot())
	}

	if e.cancelAutoSave != nil {
		e.cancelAutoSave()
	}
	if e.cancelStoreSub != nil {
		e.cancelStoreSub()
	}
	close(e.forwardDone)
	e.theme.SetOnChange(nil)

	if e.syncer != nil {
		e.syncer.Stop()
	}
	if e.notifier != nil {
		_ = e.notifier.Close()
	}
	return nil
}

// Subscribe registers a UI change listener. The channel receives a
// coalesced signal after every state change; the second return value
// unsubscribes.
func (e *Engine) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	e.subMu.Lock()
	e.subs = append(e.subs, ch)
	e.subMu.Unlock()

	cancel := func() {
		e.subMu.Lock()
		defer e.subMu.Unlock()
		for i, sub := range e.subs {
			if sub == ch {
				e.subs = append(e.subs[:i], e.subs[i+1:]...)
				break
			}
		}
	}
	return ch, cancel
}

// notifyChanged schedules an auto-save and wakes UI subscribers.
func (e *Engine) notifyChanged() {
	if e.saveEvents != nil {
		select {
		case e.saveEvents <- struct{}{}:
		default:
		}
	}
	e.subMu.Lock()
	defer e.subMu.Unlock()
	for _, ch := range e.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
