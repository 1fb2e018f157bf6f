package sync

import (
	stdsync "sync"

	"github.com/charmbracelet/log"

	"taskpad/internal/filter"
	"taskpad/internal/persist"
	"taskpad/internal/task"
	"taskpad/internal/theme"
)

// Syncer feeds validated storage change notifications back into local
// state. Task data is adopted wholesale (last writer wins at snapshot
// granularity, no field-level merge); filter selections pass through the
// same validated setters as local changes; theme broadcasts respect the
// local manual-preference guard.
type Syncer struct {
	key      string
	notifier Notifier
	ctrl     *persist.Controller
	tasks    *task.Store
	filters  *filter.State
	theme    *theme.Manager
	log      *log.Logger

	done chan struct{}
	wg   stdsync.WaitGroup
	once stdsync.Once
}

// NewSyncer wires a syncer over the given notifier and local state.
// A nil logger falls back to the default logger.
func NewSyncer(notifier Notifier, ctrl *persist.Controller, tasks *task.Store, filters *filter.State, themes *theme.Manager, logger *log.Logger) *Syncer {
	if logger == nil {
		logger = log.Default()
	}
	return &Syncer{
		key:      ctrl.Key(),
		notifier: notifier,
		ctrl:     ctrl,
		tasks:    tasks,
		filters:  filters,
		theme:    themes,
		log:      logger,
		done:     make(chan struct{}),
	}
}

// Start begins consuming notifications until Stop is called or the
// notifier's channel closes.
func (s *Syncer) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			select {
			case ev, ok := <-s.notifier.Events():
				if !ok {
					return
				}
				s.handle(ev)
			case <-s.done:
				return
			}
		}
	}()
}

// Stop unsubscribes and waits for the consuming goroutine to finish.
func (s *Syncer) Stop() {
	s.once.Do(func() { close(s.done) })
	s.wg.Wait()
}

// handle applies one notification. Malformed payloads are ignored
// whole: no crash, no partial state.
func (s *Syncer) handle(ev Event) {
	if ev.Key != s.key || len(ev.NewValue) == 0 {
		return
	}
	if s.ctrl.WasLocalWrite(ev.NewValue) {
		return
	}

	payload, err := persist.ParsePayload(ev.NewValue)
	if err != nil {
		s.log.Warn("ignoring malformed sync payload", "err", err)
		return
	}

	if payload.Tasks != nil {
		repaired, nextID := s.ctrl.ValidateAndRepair(payload.Tasks, payload.NextTaskID)
		s.tasks.Replace(repaired, nextID)
		s.log.Debug("adopted remote task snapshot", "tasks", len(repaired), "nextId", nextID)
	}

	if payload.Filters != nil && payload.Filters.CurrentFilter != "" {
		s.filters.SetFilter(payload.Filters.CurrentFilter)
	}

	if payload.Theme != nil {
		if s.theme.ApplyRemote(payload.Theme.IsDarkMode) {
			s.log.Debug("adopted remote theme", "dark", payload.Theme.IsDarkMode)
		}
	}
}
