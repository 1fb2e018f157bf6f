package persist

import (
	"sync"
	"time"
)

// DefaultDebounce is the quiet period the auto-saver waits for after the
// last observed change before writing.
const DefaultDebounce = 300 * time.Millisecond

// CancelFunc stops an auto-saver. It must be invoked on teardown so no
// dangling debounce timer writes after the caller is gone.
type CancelFunc func()

// AutoSave watches the events channel and persists a fresh snapshot
// after each burst of changes settles. Every event restarts the debounce
// window; when it elapses, build is called and its result saved, so a
// burst of N mutations produces one write reflecting the final state.
//
// The returned CancelFunc stops observation and clears any pending
// timer. It is safe to call more than once.
func (c *Controller) AutoSave(events <-chan struct{}, build func() *Snapshot, debounce time.Duration) CancelFunc {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	done := make(chan struct{})
	var once sync.Once

	go func() {
		timer := time.NewTimer(debounce)
		if !timer.Stop() {
			<-timer.C
		}
		pending := false

		for {
			select {
			case _, ok := <-events:
				if !ok {
					if pending && !timer.Stop() {
						<-timer.C
					}
					return
				}
				if pending && !timer.Stop() {
					<-timer.C
				}
				timer.Reset(debounce)
				pending = true

			case <-timer.C:
				pending = false
				c.Save(build())

			case <-done:
				if pending && !timer.Stop() {
					<-timer.C
				}
				return
			}
		}
	}()

	return func() {
		once.Do(func() { close(done) })
	}
}
