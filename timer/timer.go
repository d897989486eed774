// timer/timer.go
package timer

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Handle owns at most one pending callback. Each room runtime holds one
// handle per concern (phase, hints) so cancelling a phase can never race a
// timer belonging to another room. Scheduling replaces any pending callback.
type Handle struct {
	clock clockwork.Clock
	mutex sync.Mutex
	timer clockwork.Timer
	seq   uint64
}

func NewHandle(clock clockwork.Clock) *Handle {
	return &Handle{clock: clock}
}

// Schedule cancels any pending callback and arms a new one after delay.
func (h *Handle) Schedule(delay time.Duration, callback func()) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if h.timer != nil {
		h.timer.Stop()
	}
	h.seq++
	seq := h.seq
	h.timer = h.clock.AfterFunc(delay, func() {
		// A fire that lost the race against Stop/Schedule is stale.
		h.mutex.Lock()
		live := h.seq == seq
		h.mutex.Unlock()
		if live {
			callback()
		}
	})
}

// Stop cancels the pending callback, if any.
func (h *Handle) Stop() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if h.timer != nil {
		h.timer.Stop()
		h.timer = nil
	}
	h.seq++
}
