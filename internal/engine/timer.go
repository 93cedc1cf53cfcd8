package engine

import (
	"sync"
	"time"
)

// TimerRegistry maps chat ids to cancelable round deadlines. A chat has
// at most one pending timer; scheduling replaces any existing one.
// Cancel is idempotent, and a timer that fires after Cancel lost the
// race: its callback must re-check session liveness under the chat
// lock before acting.
type TimerRegistry struct {
	mu     sync.Mutex
	seq    uint64
	timers map[int64]timerEntry
}

type timerEntry struct {
	id    uint64
	timer *time.Timer
}

// NewTimerRegistry creates an empty registry.
func NewTimerRegistry() *TimerRegistry {
	return &TimerRegistry{timers: make(map[int64]timerEntry)}
}

// Schedule arms fn to run after d, replacing any pending timer for the
// chat. The registry entry is removed before fn runs, keyed by a
// per-schedule id so a replaced timer that fires late cannot evict its
// successor's entry.
func (r *TimerRegistry) Schedule(chatID int64, d time.Duration, fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.timers[chatID]; ok {
		e.timer.Stop()
	}
	r.seq++
	id := r.seq
	r.timers[chatID] = timerEntry{
		id: id,
		timer: time.AfterFunc(d, func() {
			r.forget(chatID, id)
			fn()
		}),
	}
}

// Cancel stops the chat's pending timer, if any. Returns whether a
// timer was found. A fire already in flight is not interrupted; the
// callback's liveness re-check makes it a no-op.
func (r *TimerRegistry) Cancel(chatID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.timers[chatID]
	if !ok {
		return false
	}
	e.timer.Stop()
	delete(r.timers, chatID)
	return true
}

func (r *TimerRegistry) forget(chatID int64, id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.timers[chatID]; ok && e.id == id {
		delete(r.timers, chatID)
	}
}

// Active reports whether the chat has a pending timer.
func (r *TimerRegistry) Active(chatID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.timers[chatID]
	return ok
}

// Count returns the number of pending timers.
func (r *TimerRegistry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.timers)
}
