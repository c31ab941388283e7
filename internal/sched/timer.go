// Package sched provides the timing and serialization primitives the
// engine builds phases on: a replaceable deadline timer with remaining-
// time warnings, and a FIFO hand-off lock for transitions.
package sched

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
)

// warningMarks are the remaining-time announcements before a deadline,
// longest first. Marks at or beyond the phase budget are skipped.
var warningMarks = []time.Duration{60 * time.Second, 30 * time.Second, 10 * time.Second}

// PhaseTimer enforces one phase deadline at a time. Starting a new
// deadline replaces the previous one; a replaced or cancelled deadline
// never fires its callbacks. All firing happens on the injected clock,
// so tests drive it with a quartz mock.
type PhaseTimer struct {
	clock  quartz.Clock
	logger *log.Logger

	mu     sync.Mutex
	gen    uint64
	timers []*quartz.Timer
}

// NewPhaseTimer creates a timer on the given clock.
func NewPhaseTimer(clock quartz.Clock, logger *log.Logger) *PhaseTimer {
	return &PhaseTimer{
		clock:  clock,
		logger: logger.WithPrefix("timer"),
	}
}

// Start arms a deadline of the given duration, replacing any armed
// deadline. onWarn is called with the remaining time at each warning
// mark shorter than the budget, and onExpire when the deadline lapses.
// Callbacks run on the clock's goroutine and are suppressed if the
// deadline was replaced or cancelled in the meantime.
func (t *PhaseTimer) Start(d time.Duration, onWarn func(remaining time.Duration), onExpire func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopLocked()
	t.gen++
	gen := t.gen

	for _, mark := range warningMarks {
		if mark >= d || onWarn == nil {
			continue
		}
		remaining := mark
		tm := t.clock.AfterFunc(d-mark, func() {
			if t.current(gen) {
				onWarn(remaining)
			}
		})
		t.timers = append(t.timers, tm)
	}

	tm := t.clock.AfterFunc(d, func() {
		if !t.current(gen) {
			return
		}
		t.logger.Debug("phase deadline expired", "budget", d)
		onExpire()
	})
	t.timers = append(t.timers, tm)
}

// Cancel disarms the current deadline. Calling it with no armed
// deadline is a no-op.
func (t *PhaseTimer) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
	t.gen++
}

func (t *PhaseTimer) stopLocked() {
	for _, tm := range t.timers {
		tm.Stop()
	}
	t.timers = nil
}

// current reports whether gen is still the armed deadline. Stop on a
// quartz timer does not prevent an already-dispatched callback, so each
// callback re-checks its generation.
func (t *PhaseTimer) current(gen uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return gen == t.gen
}
