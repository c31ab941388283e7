package sched

import "sync"

// TransitionLock serializes state transitions with strict FIFO hand-off:
// waiters acquire in arrival order, so an event that arrived first is
// applied first even under contention. sync.Mutex makes no ordering
// promise, which is not good enough for a deterministic event log.
type TransitionLock struct {
	mu      sync.Mutex
	locked  bool
	waiters []chan struct{}
}

// NewTransitionLock returns an unlocked lock.
func NewTransitionLock() *TransitionLock {
	return &TransitionLock{}
}

// Lock blocks until the lock is held, queueing behind earlier callers.
func (l *TransitionLock) Lock() {
	l.mu.Lock()
	if !l.locked {
		l.locked = true
		l.mu.Unlock()
		return
	}
	ch := make(chan struct{})
	l.waiters = append(l.waiters, ch)
	l.mu.Unlock()
	<-ch
}

// Unlock releases the lock, handing it directly to the oldest waiter if
// one exists. Unlocking an unheld lock panics.
func (l *TransitionLock) Unlock() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.locked {
		panic("sched: unlock of unlocked TransitionLock")
	}
	if len(l.waiters) == 0 {
		l.locked = false
		return
	}
	ch := l.waiters[0]
	l.waiters = l.waiters[1:]
	close(ch)
}

// TryLock acquires the lock only if it is free, without queueing.
func (l *TransitionLock) TryLock() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.locked {
		return false
	}
	l.locked = true
	return true
}
