package testutil

import (
	"sort"
	"sync"
	"time"

	"github.com/roach88/actionroute/internal/effect"
)

// ManualTimers is a deterministic replacement for time.AfterFunc. Timers
// fire only when Advance moves the fake clock past their deadline.
//
// Thread-safety: all methods are safe for concurrent use.
type ManualTimers struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*manualTimer
}

type manualTimer struct {
	owner    *ManualTimers
	deadline time.Duration
	fn       func()
	stopped  bool
	fired    bool
}

func (t *manualTimer) Stop() bool {
	t.owner.mu.Lock()
	defer t.owner.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

// AfterFunc matches effect.AfterFunc.
func (m *ManualTimers) AfterFunc(d time.Duration, f func()) effect.Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &manualTimer{owner: m, deadline: m.now + d, fn: f}
	m.timers = append(m.timers, t)
	return t
}

// Advance moves the clock forward by d and runs every timer that became
// due, in deadline order. Callbacks run without the lock held.
func (m *ManualTimers) Advance(d time.Duration) {
	m.mu.Lock()
	m.now += d
	var due []*manualTimer
	for _, t := range m.timers {
		if !t.stopped && !t.fired && t.deadline <= m.now {
			t.fired = true
			due = append(due, t)
		}
	}
	m.mu.Unlock()

	sort.SliceStable(due, func(i, j int) bool { return due[i].deadline < due[j].deadline })
	for _, t := range due {
		t.fn()
	}
}

// Pending returns the number of timers that have neither fired nor stopped.
func (m *ManualTimers) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}
