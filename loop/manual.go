package loop

import (
	"sort"
	"time"
)

// Manual is a deterministic Scheduler driven by virtual time. Posted work
// runs immediately on the caller's goroutine; timers fire only from Advance.
type Manual struct {
	now    time.Duration
	seq    int
	timers []*manualTimer
}

type manualTimer struct {
	at        time.Duration
	period    time.Duration
	seq       int
	fn        func()
	cancelled bool
}

// NewManual returns a scheduler at virtual time zero.
func NewManual() *Manual {
	return &Manual{}
}

// Post runs fn immediately.
func (m *Manual) Post(fn func()) bool {
	fn()
	return true
}

func (m *Manual) AfterFunc(d time.Duration, fn func()) CancelFunc {
	return m.add(d, 0, fn)
}

func (m *Manual) Every(d time.Duration, fn func()) CancelFunc {
	return m.add(d, d, fn)
}

func (m *Manual) add(d, period time.Duration, fn func()) CancelFunc {
	m.seq++
	t := &manualTimer{at: m.now + d, period: period, seq: m.seq, fn: fn}
	m.timers = append(m.timers, t)
	return func() { t.cancelled = true }
}

// Now returns the virtual time elapsed since creation.
func (m *Manual) Now() time.Duration {
	return m.now
}

// Pending returns the number of armed timers.
func (m *Manual) Pending() int {
	m.prune()
	return len(m.timers)
}

// Advance moves virtual time forward by d, firing every timer that falls due
// in order of deadline.
func (m *Manual) Advance(d time.Duration) {
	target := m.now + d

	for {
		m.prune()
		if len(m.timers) == 0 {
			break
		}

		sort.SliceStable(m.timers, func(i, j int) bool {
			if m.timers[i].at == m.timers[j].at {
				return m.timers[i].seq < m.timers[j].seq
			}
			return m.timers[i].at < m.timers[j].at
		})

		next := m.timers[0]
		if next.at > target {
			break
		}

		m.now = next.at
		if next.period > 0 {
			next.at += next.period
		} else {
			next.cancelled = true
		}
		next.fn()
	}

	m.now = target
}

func (m *Manual) prune() {
	live := m.timers[:0]
	for _, t := range m.timers {
		if !t.cancelled {
			live = append(live, t)
		}
	}
	m.timers = live
}
