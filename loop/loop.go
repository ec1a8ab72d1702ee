// Package loop runs the core's callbacks, timers and event emissions on a
// single goroutine.
//
// Anything that originates on another goroutine, such as the decoder's
// event reader, reaches core state only through Post.
package loop

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/eonplay/eonplay/log"
)

// CancelFunc disarms a timer. Calling it more than once is harmless.
type CancelFunc func()

// Scheduler is the execution context shared by the core components.
type Scheduler interface {
	// Post queues fn for execution on the loop. It reports false once the
	// loop is closed.
	Post(fn func()) bool

	// AfterFunc runs fn on the loop once, after d.
	AfterFunc(d time.Duration, fn func()) CancelFunc

	// Every runs fn on the loop every d until cancelled.
	Every(d time.Duration, fn func()) CancelFunc
}

// Loop is a serial task queue drained by one goroutine.
type Loop struct {
	mu      sync.Mutex
	queue   []func()
	closed  bool
	wake    chan struct{}
	done    chan struct{}
	stopped chan struct{}
}

// New starts a loop.
func New() *Loop {
	l := &Loop{
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go l.run()
	return l
}

// Post implements Scheduler.
func (l *Loop) Post(fn func()) bool {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return false
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

// Call posts fn and waits for it to finish. It must not be called from the
// loop goroutine.
func (l *Loop) Call(fn func()) bool {
	finished := make(chan struct{})
	if !l.Post(func() {
		defer close(finished)
		fn()
	}) {
		return false
	}

	select {
	case <-finished:
		return true
	case <-l.stopped:
		return false
	}
}

// AfterFunc implements Scheduler.
func (l *Loop) AfterFunc(d time.Duration, fn func()) CancelFunc {
	var cancelled atomic.Bool
	t := time.AfterFunc(d, func() {
		l.Post(func() {
			if !cancelled.Load() {
				fn()
			}
		})
	})

	return func() {
		cancelled.Store(true)
		t.Stop()
	}
}

// Every implements Scheduler.
func (l *Loop) Every(d time.Duration, fn func()) CancelFunc {
	var cancelled atomic.Bool
	stop := make(chan struct{})
	ticker := time.NewTicker(d)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-l.done:
				return
			case <-ticker.C:
				l.Post(func() {
					if !cancelled.Load() {
						fn()
					}
				})
			}
		}
	}()

	var once sync.Once
	return func() {
		cancelled.Store(true)
		once.Do(func() { close(stop) })
	}
}

// Close stops accepting work, runs everything already queued and waits for
// the loop goroutine to exit.
func (l *Loop) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		<-l.stopped
		return
	}
	l.closed = true
	l.mu.Unlock()

	close(l.done)
	<-l.stopped
}

func (l *Loop) run() {
	defer close(l.stopped)

	for {
		l.mu.Lock()
		batch := l.queue
		l.queue = nil
		closed := l.closed
		l.mu.Unlock()

		for _, fn := range batch {
			l.exec(fn)
		}

		if len(batch) > 0 {
			continue
		}
		if closed {
			return
		}

		select {
		case <-l.wake:
		case <-l.done:
		}
	}
}

func (l *Loop) exec(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.For("loop").Error(fmt.Sprintf("panic in loop task: %v", r))
		}
	}()

	fn()
}
