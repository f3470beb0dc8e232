// Package clock provides the periodic tick source that drives playback.
package clock

import (
	"sync"
	"time"
)

// CancelFunc stops a periodic callback. It is safe to call more than once.
// A callback already in flight may still complete after cancel returns.
type CancelFunc func()

// Clock schedules fn every interval until cancelled.
type Clock interface {
	Every(interval time.Duration, fn func()) CancelFunc
}

// Ticker is the wall-clock implementation backed by time.Ticker.
type Ticker struct{}

// Every starts a goroutine that calls fn on each tick.
func (Ticker) Every(interval time.Duration, fn func()) CancelFunc {
	t := time.NewTicker(interval)
	done := make(chan struct{})
	go func() {
		defer t.Stop()
		for {
			select {
			case <-done:
				return
			case <-t.C:
				select {
				case <-done:
					return
				default:
				}
				fn()
			}
		}
	}()
	var once sync.Once
	return func() { once.Do(func() { close(done) }) }
}

// Manual is a Clock for tests. Callbacks only run when Advance is called.
type Manual struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func()
}

// NewManual returns a manual clock with no active callbacks.
func NewManual() *Manual {
	return &Manual{subs: make(map[int]func())}
}

// Every registers fn. The interval is ignored; each Advance is one period.
func (m *Manual) Every(_ time.Duration, fn func()) CancelFunc {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

// Advance fires n periods. Callbacks cancelled during a period are not
// called again, and callbacks registered during a period first run on the
// next one.
func (m *Manual) Advance(n int) {
	for i := 0; i < n; i++ {
		m.mu.Lock()
		ids := make([]int, 0, len(m.subs))
		for id := range m.subs {
			ids = append(ids, id)
		}
		m.mu.Unlock()
		for _, id := range ids {
			m.mu.Lock()
			fn, ok := m.subs[id]
			m.mu.Unlock()
			if ok {
				fn()
			}
		}
	}
}

// Active returns the number of registered callbacks.
func (m *Manual) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs)
}
