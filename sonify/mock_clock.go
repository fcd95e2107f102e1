package sonify

import (
	"sync"
	"time"
)

// MockClock provides a controllable time source for testing scheduled
// transitions without real delays
type MockClock struct {
	mu          sync.Mutex
	currentTime time.Time
	timers      []*mockTimer
}

type mockTimer struct {
	clock    *MockClock
	deadline time.Time
	f        func()
	stopped  bool
	fired    bool
}

// NewMockClock creates a mock clock starting at the given time
func NewMockClock(startTime time.Time) *MockClock {
	return &MockClock{currentTime: startTime}
}

// Now returns the current mocked time
func (m *MockClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentTime
}

// AfterFunc registers f to fire once the clock advances past d
func (m *MockClock) AfterFunc(d time.Duration, f func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := &mockTimer{
		clock:    m,
		deadline: m.currentTime.Add(d),
		f:        f,
	}
	m.timers = append(m.timers, t)
	return t
}

// Stop cancels the timer, reporting whether it had not yet fired
func (t *mockTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()

	active := !t.fired && !t.stopped
	t.stopped = true
	return active
}

// Advance moves the clock forward, firing due timers in deadline order.
// Callbacks run without the clock lock held, so they may schedule new timers.
func (m *MockClock) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.currentTime.Add(d)
	m.mu.Unlock()

	for {
		m.mu.Lock()
		var next *mockTimer
		for _, t := range m.timers {
			if t.fired || t.stopped || t.deadline.After(target) {
				continue
			}
			if next == nil || t.deadline.Before(next.deadline) {
				next = t
			}
		}
		if next == nil {
			m.currentTime = target
			m.mu.Unlock()
			return
		}
		next.fired = true
		if next.deadline.After(m.currentTime) {
			m.currentTime = next.deadline
		}
		f := next.f
		m.mu.Unlock()

		f()
	}
}

// PendingTimers reports how many timers are scheduled and not yet fired
func (m *MockClock) PendingTimers() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for _, t := range m.timers {
		if !t.fired && !t.stopped {
			count++
		}
	}
	return count
}
