// Package clock provides the session time source.
package clock

import "time"

// Clock supplies the current time. It exists so session timing can be
// driven by a fake in tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// System returns a Clock backed by time.Now.
func System() Clock {
	return systemClock{}
}

// SessionClock tracks elapsed time since Start against a duration budget.
// Durations are derived via time.Time.Sub, which uses the monotonic
// reading and is unaffected by wall-clock adjustments.
type SessionClock struct {
	clock   Clock
	start   time.Time
	started bool
}

// NewSession returns a SessionClock reading time from c.
func NewSession(c Clock) *SessionClock {
	return &SessionClock{clock: c}
}

// Start records the session start instant. Calling Start again rebases it.
func (s *SessionClock) Start() {
	s.start = s.clock.Now()
	s.started = true
}

// Started reports whether Start has been called.
func (s *SessionClock) Started() bool {
	return s.started
}

// Elapsed returns the non-negative duration since Start, or zero before it.
func (s *SessionClock) Elapsed() time.Duration {
	if !s.started {
		return 0
	}
	elapsed := s.clock.Now().Sub(s.start)
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

// Remaining returns max(0, budget - Elapsed()).
func (s *SessionClock) Remaining(budget time.Duration) time.Duration {
	remaining := budget - s.Elapsed()
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Expired reports whether the budget has been fully consumed.
func (s *SessionClock) Expired(budget time.Duration) bool {
	return s.started && s.Remaining(budget) == 0
}
