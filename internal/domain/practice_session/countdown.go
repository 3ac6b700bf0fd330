package practicesession

import (
	"context"
	"time"

	"github.com/quizdrill/backend/internal/worker"
)

// DefaultTickInterval is how often a running countdown checks the deadline.
const DefaultTickInterval = 250 * time.Millisecond

// Remaining returns the time left before the deadline, never negative.
// The second result is false for untimed sessions.
func (s *PracticeSession) Remaining() (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Deadline.IsZero() {
		return 0, false
	}
	return s.remainingLocked(), true
}

func (s *PracticeSession) remainingLocked() time.Duration {
	if s.Deadline.IsZero() {
		return 0
	}
	left := s.Deadline.Sub(s.now())
	if left < 0 {
		return 0
	}
	return left
}

// Countdown splits a duration into whole minutes and seconds, truncating.
func Countdown(d time.Duration) (minutes, seconds int) {
	if d < 0 {
		d = 0
	}
	return int(d / time.Minute), int(d % time.Minute / time.Second)
}

// Tick checks the deadline and finishes the session once no time is left.
// Mock sessions get their batch scoring pass; timed practice sessions just
// stop. It reports whether the session is no longer in progress, so it can
// drive a periodic task directly.
func (s *PracticeSession) Tick() bool {
	s.mu.Lock()
	if s.state != StateInProgress {
		s.mu.Unlock()
		return true
	}
	if s.Deadline.IsZero() || s.remainingLocked() > 0 {
		s.mu.Unlock()
		return false
	}

	if s.Mode == ModeMock {
		res := s.scoreLocked()
		s.finishLocked(&res)
	} else {
		s.finishLocked(nil)
	}
	s.mu.Unlock()

	s.notifyFinish()
	return true
}

// RunCountdown starts the periodic deadline check for a timed session. It
// is a no-op for untimed or already running countdowns. The task is
// cancelled on every transition out of InProgress, or with ctx.
func (s *PracticeSession) RunCountdown(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultTickInterval
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Deadline.IsZero() || s.state != StateInProgress || s.timer != nil {
		return
	}
	s.timer = worker.StartPeriodic(ctx, interval, func(time.Time) bool {
		return s.Tick()
	})
}
