// Package ratelimit provides a token-bucket limiter with sliding-window
// introspection, built for pacing line output but usable for any resource.
package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter allows a fixed number of acquisitions per interval with a
// configurable burst. Safe for concurrent use.
type Limiter struct {
	rl      *rate.Limiter
	tracker tracker
}

// New returns a Limiter allowing limit acquisitions per interval, with
// burst equal to limit.
func New(limit int, per time.Duration) *Limiter {
	return NewWithBurst(limit, per, limit)
}

// NewWithBurst returns a Limiter allowing limit acquisitions per interval
// with the given burst. Non-positive arguments are clamped to usable values.
func NewWithBurst(limit int, per time.Duration, burst int) *Limiter {
	if limit < 1 {
		limit = 1
	}
	if per <= 0 {
		per = time.Second
	}
	if burst < 1 {
		burst = 1
	}
	return &Limiter{
		rl: rate.NewLimiter(rate.Every(per/time.Duration(limit)), burst),
	}
}

// Allow reports whether a slot is free right now, consuming it if so.
// A denial is recorded as throttled.
func (l *Limiter) Allow() bool {
	if l.rl.Allow() {
		l.tracker.recordAcquired()
		return true
	}
	l.tracker.recordThrottled()
	return false
}

// Acquire blocks until a slot is free or ctx is done. An acquisition that
// had to wait is recorded as throttled in addition to acquired.
func (l *Limiter) Acquire(ctx context.Context) error {
	if l.rl.Allow() {
		l.tracker.recordAcquired()
		return nil
	}
	l.tracker.recordThrottled()
	if err := l.rl.Wait(ctx); err != nil {
		return err
	}
	l.tracker.recordAcquired()
	return nil
}

// AcquiredCount returns the number of successful acquisitions within the window.
func (l *Limiter) AcquiredCount(window time.Duration) int {
	return l.tracker.acquiredCount(window)
}

// ThrottledCount returns the number of denials and delayed acquisitions within the window.
func (l *Limiter) ThrottledCount(window time.Duration) int {
	return l.tracker.throttledCount(window)
}

// Reset clears recorded outcomes. For tests only.
func (l *Limiter) Reset() {
	l.tracker.reset()
}
