package ratelimit

import (
	"sync"
	"time"
)

// tracker maintains sliding windows of acquisition outcome timestamps.
type tracker struct {
	mu             sync.Mutex
	acquiredTimes  []time.Time
	throttledTimes []time.Time
}

// recordAcquired records a successful acquisition at the current time.
func (t *tracker) recordAcquired() {
	t.recordOutcome(&t.acquiredTimes)
}

// recordThrottled records a denial or a delayed acquisition at the current time.
func (t *tracker) recordThrottled() {
	t.recordOutcome(&t.throttledTimes)
}

// recordOutcome appends the current timestamp to the specified slice and prunes old entries.
func (t *tracker) recordOutcome(slice *[]time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := time.Now()
	*slice = append(*slice, now)
	t.pruneLocked(now)
}

// acquiredCount returns the number of acquisitions within the window ending at now.
func (t *tracker) acquiredCount(window time.Duration) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return countInWindow(t.acquiredTimes, time.Now().Add(-window))
}

// throttledCount returns the number of throttled outcomes within the window ending at now.
func (t *tracker) throttledCount(window time.Duration) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return countInWindow(t.throttledTimes, time.Now().Add(-window))
}

// reset clears all recorded outcomes.
func (t *tracker) reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.acquiredTimes = nil
	t.throttledTimes = nil
}

// countInWindow counts timestamps that are not before the cutoff time.
func countInWindow(times []time.Time, cutoff time.Time) int {
	n := 0
	for _, ts := range times {
		if !ts.Before(cutoff) {
			n++
		}
	}
	return n
}

// pruneLocked removes timestamps older than maxAge (5 minutes) from both slices.
// Must be called with the mutex held.
func (t *tracker) pruneLocked(now time.Time) {
	maxAge := 5 * time.Minute
	cutoff := now.Add(-maxAge)
	prune := func(slice *[]time.Time) {
		times := *slice
		i := 0
		for ; i < len(times) && times[i].Before(cutoff); i++ {
		}
		if i > 0 {
			*slice = append(times[:0], times[i:]...)
		}
	}
	prune(&t.acquiredTimes)
	prune(&t.throttledTimes)
}
