package ratelimit

import (
	"testing"
	"time"
)

// TestTracker_CountsWithinWindow verifies that counts respect the window
// boundary.
func TestTracker_CountsWithinWindow(t *testing.T) {
	var tr tracker

	tr.recordAcquired()
	tr.recordAcquired()
	tr.recordThrottled()

	if got := tr.acquiredCount(time.Minute); got != 2 {
		t.Errorf("acquiredCount(1m) = %d, want 2", got)
	}
	if got := tr.throttledCount(time.Minute); got != 1 {
		t.Errorf("throttledCount(1m) = %d, want 1", got)
	}

	// A zero-length window excludes everything recorded before now.
	time.Sleep(time.Millisecond)
	if got := tr.acquiredCount(0); got != 0 {
		t.Errorf("acquiredCount(0) = %d, want 0", got)
	}
}

// TestTracker_PruneOldEntries verifies that entries older than the retention
// cutoff are removed on the next record.
func TestTracker_PruneOldEntries(t *testing.T) {
	var tr tracker

	old := time.Now().Add(-10 * time.Minute)
	tr.acquiredTimes = append(tr.acquiredTimes, old)

	tr.recordAcquired()

	if len(tr.acquiredTimes) != 1 {
		t.Errorf("acquiredTimes length = %d after prune, want 1", len(tr.acquiredTimes))
	}
	if got := tr.acquiredCount(time.Minute); got != 1 {
		t.Errorf("acquiredCount(1m) = %d, want 1", got)
	}
}

// TestTracker_Reset verifies that reset clears both outcome slices.
func TestTracker_Reset(t *testing.T) {
	var tr tracker
	tr.recordAcquired()
	tr.recordThrottled()

	tr.reset()

	if got := tr.acquiredCount(time.Hour); got != 0 {
		t.Errorf("acquiredCount after reset = %d, want 0", got)
	}
	if got := tr.throttledCount(time.Hour); got != 0 {
		t.Errorf("throttledCount after reset = %d, want 0", got)
	}
}
