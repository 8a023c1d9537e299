package utils

import (
	"testing"
	"time"
)

func TestLatencyTrackerPercentile(t *testing.T) {
	tracker := NewLatencyTracker(10)
	durations := []time.Duration{10 * time.Millisecond, 20 * time.Millisecond, 30 * time.Millisecond, 40 * time.Millisecond, 50 * time.Millisecond}
	for _, d := range durations {
		tracker.Observe(d)
	}

	if tracker.Count() != len(durations) {
		t.Fatalf("expected count %d, got %d", len(durations), tracker.Count())
	}

	p95 := tracker.Percentile(95)
	if p95 < 40*time.Millisecond {
		t.Fatalf("expected percentile >= 40ms, got %v", p95)
	}
	if avg := tracker.Average(); avg != 30*time.Millisecond {
		t.Fatalf("expected average 30ms, got %v", avg)
	}
}

func TestLatencyTrackerBoundedSize(t *testing.T) {
	tracker := NewLatencyTracker(3)
	for i := 0; i < 10; i++ {
		tracker.Observe(time.Duration(i) * time.Millisecond)
	}
	if tracker.Count() != 3 {
		t.Fatalf("expected tracker size 3, got %d", tracker.Count())
	}
}

func TestMillisRoundTrip(t *testing.T) {
	if ToMillis(time.Time{}) != 0 {
		t.Fatalf("zero time should map to 0")
	}
	now := time.Now().Truncate(time.Millisecond).UTC()
	if got := FromMillis(ToMillis(now)); !got.Equal(now) {
		t.Fatalf("round trip mismatch: %v != %v", got, now)
	}
}
