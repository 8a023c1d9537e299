package utils

import (
	"sort"
	"sync"
	"time"
)

// LatencyTracker keeps a bounded ring of recent duration samples and
// computes percentiles over them.
type LatencyTracker struct {
	mu      sync.RWMutex
	ring    []time.Duration
	next    int
	filled  bool
	maxSize int
}

// NewLatencyTracker creates a tracker storing up to maxSize samples.
func NewLatencyTracker(maxSize int) *LatencyTracker {
	if maxSize <= 0 {
		maxSize = 512
	}
	return &LatencyTracker{ring: make([]time.Duration, 0, maxSize), maxSize: maxSize}
}

// Observe records a new duration, evicting the oldest once full.
func (l *LatencyTracker) Observe(d time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.ring) < l.maxSize {
		l.ring = append(l.ring, d)
		return
	}
	l.ring[l.next] = d
	l.next = (l.next + 1) % l.maxSize
	l.filled = true
}

// Percentile returns the percentile (0-100) duration. Returns zero if no samples.
func (l *LatencyTracker) Percentile(p float64) time.Duration {
	l.mu.RLock()
	sorted := append([]time.Duration(nil), l.ring...)
	l.mu.RUnlock()

	if len(sorted) == 0 {
		return 0
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}
	index := int((p / 100.0) * float64(len(sorted)-1))
	return sorted[index]
}

// Average returns the mean of the recorded samples, zero when empty.
func (l *LatencyTracker) Average() time.Duration {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if len(l.ring) == 0 {
		return 0
	}
	var total time.Duration
	for _, s := range l.ring {
		total += s
	}
	return total / time.Duration(len(l.ring))
}

// Count returns the number of samples currently retained.
func (l *LatencyTracker) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.ring)
}
