package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFirstSightingCountsOne(t *testing.T) {
	tr := NewWindowTracker()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, 1, tr.RecordAndCount(0x200, now, time.Second))
}

func TestCountGrowsInsideWindow(t *testing.T) {
	tr := NewWindowTracker()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		got := tr.RecordAndCount(0x001, base.Add(time.Duration(i)*100*time.Millisecond), time.Second)
		assert.Equal(t, i+1, got)
	}
}

func TestStaleArrivalsArePurged(t *testing.T) {
	tr := NewWindowTracker()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tr.RecordAndCount(0x200, base, time.Second)
	tr.RecordAndCount(0x200, base.Add(200*time.Millisecond), time.Second)
	tr.RecordAndCount(0x200, base.Add(400*time.Millisecond), time.Second)

	// 1.1s after base: only the 400ms arrival survives, plus this one
	got := tr.RecordAndCount(0x200, base.Add(1100*time.Millisecond), time.Second)
	assert.Equal(t, 2, got)
}

func TestArrivalExactlyWindowOldIsPurged(t *testing.T) {
	tr := NewWindowTracker()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tr.RecordAndCount(0x200, base, time.Second)

	// the window is the half-open interval (now-window, now]
	got := tr.RecordAndCount(0x200, base.Add(time.Second), time.Second)
	assert.Equal(t, 1, got)
}

func TestIdentifiersAreIndependent(t *testing.T) {
	tr := NewWindowTracker()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 20; i++ {
		tr.RecordAndCount(0x001, now.Add(time.Duration(i)*time.Millisecond), time.Second)
	}

	assert.Equal(t, 1, tr.RecordAndCount(0x200, now.Add(25*time.Millisecond), time.Second))
}

func TestCountAgreesWithNaiveScan(t *testing.T) {
	tr := NewWindowTracker()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	window := time.Second

	offsets := []time.Duration{
		0, 50 * time.Millisecond, 300 * time.Millisecond, 900 * time.Millisecond,
		time.Second, 1200 * time.Millisecond, 1900 * time.Millisecond,
		2500 * time.Millisecond, 2501 * time.Millisecond,
	}

	var seen []time.Time
	for _, off := range offsets {
		now := base.Add(off)
		seen = append(seen, now)

		want := 0
		for _, ts := range seen {
			if now.Sub(ts) < window {
				want++
			}
		}
		assert.Equal(t, want, tr.RecordAndCount(0x300, now, window), "at offset %v", off)
	}
}
