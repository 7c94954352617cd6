// Package ratelimit counts per-identifier arrivals over a trailing time
// window. It is the volumetric half of the gateway's admission check.
package ratelimit

import "time"

// WindowTracker keeps, per identifier, the arrival times still inside the
// trailing window. State for an identifier is created on first sighting and
// kept for the life of the tracker; the set of identifiers on a bus is small
// and fixed.
//
// The tracker is not internally synchronized. The gateway drains the bus from
// a single goroutine, which is the only caller; sharding evaluation across
// workers would need per-identifier locking added here first.
type WindowTracker struct {
	arrivals map[uint32][]time.Time
}

func NewWindowTracker() *WindowTracker {
	return &WindowTracker{arrivals: make(map[uint32][]time.Time)}
}

// RecordAndCount drops every recorded arrival for id older than window
// relative to now, records now, and returns how many arrivals remain in the
// window, the current one included. Timestamps must be non-decreasing per
// identifier; the purge walks from the oldest end and stops at the first
// survivor.
func (t *WindowTracker) RecordAndCount(id uint32, now time.Time, window time.Duration) int {
	ts := t.arrivals[id]

	keep := 0
	for keep < len(ts) && now.Sub(ts[keep]) >= window {
		keep++
	}
	ts = append(ts[keep:], now)

	t.arrivals[id] = ts
	return len(ts)
}
