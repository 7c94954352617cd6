// Package policy holds the per-identifier traffic policy the gateway
// enforces. The table is built once at startup and never mutated after.
package policy

import (
	"errors"
	"fmt"
)

var ErrDuplicatePolicy = errors.New("policy: duplicate entry for identifier")

// Entry is the policy for one identifier: how many frames per window it may
// send, what to call it in logs, and whether its payload gets a semantic
// check on top of rate limiting.
type Entry struct {
	ID      uint32
	MaxRate int
	Label   string
	Trusted bool
}

// Table maps identifiers to entries, with a single default entry for
// everything unlisted. Lookups never fail and never return partial entries.
type Table struct {
	byID map[uint32]Entry
	def  Entry
}

// NewTable builds a table from explicit entries plus the default applied to
// unknown identifiers. Two entries claiming the same identifier is a
// configuration error, not a last-one-wins merge.
func NewTable(def Entry, entries []Entry) (*Table, error) {
	byID := make(map[uint32]Entry, len(entries))
	for _, e := range entries {
		if _, dup := byID[e.ID]; dup {
			return nil, fmt.Errorf("%w: 0x%X", ErrDuplicatePolicy, e.ID)
		}
		byID[e.ID] = e
	}
	return &Table{byID: byID, def: def}, nil
}

// Lookup returns the entry for id, or the default entry if id is unlisted.
func (t *Table) Lookup(id uint32) Entry {
	if e, ok := t.byID[id]; ok {
		return e
	}
	d := t.def
	d.ID = id
	return d
}

// Default returns the fallback entry as configured.
func (t *Table) Default() Entry { return t.def }
