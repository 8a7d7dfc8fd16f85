package store

import (
	"sync/atomic"
	"time"

	"notaryfix/internal/jurisdiction/models"
)

// Holder publishes the current Snapshot to concurrent readers. Reloads swap
// the whole snapshot; readers keep whatever snapshot they already fetched.
type Holder struct {
	current  atomic.Pointer[Snapshot]
	loadedAt atomic.Pointer[time.Time]
}

// NewHolder starts with an empty snapshot so lookups before the first load
// return "no guidance" instead of panicking.
func NewHolder() *Holder {
	h := &Holder{}
	h.current.Store(NewSnapshot(models.Dataset{}))
	return h
}

// Current returns the snapshot in effect.
func (h *Holder) Current() *Snapshot {
	return h.current.Load()
}

// Replace swaps in a new dataset. Last write wins.
func (h *Holder) Replace(ds models.Dataset, at time.Time) *Snapshot {
	snap := NewSnapshot(ds)
	h.current.Store(snap)
	h.loadedAt.Store(&at)
	return snap
}

// LoadedAt returns when the current snapshot was installed; zero before the
// first Replace.
func (h *Holder) LoadedAt() time.Time {
	if t := h.loadedAt.Load(); t != nil {
		return *t
	}
	return time.Time{}
}
