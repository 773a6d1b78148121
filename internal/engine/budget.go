package engine

import "sync/atomic"

// Guard enforces the per-run ceiling on cumulative bytes copied.
// Transcoded audio is never charged against it. The budget restarts at
// zero every run; this is a per-run ceiling, not a lifetime one.
type Guard struct {
	limit int64
	used  atomic.Int64
}

// NewGuard creates a Guard with the given ceiling in bytes.
// A non-positive limit means unlimited.
func NewGuard(limit int64) *Guard {
	return &Guard{limit: limit}
}

// TryAdmit reserves n bytes against the ceiling. The check and the
// counter update happen as one compare-and-swap, so concurrent workers
// can never push the total past the limit.
func (g *Guard) TryAdmit(n int64) bool {
	if g.limit <= 0 {
		g.used.Add(n)
		return true
	}
	for {
		used := g.used.Load()
		if used+n > g.limit {
			return false
		}
		if g.used.CompareAndSwap(used, used+n) {
			return true
		}
	}
}

// Used returns the bytes admitted so far this run.
func (g *Guard) Used() int64 {
	return g.used.Load()
}

// Limit returns the configured ceiling.
func (g *Guard) Limit() int64 {
	return g.limit
}
