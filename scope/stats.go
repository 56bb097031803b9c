package scope

import "go.uber.org/atomic"

// Stats is a snapshot of a scope's lifetime counters.
type Stats struct {
	Added         int64
	Removed       int64
	Discarded     int64
	Drains        int64
	SkippedDrains int64
	Released      int64
	Failures      int64
}

type counters struct {
	added         atomic.Int64
	removed       atomic.Int64
	discarded     atomic.Int64
	drains        atomic.Int64
	skippedDrains atomic.Int64
	released      atomic.Int64
	failures      atomic.Int64
}

func (c *counters) snapshot() Stats {
	return Stats{
		Added:         c.added.Load(),
		Removed:       c.removed.Load(),
		Discarded:     c.discarded.Load(),
		Drains:        c.drains.Load(),
		SkippedDrains: c.skippedDrains.Load(),
		Released:      c.released.Load(),
		Failures:      c.failures.Load(),
	}
}
