package replay

import "sync/atomic"

// Clock is the external time reference the scheduler polls. Position is the
// current playback position in seconds and is expected to be monotonically
// non-decreasing while the run is live. Completed reports that the timeline
// has ended and no further time will pass.
type Clock interface {
	Position() float64
	Completed() bool
}

// runClock gates media completion on the upstream being done: the run's
// timeline is only complete once playback ended AND no further segments are
// expected, so a drained media element alone never stops the scheduler while
// the producer is still emitting.
type runClock struct {
	media        Clock
	upstreamDone *atomic.Bool
}

func (c *runClock) Position() float64 {
	return c.media.Position()
}

func (c *runClock) Completed() bool {
	return c.upstreamDone.Load() && c.media.Completed()
}
