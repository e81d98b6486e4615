package replay

import (
	"github.com/koscakluka/replay-core/core/transcripts"
)

// Sink is a display surface receiving released segments in release order.
// Release is called exactly once per segment; Clear wipes everything shown so
// far when the session resets. A slow or failing surface is a display
// degradation, not a core fault: deliveries are panic-guarded so one surface
// cannot interrupt subsequent releases.
type Sink interface {
	Release(segment transcripts.Segment)
	ReleaseStatus(status string)
	Clear()
}

type sinkSet struct {
	sinks []Sink
}

func newSinkSet(sinks ...Sink) *sinkSet {
	return &sinkSet{sinks: sinks}
}

func (s *sinkSet) Release(segment transcripts.Segment) {
	if s == nil {
		return
	}

	for _, sink := range s.sinks {
		deliverGuarded(func() { sink.Release(segment) })
	}
}

func (s *sinkSet) ReleaseStatus(status string) {
	if s == nil {
		return
	}

	for _, sink := range s.sinks {
		deliverGuarded(func() { sink.ReleaseStatus(status) })
	}
}

func (s *sinkSet) Clear() {
	if s == nil {
		return
	}

	for _, sink := range s.sinks {
		deliverGuarded(func() { sink.Clear() })
	}
}

func deliverGuarded(deliver func()) {
	defer func() {
		if recovered := recover(); recovered != nil {
			logger.Warn("sink delivery panicked", "panic", recovered)
		}
	}()

	deliver()
}
