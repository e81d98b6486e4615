package replay

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/koscakluka/replay-core/core/events"
)

// defaultTickInterval is the polling cadence against the playback clock, a
// compromise between display latency and overhead. Polling is deliberate:
// media playback does not emit per-segment readiness signals.
const defaultTickInterval = 100 * time.Millisecond

// syncScheduler periodically drains the segment buffer against the clock and
// hands ready segments to the sink in ascending end-time order. It stops
// itself once the buffer is empty and the clock reports completion.
type syncScheduler struct {
	buffer *segmentBuffer
	clock  Clock
	sink   Sink

	tickInterval time.Duration
	emitEvent    eventEmitter
	onDrained    func()

	closeCh chan struct{}
	done    chan struct{}

	startOnce sync.Once
	endOnce   sync.Once

	started atomic.Bool
}

func newSyncScheduler(
	buffer *segmentBuffer,
	clock Clock,
	sink Sink,
	tickInterval time.Duration,
	emitEvent eventEmitter,
	onDrained func(),
) *syncScheduler {
	if tickInterval <= 0 {
		tickInterval = defaultTickInterval
	}
	if emitEvent == nil {
		emitEvent = noopEventEmitter
	}

	return &syncScheduler{
		buffer: buffer,
		clock:  clock,
		sink:   sink,

		tickInterval: tickInterval,
		emitEvent:    emitEvent,
		onDrained:    onDrained,

		closeCh: make(chan struct{}),
		done:    make(chan struct{}),
	}
}

func (s *syncScheduler) CanTick() bool {
	if s == nil {
		return false
	}

	select {
	case <-s.closeCh:
		return false
	default:
		return true
	}
}

func (s *syncScheduler) StartLoop() (started bool) {
	if s == nil || s.buffer == nil || s.clock == nil || !s.CanTick() {
		return false
	}

	s.startOnce.Do(func() {
		if !s.CanTick() {
			return
		}

		started = true
		s.started.Store(true)
		go func() {
			defer close(s.done)

			ticker := time.NewTicker(s.tickInterval)
			defer ticker.Stop()

			for {
				select {
				case <-s.closeCh:
					return
				case <-ticker.C:
					if !s.CanTick() {
						return
					}
					if drained := s.tick(); drained {
						return
					}
				}
			}
		}()
	})

	return started
}

// Stop cancels the periodic tick. Idempotent and safe to call at any time;
// segments popped by an in-flight tick are still fully released, stop takes
// effect at the next tick boundary.
func (s *syncScheduler) Stop() {
	if s == nil {
		return
	}

	s.endOnce.Do(func() { close(s.closeCh) })
}

func (s *syncScheduler) AwaitDone() {
	if s == nil {
		return
	}

	if s.started.Load() {
		<-s.done
	}
}

// tick releases everything ready at the current clock position and reports
// whether the scheduler drained and stopped itself. Every segment that
// became ready within this tick window is released now, never deferred to a
// later tick.
func (s *syncScheduler) tick() (drained bool) {
	if s == nil {
		return false
	}

	position := s.clock.Position()
	for _, segment := range s.buffer.PopReadyUpTo(position) {
		s.sink.Release(segment)
		s.emitEvent(events.NewPlaybackSegmentReleased(segment, position))
	}

	// Self-stop needs both conditions at once: a momentarily empty buffer
	// before stream completion must not stop the run.
	if s.buffer.IsEmpty() && s.clock.Completed() {
		s.Stop()
		s.emitEvent(events.NewPlaybackDrained())
		if s.onDrained != nil {
			s.onDrained()
		}
		return true
	}

	return false
}
