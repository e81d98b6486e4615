package replay

import (
	"sync"
	"testing"
	"time"

	"github.com/koscakluka/replay-core/core/events"
	"github.com/koscakluka/replay-core/core/transcripts"
)

type manualClock struct {
	mu        sync.Mutex
	position  float64
	completed bool
}

func (c *manualClock) Position() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

func (c *manualClock) Completed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.completed
}

func (c *manualClock) advanceTo(position float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = position
}

func (c *manualClock) complete() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.completed = true
}

type recordingSink struct {
	mu       sync.Mutex
	released []transcripts.Segment
	statuses []string
	cleared  int
}

func (s *recordingSink) Release(segment transcripts.Segment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.released = append(s.released, segment)
}

func (s *recordingSink) ReleaseStatus(status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses = append(s.statuses, status)
}

func (s *recordingSink) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.released = nil
	s.statuses = nil
	s.cleared++
}

func (s *recordingSink) releasedTexts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	texts := make([]string, len(s.released))
	for i, segment := range s.released {
		texts[i] = segment.Text
	}
	return texts
}

func (s *recordingSink) clearedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cleared
}

func (s *recordingSink) statusLines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.statuses...)
}

func waitFor(t *testing.T, description string, condition func() bool) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", description)
}

func TestTickReleasesSegmentsInEndTimeOrderAcrossArrivalOrder(t *testing.T) {
	buffer := newSegmentBuffer()
	clock := &manualClock{}
	sink := &recordingSink{}
	scheduler := newSyncScheduler(buffer, clock, sink, defaultTickInterval, nil, nil)

	buffer.Insert(transcripts.NewSegment(transcripts.ChannelRaw, "a", 2.0))
	buffer.Insert(transcripts.NewSegment(transcripts.ChannelCorrected, "b", 1.0))
	buffer.Insert(transcripts.NewSegment(transcripts.ChannelRaw, "c", 1.5))

	for _, position := range []float64{1.0, 1.4, 1.6, 2.1} {
		clock.advanceTo(position)
		scheduler.tick()
	}

	released := sink.releasedTexts()
	if len(released) != 3 {
		t.Fatalf("expected 3 released segments, got %d", len(released))
	}
	for i, expected := range []string{"b", "c", "a"} {
		if released[i] != expected {
			t.Fatalf("expected release %d to be %q, got %q", i, expected, released[i])
		}
	}
}

func TestTickReleasesEverythingReadyWithinOneTick(t *testing.T) {
	buffer := newSegmentBuffer()
	clock := &manualClock{}
	sink := &recordingSink{}
	scheduler := newSyncScheduler(buffer, clock, sink, defaultTickInterval, nil, nil)

	buffer.Insert(transcripts.NewSegment(transcripts.ChannelRaw, "a", 0.2))
	buffer.Insert(transcripts.NewSegment(transcripts.ChannelRaw, "b", 0.4))
	buffer.Insert(transcripts.NewSegment(transcripts.ChannelCorrected, "c", 0.6))

	clock.advanceTo(1.0)
	scheduler.tick()

	if got := sink.releasedTexts(); len(got) != 3 {
		t.Fatalf("expected all ready segments released in one tick, got %d", len(got))
	}
}

func TestTickDoesNotStopWhileBufferNonEmptyEvenIfClockComplete(t *testing.T) {
	buffer := newSegmentBuffer()
	clock := &manualClock{}
	sink := &recordingSink{}

	drained := false
	scheduler := newSyncScheduler(buffer, clock, sink, defaultTickInterval, nil, func() { drained = true })

	buffer.Insert(transcripts.NewSegment(transcripts.ChannelRaw, "pending", 10.0))
	clock.complete()

	if stopped := scheduler.tick(); stopped {
		t.Fatalf("expected scheduler to keep running while segments remain buffered")
	}
	if drained {
		t.Fatalf("expected drained callback not to fire while segments remain buffered")
	}
	if !scheduler.CanTick() {
		t.Fatalf("expected scheduler to still accept ticks")
	}
}

func TestTickDoesNotStopOnEmptyBufferBeforeClockCompletion(t *testing.T) {
	buffer := newSegmentBuffer()
	clock := &manualClock{}
	sink := &recordingSink{}
	scheduler := newSyncScheduler(buffer, clock, sink, defaultTickInterval, nil, nil)

	if stopped := scheduler.tick(); stopped {
		t.Fatalf("expected momentarily empty buffer not to stop the scheduler")
	}
	if !scheduler.CanTick() {
		t.Fatalf("expected scheduler to still accept ticks")
	}
}

func TestTickStopsAndSignalsOnceDrainedAndComplete(t *testing.T) {
	buffer := newSegmentBuffer()
	clock := &manualClock{}
	sink := &recordingSink{}

	emitted := []events.Event{}
	drained := false
	scheduler := newSyncScheduler(buffer, clock, sink, defaultTickInterval,
		func(event events.Event) { emitted = append(emitted, event) },
		func() { drained = true },
	)

	buffer.Insert(transcripts.NewSegment(transcripts.ChannelRaw, "only", 0.5))
	clock.advanceTo(1.0)
	clock.complete()

	if stopped := scheduler.tick(); !stopped {
		t.Fatalf("expected scheduler to stop once drained and complete")
	}
	if !drained {
		t.Fatalf("expected drained callback to fire")
	}
	if scheduler.CanTick() {
		t.Fatalf("expected scheduler to reject ticks after stopping")
	}

	sawDrainedEvent := false
	for _, event := range emitted {
		if event.Kind() == events.KindPlaybackDrained {
			sawDrainedEvent = true
		}
	}
	if !sawDrainedEvent {
		t.Fatalf("expected a playback drained event, got %v", emitted)
	}
}

func TestStopIsIdempotent(t *testing.T) {
	scheduler := newSyncScheduler(newSegmentBuffer(), &manualClock{}, &recordingSink{}, defaultTickInterval, nil, nil)

	scheduler.Stop()
	scheduler.Stop()

	if scheduler.CanTick() {
		t.Fatalf("expected scheduler to stay stopped")
	}
	if started := scheduler.StartLoop(); started {
		t.Fatalf("expected StartLoop to refuse after Stop")
	}
}

func TestStartLoopReleasesAgainstAdvancingClock(t *testing.T) {
	buffer := newSegmentBuffer()
	clock := &manualClock{}
	sink := &recordingSink{}
	scheduler := newSyncScheduler(buffer, clock, sink, time.Millisecond, nil, nil)

	buffer.Insert(transcripts.NewSegment(transcripts.ChannelRaw, "first", 0.5))
	buffer.Insert(transcripts.NewSegment(transcripts.ChannelCorrected, "second", 1.5))

	if started := scheduler.StartLoop(); !started {
		t.Fatalf("expected loop to start")
	}
	defer scheduler.Stop()

	clock.advanceTo(1.0)
	waitFor(t, "first segment release", func() bool { return len(sink.releasedTexts()) == 1 })

	clock.advanceTo(2.0)
	waitFor(t, "second segment release", func() bool { return len(sink.releasedTexts()) == 2 })

	clock.complete()
	scheduler.AwaitDone()

	released := sink.releasedTexts()
	if released[0] != "first" || released[1] != "second" {
		t.Fatalf("expected releases [first second], got %v", released)
	}
}

func TestStartLoopIsSingleShot(t *testing.T) {
	scheduler := newSyncScheduler(newSegmentBuffer(), &manualClock{}, &recordingSink{}, time.Millisecond, nil, nil)

	if started := scheduler.StartLoop(); !started {
		t.Fatalf("expected first StartLoop to start the loop")
	}
	defer scheduler.Stop()

	if started := scheduler.StartLoop(); started {
		t.Fatalf("expected second StartLoop to be a no-op")
	}
}

func TestSinkPanicDoesNotInterruptSubsequentReleases(t *testing.T) {
	buffer := newSegmentBuffer()
	clock := &manualClock{}
	sink := &recordingSink{}

	panicking := &panickingSink{panicOn: "bad"}
	set := newSinkSet(panicking, sink)
	scheduler := newSyncScheduler(buffer, clock, set, defaultTickInterval, nil, nil)

	buffer.Insert(transcripts.NewSegment(transcripts.ChannelRaw, "bad", 0.5))
	buffer.Insert(transcripts.NewSegment(transcripts.ChannelRaw, "good", 0.75))

	clock.advanceTo(1.0)
	scheduler.tick()

	if got := sink.releasedTexts(); len(got) != 2 {
		t.Fatalf("expected both segments to reach the healthy sink, got %v", got)
	}
}

type panickingSink struct {
	panicOn string
}

func (s *panickingSink) Release(segment transcripts.Segment) {
	if segment.Text == s.panicOn {
		panic("display surface unavailable")
	}
}

func (s *panickingSink) ReleaseStatus(string) {}

func (s *panickingSink) Clear() {}
