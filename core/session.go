// Package replay synchronizes asynchronously arriving transcript segments
// with an external playback clock. Segments from both channels are merged
// into one ordered buffer and revealed to the display surfaces in
// nondecreasing end-time order, gated by the playback position.
package replay

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/koscakluka/replay-core/core/events"
	"github.com/koscakluka/replay-core/core/transcripts"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// State is the session lifecycle state. Finished and Errored are terminal
// until the next Reset.
type State string

const (
	StateIdle         State = "idle"
	StateInitializing State = "initializing"
	StateProcessing   State = "processing"
	StateFinished     State = "finished"
	StateErrored      State = "errored"
)

// clockStarter is implemented by clock backends that have to be started
// before they advance (e.g. audio playback devices). Start failure maps to
// [ErrClockAcquisitionFailed].
type clockStarter interface {
	Start(ctx context.Context) error
}

// Session owns the run lifecycle: it creates a fresh buffer and scheduler
// per run, accepts segments from the upstream channel while processing, and
// tears everything down on reset. A new run never carries state over from
// the previous one.
type Session struct {
	mu    sync.Mutex
	state State
	runID string

	buffer       *segmentBuffer
	scheduler    *syncScheduler
	upstreamDone *atomic.Bool
	finishStatus string

	log        *transcriptLog
	extraSinks []Sink
	sink       *sinkSet

	source       Source
	tickInterval time.Duration
	eventHandler func(events.Event)

	emitEvent  eventEmitter
	runOptions RunOptions
}

func NewSession(opts ...SessionOption) *Session {
	s := &Session{
		state:        StateIdle,
		log:          newTranscriptLog(),
		tickInterval: defaultTickInterval,
		emitEvent:    noopEventEmitter,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.sink = newSinkSet(append([]Sink{s.log}, s.extraSinks...)...)

	return s
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) RunID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runID
}

// Transcript returns a point-in-time snapshot of everything released so far.
func (s *Session) Transcript() Transcript {
	return s.log.Snapshot()
}

// Reset discards the active buffer and scheduler, clears every display
// surface and returns the session to Idle. Safe to call from any state.
func (s *Session) Reset() {
	s.mu.Lock()
	scheduler := s.scheduler
	from := s.state
	emit := s.emitEvent
	s.scheduler = nil
	s.buffer = nil
	s.upstreamDone = nil
	s.finishStatus = ""
	s.runID = ""
	s.state = StateIdle
	s.mu.Unlock()

	scheduler.Stop()
	scheduler.AwaitDone()
	s.sink.Clear()

	if from != StateIdle {
		emit(events.NewSessionStateChanged(string(from), string(StateIdle)))
	}
}

// StartRun acquires the playback clock, constructs a scheduler bound to a
// fresh buffer, and signals the upstream source to begin emitting. Valid
// only from Idle; a failed clock acquisition routes the session to Errored.
func (s *Session) StartRun(ctx context.Context, clock Clock, opts ...RunOption) error {
	ctx, span := tracer.Start(ctx, "start replay run")
	defer span.End()

	s.mu.Lock()
	if s.state != StateIdle {
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("cannot start a run from state %q", state)
	}

	runID := uuid.NewString()
	s.runID = runID
	s.runOptions = RunOptions{}
	for _, opt := range opts {
		opt(&s.runOptions)
	}
	emit := newCallbackEventEmitter(s.runOptions, s.eventHandler)
	s.emitEvent = emit
	s.state = StateInitializing
	s.mu.Unlock()

	emit(events.NewSessionStateChanged(string(StateIdle), string(StateInitializing)))

	if clock == nil {
		err := fmt.Errorf("%w: no clock provided", ErrClockAcquisitionFailed)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.failRun(err)
		return err
	}

	if starter, ok := clock.(clockStarter); ok {
		if err := starter.Start(ctx); err != nil {
			err = fmt.Errorf("%w: %v", ErrClockAcquisitionFailed, err)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			s.failRun(err)
			return err
		}
	}

	upstreamDone := &atomic.Bool{}
	buffer := newSegmentBuffer()
	scheduler := newSyncScheduler(
		buffer,
		&runClock{media: clock, upstreamDone: upstreamDone},
		s.sink,
		s.tickInterval,
		emit,
		func() { s.finishRun() },
	)

	s.mu.Lock()
	s.buffer = buffer
	s.scheduler = scheduler
	s.upstreamDone = upstreamDone
	s.finishStatus = ""
	s.state = StateProcessing
	s.mu.Unlock()

	span.AddEvent("run started", trace.WithAttributes(attribute.String("run.id", runID)))
	emit(events.NewSessionStateChanged(string(StateInitializing), string(StateProcessing)))
	emit(events.NewSessionRunStarted(runID))

	scheduler.StartLoop()

	cancelHookDone := withContextCancelHook(ctx, scheduler.Stop)
	go func() {
		scheduler.AwaitDone()
		close(cancelHookDone)
	}()

	if s.source != nil {
		if err := s.source.Begin(ctx); err != nil {
			err = fmt.Errorf("failed to signal upstream source: %w", err)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			s.failRun(err)
			return err
		}
	}

	return nil
}

// OnChannelSegment inserts a timed segment into the active buffer. Segments
// received outside Processing are logged and ignored; malformed segments are
// dropped without failing the run.
func (s *Session) OnChannelSegment(channel transcripts.Channel, text string, endTime float64) {
	s.mu.Lock()
	state := s.state
	buffer := s.buffer
	emit := s.emitEvent
	s.mu.Unlock()

	segment := transcripts.NewSegment(channel, text, endTime)

	if state != StateProcessing || buffer == nil {
		logger.Warn("segment received outside processing, ignoring",
			"state", string(state), "segment", segment.String())
		return
	}

	if err := segment.Validate(); err != nil {
		err = fmt.Errorf("%w: %v", ErrMalformedSegment, err)
		logger.Warn("dropping malformed segment", "reason", err.Error())
		emit(events.NewFeedSegmentDropped(segment, err.Error()))
		return
	}

	buffer.Insert(segment)
	emit(events.NewFeedSegmentQueued(segment))
}

// OnUpstreamFinished marks the producer as done. It does not stop the
// scheduler: buffered segments still drain against the clock before the
// session transitions to Finished.
func (s *Session) OnUpstreamFinished(status string) {
	s.mu.Lock()
	if s.state != StateProcessing || s.upstreamDone == nil {
		s.mu.Unlock()
		return
	}
	s.finishStatus = status
	upstreamDone := s.upstreamDone
	emit := s.emitEvent
	s.mu.Unlock()

	emit(events.NewFeedFinished(status))
	upstreamDone.Store(true)
}

// OnUpstreamError stops the scheduler immediately; segments still buffered
// are never released. The error surfaces as a distinguished status line.
func (s *Session) OnUpstreamError(message string) {
	s.mu.Lock()
	emit := s.emitEvent
	s.mu.Unlock()

	emit(events.NewFeedErrored(message))
	s.failRun(UpstreamError{Message: message})
}

// OnConnectionLost marks the feed transport as dropped. Terminal for the
// run; a manual reset is required before retrying.
func (s *Session) OnConnectionLost() {
	s.failRun(ErrConnectionLost)
}

// AwaitRunDone blocks until the active scheduler loop has exited. Returns
// immediately when no run is active.
func (s *Session) AwaitRunDone() {
	s.mu.Lock()
	scheduler := s.scheduler
	s.mu.Unlock()

	scheduler.AwaitDone()
}

func (s *Session) finishRun() {
	s.mu.Lock()
	if s.state != StateProcessing {
		s.mu.Unlock()
		return
	}
	s.state = StateFinished
	status := s.finishStatus
	if status == "" {
		status = "Completed"
	}
	runID := s.runID
	emit := s.emitEvent
	s.mu.Unlock()

	s.sink.ReleaseStatus(status)
	emit(events.NewPlaybackStatusReleased(status))
	emit(events.NewSessionStateChanged(string(StateProcessing), string(StateFinished)))
	emit(events.NewSessionRunFinished(runID, status))
}

func (s *Session) failRun(err error) {
	s.mu.Lock()
	switch s.state {
	case StateIdle, StateFinished, StateErrored:
		s.mu.Unlock()
		return
	}
	from := s.state
	scheduler := s.scheduler
	runID := s.runID
	emit := s.emitEvent
	onError := s.runOptions.onError
	s.state = StateErrored
	s.mu.Unlock()

	scheduler.Stop()

	status := "[Error] " + err.Error()
	s.sink.ReleaseStatus(status)
	emit(events.NewPlaybackStatusReleased(status))
	emit(events.NewSessionStateChanged(string(from), string(StateErrored)))
	emit(events.NewSessionRunFailed(runID, err.Error()))
	// The run callback gets the typed error, not the event payload, so
	// callers can match sentinels with errors.Is.
	if onError != nil {
		onError(err)
	}
}
