package replay

import (
	"context"
	"time"

	"github.com/koscakluka/replay-core/core/events"
	"github.com/koscakluka/replay-core/core/transcripts"
)

type SessionOption func(*Session)

// Source is the upstream event producer the session signals when a run
// enters processing (e.g. the websocket feed requesting server-side
// transcription).
type Source interface {
	Begin(ctx context.Context) error
}

func WithSource(source Source) SessionOption {
	return func(s *Session) { s.source = source }
}

// WithSink registers an additional display surface. The session's own
// transcript log is always the first sink.
func WithSink(sink Sink) SessionOption {
	return func(s *Session) {
		if sink != nil {
			s.extraSinks = append(s.extraSinks, sink)
		}
	}
}

// WithTickInterval overrides the scheduler polling cadence. Values at or
// below zero keep the default.
func WithTickInterval(interval time.Duration) SessionOption {
	return func(s *Session) {
		if interval > 0 {
			s.tickInterval = interval
		}
	}
}

// WithEventHandler registers a handler receiving every typed event the
// session emits, before the per-run callbacks are invoked.
func WithEventHandler(handler func(events.Event)) SessionOption {
	return func(s *Session) { s.eventHandler = handler }
}

type RunOptions struct {
	onRelease      func(segment transcripts.Segment, position float64)
	onStatus       func(status string)
	onFinished     func(status string)
	onError        func(err error)
	onStateChanged func(from, to State)
}

type RunOption func(*RunOptions)

// WithReleaseCallback registers a callback for every segment the scheduler
// reveals, invoked in release order with the clock position observed by the
// releasing tick.
func WithReleaseCallback(callback func(segment transcripts.Segment, position float64)) RunOption {
	return func(o *RunOptions) {
		o.onRelease = callback
	}
}

// WithStatusCallback registers a callback for distinguished status lines
// (completion and failure notices).
func WithStatusCallback(callback func(status string)) RunOption {
	return func(o *RunOptions) {
		o.onStatus = callback
	}
}

func WithFinishedCallback(callback func(status string)) RunOption {
	return func(o *RunOptions) {
		o.onFinished = callback
	}
}

func WithErrorCallback(callback func(err error)) RunOption {
	return func(o *RunOptions) {
		o.onError = callback
	}
}

func WithStateChangedCallback(callback func(from, to State)) RunOption {
	return func(o *RunOptions) {
		o.onStateChanged = callback
	}
}
