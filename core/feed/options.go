// Package feed defines the options shared by transcript feed transports.
// A transport connects to an upstream producer and surfaces its events
// through callbacks; it never interprets timing, that is the session's job.
package feed

import "github.com/koscakluka/replay-core/core/transcripts"

type StreamOptions struct {
	SegmentCallback    func(channel transcripts.Channel, text string, endTime float64)
	FinishedCallback   func(status string)
	ErrorCallback      func(message string)
	DisconnectCallback func()

	AudioSample string
}

type StreamOption func(*StreamOptions)

func WithSegmentCallback(callback func(channel transcripts.Channel, text string, endTime float64)) StreamOption {
	return func(o *StreamOptions) {
		o.SegmentCallback = callback
	}
}

func WithFinishedCallback(callback func(status string)) StreamOption {
	return func(o *StreamOptions) {
		o.FinishedCallback = callback
	}
}

func WithErrorCallback(callback func(message string)) StreamOption {
	return func(o *StreamOptions) {
		o.ErrorCallback = callback
	}
}

// WithDisconnectCallback registers a callback for transport-level connection
// loss. A clean close after the upstream finished does not trigger it.
func WithDisconnectCallback(callback func()) StreamOption {
	return func(o *StreamOptions) {
		o.DisconnectCallback = callback
	}
}

// WithAudioSample selects the audio sample the producer should process when
// the stream is started.
func WithAudioSample(name string) StreamOption {
	return func(o *StreamOptions) {
		o.AudioSample = name
	}
}
