package speechtotext

import "github.com/koscakluka/replay-core/core/audio"

type TranscriptionOptions struct {
	// TimedTranscriptionCallback receives each finalized segment together
	// with its end time in seconds from the start of the stream.
	TimedTranscriptionCallback   func(transcript string, endTime float64)
	InterimTranscriptionCallback func(transcript string)

	StreamClosedCallback func()

	EncodingInfo audio.EncodingInfo
}

type TranscriptionOption func(*TranscriptionOptions)

func WithTimedTranscriptionCallback(callback func(transcript string, endTime float64)) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		o.TimedTranscriptionCallback = callback
	}
}

func WithInterimTranscriptionCallback(callback func(transcript string)) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		o.InterimTranscriptionCallback = callback
	}
}

// WithStreamClosedCallback registers a callback for the provider closing the
// stream after the final segment was delivered.
func WithStreamClosedCallback(callback func()) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		o.StreamClosedCallback = callback
	}
}

func WithEncodingInfo(encodingInfo audio.EncodingInfo) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		o.EncodingInfo = encodingInfo
	}
}
