// Package producer is the server side of the transcript feed: it streams a
// recorded audio sample through speech-to-text, corrects each finalized
// segment, and emits the raw and corrected transcript updates with the end
// time the segment carries in the audio stream.
package producer

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/koscakluka/replay-core/core/audio"
	"github.com/koscakluka/replay-core/core/speechtotext"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	defaultSamplesDir = "static/audio_samples"
	defaultSample     = "sample1"

	// chunkDuration is how much audio is pushed to the transcriber at once.
	chunkDuration = 100 * time.Millisecond
)

// Transcriber is the streaming speech-to-text client the pipeline feeds.
type Transcriber interface {
	Transcribe(ctx context.Context, opts ...speechtotext.TranscriptionOption) error
	SendAudio(audio []byte) error
	CloseStream() error
}

// TextCorrector cleans up a finalized raw segment. A bracketed status marker
// is a valid result and is forwarded on the corrected channel like the
// correction itself.
type TextCorrector interface {
	Correct(ctx context.Context, text string) string
}

// Emitter delivers wire events to the connected client.
type Emitter interface {
	EmitRawTranscript(text string, endTime float64) error
	EmitCorrectedTranscript(text string, endTime float64) error
	EmitFinished(status string) error
	EmitError(message string) error
}

type Pipeline struct {
	transcriber Transcriber
	corrector   TextCorrector

	samplesDir string
	pacing     time.Duration
}

type PipelineOption func(*Pipeline)

func WithSamplesDir(dir string) PipelineOption {
	return func(p *Pipeline) { p.samplesDir = dir }
}

// WithPacing overrides the real-time delay between audio chunks. Zero
// disables pacing, which is what tests want.
func WithPacing(pacing time.Duration) PipelineOption {
	return func(p *Pipeline) { p.pacing = pacing }
}

func NewPipeline(transcriber Transcriber, corrector TextCorrector, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		transcriber: transcriber,
		corrector:   corrector,
		samplesDir:  defaultSamplesDir,
		pacing:      chunkDuration,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process runs one full transcription pass over the named audio sample and
// emits every wire event for it, ending with processing_finished or
// processing_error.
func (p *Pipeline) Process(ctx context.Context, sampleName string, emitter Emitter) error {
	ctx, span := tracer.Start(ctx, "process audio sample")
	defer span.End()

	if sampleName == "" {
		sampleName = defaultSample
	}
	span.SetAttributes(attribute.String("request.audio_sample", sampleName))

	track, err := audio.LoadWAV(filepath.Join(p.samplesDir, sampleName+".wav"))
	if err != nil {
		err = fmt.Errorf("failed to load audio sample %q: %w", sampleName, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		_ = emitter.EmitError(fmt.Sprintf("Audio file %q not found on server.", sampleName+".wav"))
		return err
	}

	streamClosed := make(chan struct{})
	err = p.transcriber.Transcribe(ctx,
		speechtotext.WithEncodingInfo(track.Encoding),
		speechtotext.WithTimedTranscriptionCallback(func(transcript string, endTime float64) {
			p.handleSegment(ctx, emitter, transcript, endTime)
		}),
		speechtotext.WithStreamClosedCallback(func() { close(streamClosed) }),
	)
	if err != nil {
		err = fmt.Errorf("failed to open transcription stream: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		_ = emitter.EmitError("Speech processing service unavailable.")
		return err
	}

	if err := p.streamAudio(ctx, track); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		_ = emitter.EmitError(fmt.Sprintf("An unexpected error occurred during transcription: %v", err))
		return err
	}

	if err := p.transcriber.CloseStream(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		_ = emitter.EmitError(fmt.Sprintf("An unexpected error occurred during transcription: %v", err))
		return err
	}

	select {
	case <-streamClosed:
	case <-ctx.Done():
		return ctx.Err()
	}

	_ = emitter.EmitFinished("Completed successfully")
	return nil
}

// handleSegment forwards one finalized segment on both channels. The
// corrected update reuses the raw segment's end time so both reveal at the
// same playback position.
func (p *Pipeline) handleSegment(ctx context.Context, emitter Emitter, transcript string, endTime float64) {
	if err := emitter.EmitRawTranscript(transcript, endTime); err != nil {
		logger.Warn("failed to emit raw transcript", "error", err.Error())
		return
	}

	corrected := p.corrector.Correct(ctx, transcript)
	if corrected == "" {
		return
	}
	if err := emitter.EmitCorrectedTranscript(corrected, endTime); err != nil {
		logger.Warn("failed to emit corrected transcript", "error", err.Error())
	}
}

func (p *Pipeline) streamAudio(ctx context.Context, track *audio.Track) error {
	bytesPerSecond := track.Encoding.BytesPerSecond() * track.Channels
	chunkSize := bytesPerSecond * int(chunkDuration.Milliseconds()) / 1000

	for offset := 0; offset < len(track.Data); offset += chunkSize {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		chunk := track.Data[offset:min(offset+chunkSize, len(track.Data))]
		if err := p.transcriber.SendAudio(chunk); err != nil {
			return fmt.Errorf("failed to stream audio chunk: %w", err)
		}

		if p.pacing > 0 {
			time.Sleep(p.pacing)
		}
	}
	return nil
}
