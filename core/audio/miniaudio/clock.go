// Package miniaudio plays a loaded audio track through the default output
// device and exposes the playback position as a clock: position is the audio
// handed to the device so far, completion is the whole track having been
// consumed.
package miniaudio

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gen2brain/malgo"
	"github.com/koscakluka/replay-core/core/audio"
)

type Clock struct {
	// audioContext is only saved to be able to uninitialize it, it is an
	// ownership thing
	audioContext *malgo.AllocatedContext
	device       *malgo.Device

	track          *audio.Track
	bytesPerFrame  int
	bytesPerSecond int

	consumed atomic.Int64

	mu sync.Mutex
}

func NewClock(track *audio.Track) (*Clock, error) {
	if track == nil || len(track.Data) == 0 {
		return nil, fmt.Errorf("no audio to play")
	}
	if track.Encoding.Format != audio.EncodingLinear16 {
		return nil, fmt.Errorf("unsupported playback format %q", track.Encoding.Format.Name())
	}

	audioCtx, err := malgo.InitContext(
		nil,
		malgo.ContextConfig{},
		func(message string) {},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize audio context: %w", err)
	}

	clock := &Clock{
		audioContext:   audioCtx,
		track:          track,
		bytesPerSecond: track.Encoding.BytesPerSecond() * track.Channels,
	}

	format := malgo.FormatS16
	clock.bytesPerFrame = malgo.SampleSizeInBytes(format) * track.Channels

	config := malgo.DefaultDeviceConfig(malgo.Playback)
	config.SampleRate = uint32(track.Encoding.SampleRate)
	config.Playback.Format = format
	config.Playback.Channels = uint32(track.Channels)
	config.Alsa.NoMMap = 1
	config.PeriodSizeInFrames = uint32(track.Encoding.SampleRate) / 10 // ~100ms of audio
	config.Periods = 4

	device, err := malgo.InitDevice(
		audioCtx.Context,
		config,
		malgo.DeviceCallbacks{Data: clock.feedAudio()},
	)
	if err != nil {
		clock.Close()
		return nil, fmt.Errorf("failed to initialize playback device: %w", err)
	}
	clock.device = device

	return clock, nil
}

// Start begins playback. Satisfies the session's clock acquisition contract:
// a failure here means the run never enters processing.
func (c *Clock) Start(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.device == nil {
		return fmt.Errorf("device not initialized")
	}
	if err := c.device.Start(); err != nil {
		return fmt.Errorf("failed to start playback device: %w", err)
	}
	return nil
}

// Position is the playback position in seconds, measured as audio handed to
// the output device.
func (c *Clock) Position() float64 {
	if c == nil || c.bytesPerSecond <= 0 {
		return 0
	}
	return float64(c.consumed.Load()) / float64(c.bytesPerSecond)
}

// Completed reports whether the whole track has been consumed by the device.
func (c *Clock) Completed() bool {
	if c == nil {
		return true
	}
	return c.consumed.Load() >= int64(len(c.track.Data))
}

func (c *Clock) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.device != nil {
		c.device.Uninit()
		c.device = nil
	}
	if c.audioContext != nil {
		_ = c.audioContext.Uninit()
		c.audioContext.Free()
		c.audioContext = nil
	}
}

func (c *Clock) feedAudio() malgo.DataProc {
	return func(pOutput, _ []byte, frameCount uint32) {
		need := int(frameCount) * c.bytesPerFrame

		consumed := c.consumed.Load()
		remaining := c.track.Data[min(consumed, int64(len(c.track.Data))):]
		if len(remaining) == 0 {
			// Past the end of the track the device plays silence.
			return
		}

		copied := copy(pOutput[:min(need, len(pOutput))], remaining)
		c.consumed.Add(int64(copied))
	}
}
