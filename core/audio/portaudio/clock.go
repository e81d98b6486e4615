// Package portaudio is the blocking-write playback clock backend. It feeds
// the track to a PortAudio stream from a background goroutine and exposes the
// same position/completion surface as the miniaudio backend.
package portaudio

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"github.com/gordonklaus/portaudio"
	"github.com/koscakluka/replay-core/core/audio"
)

const defaultBufferSize = 4096

type Clock struct {
	track      *audio.Track
	stream     *portaudio.Stream
	bufferSize int
	out        []int16

	consumed atomic.Int64
	done     atomic.Bool

	startOnce sync.Once
	closeOnce sync.Once
	closeCh   chan struct{}
}

func NewClock(track *audio.Track) (*Clock, error) {
	if track == nil || len(track.Data) == 0 {
		return nil, fmt.Errorf("no audio to play")
	}
	if track.Encoding.Format != audio.EncodingLinear16 {
		return nil, fmt.Errorf("unsupported playback format %q", track.Encoding.Format.Name())
	}

	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize portaudio: %w", err)
	}

	out := make([]int16, defaultBufferSize*track.Channels)
	stream, err := portaudio.OpenDefaultStream(
		0, track.Channels, float64(track.Encoding.SampleRate), defaultBufferSize, out)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("failed to open portaudio stream: %w", err)
	}

	return &Clock{
		track:      track,
		stream:     stream,
		bufferSize: defaultBufferSize,
		out:        out,
		closeCh:    make(chan struct{}),
	}, nil
}

func (c *Clock) Start(ctx context.Context) error {
	if err := c.stream.Start(); err != nil {
		return fmt.Errorf("failed to start portaudio stream: %w", err)
	}

	c.startOnce.Do(func() { go c.feed(ctx) })
	return nil
}

func (c *Clock) Position() float64 {
	if c == nil {
		return 0
	}
	bytesPerSecond := c.track.Encoding.BytesPerSecond() * c.track.Channels
	return float64(c.consumed.Load()) / float64(bytesPerSecond)
}

func (c *Clock) Completed() bool {
	if c == nil {
		return true
	}
	return c.done.Load()
}

func (c *Clock) Close() {
	c.closeOnce.Do(func() {
		close(c.closeCh)
		c.stream.Close()
		portaudio.Terminate()
	})
}

func (c *Clock) feed(ctx context.Context) {
	chunkSize := len(c.out) * 2
	data := c.track.Data

	for offset := 0; offset < len(data); offset += chunkSize {
		select {
		case <-ctx.Done():
			return
		case <-c.closeCh:
			return
		default:
		}

		chunk := data[offset:min(offset+chunkSize, len(data))]
		if err := frameChunk(chunk, c.out); err != nil {
			log.Println("Failed to frame playback audio", "error", err)
			// The track cannot advance past this point; report completion so
			// the run can still drain and finish.
			c.done.Store(true)
			return
		}
		if err := c.stream.Write(); err != nil {
			log.Println("Failed to write to portaudio stream", "error", err)
		}

		c.consumed.Add(int64(len(chunk)))
	}

	c.done.Store(true)
}

// frameChunk decodes one chunk of little-endian PCM bytes into the stream's
// sample buffer, zero-padding a short final chunk to the full buffer size.
func frameChunk(chunk []byte, out []int16) error {
	padded := chunk
	if len(chunk) < len(out)*2 {
		padded = make([]byte, len(out)*2)
		copy(padded, chunk)
	}
	return binary.Read(bytes.NewReader(padded), binary.LittleEndian, out)
}
