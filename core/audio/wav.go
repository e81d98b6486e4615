package audio

import (
	"encoding/binary"
	"fmt"
	"os"
)

const (
	waveFormatPCM   = 1
	waveFormatALaw  = 6
	waveFormatMulaw = 7
)

// Track is a fully loaded single-channel audio sample ready for playback.
type Track struct {
	Data     []byte
	Encoding EncodingInfo
	Channels int
}

// Duration is the track length in seconds.
func (t Track) Duration() float64 {
	bytesPerSecond := t.Encoding.BytesPerSecond() * t.Channels
	if bytesPerSecond <= 0 {
		return 0
	}
	return float64(len(t.Data)) / float64(bytesPerSecond)
}

func LoadWAV(path string) (*Track, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio sample: %w", err)
	}
	return ParseWAV(data)
}

// ParseWAV decodes a RIFF/WAVE container holding PCM16, a-law or mu-law
// audio. Chunks other than fmt and data are skipped.
func ParseWAV(data []byte) (*Track, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, fmt.Errorf("not a RIFF/WAVE container")
	}

	var (
		encoding EncodingInfo
		channels int
		audio    []byte
		sawFmt   bool
	)

	offset := 12
	for offset+8 <= len(data) {
		chunkID := string(data[offset : offset+4])
		chunkSize := int(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
		body := offset + 8
		if body+chunkSize > len(data) {
			return nil, fmt.Errorf("truncated %q chunk", chunkID)
		}

		switch chunkID {
		case "fmt ":
			if chunkSize < 16 {
				return nil, fmt.Errorf("fmt chunk too short")
			}
			formatTag := binary.LittleEndian.Uint16(data[body : body+2])
			channels = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			sampleRate := int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			bitsPerSample := binary.LittleEndian.Uint16(data[body+14 : body+16])

			switch {
			case formatTag == waveFormatPCM && bitsPerSample == 16:
				encoding = EncodingInfo{SampleRate: sampleRate, Format: EncodingLinear16}
			case formatTag == waveFormatALaw:
				encoding = EncodingInfo{SampleRate: sampleRate, Format: EncodingALaw}
			case formatTag == waveFormatMulaw:
				encoding = EncodingInfo{SampleRate: sampleRate, Format: EncodingMulaw}
			default:
				return nil, fmt.Errorf("unsupported wave format %d (%d bits)", formatTag, bitsPerSample)
			}
			sawFmt = true

		case "data":
			audio = data[body : body+chunkSize]
		}

		// Chunks are word-aligned.
		offset = body + chunkSize + chunkSize%2
	}

	if !sawFmt {
		return nil, fmt.Errorf("missing fmt chunk")
	}
	if audio == nil {
		return nil, fmt.Errorf("missing data chunk")
	}
	if channels < 1 {
		return nil, fmt.Errorf("invalid channel count %d", channels)
	}

	return &Track{Data: audio, Encoding: encoding, Channels: channels}, nil
}
