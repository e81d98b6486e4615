// Package transcripts defines the timed transcript segment contract shared
// by the feed, the replay core, and the display surfaces.
package transcripts

import (
	"fmt"
	"math"
)

// Channel identifies which logical transcript stream produced a segment.
type Channel string

const (
	// ChannelRaw is the unprocessed speech-to-text stream.
	ChannelRaw Channel = "raw"
	// ChannelCorrected is the LLM-corrected stream.
	ChannelCorrected Channel = "corrected"
)

// Segment is a timestamped transcript line. EndTime is the playback position
// (in seconds) at which the segment becomes valid to reveal. Segments are
// immutable value objects.
type Segment struct {
	Channel Channel
	Text    string
	EndTime float64
}

func NewSegment(channel Channel, text string, endTime float64) Segment {
	return Segment{Channel: channel, Text: text, EndTime: endTime}
}

// Validate reports whether the segment is usable. Malformed segments are
// dropped by the receiving end, they never fail a run.
func (s Segment) Validate() error {
	switch s.Channel {
	case ChannelRaw, ChannelCorrected:
	default:
		return fmt.Errorf("unknown channel %q", s.Channel)
	}

	if s.Text == "" {
		return fmt.Errorf("empty segment text")
	}

	if s.EndTime < 0 || math.IsNaN(s.EndTime) || math.IsInf(s.EndTime, 0) {
		return fmt.Errorf("invalid end time %v", s.EndTime)
	}

	return nil
}

func (s Segment) String() string {
	return fmt.Sprintf("[%s @%.2fs] %s", s.Channel, s.EndTime, s.Text)
}
