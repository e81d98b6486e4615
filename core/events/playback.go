package events

import "github.com/koscakluka/replay-core/core/transcripts"

const (
	// KindPlaybackSegmentReleased identifies segments delivered to the sinks.
	KindPlaybackSegmentReleased Kind = "playback.segment_released"
	// KindPlaybackStatusReleased identifies status lines delivered to the sinks.
	KindPlaybackStatusReleased Kind = "playback.status_released"
	// KindPlaybackDrained identifies the scheduler stopping after a full drain.
	KindPlaybackDrained Kind = "playback.drained"
)

// PlaybackSegmentReleased carries a segment at the moment it was revealed.
type PlaybackSegmentReleased struct {
	Base
	Segment transcripts.Segment
	// Position is the clock position observed by the releasing tick.
	Position float64
}

// NewPlaybackSegmentReleased creates a segment released event.
func NewPlaybackSegmentReleased(segment transcripts.Segment, position float64) PlaybackSegmentReleased {
	return PlaybackSegmentReleased{Base: NewBase(KindPlaybackSegmentReleased), Segment: segment, Position: position}
}

// PlaybackStatusReleased carries a distinguished status line.
type PlaybackStatusReleased struct {
	Base
	Status string
}

// NewPlaybackStatusReleased creates a status released event.
func NewPlaybackStatusReleased(status string) PlaybackStatusReleased {
	return PlaybackStatusReleased{Base: NewBase(KindPlaybackStatusReleased), Status: status}
}

// PlaybackDrained marks the scheduler self-stop after the buffer emptied and
// the clock completed.
type PlaybackDrained struct{ Base }

// NewPlaybackDrained creates a playback drained event.
func NewPlaybackDrained() PlaybackDrained {
	return PlaybackDrained{Base: NewBase(KindPlaybackDrained)}
}
