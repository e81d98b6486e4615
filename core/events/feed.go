package events

import "github.com/koscakluka/replay-core/core/transcripts"

const (
	// KindFeedSegmentQueued identifies segments buffered for timed release.
	KindFeedSegmentQueued Kind = "feed.segment_queued"
	// KindFeedSegmentDropped identifies malformed segments that were discarded.
	KindFeedSegmentDropped Kind = "feed.segment_dropped"
	// KindFeedFinished identifies upstream completion.
	KindFeedFinished Kind = "feed.finished"
	// KindFeedErrored identifies an upstream failure.
	KindFeedErrored Kind = "feed.errored"
)

// FeedSegmentQueued carries a segment accepted into the ordered buffer.
type FeedSegmentQueued struct {
	Base
	Segment transcripts.Segment
}

// NewFeedSegmentQueued creates a segment queued event.
func NewFeedSegmentQueued(segment transcripts.Segment) FeedSegmentQueued {
	return FeedSegmentQueued{Base: NewBase(KindFeedSegmentQueued), Segment: segment}
}

// FeedSegmentDropped carries a segment that failed validation and the reason
// it was discarded.
type FeedSegmentDropped struct {
	Base
	Segment transcripts.Segment
	Reason  string
}

// NewFeedSegmentDropped creates a segment dropped event.
func NewFeedSegmentDropped(segment transcripts.Segment, reason string) FeedSegmentDropped {
	return FeedSegmentDropped{Base: NewBase(KindFeedSegmentDropped), Segment: segment, Reason: reason}
}

// FeedFinished marks that the upstream producer is done emitting segments.
type FeedFinished struct {
	Base
	Status string
}

// NewFeedFinished creates an upstream finished event.
func NewFeedFinished(status string) FeedFinished {
	return FeedFinished{Base: NewBase(KindFeedFinished), Status: status}
}

// FeedErrored marks an upstream producer failure.
type FeedErrored struct {
	Base
	Message string
}

// NewFeedErrored creates an upstream error event.
func NewFeedErrored(message string) FeedErrored {
	return FeedErrored{Base: NewBase(KindFeedErrored), Message: message}
}
