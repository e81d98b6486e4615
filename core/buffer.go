package replay

import (
	"sort"
	"sync"

	"github.com/koscakluka/replay-core/core/transcripts"
)

// segmentBuffer keeps queued segments sorted by end time across both
// channels merged into one timeline. The upstream can finalize segments out
// of chronological order (a long raw segment may arrive after a short
// corrected one covering earlier audio), so a single shared ordered buffer is
// used instead of one queue per channel.
type segmentBuffer struct {
	mu       sync.Mutex
	segments []transcripts.Segment
}

func newSegmentBuffer() *segmentBuffer {
	return &segmentBuffer{}
}

// Insert places the segment so that ascending end-time order holds after
// return. Segments sharing an end time keep arrival order.
func (b *segmentBuffer) Insert(segment transcripts.Segment) {
	if b == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	at := sort.Search(len(b.segments), func(i int) bool {
		return b.segments[i].EndTime > segment.EndTime
	})

	b.segments = append(b.segments, transcripts.Segment{})
	copy(b.segments[at+1:], b.segments[at:])
	b.segments[at] = segment
}

// PopReadyUpTo removes and returns, in ascending end-time order, every
// segment whose end time is at or before position. Calling it with a smaller
// position than before returns whatever is ready at that position and leaves
// the remainder sorted.
func (b *segmentBuffer) PopReadyUpTo(position float64) []transcripts.Segment {
	if b == nil {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	until := sort.Search(len(b.segments), func(i int) bool {
		return b.segments[i].EndTime > position
	})
	if until == 0 {
		return nil
	}

	ready := make([]transcripts.Segment, until)
	copy(ready, b.segments[:until])
	b.segments = append(b.segments[:0], b.segments[until:]...)
	return ready
}

func (b *segmentBuffer) IsEmpty() bool {
	return b.Len() == 0
}

func (b *segmentBuffer) Len() int {
	if b == nil {
		return 0
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.segments)
}

func (b *segmentBuffer) Clear() {
	if b == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.segments = nil
}
