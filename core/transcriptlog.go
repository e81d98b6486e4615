package replay

import (
	"sync"

	"github.com/jinzhu/copier"
	"github.com/koscakluka/replay-core/core/transcripts"
)

// Transcript is a point-in-time snapshot of everything released so far:
// append-only per-channel logs, the merged chronological feed, and the
// distinguished status lines.
type Transcript struct {
	Raw       []string
	Corrected []string
	Merged    []transcripts.Segment
	Statuses  []string
}

// transcriptLog is the sink the session always owns. It accumulates released
// segments in release order so callers can inspect the run at any point.
type transcriptLog struct {
	mu         sync.Mutex
	transcript Transcript
}

func newTranscriptLog() *transcriptLog {
	return &transcriptLog{}
}

func (l *transcriptLog) Release(segment transcripts.Segment) {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch segment.Channel {
	case transcripts.ChannelRaw:
		l.transcript.Raw = append(l.transcript.Raw, segment.Text)
	case transcripts.ChannelCorrected:
		l.transcript.Corrected = append(l.transcript.Corrected, segment.Text)
	}
	l.transcript.Merged = append(l.transcript.Merged, segment)
}

func (l *transcriptLog) ReleaseStatus(status string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.transcript.Statuses = append(l.transcript.Statuses, status)
}

// Snapshot returns a deep copy so callers can hold onto it while the run
// keeps releasing.
func (l *transcriptLog) Snapshot() Transcript {
	l.mu.Lock()
	defer l.mu.Unlock()

	snapshot := Transcript{}
	copier.Copy(&snapshot, l.transcript)
	return snapshot
}

func (l *transcriptLog) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.transcript = Transcript{}
}
