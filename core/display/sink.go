package display

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/koscakluka/replay-core/core/transcripts"
)

// programSender is the subset of tea.Program the sink needs.
type programSender interface {
	Send(msg tea.Msg)
}

// Sink forwards released segments and status lines into a running bubbletea
// program. It satisfies the session sink contract; delivery order is the
// release order because Send is called synchronously from the scheduler tick.
type Sink struct {
	program programSender
}

func NewSink(program programSender) *Sink {
	return &Sink{program: program}
}

func (s *Sink) Release(segment transcripts.Segment) {
	if s == nil || s.program == nil {
		return
	}
	s.program.Send(segmentReleasedMsg{segment: segment})
}

func (s *Sink) ReleaseStatus(status string) {
	if s == nil || s.program == nil {
		return
	}
	s.program.Send(statusReleasedMsg{status: status})
}

func (s *Sink) Clear() {
	if s == nil || s.program == nil {
		return
	}
	s.program.Send(clearMsg{})
}
