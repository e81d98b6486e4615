package replay

import (
	"errors"
	"fmt"
)

var (
	// ErrConnectionLost marks a dropped feed transport. The run is terminal
	// and requires an explicit reset before retrying.
	ErrConnectionLost = errors.New("feed connection lost")

	// ErrClockAcquisitionFailed marks a playback clock that never started.
	ErrClockAcquisitionFailed = errors.New("playback clock failed to start")

	// ErrMalformedSegment marks a single unusable segment. It is recovered
	// locally (the segment is dropped), never terminal for the run.
	ErrMalformedSegment = errors.New("malformed segment")
)

// UpstreamError is a failure reported by the producer mid-run. It stops the
// scheduler immediately; buffered segments are never released after it.
type UpstreamError struct {
	Message string
}

func (e UpstreamError) Error() string {
	return fmt.Sprintf("upstream error: %s", e.Message)
}
