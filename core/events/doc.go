// Package events defines the typed replay event contract.
//
// Event kinds are grouped by receiver-facing namespaces:
//
//   - feed.*
//   - playback.*
//   - session.*
//
// Semantics used across the package:
//
//   - Segment: a timed transcript line tagged by channel.
//   - Queued: the segment entered the ordered buffer and is waiting for the
//     playback clock to reach its end time.
//   - Released: the scheduler handed the segment to the display surfaces.
//   - Status: a distinguished non-transcript line (completion or failure).
//
// feed events
//
//   - FeedSegmentQueued (feed.segment_queued): a segment arrived from the
//     upstream channel and was buffered.
//   - FeedSegmentDropped (feed.segment_dropped): a malformed segment was
//     discarded without affecting the run.
//   - FeedFinished (feed.finished): the upstream producer reported
//     completion; buffered segments still drain against the clock.
//   - FeedErrored (feed.errored): the upstream producer reported a failure.
//
// playback events
//
//   - PlaybackSegmentReleased (playback.segment_released): a segment became
//     ready and was delivered to the sinks.
//   - PlaybackStatusReleased (playback.status_released): a status line was
//     delivered to the sinks.
//   - PlaybackDrained (playback.drained): the buffer emptied and the clock
//     completed, so the scheduler stopped itself.
//
// session events
//
//   - SessionStateChanged (session.state_changed): the session moved between
//     lifecycle states.
//   - SessionRunStarted (session.run_started): a new run entered processing.
//   - SessionRunFinished (session.run_finished): the run drained successfully.
//   - SessionRunFailed (session.run_failed): the run terminated on an error.
package events
