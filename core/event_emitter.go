package replay

import "github.com/koscakluka/replay-core/core/events"

type eventEmitter func(events.Event)

func noopEventEmitter(events.Event) {}

func newCallbackEventEmitter(opts RunOptions, handler func(events.Event)) eventEmitter {
	return func(event events.Event) {
		if handler != nil {
			handler(event)
		}

		switch typedEvent := event.(type) {
		case events.PlaybackSegmentReleased:
			if opts.onRelease != nil {
				opts.onRelease(typedEvent.Segment, typedEvent.Position)
			}
		case events.PlaybackStatusReleased:
			if opts.onStatus != nil {
				opts.onStatus(typedEvent.Status)
			}
		case events.SessionRunFinished:
			if opts.onFinished != nil {
				opts.onFinished(typedEvent.Status)
			}
		case events.SessionStateChanged:
			if opts.onStateChanged != nil {
				opts.onStateChanged(State(typedEvent.From), State(typedEvent.To))
			}
		}
	}
}
