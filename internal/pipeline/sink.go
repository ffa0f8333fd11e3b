package pipeline

// ChannelSink forwards events into a channel. Sends block, so the reader
// must drain the channel until Run returns.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch != nil {
		s.Ch <- evt
	}
}

// SinkFunc adapts a function to ProgressSink.
type SinkFunc func(Event)

func (f SinkFunc) OnEvent(evt Event) {
	if f != nil {
		f(evt)
	}
}

func notify(sink ProgressSink, evt Event) {
	if sink != nil {
		sink.OnEvent(evt)
	}
}

// emitQueued announces every aspect with its layer before the first runs.
func emitQueued(sink ProgressSink, units []string) {
	for i, u := range units {
		notify(sink, Event{Unit: u, Layer: i + 1, Stage: StageAdvise, Status: StatusQueued})
	}
}
