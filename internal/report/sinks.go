package report

import "hunit/internal/domain"

// EventSink consumes the aggregator's structured event stream. Rendering is
// the sink's business; the core makes no assumption about presentation.
type EventSink interface {
	Emit(domain.Event)
}

// SinkFunc adapts a function to an EventSink.
type SinkFunc func(domain.Event)

func (f SinkFunc) Emit(e domain.Event) { f(e) }

// NopSink discards every event (quiet mode).
type NopSink struct{}

func (NopSink) Emit(domain.Event) {}

// ChannelSink hands events to a consumer over a bounded channel. Emit never
// blocks: when the consumer lags, events are dropped. Reporting is a side
// effect, not a correctness concern.
type ChannelSink struct {
	ch chan domain.Event
}

// NewChannelSink returns a sink buffering up to n events.
func NewChannelSink(n int) *ChannelSink {
	return &ChannelSink{ch: make(chan domain.Event, n)}
}

func (s *ChannelSink) Emit(e domain.Event) {
	select {
	case s.ch <- e:
	default:
	}
}

// Events returns the consumer side of the sink.
func (s *ChannelSink) Events() <-chan domain.Event {
	return s.ch
}

// Close releases the consumer; call once no more events will be emitted.
func (s *ChannelSink) Close() {
	close(s.ch)
}

// MultiSink fans one event out to several sinks in order.
type MultiSink []EventSink

func (m MultiSink) Emit(e domain.Event) {
	for _, s := range m {
		s.Emit(e)
	}
}
