package trail

import (
	"context"
	"log/slog"
	"sort"
)

type EventKind string

const (
	EventPartySetup          EventKind = "party.setup"
	EventMemberHealthChanged EventKind = "member.health_changed"
	EventMemberContracted    EventKind = "member.contracted"
	EventMemberRecovered     EventKind = "member.recovered"
	EventMemberDied          EventKind = "member.died"
	EventInventoryOverloaded EventKind = "inventory.overloaded"
	EventDateAdvanced        EventKind = "date.advanced"
	EventTravelDay           EventKind = "travel.day"
	EventSceneTransition     EventKind = "scene.transition"
)

// Event is a structured record of a state transition. Date is the journey
// date at emission; it is zero for events raised outside a journey.
type Event struct {
	Kind  EventKind      `json:"kind"`
	Date  Date           `json:"date"`
	Attrs map[string]any `json:"attrs,omitempty"`
}

type EventSink interface {
	Emit(Event)
}

type EventSinkFunc func(Event)

func (f EventSinkFunc) Emit(e Event) {
	if f != nil {
		f(e)
	}
}

// MultiSink fans an event out to every non-nil sink in order.
func MultiSink(sinks ...EventSink) EventSink {
	out := make([]EventSink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return EventSinkFunc(func(e Event) {
		for _, s := range out {
			s.Emit(e)
		}
	})
}

type logSink struct {
	logger *slog.Logger
}

// NewLogSink writes events to logger at info level, one record per event.
func NewLogSink(logger *slog.Logger) EventSink {
	if logger == nil {
		logger = slog.Default()
	}
	return logSink{logger: logger}
}

func (s logSink) Emit(e Event) {
	attrs := make([]slog.Attr, 0, len(e.Attrs)+1)
	if !e.Date.IsZero() {
		attrs = append(attrs, slog.String("date", e.Date.String()))
	}
	keys := make([]string, 0, len(e.Attrs))
	for k := range e.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		attrs = append(attrs, slog.Any(k, e.Attrs[k]))
	}
	s.logger.LogAttrs(context.Background(), slog.LevelInfo, string(e.Kind), attrs...)
}

func emit(sink EventSink, e Event) {
	if sink == nil {
		return
	}
	sink.Emit(e)
}
