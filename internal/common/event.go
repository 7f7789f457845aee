package common

import (
	"encoding/json"
	"fmt"
)

// EventPayload is the closed set of things an event may carry: an order,
// a trade, or explicitly nothing. NoPayload stands in for "none" so a
// sink never sees a nil payload.
type EventPayload interface {
	isEventPayload()
}

type NoPayload struct{}

func (NoPayload) isEventPayload() {}
func (*Order) isEventPayload()    {}
func (*Trade) isEventPayload()    {}

// Event is a tagged notification pushed synchronously to the registered
// sink at each state change.
type Event struct {
	Type   EventType
	Target EventPayload
}

func NewEvent(eventType EventType) Event {
	return Event{Type: eventType, Target: NoPayload{}}
}

func NewOrderEvent(eventType EventType, order *Order) Event {
	return Event{Type: eventType, Target: order}
}

func NewTradeEvent(eventType EventType, trade *Trade) Event {
	return Event{Type: eventType, Target: trade}
}

func (e Event) String() string {
	return fmt.Sprintf("Event+(%s %v)", e.Type, e.Target)
}

func (e Event) MarshalJSON() ([]byte, error) {
	var target any
	switch t := e.Target.(type) {
	case *Order:
		target = t
	case *Trade:
		target = t
	}
	return json.Marshal(struct {
		Type   string `json:"type"`
		Target any    `json:"target"`
	}{Type: e.Type.String(), Target: target})
}

// EventSink receives engine notifications. It is an injected capability:
// the engine calls it inline and never outlives or owns it. A nil sink
// drops events.
type EventSink func(Event)
