// Package events is the in-process event bus modules use to react to each
// other's changes without importing one another.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event is implemented by every published event.
type Event interface {
	// EventName is the subscription key, e.g. "leads.lead.created".
	EventName() string
	OccurredAt() time.Time
}

// BaseEvent is embedded by concrete events.
type BaseEvent struct {
	EventID  uuid.UUID `json:"eventId"`
	Occurred time.Time `json:"occurredAt"`
}

func (e BaseEvent) OccurredAt() time.Time { return e.Occurred }

// NewBaseEvent stamps a fresh id and the current time.
func NewBaseEvent() BaseEvent {
	return BaseEvent{EventID: uuid.New(), Occurred: time.Now()}
}

// Handler reacts to one event.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc lets a plain function subscribe.
type HandlerFunc func(ctx context.Context, event Event) error

func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Publisher is the side of the bus that domain services see.
type Publisher interface {
	// Publish fans the event out without waiting for handlers.
	Publish(ctx context.Context, event Event)
	// PublishSync runs handlers inline and joins their errors.
	PublishSync(ctx context.Context, event Event) error
}

// Subscriber registers handlers by event name.
type Subscriber interface {
	Subscribe(eventName string, handler Handler)
}

// Bus is both sides.
type Bus interface {
	Publisher
	Subscriber
}
