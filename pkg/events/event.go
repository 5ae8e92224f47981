package events

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// Header keys attached to every published message.
const (
	HeaderEventID   = "event-id"
	HeaderEventType = "event-type"
	HeaderRequestID = "request-id"
	HeaderSource    = "source"
	HeaderTimestamp = "timestamp"
)

var (
	ErrPublisherClosed = errors.New("event publisher is closed")
	ErrEmptyKey        = errors.New("event resource id cannot be empty")
)

// Event describes one committed change to a resource.
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Resource   string    `json:"resource"`
	ResourceID string    `json:"resourceId"`
	RequestID  string    `json:"requestId,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
	Data       any       `json:"data,omitempty"`
}

// New builds an event of type "<resource>.<action>" with a fresh id.
func New(resource, action, resourceID string, data any) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       resource + "." + action,
		Resource:   resource,
		ResourceID: resourceID,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
}

func (e Event) WithRequestID(requestID string) Event {
	e.RequestID = requestID
	return e
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Noop drops every event. It is used when no broker is configured.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }

func (Noop) Close() error { return nil }
