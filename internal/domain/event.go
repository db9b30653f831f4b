package domain

import (
	"context"
	"time"
)

// Event is a published event record owned by the record store.
// swagger:model Event
type Event struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Location      string    `json:"location"`
	ImageURL      string    `json:"image_url"`
	StartDateTime time.Time `json:"start_date_time"`
	EndDateTime   time.Time `json:"end_date_time"`
	CategoryID    string    `json:"category_id"`
	Category      *Category `json:"category,omitempty"`
	// Price is kept as entered; empty when the event is free.
	Price       string    `json:"price"`
	IsFree      bool      `json:"is_free"`
	URL         string    `json:"url"`
	OrganizerID string    `json:"organizer_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateEventParams is the input of EventService.CreateEvent.
// Path is a cache-invalidation hint: the rendered page at Path is stale once the event exists.
type CreateEventParams struct {
	Event          Event
	UserID         string
	OrganizerEmail string
	Path           string
}

// UpdateEventParams is the input of EventService.UpdateEvent. Only the organizer may update.
type UpdateEventParams struct {
	EventID string
	Event   Event
	UserID  string
	Path    string
}

// EventRepository defines the interface for event storage
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	Update(ctx context.Context, event *Event) error
	List(ctx context.Context, params PaginationParams) ([]*Event, int, error)
	ListByOrganizerID(ctx context.Context, organizerID string) ([]*Event, error)
}

// EventService defines the business logic for creating, updating and browsing events.
type EventService interface {
	CreateEvent(ctx context.Context, params CreateEventParams) (*Event, error)
	UpdateEvent(ctx context.Context, params UpdateEventParams) (*Event, error)
	GetEventByID(ctx context.Context, eventID string) (*Event, error)
	ListEvents(ctx context.Context, params PaginationParams) ([]*Event, int, error)
	ListEventsByOrganizer(ctx context.Context, organizerID string) ([]*Event, error)
}
