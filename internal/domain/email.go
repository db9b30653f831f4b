package domain

import "context"

// EmailMessage is a rendered email ready to be sent. HTML or Text may be empty, not both.
type EmailMessage struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Mailer delivers rendered messages (infrastructure port).
type Mailer interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// EmailTemplateRenderer renders the emails the platform sends.
type EmailTemplateRenderer interface {
	RenderEventPublished(data *EventPublishedEmailData) (EmailMessage, error)
}

// EventPublishedEmailData holds data for the email sent to an organizer after publishing.
type EventPublishedEmailData struct {
	Email      string
	EventTitle string
	EventURL   string
	StartsAt   string
	Location   string
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendEventPublished(ctx context.Context, data *EventPublishedEmailData) error
}
