package services

import (
	"context"
	"fmt"
	"log/slog"

	"evently/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
	logger   *slog.Logger
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, logger *slog.Logger) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer, logger: logger}
}

// SendEventPublished tells the organizer their event is live.
func (s *emailService) SendEventPublished(ctx context.Context, data *domain.EventPublishedEmailData) error {
	if data == nil {
		return fmt.Errorf("event published email data is nil")
	}
	msg, err := s.renderer.RenderEventPublished(data)
	if err != nil {
		return fmt.Errorf("failed to render event published email: %w", err)
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send event published email: %w", err)
	}
	s.logger.InfoContext(ctx, "event published email sent", "to", msg.To)
	return nil
}
