package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"evently/internal/domain"
)

type eventService struct {
	eventRepo      domain.EventRepository
	categoryRepo   domain.CategoryRepository
	emailService   domain.EmailService
	pageCache      domain.PageCache
	baseURL        string
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewEventService returns the EventService. emailService and pageCache may be nil.
// baseURL prefixes the event links sent to organizers.
func NewEventService(
	eventRepo domain.EventRepository,
	categoryRepo domain.CategoryRepository,
	emailService domain.EmailService,
	pageCache domain.PageCache,
	baseURL string,
	logger *slog.Logger,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		categoryRepo:   categoryRepo,
		emailService:   emailService,
		pageCache:      pageCache,
		baseURL:        strings.TrimRight(baseURL, "/"),
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, params domain.CreateEventParams) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if params.UserID == "" {
		return nil, fmt.Errorf("event organizer is required: %w", domain.ErrInvalidInput)
	}
	category, err := s.category(ctx, params.Event.CategoryID)
	if err != nil {
		return nil, err
	}

	event := params.Event
	event.ID = ""
	event.OrganizerID = params.UserID
	event.CreatedAt = time.Now()
	event.UpdatedAt = event.CreatedAt
	if event.IsFree {
		event.Price = ""
	}

	if err := s.eventRepo.Create(ctx, &event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	event.Category = category

	s.invalidate(ctx, params.Path, "/")
	s.notifyOrganizer(ctx, params.OrganizerEmail, &event)
	return &event, nil
}

func (s *eventService) UpdateEvent(ctx context.Context, params domain.UpdateEventParams) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	existing, err := s.eventRepo.GetByID(ctx, params.EventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if existing.OrganizerID != params.UserID {
		return nil, domain.ErrForbidden
	}
	category, err := s.category(ctx, params.Event.CategoryID)
	if err != nil {
		return nil, err
	}

	event := params.Event
	event.ID = existing.ID
	event.OrganizerID = existing.OrganizerID
	event.CreatedAt = existing.CreatedAt
	if event.IsFree {
		event.Price = ""
	}
	if err := s.eventRepo.Update(ctx, &event); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	event.Category = category

	s.invalidate(ctx, params.Path, "/events/"+event.ID, "/", "/profile")
	return &event, nil
}

func (s *eventService) GetEventByID(ctx context.Context, eventID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (s *eventService) ListEvents(ctx context.Context, params domain.PaginationParams) ([]*domain.Event, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, total, err := s.eventRepo.List(ctx, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, total, nil
}

func (s *eventService) ListEventsByOrganizer(ctx context.Context, organizerID string) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.eventRepo.ListByOrganizerID(ctx, organizerID)
}

func (s *eventService) category(ctx context.Context, id string) (*domain.Category, error) {
	if id == "" {
		return nil, fmt.Errorf("category is required: %w", domain.ErrInvalidInput)
	}
	c, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("category %q does not exist: %w", id, domain.ErrInvalidInput)
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

// invalidate drops cached pages made stale by a write. Failures only cost freshness.
func (s *eventService) invalidate(ctx context.Context, paths ...string) {
	if s.pageCache == nil {
		return
	}
	seen := make(map[string]bool, len(paths))
	for _, p := range paths {
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		if err := s.pageCache.Invalidate(ctx, p); err != nil {
			s.logger.WarnContext(ctx, "invalidate page cache", "path", p, "err", err)
		}
	}
}

func (s *eventService) notifyOrganizer(ctx context.Context, email string, event *domain.Event) {
	if s.emailService == nil || email == "" {
		return
	}
	data := &domain.EventPublishedEmailData{
		Email:      email,
		EventTitle: event.Title,
		EventURL:   s.baseURL + "/events/" + event.ID,
		StartsAt:   event.StartDateTime.Format("Mon, 02 Jan 2006 15:04 MST"),
		Location:   event.Location,
	}
	if err := s.emailService.SendEventPublished(ctx, data); err != nil {
		s.logger.WarnContext(ctx, "send event published email", "event_id", event.ID, "err", err)
	}
}
