package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"evently/internal/domain"
)

type attendeeService struct {
	eventRepo        domain.EventRepository
	registrationRepo domain.EventRegistrationRepository
	pageCache        domain.PageCache
}

// NewAttendeeService creates an AttendeeService with the given repositories. pageCache may be nil.
func NewAttendeeService(
	eventRepo domain.EventRepository,
	registrationRepo domain.EventRegistrationRepository,
	pageCache domain.PageCache,
) domain.AttendeeService {
	return &attendeeService{
		eventRepo:        eventRepo,
		registrationRepo: registrationRepo,
		pageCache:        pageCache,
	}
}

func (s *attendeeService) RegisterForEvent(ctx context.Context, eventID, userID string) (*domain.EventRegistration, bool, error) {
	// Ensure the event exists.
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, false, domain.ErrNotFound
		}
		return nil, false, fmt.Errorf("get event: %w", err)
	}

	// Check if the user is already registered; make registration idempotent.
	if existing, err := s.registrationRepo.GetByEventAndUser(ctx, eventID, userID); err == nil {
		return existing, false, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, false, fmt.Errorf("get event registration: %w", err)
	}

	now := time.Now()
	reg := domain.NewEventRegistration(eventID, userID, now, now)
	if err := s.registrationRepo.Create(ctx, reg); err != nil {
		if errors.Is(err, domain.ErrAlreadyRegistered) {
			// lost a race with a concurrent request for the same user
			existing, getErr := s.registrationRepo.GetByEventAndUser(ctx, eventID, userID)
			if getErr != nil {
				return nil, false, fmt.Errorf("get event registration: %w", getErr)
			}
			return existing, false, nil
		}
		return nil, false, fmt.Errorf("create event registration: %w", err)
	}

	if s.pageCache != nil {
		_ = s.pageCache.Invalidate(ctx, "/profile")
		_ = s.pageCache.Invalidate(ctx, "/events/"+eventID)
	}
	return reg, true, nil
}

func (s *attendeeService) IsRegistered(ctx context.Context, eventID, userID string) (bool, error) {
	_, err := s.registrationRepo.GetByEventAndUser(ctx, eventID, userID)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	return false, fmt.Errorf("get event registration: %w", err)
}

func (s *attendeeService) CountRegistrations(ctx context.Context, eventID string) (int, error) {
	n, err := s.registrationRepo.CountByEventID(ctx, eventID)
	if err != nil {
		return 0, fmt.Errorf("count registrations: %w", err)
	}
	return n, nil
}

func (s *attendeeService) ListMyRegisteredEvents(ctx context.Context, userID string) ([]*domain.EventRegistrationWithEvent, error) {
	regs, err := s.registrationRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	if len(regs) == 0 {
		return []*domain.EventRegistrationWithEvent{}, nil
	}

	eventsByID := make(map[string]*domain.Event)
	var result []*domain.EventRegistrationWithEvent

	for _, reg := range regs {
		ev, ok := eventsByID[reg.EventID]
		if !ok {
			ev, err = s.eventRepo.GetByID(ctx, reg.EventID)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					// event deleted, registration left behind
					continue
				}
				return nil, fmt.Errorf("get event for registration: %w", err)
			}
			eventsByID[reg.EventID] = ev
		}
		result = append(result, &domain.EventRegistrationWithEvent{
			Registration: reg,
			Event:        ev,
		})
	}

	if result == nil {
		result = []*domain.EventRegistrationWithEvent{}
	}
	return result, nil
}
