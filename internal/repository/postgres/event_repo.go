package postgres

import (
	"context"
	"database/sql"
	"errors"

	"evently/internal/domain"
)

const eventColumns = `
	e.id, e.title, e.description, e.location, e.image_url, e.start_date_time, e.end_date_time,
	e.category_id, c.name, e.price, e.is_free, e.url, e.organizer_id, e.created_at, e.updated_at`

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	var categoryName sql.NullString
	err := row.Scan(
		&e.ID, &e.Title, &e.Description, &e.Location, &e.ImageURL, &e.StartDateTime, &e.EndDateTime,
		&e.CategoryID, &categoryName, &e.Price, &e.IsFree, &e.URL, &e.OrganizerID, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if categoryName.Valid {
		e.Category = &domain.Category{ID: e.CategoryID, Name: categoryName.String}
	}
	return e, nil
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (title, description, location, image_url, start_date_time, end_date_time,
			category_id, price, is_free, url, organizer_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		e.Title, e.Description, e.Location, e.ImageURL, e.StartDateTime, e.EndDateTime,
		e.CategoryID, e.Price, e.IsFree, e.URL, e.OrganizerID, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT` + eventColumns + `
		FROM events e
		LEFT JOIN categories c ON c.id = e.category_id
		WHERE e.id = $1
	`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

// Update overwrites the editable fields of the event and refreshes e.UpdatedAt.
func (r *eventRepository) Update(ctx context.Context, e *domain.Event) error {
	query := `
		UPDATE events SET title = $2, description = $3, location = $4, image_url = $5,
			start_date_time = $6, end_date_time = $7, category_id = $8, price = $9, is_free = $10,
			url = $11, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.DB.QueryRowContext(ctx, query,
		e.ID, e.Title, e.Description, e.Location, e.ImageURL, e.StartDateTime, e.EndDateTime,
		e.CategoryID, e.Price, e.IsFree, e.URL,
	).Scan(&e.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}
	return nil
}

// List returns upcoming-first events for the home page and the total row count.
func (r *eventRepository) List(ctx context.Context, params domain.PaginationParams) ([]*domain.Event, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := `SELECT` + eventColumns + `
		FROM events e
		LEFT JOIN categories c ON c.id = e.category_id
		ORDER BY e.start_date_time ASC, e.id
		LIMIT $1 OFFSET $2
	`
	events, err := r.queryEvents(ctx, query, params.PageSize, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func (r *eventRepository) ListByOrganizerID(ctx context.Context, organizerID string) ([]*domain.Event, error) {
	query := `SELECT` + eventColumns + `
		FROM events e
		LEFT JOIN categories c ON c.id = e.category_id
		WHERE e.organizer_id = $1
		ORDER BY e.created_at DESC
	`
	return r.queryEvents(ctx, query, organizerID)
}

func (r *eventRepository) queryEvents(ctx context.Context, query string, args ...any) ([]*domain.Event, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
