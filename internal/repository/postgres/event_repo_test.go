package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"evently/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

var eventRowColumns = []string{
	"id", "title", "description", "location", "image_url", "start_date_time", "end_date_time",
	"category_id", "name", "price", "is_free", "url", "organizer_id", "created_at", "updated_at",
}

var (
	evStart   = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	evEnd     = time.Date(2026, 5, 1, 11, 0, 0, 0, time.UTC)
	evCreated = time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
)

func eventRow(rows *sqlmock.Rows, id, categoryName any) *sqlmock.Rows {
	return rows.AddRow(id, "Conf", "A talk", "Hall A", "", evStart, evEnd,
		"cat-1", categoryName, "10", false, "", "user-1", evCreated, evCreated)
}

func TestEventRepository_Create(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		event   *domain.Event
		mock    func(mock sqlmock.Sqlmock)
		wantID  string
		wantErr bool
	}{
		{
			name: "success",
			event: &domain.Event{
				Title:         "Conf",
				Description:   "A talk",
				Location:      "Hall A",
				StartDateTime: evStart,
				EndDateTime:   evEnd,
				CategoryID:    "cat-1",
				Price:         "10",
				OrganizerID:   "user-1",
				CreatedAt:     evCreated,
				UpdatedAt:     evCreated,
			},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO events \(title, description, location, image_url`).
					WithArgs("Conf", "A talk", "Hall A", "", evStart, evEnd, "cat-1", "10", false, "", "user-1", evCreated, evCreated).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("ev-uuid-1"))
			},
			wantID:  "ev-uuid-1",
			wantErr: false,
		},
		{
			name:  "db error",
			event: &domain.Event{Title: "Conf"},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO events`).
					WillReturnError(sql.ErrConnDone)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewEventRepository(db)
			err = repo.Create(ctx, tt.event)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantID, tt.event.ID)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEventRepository_GetByID(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		id      string
		mock    func(mock sqlmock.Sqlmock)
		want    *domain.Event
		wantErr error
	}{
		{
			name: "success with category",
			id:   "ev-1",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`LEFT JOIN categories c ON c.id = e.category_id\s+WHERE e.id = \$1`).
					WithArgs("ev-1").
					WillReturnRows(eventRow(sqlmock.NewRows(eventRowColumns), "ev-1", "Tech"))
			},
			want: &domain.Event{
				ID:            "ev-1",
				Title:         "Conf",
				Description:   "A talk",
				Location:      "Hall A",
				StartDateTime: evStart,
				EndDateTime:   evEnd,
				CategoryID:    "cat-1",
				Category:      &domain.Category{ID: "cat-1", Name: "Tech"},
				Price:         "10",
				OrganizerID:   "user-1",
				CreatedAt:     evCreated,
				UpdatedAt:     evCreated,
			},
		},
		{
			name: "category row missing",
			id:   "ev-2",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT`).
					WithArgs("ev-2").
					WillReturnRows(eventRow(sqlmock.NewRows(eventRowColumns), "ev-2", nil))
			},
			want: &domain.Event{
				ID:            "ev-2",
				Title:         "Conf",
				Description:   "A talk",
				Location:      "Hall A",
				StartDateTime: evStart,
				EndDateTime:   evEnd,
				CategoryID:    "cat-1",
				Price:         "10",
				OrganizerID:   "user-1",
				CreatedAt:     evCreated,
				UpdatedAt:     evCreated,
			},
		},
		{
			name: "not found",
			id:   "ev-missing",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT`).
					WithArgs("ev-missing").
					WillReturnError(sql.ErrNoRows)
			},
			wantErr: domain.ErrNotFound,
		},
		{
			name: "db error",
			id:   "ev-1",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT`).
					WithArgs("ev-1").
					WillReturnError(sql.ErrConnDone)
			},
			wantErr: sql.ErrConnDone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewEventRepository(db)
			got, err := repo.GetByID(ctx, tt.id)
			if tt.wantErr != nil {
				require.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				require.Nil(t, got)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEventRepository_Update(t *testing.T) {
	ctx := context.Background()
	updatedAt := time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC)

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		e := &domain.Event{
			ID: "ev-1", Title: "Conf", Description: "A talk", Location: "Hall A",
			StartDateTime: evStart, EndDateTime: evEnd, CategoryID: "cat-1", IsFree: true,
		}
		mock.ExpectQuery(`UPDATE events SET title = \$2`).
			WithArgs("ev-1", "Conf", "A talk", "Hall A", "", evStart, evEnd, "cat-1", "", true, "").
			WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(updatedAt))

		require.NoError(t, NewEventRepository(db).Update(ctx, e))
		require.Equal(t, updatedAt, e.UpdatedAt)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`UPDATE events`).WillReturnError(sql.ErrNoRows)
		err = NewEventRepository(db).Update(ctx, &domain.Event{ID: "ev-x"})
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestEventRepository_List(t *testing.T) {
	ctx := context.Background()

	t.Run("page with total", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM events`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
		rows := sqlmock.NewRows(eventRowColumns)
		eventRow(rows, "ev-3", "Tech")
		mock.ExpectQuery(`ORDER BY e.start_date_time ASC, e.id\s+LIMIT \$1 OFFSET \$2`).
			WithArgs(2, 2).
			WillReturnRows(rows)

		events, total, err := NewEventRepository(db).List(ctx, domain.PaginationParams{Page: 2, PageSize: 2})
		require.NoError(t, err)
		require.Equal(t, 3, total)
		require.Len(t, events, 1)
		require.Equal(t, "ev-3", events[0].ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("count error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT COUNT`).WillReturnError(sql.ErrConnDone)
		_, _, err = NewEventRepository(db).List(ctx, domain.PaginationParams{Page: 1, PageSize: 20})
		require.Error(t, err)
	})
}

func TestEventRepository_ListByOrganizerID(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		rows    func() *sqlmock.Rows
		wantIDs []string
	}{
		{
			name: "two events",
			rows: func() *sqlmock.Rows {
				rows := sqlmock.NewRows(eventRowColumns)
				eventRow(rows, "ev-2", "Tech")
				eventRow(rows, "ev-1", nil)
				return rows
			},
			wantIDs: []string{"ev-2", "ev-1"},
		},
		{
			name:    "empty list",
			rows:    func() *sqlmock.Rows { return sqlmock.NewRows(eventRowColumns) },
			wantIDs: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			mock.ExpectQuery(`WHERE e.organizer_id = \$1`).
				WithArgs("user-1").
				WillReturnRows(tt.rows())

			events, err := NewEventRepository(db).ListByOrganizerID(ctx, "user-1")
			require.NoError(t, err)
			ids := make([]string, 0, len(events))
			for _, e := range events {
				ids = append(ids, e.ID)
			}
			require.Equal(t, tt.wantIDs, ids)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
