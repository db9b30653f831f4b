package postgres

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"evently/internal/domain"
)

func TestCategoryRepository_List(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		want    []*domain.Category
		wantErr bool
	}{
		{
			name: "ordered by name",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT id, name FROM categories ORDER BY name`).
					WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
						AddRow("cat-2", "Music").
						AddRow("cat-1", "Tech"))
			},
			want: []*domain.Category{{ID: "cat-2", Name: "Music"}, {ID: "cat-1", Name: "Tech"}},
		},
		{
			name: "no categories",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT id, name FROM categories`).
					WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))
			},
			want: nil,
		},
		{
			name: "db error",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT id, name FROM categories`).
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
			got, err := NewCategoryRepository(db).List(ctx)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCategoryRepository_Create(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		input   string
		mock    func(mock sqlmock.Sqlmock)
		want    *domain.Category
		wantErr error
	}{
		{
			name:  "success",
			input: "Music",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO categories \(name\) VALUES \(\$1\) RETURNING id`).
					WithArgs("Music").
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("cat-3"))
			},
			want: &domain.Category{ID: "cat-3", Name: "Music"},
		},
		{
			name:  "unique violation",
			input: "Music",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO categories`).
					WithArgs("Music").
					WillReturnError(&pq.Error{Code: "23505"})
			},
			wantErr: domain.ErrDuplicateCategory,
		},
		{
			name:  "db error",
			input: "Music",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO categories`).
					WithArgs("Music").
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
			got, err := NewCategoryRepository(db).Create(ctx, tt.input)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.Nil(t, got)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCategoryRepository_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT id, name FROM categories WHERE id = \$1`).
			WithArgs("cat-1").
			WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow("cat-1", "Tech"))
		got, err := NewCategoryRepository(db).GetByID(ctx, "cat-1")
		require.NoError(t, err)
		require.Equal(t, &domain.Category{ID: "cat-1", Name: "Tech"}, got)
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT id, name FROM categories WHERE id = \$1`).
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)
		_, err = NewCategoryRepository(db).GetByID(ctx, "missing")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}
