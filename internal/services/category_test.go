package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"evently/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryService_CreateCategory(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		repo     func() *fakeCategoryRepo
		input    string
		wantName string
		wantErr  error
	}{
		{
			name:     "trims name",
			repo:     func() *fakeCategoryRepo { return newFakeCategoryRepo() },
			input:    "  Music  ",
			wantName: "Music",
		},
		{
			name:    "blank name",
			repo:    func() *fakeCategoryRepo { return newFakeCategoryRepo() },
			input:   "   ",
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "name too long",
			repo:    func() *fakeCategoryRepo { return newFakeCategoryRepo() },
			input:   strings.Repeat("x", maxCategoryNameLength+1),
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "duplicate",
			repo:    func() *fakeCategoryRepo { return newFakeCategoryRepo(tech) },
			input:   "Tech",
			wantErr: domain.ErrDuplicateCategory,
		},
		{
			name: "repo error",
			repo: func() *fakeCategoryRepo {
				r := newFakeCategoryRepo()
				r.createErr = errors.New("db error")
				return r
			},
			input:   "Music",
			wantErr: errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewCategoryService(tt.repo(), 5*time.Second)
			got, err := svc.CreateCategory(ctx, tt.input)
			if tt.wantErr != nil {
				require.Error(t, err)
				if errors.Is(tt.wantErr, domain.ErrInvalidInput) || errors.Is(tt.wantErr, domain.ErrDuplicateCategory) {
					assert.ErrorIs(t, err, tt.wantErr)
				}
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, got.Name)
			assert.NotEmpty(t, got.ID)
		})
	}
}

func TestCategoryService_ListCategories(t *testing.T) {
	ctx := context.Background()

	repo := newFakeCategoryRepo(tech, &domain.Category{ID: "cat-2", Name: "Music"})
	got, err := NewCategoryService(repo, time.Second).ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Music", got[0].Name)

	repo.listErr = errors.New("timeout")
	_, err = NewCategoryService(repo, time.Second).ListCategories(ctx)
	require.Error(t, err)
}
