package domain

import "context"

// Category groups events. Names are unique in the store.
// swagger:model Category
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CategoryRepository defines storage for categories.
type CategoryRepository interface {
	List(ctx context.Context) ([]*Category, error)
	// Create inserts a category and returns ErrDuplicateCategory when the name is taken.
	Create(ctx context.Context, name string) (*Category, error)
	GetByID(ctx context.Context, id string) (*Category, error)
}

// CategoryService defines the business logic for categories.
type CategoryService interface {
	ListCategories(ctx context.Context) ([]*Category, error)
	CreateCategory(ctx context.Context, name string) (*Category, error)
}
