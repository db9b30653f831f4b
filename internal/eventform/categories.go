package eventform

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"evently/internal/domain"
	"evently/internal/widget"
)

// Categories returns the session copy of the category list.
func (c *Controller) Categories() []*domain.Category {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.categories)
}

// CreateCategory creates a category by name and appends the stored record to the
// list once the store confirms it. Failures come back as categoryId field errors.
func (c *Controller) CreateCategory(ctx context.Context, name string) (*domain.Category, []string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, c.failCategory("category name is required")
	}

	cat, err := c.deps.Categories.CreateCategory(ctx, name)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateCategory) {
			return nil, c.failCategory(fmt.Sprintf("category %q already exists", name))
		}
		c.deps.Errors.HandleError(ctx, fmt.Errorf("create category %q: %w", name, err))
		return nil, c.failCategory("could not create category, please try again")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.categoryError = ""
	exists := slices.ContainsFunc(c.categories, func(existing *domain.Category) bool {
		return existing.ID == cat.ID
	})
	if !exists {
		c.categories = append(c.categories, cat)
	}
	return cat, nil
}

// SelectCategory sets the category field to the given category ID.
func (c *Controller) SelectCategory(id string) []string {
	return c.SetField(FieldCategoryID, id)
}

// OpenCategoryDialog shows the "new category" dialog.
func (c *Controller) OpenCategoryDialog() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.categoryDialog.Open()
}

// ChangeCategoryInput forwards the dialog text input.
func (c *Controller) ChangeCategoryInput(value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.categoryDialog.Change(value)
}

// CancelCategoryDialog closes the dialog without creating anything.
func (c *Controller) CancelCategoryDialog() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.categoryDialog.Cancel()
}

// ApplyCategoryDialog closes the dialog and creates a category from its input.
func (c *Controller) ApplyCategoryDialog(ctx context.Context) (*domain.Category, []string) {
	c.mu.Lock()
	name, err := c.categoryDialog.Apply()
	c.mu.Unlock()
	if err != nil {
		return nil, []string{err.Error()}
	}
	return c.CreateCategory(ctx, name)
}

// CategoryDialog returns the dialog state.
func (c *Controller) CategoryDialog() widget.Dialog {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.categoryDialog
}

// CategoryDropdown returns the view model of the category select.
func (c *Controller) CategoryDropdown() widget.Dropdown {
	c.mu.Lock()
	defer c.mu.Unlock()
	errMsg := c.categoryError
	if errMsg == "" {
		errMsg = c.fieldErrors.First(FieldCategoryID)
	}
	return widget.NewCategoryDropdown(FieldCategoryID, c.draft.CategoryID, c.categories, c.categoryDialog, errMsg)
}

func (c *Controller) failCategory(msg string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.categoryError = msg
	return []string{msg}
}
