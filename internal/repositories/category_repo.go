package repositories

import (
	"context"

	"rukami/internal/models"
)

// CategoryRepository defines the interface for category data access.
type CategoryRepository interface {
	ListActiveWithCounts(ctx context.Context) ([]models.CategoryWithCount, error)
	GetByID(ctx context.Context, id uint) (*models.Category, error)
	GetBySlug(ctx context.Context, slug string) (*models.Category, error)
	Create(ctx context.Context, category *models.Category) error
	SetActive(ctx context.Context, slug string, active bool) error
}
