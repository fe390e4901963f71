package repositories

import (
	"context"

	"rukami/internal/models"
)

// ReviewRepository defines the interface for review data access.
type ReviewRepository interface {
	Exists(ctx context.Context, userID, productID uint) (bool, error)
	Create(ctx context.Context, review *models.Review) error
	ListByProduct(ctx context.Context, productID uint) ([]models.ReviewView, error)
	CountByUser(ctx context.Context, userID uint) (int64, error)
}
