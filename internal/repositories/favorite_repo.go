package repositories

import (
	"context"

	"rukami/internal/models"
)

// FavoriteRepository defines the interface for favorite data access.
type FavoriteRepository interface {
	Add(ctx context.Context, userID, productID uint) error
	Remove(ctx context.Context, userID, productID uint) error
	List(ctx context.Context, userID uint) ([]models.Favorite, error)
	Count(ctx context.Context, userID uint) (int64, error)
}
