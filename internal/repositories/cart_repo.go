package repositories

import (
	"context"

	"rukami/internal/models"
)

// CartRepository defines the interface for cart data access.
type CartRepository interface {
	Add(ctx context.Context, userID, productID uint, quantity int) error
	SetQuantity(ctx context.Context, userID, productID uint, quantity int) error
	Remove(ctx context.Context, userID, productID uint) error
	Clear(ctx context.Context, userID uint) error
	List(ctx context.Context, userID uint) ([]models.CartItem, error)
	Count(ctx context.Context, userID uint) (int64, error)
}
