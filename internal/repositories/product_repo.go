package repositories

import (
	"context"
	"time"

	"rukami/internal/models"
)

// ProductFilter narrows a product listing. Zero values mean "no filter".
type ProductFilter struct {
	CategoryID uint
	Search     string
	Limit      int
	Offset     int
}

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	List(ctx context.Context, filter ProductFilter) ([]models.Product, int64, error)
	GetByID(ctx context.Context, id uint) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	SetInStock(ctx context.Context, id uint, inStock bool) error
	SetImageURL(ctx context.Context, id uint, imageURL string) error
	ListByOwner(ctx context.Context, userID uint) ([]models.Product, error)
	CountByOwner(ctx context.Context, userID uint) (int64, error)
	NewProductsSince(ctx context.Context, since time.Time) ([]models.Product, error)
}
