package services

import (
	"context"
	"fmt"

	"rukami/internal/models"
	"rukami/internal/repositories"
)

// FavoriteService handles business logic related to favorites.
type FavoriteService struct {
	repo     repositories.FavoriteRepository
	products repositories.ProductRepository
}

// NewFavoriteService creates a new FavoriteService.
func NewFavoriteService(repo repositories.FavoriteRepository, products repositories.ProductRepository) *FavoriteService {
	return &FavoriteService{repo: repo, products: products}
}

// Add marks a product as favorite. Adding twice is a no-op.
func (s *FavoriteService) Add(ctx context.Context, userID, productID uint) error {
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return translate(err, fmt.Sprintf("product %d not found", productID))
	}
	return translate(s.repo.Add(ctx, userID, productID), "favorite already exists")
}

// Remove unmarks a product. Removing a missing favorite is a no-op.
func (s *FavoriteService) Remove(ctx context.Context, userID, productID uint) error {
	return s.repo.Remove(ctx, userID, productID)
}

// List returns the user's favorites, newest first.
func (s *FavoriteService) List(ctx context.Context, userID uint) ([]models.Favorite, error) {
	favorites, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	if favorites == nil {
		favorites = []models.Favorite{}
	}
	return favorites, nil
}
