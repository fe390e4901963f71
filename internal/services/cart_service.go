package services

import (
	"context"
	"fmt"

	"rukami/internal/models"
	"rukami/internal/repositories"

	"github.com/shopspring/decimal"
)

// CartService handles business logic related to the shopping cart.
type CartService struct {
	repo     repositories.CartRepository
	products repositories.ProductRepository
}

// NewCartService creates a new CartService.
func NewCartService(repo repositories.CartRepository, products repositories.ProductRepository) *CartService {
	return &CartService{repo: repo, products: products}
}

// Add puts quantity units of a product into the cart, accumulating with any existing line.
func (s *CartService) Add(ctx context.Context, userID, productID uint, quantity int) error {
	if quantity < 1 {
		return fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
	}
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return translate(err, fmt.Sprintf("product %d not found", productID))
	}
	if !product.InStock {
		return fmt.Errorf("%w: product %d is out of stock", ErrValidation, productID)
	}
	return s.repo.Add(ctx, userID, productID, quantity)
}

// Update sets the quantity of a cart line. Zero or less removes the line.
func (s *CartService) Update(ctx context.Context, userID, productID uint, quantity int) error {
	err := s.repo.SetQuantity(ctx, userID, productID, quantity)
	return translate(err, fmt.Sprintf("product %d is not in the cart", productID))
}

// Remove deletes a line from the cart.
func (s *CartService) Remove(ctx context.Context, userID, productID uint) error {
	return s.repo.Remove(ctx, userID, productID)
}

// Clear empties the cart.
func (s *CartService) Clear(ctx context.Context, userID uint) error {
	return s.repo.Clear(ctx, userID)
}

// Get returns the cart lines and their total.
func (s *CartService) Get(ctx context.Context, userID uint) (*models.Cart, error) {
	items, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.CartItem{}
	}

	total := decimal.Zero
	for i := range items {
		total = total.Add(items[i].LineTotal())
	}
	return &models.Cart{Items: items, Total: total}, nil
}
