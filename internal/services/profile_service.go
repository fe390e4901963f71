package services

import (
	"context"

	"rukami/internal/models"
	"rukami/internal/repositories"
	"rukami/pkg/logger"
)

// ProfileService aggregates per-user activity.
type ProfileService struct {
	products  repositories.ProductRepository
	favorites repositories.FavoriteRepository
	cart      repositories.CartRepository
	reviews   repositories.ReviewRepository
}

// NewProfileService creates a new ProfileService.
func NewProfileService(
	products repositories.ProductRepository,
	favorites repositories.FavoriteRepository,
	cart repositories.CartRepository,
	reviews repositories.ReviewRepository,
) *ProfileService {
	return &ProfileService{products: products, favorites: favorites, cart: cart, reviews: reviews}
}

// Statistics counts the user's products, favorites, cart lines and reviews.
// A failing count is logged and reported as zero.
func (s *ProfileService) Statistics(ctx context.Context, userID uint) models.ProfileStatistics {
	count := func(name string, fn func(context.Context, uint) (int64, error)) int64 {
		n, err := fn(ctx, userID)
		if err != nil {
			logger.Logger.Error().Err(err).Str("counter", name).Uint("user_id", userID).Msg("Failed to compute statistics")
			return 0
		}
		return n
	}

	return models.ProfileStatistics{
		Products:  count("products", s.products.CountByOwner),
		Favorites: count("favorites", s.favorites.Count),
		CartItems: count("cart_items", s.cart.Count),
		Reviews:   count("reviews", s.reviews.CountByUser),
	}
}
