package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"rukami/internal/models"
	"rukami/internal/repositories"
)

// Review constraints.
const (
	MinRating        = 1
	MaxRating        = 5
	MinCommentLength = 10
	MaxCommentLength = 1000
)

// ReviewService handles business logic related to reviews.
type ReviewService struct {
	repo     repositories.ReviewRepository
	products repositories.ProductRepository
}

// NewReviewService creates a new ReviewService.
func NewReviewService(repo repositories.ReviewRepository, products repositories.ProductRepository) *ReviewService {
	return &ReviewService{repo: repo, products: products}
}

// Add stores a user's only review of a product.
func (s *ReviewService) Add(ctx context.Context, userID, productID uint, rating int, comment string) (*models.Review, error) {
	comment = strings.TrimSpace(comment)
	if rating < MinRating || rating > MaxRating {
		return nil, fmt.Errorf("%w: rating must be between %d and %d", ErrValidation, MinRating, MaxRating)
	}
	if n := utf8.RuneCountInString(comment); n < MinCommentLength || n > MaxCommentLength {
		return nil, fmt.Errorf("%w: comment must be %d-%d characters", ErrValidation, MinCommentLength, MaxCommentLength)
	}

	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return nil, translate(err, fmt.Sprintf("product %d not found", productID))
	}

	exists, err := s.repo.Exists(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: you have already reviewed this product", ErrConflict)
	}

	review := &models.Review{UserID: userID, ProductID: productID, Rating: rating, Comment: comment}
	if err := s.repo.Create(ctx, review); err != nil {
		return nil, translate(err, "you have already reviewed this product")
	}
	return review, nil
}

// List returns a product's reviews with the rounded average rating.
func (s *ReviewService) List(ctx context.Context, productID uint) (*models.ReviewSummary, error) {
	reviews, err := s.repo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if reviews == nil {
		reviews = []models.ReviewView{}
	}
	return &models.ReviewSummary{
		Reviews:       reviews,
		AverageRating: averageRating(reviews),
		TotalReviews:  len(reviews),
	}, nil
}

// averageRating is the mean rating rounded to one decimal, 0 for no reviews.
func averageRating(reviews []models.ReviewView) float64 {
	if len(reviews) == 0 {
		return 0
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	return math.Round(float64(sum)/float64(len(reviews))*10) / 10
}
