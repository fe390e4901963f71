package repositories

import (
	"context"

	"rukami/internal/models"

	"gorm.io/gorm"
)

// GORMReviewRepository is a GORM implementation of ReviewRepository.
type GORMReviewRepository struct {
	db *gorm.DB
}

// NewGORMReviewRepository creates a new instance of GORMReviewRepository.
func NewGORMReviewRepository(db *gorm.DB) *GORMReviewRepository {
	return &GORMReviewRepository{db: db}
}

// Exists reports whether the user already reviewed the product.
func (r *GORMReviewRepository) Exists(ctx context.Context, userID, productID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Review{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&count).Error
	if err != nil {
		return false, wrap(err, "check review of product %d by user %d", productID, userID)
	}
	return count > 0, nil
}

// Create inserts a review.
func (r *GORMReviewRepository) Create(ctx context.Context, review *models.Review) error {
	if err := r.db.WithContext(ctx).Omit("User", "Product").Create(review).Error; err != nil {
		return wrap(err, "create review")
	}
	return nil
}

// ListByProduct returns the product's reviews with author names, newest first.
func (r *GORMReviewRepository) ListByProduct(ctx context.Context, productID uint) ([]models.ReviewView, error) {
	var reviews []models.ReviewView
	err := r.db.WithContext(ctx).
		Table("reviews").
		Select("reviews.id, reviews.rating, reviews.comment, reviews.created_at, users.name AS user_name").
		Joins("JOIN users ON users.id = reviews.user_id").
		Where("reviews.product_id = ?", productID).
		Order("reviews.created_at DESC").
		Order("reviews.id DESC").
		Scan(&reviews).Error
	if err != nil {
		return nil, wrap(err, "list reviews of product %d", productID)
	}
	return reviews, nil
}

// CountByUser returns the number of reviews written by a user.
func (r *GORMReviewRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Review{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, wrap(err, "count reviews of user %d", userID)
	}
	return count, nil
}
