package repositories

import (
	"context"

	"rukami/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMFavoriteRepository is a GORM implementation of FavoriteRepository.
type GORMFavoriteRepository struct {
	db *gorm.DB
}

// NewGORMFavoriteRepository creates a new instance of GORMFavoriteRepository.
func NewGORMFavoriteRepository(db *gorm.DB) *GORMFavoriteRepository {
	return &GORMFavoriteRepository{db: db}
}

// Add inserts the pair. An existing pair is left untouched.
func (r *GORMFavoriteRepository) Add(ctx context.Context, userID, productID uint) error {
	fav := models.Favorite{UserID: userID, ProductID: productID}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&fav).Error
	if err != nil {
		return wrap(err, "add favorite %d for user %d", productID, userID)
	}
	return nil
}

// Remove deletes the pair if present.
func (r *GORMFavoriteRepository) Remove(ctx context.Context, userID, productID uint) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.Favorite{}).Error
	if err != nil {
		return wrap(err, "remove favorite %d for user %d", productID, userID)
	}
	return nil
}

// List returns the user's favorites with current product and category data.
func (r *GORMFavoriteRepository) List(ctx context.Context, userID uint) ([]models.Favorite, error) {
	var favorites []models.Favorite
	err := r.db.WithContext(ctx).
		Preload("Product.Category").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&favorites).Error
	if err != nil {
		return nil, wrap(err, "list favorites for user %d", userID)
	}
	return favorites, nil
}

// Count returns the number of favorites of a user.
func (r *GORMFavoriteRepository) Count(ctx context.Context, userID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Favorite{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, wrap(err, "count favorites for user %d", userID)
	}
	return count, nil
}
