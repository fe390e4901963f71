package repositories

import (
	"context"
	"time"

	"rukami/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMCartRepository is a GORM implementation of CartRepository.
type GORMCartRepository struct {
	db *gorm.DB
}

// NewGORMCartRepository creates a new instance of GORMCartRepository.
func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{db: db}
}

// Add inserts a cart line or adds quantity to the existing one.
func (r *GORMCartRepository) Add(ctx context.Context, userID, productID uint, quantity int) error {
	item := models.CartItem{UserID: userID, ProductID: productID, Quantity: quantity}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"quantity":   gorm.Expr("cart_items.quantity + excluded.quantity"),
				"updated_at": time.Now(),
			}),
		}).
		Create(&item).Error
	if err != nil {
		return wrap(err, "add product %d to cart of user %d", productID, userID)
	}
	return nil
}

// SetQuantity replaces the quantity of a line. A quantity of zero or less removes it.
func (r *GORMCartRepository) SetQuantity(ctx context.Context, userID, productID uint, quantity int) error {
	if quantity <= 0 {
		return r.Remove(ctx, userID, productID)
	}
	res := r.db.WithContext(ctx).Model(&models.CartItem{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Update("quantity", quantity)
	if res.Error != nil {
		return wrap(res.Error, "update cart line %d for user %d", productID, userID)
	}
	if res.RowsAffected == 0 {
		return wrap(gorm.ErrRecordNotFound, "update cart line %d for user %d", productID, userID)
	}
	return nil
}

// Remove deletes one line if present.
func (r *GORMCartRepository) Remove(ctx context.Context, userID, productID uint) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.CartItem{}).Error
	if err != nil {
		return wrap(err, "remove cart line %d for user %d", productID, userID)
	}
	return nil
}

// Clear empties the user's cart.
func (r *GORMCartRepository) Clear(ctx context.Context, userID uint) error {
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.CartItem{}).Error; err != nil {
		return wrap(err, "clear cart of user %d", userID)
	}
	return nil
}

// List returns the cart lines with product and category data.
func (r *GORMCartRepository) List(ctx context.Context, userID uint) ([]models.CartItem, error) {
	var items []models.CartItem
	err := r.db.WithContext(ctx).
		Preload("Product.Category").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&items).Error
	if err != nil {
		return nil, wrap(err, "list cart of user %d", userID)
	}
	return items, nil
}

// Count returns the number of cart lines of a user.
func (r *GORMCartRepository) Count(ctx context.Context, userID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.CartItem{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, wrap(err, "count cart lines of user %d", userID)
	}
	return count, nil
}
