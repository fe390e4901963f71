package models

import "time"

// Favorite marks a product as liked by a user. One row per pair.
type Favorite struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;index:idx_favorites_user;uniqueIndex:idx_favorites_user_product"`
	ProductID uint      `json:"product_id" gorm:"not null;uniqueIndex:idx_favorites_user_product"`
	Product   *Product  `json:"product,omitempty" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	User      *User     `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `json:"created_at"`
}
