package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a handmade item listed by a user.
// Deleting a product clears InStock; rows are never removed.
type Product struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	Name        string          `json:"name" gorm:"type:varchar(500);not null"`
	Description string          `json:"description" gorm:"type:text;not null"`
	Price       decimal.Decimal `json:"price" gorm:"type:numeric(10,2);not null"`
	CategoryID  uint            `json:"category_id" gorm:"not null;index:idx_products_category"`
	Category    *Category       `json:"category,omitempty" gorm:"foreignKey:CategoryID;constraint:OnDelete:RESTRICT"`
	UserID      uint            `json:"user_id" gorm:"not null;index"`
	Owner       *User           `json:"-" gorm:"foreignKey:UserID"`
	Author      string          `json:"author" gorm:"type:varchar(255);not null"`
	ImageURL    string          `json:"image_url" gorm:"type:varchar(500)"`
	InStock     bool            `json:"in_stock" gorm:"not null;default:true"`
	CreatedAt   time.Time       `json:"created_at" gorm:"index"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// CategoryName returns the preloaded category name, or "".
func (p *Product) CategoryName() string {
	if p.Category == nil {
		return ""
	}
	return p.Category.Name
}

// SellerName prefers the preloaded owner's name over the author field.
func (p *Product) SellerName() string {
	if p.Owner != nil && p.Owner.Name != "" {
		return p.Owner.Name
	}
	return p.Author
}
