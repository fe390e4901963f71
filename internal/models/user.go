package models

import "time"

// User is a marketplace account. Users are never hard-deleted.
type User struct {
	ID                   uint      `json:"id" gorm:"primaryKey"`
	Name                 string    `json:"name" gorm:"type:varchar(255);not null"`
	Email                string    `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	Phone                string    `json:"phone,omitempty" gorm:"type:varchar(20)"`
	Address              string    `json:"address,omitempty" gorm:"type:text"`
	PasswordHash         string    `json:"-" gorm:"type:varchar(255);not null"` // never serialized
	TelegramID           *int64    `json:"telegram_id,omitempty" gorm:"uniqueIndex"`
	NotificationsEnabled bool      `json:"notifications_enabled" gorm:"not null;default:true"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// PublicUser is the subset of a user visible to other users.
type PublicUser struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Public strips private fields from u.
func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Name: u.Name, CreatedAt: u.CreatedAt}
}
