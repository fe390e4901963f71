package repositories

import (
	"context"

	"rukami/internal/models"
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error)
	UpdateProfile(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, id uint, passwordHash string) error
	SetTelegramID(ctx context.Context, id uint, telegramID int64) error
	SetNotifications(ctx context.Context, telegramID int64, enabled bool) error
	ListSubscribers(ctx context.Context) ([]models.User, error)
}
