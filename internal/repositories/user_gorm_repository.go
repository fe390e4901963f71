package repositories

import (
	"context"

	"rukami/internal/models"

	"gorm.io/gorm"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// Create creates a new user in the database.
func (r *GORMUserRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return wrap(err, "create user")
	}
	return nil
}

// GetByID retrieves a user by their ID.
func (r *GORMUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, wrap(err, "get user by ID %d", id)
	}
	return &user, nil
}

// GetByEmail retrieves a user by their email.
func (r *GORMUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, wrap(err, "get user by email %s", email)
	}
	return &user, nil
}

// GetByTelegramID retrieves the user linked to a Telegram account.
func (r *GORMUserRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("telegram_id = ?", telegramID).First(&user).Error; err != nil {
		return nil, wrap(err, "get user by telegram ID %d", telegramID)
	}
	return &user, nil
}

// UpdateProfile writes name, phone and address.
func (r *GORMUserRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	res := r.db.WithContext(ctx).Model(user).
		Select("name", "phone", "address").
		Updates(user)
	if res.Error != nil {
		return wrap(res.Error, "update user %d", user.ID)
	}
	if res.RowsAffected == 0 {
		return wrap(gorm.ErrRecordNotFound, "update user %d", user.ID)
	}
	return nil
}

// UpdatePassword replaces the stored password digest.
func (r *GORMUserRepository) UpdatePassword(ctx context.Context, id uint, passwordHash string) error {
	return r.updateColumn(ctx, "id = ?", id, "password_hash", passwordHash)
}

// SetTelegramID links a Telegram account to the user.
func (r *GORMUserRepository) SetTelegramID(ctx context.Context, id uint, telegramID int64) error {
	return r.updateColumn(ctx, "id = ?", id, "telegram_id", telegramID)
}

// SetNotifications toggles broadcasts for the user linked to telegramID.
func (r *GORMUserRepository) SetNotifications(ctx context.Context, telegramID int64, enabled bool) error {
	return r.updateColumn(ctx, "telegram_id = ?", telegramID, "notifications_enabled", enabled)
}

func (r *GORMUserRepository) updateColumn(ctx context.Context, where string, key interface{}, column string, value interface{}) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where(where, key).Update(column, value)
	if res.Error != nil {
		return wrap(res.Error, "update %s for user %v", column, key)
	}
	if res.RowsAffected == 0 {
		return wrap(gorm.ErrRecordNotFound, "update %s for user %v", column, key)
	}
	return nil
}

// ListSubscribers returns users with a linked Telegram account and notifications on.
func (r *GORMUserRepository) ListSubscribers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Where("telegram_id IS NOT NULL AND notifications_enabled = ?", true).
		Order("id").
		Find(&users).Error
	if err != nil {
		return nil, wrap(err, "list subscribers")
	}
	return users, nil
}
