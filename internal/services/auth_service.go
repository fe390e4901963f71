package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"rukami/internal/models"
	"rukami/internal/repositories"
	"rukami/internal/validation"
	"rukami/pkg/logger"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Password bounds. bcrypt only hashes the first 72 bytes and refuses longer input.
const (
	MinPasswordLength = 6
	MaxPasswordBytes  = 72
)

// ValidatePassword checks a new password against the length bounds.
// Passwords are used verbatim and never trimmed.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrValidation, MinPasswordLength)
	}
	if len(password) > MaxPasswordBytes {
		return fmt.Errorf("%w: password must be at most %d bytes", ErrValidation, MaxPasswordBytes)
	}
	return nil
}

var errInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrUnauthorized)

// RegisterInput carries the fields of a new account.
type RegisterInput struct {
	Name       string
	Email      string
	Password   string
	Phone      string
	Address    string
	TelegramID *int64
}

// AuthService handles business logic for authentication and authorization.
type AuthService struct {
	userRepo   repositories.UserRepository
	jwtSecret  []byte
	sessionTTL time.Duration
	now        func() time.Time
}

// NewAuthService creates a new AuthService issuing tokens valid for sessionTTL.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string, sessionTTL time.Duration) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtSecret:  []byte(jwtSecret),
		sessionTTL: sessionTTL,
		now:        time.Now,
	}
}

// Register creates a user with a hashed password.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)

	if len([]rune(in.Name)) < 2 {
		return nil, fmt.Errorf("%w: name must be at least 2 characters", ErrValidation)
	}
	if !validation.IsEmail(in.Email) {
		return nil, fmt.Errorf("%w: invalid email", ErrValidation)
	}
	if err := ValidatePassword(in.Password); err != nil {
		return nil, err
	}
	if in.Phone != "" && !validation.IsPhone(in.Phone) {
		return nil, fmt.Errorf("%w: invalid phone number", ErrValidation)
	}

	existing, err := s.userRepo.GetByEmail(ctx, in.Email)
	if err == nil && existing != nil {
		return nil, fmt.Errorf("%w: email '%s' already registered", ErrConflict, in.Email)
	}
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:                 in.Name,
		Email:                in.Email,
		Phone:                in.Phone,
		Address:              strings.TrimSpace(in.Address),
		PasswordHash:         string(hashedPassword),
		TelegramID:           in.TelegramID,
		NotificationsEnabled: true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, translate(err, "user already exists")
	}

	logger.Logger.Info().Uint("user_id", user.ID).Msg("User registered")
	return user, nil
}

// Authenticate checks credentials and issues a session token.
// Failures never reveal whether the email exists.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.verifyCredentials(ctx, email, password)
	if err != nil {
		return "", nil, err
	}

	token, err := s.issueToken(user.ID)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *AuthService) verifyCredentials(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, errInvalidCredentials
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, errInvalidCredentials
	}
	return user, nil
}

func (s *AuthService) issueToken(userID uint) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.StandardClaims{
		Subject:   strconv.FormatUint(uint64(userID), 10),
		Id:        uuid.NewString(),
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(s.sessionTTL).Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// ResolveSession returns the user a token was issued to.
func (s *AuthService) ResolveSession(ctx context.Context, tokenString string) (*models.User, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("%w: missing session", ErrUnauthorized)
	}

	claims := &jwt.StandardClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		logger.Logger.Debug().Err(err).Msg("Session token rejected")
		return nil, fmt.Errorf("%w: invalid session", ErrUnauthorized)
	}

	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid session", ErrUnauthorized)
	}

	user, err := s.userRepo.GetByID(ctx, uint(id))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid session", ErrUnauthorized)
		}
		return nil, err
	}
	return user, nil
}

// LinkExternalIdentity re-authenticates a user and attaches a Telegram account.
func (s *AuthService) LinkExternalIdentity(ctx context.Context, email, password string, telegramID int64) (*models.User, error) {
	user, err := s.verifyCredentials(ctx, email, password)
	if err != nil {
		return nil, err
	}

	if user.TelegramID != nil && *user.TelegramID == telegramID {
		return user, nil
	}

	owner, err := s.userRepo.GetByTelegramID(ctx, telegramID)
	if err == nil && owner.ID != user.ID {
		return nil, fmt.Errorf("%w: telegram account already linked to another user", ErrConflict)
	}
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	if err := s.userRepo.SetTelegramID(ctx, user.ID, telegramID); err != nil {
		return nil, translate(err, "telegram account already linked to another user")
	}
	user.TelegramID = &telegramID

	logger.Logger.Info().Uint("user_id", user.ID).Int64("telegram_id", telegramID).Msg("Telegram account linked")
	return user, nil
}

// GetByTelegramID returns the user linked to a Telegram account.
func (s *AuthService) GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	user, err := s.userRepo.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, translate(err, "user not found")
	}
	return user, nil
}

// EmailRegistered reports whether an account with email exists.
func (s *AuthService) EmailRegistered(ctx context.Context, email string) (bool, error) {
	_, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, repositories.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// GetUser returns a user by id.
func (s *AuthService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err, "user not found")
	}
	return user, nil
}

// ProfileInput carries editable profile fields.
type ProfileInput struct {
	Name    string
	Phone   string
	Address string
}

// UpdateProfile changes name, phone and address of a user.
func (s *AuthService) UpdateProfile(ctx context.Context, userID uint, in ProfileInput) (*models.User, error) {
	name := strings.TrimSpace(in.Name)
	phone := strings.TrimSpace(in.Phone)
	if len([]rune(name)) < 2 {
		return nil, fmt.Errorf("%w: name must be at least 2 characters", ErrValidation)
	}
	if phone != "" && !validation.IsPhone(phone) {
		return nil, fmt.Errorf("%w: invalid phone number", ErrValidation)
	}

	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Name = name
	user.Phone = phone
	user.Address = strings.TrimSpace(in.Address)

	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		return nil, translate(err, "user not found")
	}
	return user, nil
}

// ChangePassword replaces the password after checking the current one.
func (s *AuthService) ChangePassword(ctx context.Context, userID uint, current, next string) error {
	if err := ValidatePassword(next); err != nil {
		return err
	}

	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return fmt.Errorf("%w: current password is incorrect", ErrUnauthorized)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return translate(s.userRepo.UpdatePassword(ctx, userID, string(hashed)), "user not found")
}

// SetNotifications toggles new-product broadcasts for a Telegram user.
func (s *AuthService) SetNotifications(ctx context.Context, telegramID int64, enabled bool) error {
	return translate(s.userRepo.SetNotifications(ctx, telegramID, enabled), "user not found")
}
