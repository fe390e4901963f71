package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"rukami/internal/models"
	"rukami/internal/repositories"
	"rukami/pkg/logger"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// CategoryService handles business logic related to categories.
type CategoryService struct {
	repo repositories.CategoryRepository
}

// NewCategoryService creates a new CategoryService.
func NewCategoryService(repo repositories.CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

// List returns active categories with live product counts.
func (s *CategoryService) List(ctx context.Context) ([]models.CategoryWithCount, error) {
	categories, err := s.repo.ListActiveWithCounts(ctx)
	if err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []models.CategoryWithCount{}
	}
	return categories, nil
}

// Get returns an active category by id.
func (s *CategoryService) Get(ctx context.Context, id uint) (*models.Category, error) {
	category, err := s.repo.GetByID(ctx, id)
	return activeOnly(category, err, fmt.Sprintf("category %d not found", id))
}

// GetBySlug returns an active category by slug.
func (s *CategoryService) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	category, err := s.repo.GetBySlug(ctx, slug)
	return activeOnly(category, err, fmt.Sprintf("category %q not found", slug))
}

func activeOnly(category *models.Category, err error, what string) (*models.Category, error) {
	if err != nil {
		return nil, translate(err, what)
	}
	if !category.IsActive {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, what)
	}
	return category, nil
}

// CategoryInput carries the fields of a new category.
type CategoryInput struct {
	Name        string
	Slug        string
	Description string
	ImageURL    string
	SortOrder   int
}

// Create adds an active category. Used by the admin CLI.
func (s *CategoryService) Create(ctx context.Context, in CategoryInput) (*models.Category, error) {
	name := strings.TrimSpace(in.Name)
	slug := strings.ToLower(strings.TrimSpace(in.Slug))
	if name == "" || len(name) > 100 {
		return nil, fmt.Errorf("%w: category name must be 1-100 characters", ErrValidation)
	}
	if !slugPattern.MatchString(slug) || len(slug) > 100 {
		return nil, fmt.Errorf("%w: invalid slug %q", ErrValidation, in.Slug)
	}

	category := &models.Category{
		Name:        name,
		Slug:        slug,
		Description: strings.TrimSpace(in.Description),
		ImageURL:    strings.TrimSpace(in.ImageURL),
		IsActive:    true,
		SortOrder:   in.SortOrder,
	}
	if err := s.repo.Create(ctx, category); err != nil {
		return nil, translate(err, "category name or slug already exists")
	}

	logger.Logger.Info().Str("slug", slug).Msg("Category created")
	return category, nil
}

// SetActive enables or disables a category.
func (s *CategoryService) SetActive(ctx context.Context, slug string, active bool) error {
	if err := s.repo.SetActive(ctx, slug, active); err != nil {
		return translate(err, fmt.Sprintf("category %q not found", slug))
	}
	logger.Logger.Info().Str("slug", slug).Bool("active", active).Msg("Category state changed")
	return nil
}
