package repositories

import (
	"context"

	"rukami/internal/models"

	"gorm.io/gorm"
)

// GORMCategoryRepository is a GORM implementation of CategoryRepository.
type GORMCategoryRepository struct {
	db *gorm.DB
}

// NewGORMCategoryRepository creates a new instance of GORMCategoryRepository.
func NewGORMCategoryRepository(db *gorm.DB) *GORMCategoryRepository {
	return &GORMCategoryRepository{db: db}
}

// ListActiveWithCounts returns active categories with their in-stock product counts.
func (r *GORMCategoryRepository) ListActiveWithCounts(ctx context.Context) ([]models.CategoryWithCount, error) {
	var out []models.CategoryWithCount
	err := r.db.WithContext(ctx).
		Model(&models.Category{}).
		Select("categories.*, COUNT(products.id) AS products_count").
		Joins("LEFT JOIN products ON products.category_id = categories.id AND products.in_stock = ?", true).
		Where("categories.is_active = ?", true).
		Group("categories.id").
		Order("categories.sort_order, categories.name").
		Scan(&out).Error
	if err != nil {
		return nil, wrap(err, "list categories")
	}
	return out, nil
}

// GetByID retrieves a category by ID, active or not.
func (r *GORMCategoryRepository) GetByID(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, wrap(err, "get category by ID %d", id)
	}
	return &category, nil
}

// GetBySlug retrieves a category by slug, active or not.
func (r *GORMCategoryRepository) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&category).Error; err != nil {
		return nil, wrap(err, "get category by slug %s", slug)
	}
	return &category, nil
}

// Create inserts a new category.
func (r *GORMCategoryRepository) Create(ctx context.Context, category *models.Category) error {
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return wrap(err, "create category %s", category.Slug)
	}
	return nil
}

// SetActive enables or disables the category with the given slug.
func (r *GORMCategoryRepository) SetActive(ctx context.Context, slug string, active bool) error {
	res := r.db.WithContext(ctx).Model(&models.Category{}).Where("slug = ?", slug).Update("is_active", active)
	if res.Error != nil {
		return wrap(res.Error, "update category %s", slug)
	}
	if res.RowsAffected == 0 {
		return wrap(gorm.ErrRecordNotFound, "update category %s", slug)
	}
	return nil
}
