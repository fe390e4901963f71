package repositories

import (
	"context"
	"strings"
	"time"

	"rukami/internal/models"

	"gorm.io/gorm"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

func (r *GORMProductRepository) filtered(ctx context.Context, filter ProductFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.Product{}).Where("products.in_stock = ?", true)
	if filter.CategoryID != 0 {
		q = q.Where("products.category_id = ?", filter.CategoryID)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		pattern := "%" + strings.ToLower(s) + "%"
		q = q.Where(
			"LOWER(products.name) LIKE ? OR LOWER(products.description) LIKE ? OR LOWER(products.author) LIKE ?",
			pattern, pattern, pattern,
		)
	}
	return q
}

// List returns one page of in-stock products, newest first, plus the total match count.
func (r *GORMProductRepository) List(ctx context.Context, filter ProductFilter) ([]models.Product, int64, error) {
	var total int64
	if err := r.filtered(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, wrap(err, "count products")
	}

	var products []models.Product
	q := r.filtered(ctx, filter).
		Preload("Category").
		Order("products.created_at DESC").
		Order("products.id DESC")
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}
	if err := q.Find(&products).Error; err != nil {
		return nil, 0, wrap(err, "list products")
	}
	return products, total, nil
}

// GetByID retrieves a single product with its category and owner.
func (r *GORMProductRepository) GetByID(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Owner").
		First(&product, id).Error
	if err != nil {
		return nil, wrap(err, "get product by ID %d", id)
	}
	return &product, nil
}

// Create creates a new product in the database.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	if !product.CreatedAt.IsZero() {
		product.CreatedAt = product.CreatedAt.UTC()
	}
	if err := r.db.WithContext(ctx).Omit("Category", "Owner").Create(product).Error; err != nil {
		return wrap(err, "create product")
	}
	return nil
}

// Update writes the editable product fields.
func (r *GORMProductRepository) Update(ctx context.Context, product *models.Product) error {
	res := r.db.WithContext(ctx).Model(product).
		Select("name", "description", "price", "category_id", "author", "image_url", "in_stock").
		Updates(product)
	if res.Error != nil {
		return wrap(res.Error, "update product %d", product.ID)
	}
	if res.RowsAffected == 0 {
		return wrap(gorm.ErrRecordNotFound, "update product %d", product.ID)
	}
	return nil
}

// SetInStock marks a product as available or withdrawn.
func (r *GORMProductRepository) SetInStock(ctx context.Context, id uint, inStock bool) error {
	return r.updateColumn(ctx, id, "in_stock", inStock)
}

// SetImageURL stores the public path of the product image.
func (r *GORMProductRepository) SetImageURL(ctx context.Context, id uint, imageURL string) error {
	return r.updateColumn(ctx, id, "image_url", imageURL)
}

func (r *GORMProductRepository) updateColumn(ctx context.Context, id uint, column string, value interface{}) error {
	res := r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Update(column, value)
	if res.Error != nil {
		return wrap(res.Error, "update %s for product %d", column, id)
	}
	if res.RowsAffected == 0 {
		return wrap(gorm.ErrRecordNotFound, "update %s for product %d", column, id)
	}
	return nil
}

// ListByOwner returns every product of a user, including withdrawn ones.
func (r *GORMProductRepository) ListByOwner(ctx context.Context, userID uint) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&products).Error
	if err != nil {
		return nil, wrap(err, "list products of user %d", userID)
	}
	return products, nil
}

// CountByOwner counts every product of a user.
func (r *GORMProductRepository) CountByOwner(ctx context.Context, userID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Product{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, wrap(err, "count products of user %d", userID)
	}
	return count, nil
}

// NewProductsSince returns in-stock products created strictly after since, oldest first.
func (r *GORMProductRepository) NewProductsSince(ctx context.Context, since time.Time) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Owner").
		Where("in_stock = ? AND created_at > ?", true, since.UTC()).
		Order("created_at ASC").
		Order("id ASC").
		Find(&products).Error
	if err != nil {
		return nil, wrap(err, "list products since %s", since.Format(time.RFC3339))
	}
	return products, nil
}
