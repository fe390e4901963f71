package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"rukami/internal/models"
	"rukami/internal/repositories"
	"rukami/pkg/logger"
	"rukami/pkg/rabbitmq"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Listing bounds.
const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

var allowedImageExt = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true}

// EventPublisher publishes product lifecycle events.
type EventPublisher interface {
	PublishProductEvent(ctx context.Context, ev rabbitmq.ProductEvent) error
}

// ProductListInput selects a page of products.
type ProductListInput struct {
	CategoryID   uint
	CategorySlug string
	Search       string
	Limit        int
	Offset       int
}

// ProductInput carries the editable fields of a product.
type ProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	CategoryID  uint
	Author      string
	ImageURL    string
	InStock     *bool
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo       repositories.ProductRepository
	categories repositories.CategoryRepository
	events     EventPublisher
	uploadDir  string
}

// NewProductService creates a new ProductService. events may be nil.
func NewProductService(repo repositories.ProductRepository, categories repositories.CategoryRepository, events EventPublisher, uploadDir string) *ProductService {
	return &ProductService{
		repo:       repo,
		categories: categories,
		events:     events,
		uploadDir:  uploadDir,
	}
}

// List returns a page of in-stock products.
func (s *ProductService) List(ctx context.Context, in ProductListInput) (*models.ProductPage, error) {
	limit, err := normalizeLimit(in.Limit)
	if err != nil {
		return nil, err
	}
	if in.Offset < 0 {
		return nil, fmt.Errorf("%w: offset must not be negative", ErrValidation)
	}

	filter := repositories.ProductFilter{
		CategoryID: in.CategoryID,
		Search:     in.Search,
		Limit:      limit,
		Offset:     in.Offset,
	}
	// category_id wins over a slug.
	if slug := strings.TrimSpace(in.CategorySlug); slug != "" && in.CategoryID == 0 {
		category, err := s.categories.GetBySlug(ctx, slug)
		if err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return nil, err
		}
		if err != nil || !category.IsActive {
			// Unknown slug: nothing matches.
			return &models.ProductPage{Products: []models.Product{}, Limit: limit, Offset: in.Offset}, nil
		}
		filter.CategoryID = category.ID
	}

	return s.page(ctx, filter)
}

// ListByCategory returns a page of one category's in-stock products.
func (s *ProductService) ListByCategory(ctx context.Context, categoryID uint, limit, offset int) (*models.ProductPage, error) {
	limit, err := normalizeLimit(limit)
	if err != nil {
		return nil, err
	}
	if offset < 0 {
		return nil, fmt.Errorf("%w: offset must not be negative", ErrValidation)
	}
	category, err := s.categories.GetByID(ctx, categoryID)
	if _, err := activeOnly(category, err, fmt.Sprintf("category %d not found", categoryID)); err != nil {
		return nil, err
	}
	return s.page(ctx, repositories.ProductFilter{CategoryID: categoryID, Limit: limit, Offset: offset})
}

func (s *ProductService) page(ctx context.Context, filter repositories.ProductFilter) (*models.ProductPage, error) {
	products, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []models.Product{}
	}
	return &models.ProductPage{Products: products, Total: total, Limit: filter.Limit, Offset: filter.Offset}, nil
}

func normalizeLimit(limit int) (int, error) {
	if limit == 0 {
		return DefaultPageLimit, nil
	}
	if limit < 1 || limit > MaxPageLimit {
		return 0, fmt.Errorf("%w: limit must be between 1 and %d", ErrValidation, MaxPageLimit)
	}
	return limit, nil
}

// Get returns a product by id.
func (s *ProductService) Get(ctx context.Context, id uint) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err, fmt.Sprintf("product %d not found", id))
	}
	return product, nil
}

func (s *ProductService) validate(ctx context.Context, in ProductInput) error {
	name := strings.TrimSpace(in.Name)
	if name == "" || len([]rune(name)) > 500 {
		return fmt.Errorf("%w: name must be 1-500 characters", ErrValidation)
	}
	if strings.TrimSpace(in.Description) == "" {
		return fmt.Errorf("%w: description is required", ErrValidation)
	}
	if !in.Price.IsPositive() {
		return fmt.Errorf("%w: price must be positive", ErrValidation)
	}
	if in.Price.GreaterThanOrEqual(decimal.NewFromInt(100000000)) {
		return fmt.Errorf("%w: price is too large", ErrValidation)
	}
	category, err := s.categories.GetByID(ctx, in.CategoryID)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return err
	}
	if err != nil || !category.IsActive {
		return fmt.Errorf("%w: category %d does not exist", ErrValidation, in.CategoryID)
	}
	return nil
}

// Create lists a new product owned by owner. Author defaults to the owner's name.
func (s *ProductService) Create(ctx context.Context, owner *models.User, in ProductInput) (*models.Product, error) {
	if err := s.validate(ctx, in); err != nil {
		return nil, err
	}

	author := strings.TrimSpace(in.Author)
	if author == "" {
		author = owner.Name
	}
	product := &models.Product{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Price:       in.Price.Round(2),
		CategoryID:  in.CategoryID,
		UserID:      owner.ID,
		Author:      author,
		ImageURL:    strings.TrimSpace(in.ImageURL),
		InStock:     true,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}

	logger.Logger.Info().Uint("product_id", product.ID).Uint("user_id", owner.ID).Msg("Product created")
	s.publish(ctx, rabbitmq.EventProductCreated, product)
	return s.Get(ctx, product.ID)
}

// ownedProduct loads a product and checks that userID owns it.
func (s *ProductService) ownedProduct(ctx context.Context, userID, productID uint) (*models.Product, error) {
	product, err := s.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.UserID != userID {
		return nil, fmt.Errorf("%w: product %d belongs to another user", ErrForbidden, productID)
	}
	return product, nil
}

// Update replaces the editable fields of an owned product.
func (s *ProductService) Update(ctx context.Context, userID, productID uint, in ProductInput) (*models.Product, error) {
	product, err := s.ownedProduct(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	if err := s.validate(ctx, in); err != nil {
		return nil, err
	}

	product.Name = strings.TrimSpace(in.Name)
	product.Description = strings.TrimSpace(in.Description)
	product.Price = in.Price.Round(2)
	product.CategoryID = in.CategoryID
	if author := strings.TrimSpace(in.Author); author != "" {
		product.Author = author
	}
	if in.ImageURL != "" {
		product.ImageURL = strings.TrimSpace(in.ImageURL)
	}
	if in.InStock != nil {
		product.InStock = *in.InStock
	}

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, translate(err, fmt.Sprintf("product %d not found", productID))
	}
	s.publish(ctx, rabbitmq.EventProductUpdated, product)
	return s.Get(ctx, productID)
}

// Delete withdraws an owned product from sale. The row is kept.
func (s *ProductService) Delete(ctx context.Context, userID, productID uint) error {
	product, err := s.ownedProduct(ctx, userID, productID)
	if err != nil {
		return err
	}
	if err := s.repo.SetInStock(ctx, productID, false); err != nil {
		return translate(err, fmt.Sprintf("product %d not found", productID))
	}
	product.InStock = false
	s.publish(ctx, rabbitmq.EventProductWithdrawn, product)
	return nil
}

// UploadImage stores an image for an owned product under the upload directory
// and points the product at it.
func (s *ProductService) UploadImage(ctx context.Context, userID, productID uint, filename string, r io.Reader) (*models.Product, error) {
	if _, err := s.ownedProduct(ctx, userID, productID); err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedImageExt[ext] {
		return nil, fmt.Errorf("%w: unsupported image type %q", ErrValidation, ext)
	}

	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	name := uuid.NewString() + ext
	f, err := os.Create(filepath.Join(s.uploadDir, name))
	if err != nil {
		return nil, fmt.Errorf("failed to create image file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write image file: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to write image file: %w", err)
	}

	if err := s.repo.SetImageURL(ctx, productID, "/uploads/"+name); err != nil {
		return nil, translate(err, fmt.Sprintf("product %d not found", productID))
	}
	return s.Get(ctx, productID)
}

// ListByOwner returns all products of a user, withdrawn ones included.
func (s *ProductService) ListByOwner(ctx context.Context, userID uint) ([]models.Product, error) {
	products, err := s.repo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []models.Product{}
	}
	return products, nil
}

func (s *ProductService) publish(ctx context.Context, eventType string, p *models.Product) {
	if s.events == nil {
		return
	}
	ev := rabbitmq.ProductEvent{
		Type:       eventType,
		ProductID:  p.ID,
		Name:       p.Name,
		CategoryID: p.CategoryID,
		UserID:     p.UserID,
	}
	if err := s.events.PublishProductEvent(ctx, ev); err != nil {
		logger.Logger.Warn().Err(err).Str("type", eventType).Uint("product_id", p.ID).Msg("Failed to publish product event")
	}
}
