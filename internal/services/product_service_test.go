package services_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"rukami/internal/models"
	"rukami/internal/repositories"
	"rukami/internal/services"
	"rukami/pkg/rabbitmq"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newProductService(t *testing.T) (*services.ProductService, *MockProductRepository, *MockCategoryRepository, *MockPublisher) {
	t.Helper()
	products := new(MockProductRepository)
	categories := new(MockCategoryRepository)
	events := new(MockPublisher)
	return services.NewProductService(products, categories, events, t.TempDir()), products, categories, events
}

func TestProductService_ListDefaults(t *testing.T) {
	ctx := context.Background()
	service, products, _, _ := newProductService(t)

	expected := []models.Product{{ID: 2, Name: "Vase"}, {ID: 1, Name: "Plate"}}
	products.On("List", ctx, repositories.ProductFilter{Limit: 20}).Return(expected, int64(2), nil).Once()

	page, err := service.List(ctx, services.ProductListInput{})
	require.NoError(t, err)
	assert.Equal(t, expected, page.Products)
	assert.Equal(t, int64(2), page.Total)
	assert.Equal(t, 20, page.Limit)
	products.AssertExpectations(t)
}

func TestProductService_ListRejectsBadPaging(t *testing.T) {
	service, _, _, _ := newProductService(t)
	for _, in := range []services.ProductListInput{{Limit: -1}, {Limit: 101}, {Limit: 10, Offset: -5}} {
		_, err := service.List(context.Background(), in)
		assert.ErrorIs(t, err, services.ErrValidation)
	}
}

func TestProductService_ListBySlug(t *testing.T) {
	ctx := context.Background()
	service, products, categories, _ := newProductService(t)

	categories.On("GetBySlug", ctx, "ceramics").Return(&models.Category{ID: 3, IsActive: true}, nil).Once()
	products.On("List", ctx, repositories.ProductFilter{CategoryID: 3, Search: "vase", Limit: 5}).
		Return([]models.Product{{ID: 9}}, int64(1), nil).Once()

	page, err := service.List(ctx, services.ProductListInput{CategorySlug: "ceramics", Search: "vase", Limit: 5})
	require.NoError(t, err)
	assert.Len(t, page.Products, 1)

	// Unknown slug yields an empty page without querying products
	categories.On("GetBySlug", ctx, "nope").Return(nil, notFound).Once()
	page, err = service.List(ctx, services.ProductListInput{CategorySlug: "nope"})
	require.NoError(t, err)
	assert.Empty(t, page.Products)
	assert.Zero(t, page.Total)

	products.AssertExpectations(t)
	categories.AssertExpectations(t)
}

func TestProductService_ListCategoryIDOverridesSlug(t *testing.T) {
	ctx := context.Background()
	service, products, categories, _ := newProductService(t)

	products.On("List", ctx, repositories.ProductFilter{CategoryID: 2, Limit: services.DefaultPageLimit}).
		Return([]models.Product{{ID: 4}}, int64(1), nil).Once()

	page, err := service.List(ctx, services.ProductListInput{CategoryID: 2, CategorySlug: "ceramics"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)

	products.AssertExpectations(t)
	categories.AssertNotCalled(t, "GetBySlug", mock.Anything, mock.Anything)
}

func TestProductService_ListByCategoryUnknown(t *testing.T) {
	ctx := context.Background()
	service, _, categories, _ := newProductService(t)

	categories.On("GetByID", ctx, uint(404)).Return(nil, notFound).Once()
	_, err := service.ListByCategory(ctx, 404, 0, 0)
	assert.ErrorIs(t, err, services.ErrNotFound)

	categories.On("GetByID", ctx, uint(5)).Return(&models.Category{ID: 5, IsActive: false}, nil).Once()
	_, err = service.ListByCategory(ctx, 5, 0, 0)
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestProductService_Create(t *testing.T) {
	ctx := context.Background()
	service, products, categories, events := newProductService(t)
	owner := &models.User{ID: 7, Name: "Maria"}
	in := services.ProductInput{Name: "Vase", Description: "Blue glaze", Price: decimal.RequireFromString("3500.456"), CategoryID: 3}

	categories.On("GetByID", ctx, uint(3)).Return(&models.Category{ID: 3, IsActive: true}, nil)
	products.On("Create", ctx, mock.MatchedBy(func(p *models.Product) bool {
		return p.UserID == 7 && p.Author == "Maria" && p.InStock && p.Price.String() == "3500.46"
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Product).ID = 11
	}).Return(nil).Once()
	products.On("GetByID", ctx, uint(11)).Return(&models.Product{ID: 11, UserID: 7, Name: "Vase"}, nil).Once()
	events.On("PublishProductEvent", ctx, mock.MatchedBy(func(ev rabbitmq.ProductEvent) bool {
		return ev.Type == rabbitmq.EventProductCreated && ev.ProductID == 11
	})).Return(nil).Once()

	product, err := service.Create(ctx, owner, in)
	require.NoError(t, err)
	assert.Equal(t, uint(11), product.ID)

	products.AssertExpectations(t)
	events.AssertExpectations(t)
}

func TestProductService_CreateValidation(t *testing.T) {
	ctx := context.Background()
	service, _, categories, _ := newProductService(t)
	owner := &models.User{ID: 7, Name: "Maria"}

	categories.On("GetByID", ctx, uint(404)).Return(nil, notFound)
	categories.On("GetByID", ctx, uint(3)).Return(&models.Category{ID: 3, IsActive: true}, nil)

	cases := map[string]services.ProductInput{
		"unknown category": {Name: "Vase", Description: "d", Price: decimal.NewFromInt(10), CategoryID: 404},
		"zero price":       {Name: "Vase", Description: "d", Price: decimal.Zero, CategoryID: 3},
		"empty name":       {Name: " ", Description: "d", Price: decimal.NewFromInt(10), CategoryID: 3},
		"long name":        {Name: strings.Repeat("x", 501), Description: "d", Price: decimal.NewFromInt(10), CategoryID: 3},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := service.Create(ctx, owner, in)
			assert.ErrorIs(t, err, services.ErrValidation)
		})
	}
}

func TestProductService_NonOwnerIsForbidden(t *testing.T) {
	ctx := context.Background()
	service, products, _, _ := newProductService(t)
	products.On("GetByID", ctx, uint(11)).Return(&models.Product{ID: 11, UserID: 7}, nil)

	in := services.ProductInput{Name: "Mine now", Description: "d", Price: decimal.NewFromInt(1), CategoryID: 3}
	_, err := service.Update(ctx, 8, 11, in)
	assert.ErrorIs(t, err, services.ErrForbidden)

	assert.ErrorIs(t, service.Delete(ctx, 8, 11), services.ErrForbidden)

	_, err = service.UploadImage(ctx, 8, 11, "x.png", strings.NewReader("png"))
	assert.ErrorIs(t, err, services.ErrForbidden)

	products.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	products.AssertNotCalled(t, "SetInStock", mock.Anything, mock.Anything, mock.Anything)
}

func TestProductService_DeleteWithdraws(t *testing.T) {
	ctx := context.Background()
	service, products, _, events := newProductService(t)

	products.On("GetByID", ctx, uint(11)).Return(&models.Product{ID: 11, UserID: 7, InStock: true}, nil).Once()
	products.On("SetInStock", ctx, uint(11), false).Return(nil).Once()
	events.On("PublishProductEvent", ctx, mock.MatchedBy(func(ev rabbitmq.ProductEvent) bool {
		return ev.Type == rabbitmq.EventProductWithdrawn
	})).Return(assert.AnError).Once()

	// A broker failure does not fail the delete
	require.NoError(t, service.Delete(ctx, 7, 11))

	products.On("GetByID", ctx, uint(12)).Return(nil, notFound).Once()
	assert.ErrorIs(t, service.Delete(ctx, 7, 12), services.ErrNotFound)

	products.AssertExpectations(t)
	events.AssertExpectations(t)
}

func TestProductService_UploadImage(t *testing.T) {
	ctx := context.Background()
	products := new(MockProductRepository)
	dir := t.TempDir()
	service := services.NewProductService(products, new(MockCategoryRepository), nil, dir)

	products.On("GetByID", ctx, uint(11)).Return(&models.Product{ID: 11, UserID: 7}, nil)
	_, err := service.UploadImage(ctx, 7, 11, "notes.txt", strings.NewReader("hello"))
	assert.ErrorIs(t, err, services.ErrValidation)

	var stored string
	products.On("SetImageURL", ctx, uint(11), mock.AnythingOfType("string")).Run(func(args mock.Arguments) {
		stored = args.String(2)
	}).Return(nil).Once()

	_, err = service.UploadImage(ctx, 7, 11, "Photo.PNG", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(stored, "/uploads/"))
	assert.True(t, strings.HasSuffix(stored, ".png"))

	data, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(stored, "/uploads/")))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
}
