package services_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"rukami/internal/models"
	"rukami/internal/repositories"
	"rukami/internal/services"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCategoryService(t *testing.T) {
	ctx := context.Background()
	repo := new(MockCategoryRepository)
	service := services.NewCategoryService(repo)

	repo.On("GetByID", ctx, uint(1)).Return(&models.Category{ID: 1, IsActive: true}, nil).Once()
	repo.On("GetByID", ctx, uint(2)).Return(&models.Category{ID: 2, IsActive: false}, nil).Once()
	repo.On("GetBySlug", ctx, "missing").Return(nil, notFound).Once()

	_, err := service.Get(ctx, 1)
	assert.NoError(t, err)
	_, err = service.Get(ctx, 2)
	assert.ErrorIs(t, err, services.ErrNotFound)
	_, err = service.GetBySlug(ctx, "missing")
	assert.ErrorIs(t, err, services.ErrNotFound)

	_, err = service.Create(ctx, services.CategoryInput{Name: "Glass", Slug: "Not a slug"})
	assert.ErrorIs(t, err, services.ErrValidation)

	repo.On("Create", ctx, mock.MatchedBy(func(c *models.Category) bool {
		return c.Slug == "glass" && c.IsActive
	})).Return(nil).Once()
	created, err := service.Create(ctx, services.CategoryInput{Name: "Glass", Slug: "Glass"})
	require.NoError(t, err)
	assert.Equal(t, "glass", created.Slug)

	repo.AssertExpectations(t)
}

func TestFavoriteService(t *testing.T) {
	ctx := context.Background()
	favorites := new(MockFavoriteRepository)
	products := new(MockProductRepository)
	service := services.NewFavoriteService(favorites, products)

	products.On("GetByID", ctx, uint(404)).Return(nil, notFound).Once()
	assert.ErrorIs(t, service.Add(ctx, 1, 404), services.ErrNotFound)

	products.On("GetByID", ctx, uint(5)).Return(&models.Product{ID: 5}, nil).Twice()
	favorites.On("Add", ctx, uint(1), uint(5)).Return(nil).Twice()
	require.NoError(t, service.Add(ctx, 1, 5))
	require.NoError(t, service.Add(ctx, 1, 5))

	favorites.AssertNotCalled(t, "Add", ctx, uint(1), uint(404))
	favorites.AssertExpectations(t)
}

func TestCartService(t *testing.T) {
	ctx := context.Background()
	cart := new(MockCartRepository)
	products := new(MockProductRepository)
	service := services.NewCartService(cart, products)

	assert.ErrorIs(t, service.Add(ctx, 1, 5, 0), services.ErrValidation)

	products.On("GetByID", ctx, uint(5)).Return(&models.Product{ID: 5, InStock: true}, nil).Once()
	cart.On("Add", ctx, uint(1), uint(5), 2).Return(nil).Once()
	require.NoError(t, service.Add(ctx, 1, 5, 2))

	products.On("GetByID", ctx, uint(6)).Return(&models.Product{ID: 6, InStock: false}, nil).Once()
	assert.ErrorIs(t, service.Add(ctx, 1, 6, 1), services.ErrValidation)

	cart.On("SetQuantity", ctx, uint(1), uint(9), 3).Return(notFound).Once()
	assert.ErrorIs(t, service.Update(ctx, 1, 9, 3), services.ErrNotFound)

	cart.On("List", ctx, uint(1)).Return([]models.CartItem{
		{ProductID: 5, Quantity: 2, Product: &models.Product{Price: decimal.RequireFromString("3500.50")}},
		{ProductID: 7, Quantity: 3, Product: &models.Product{Price: decimal.RequireFromString("450")}},
	}, nil).Once()
	got, err := service.Get(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, got.Items, 2)
	assert.Equal(t, "8351", got.Total.String())

	cart.AssertExpectations(t)
}

func TestReviewService_Add(t *testing.T) {
	ctx := context.Background()
	reviews := new(MockReviewRepository)
	products := new(MockProductRepository)
	service := services.NewReviewService(reviews, products)
	comment := "Beautiful work, arrived well packed"

	for _, rating := range []int{0, 6} {
		_, err := service.Add(ctx, 1, 5, rating, comment)
		assert.ErrorIs(t, err, services.ErrValidation)
	}
	_, err := service.Add(ctx, 1, 5, 5, "too short")
	assert.ErrorIs(t, err, services.ErrValidation)
	_, err = service.Add(ctx, 1, 5, 5, strings.Repeat("ж", 1001))
	assert.ErrorIs(t, err, services.ErrValidation)

	products.On("GetByID", ctx, uint(5)).Return(&models.Product{ID: 5}, nil)
	reviews.On("Exists", ctx, uint(1), uint(5)).Return(false, nil).Once()
	reviews.On("Create", ctx, mock.AnythingOfType("*models.Review")).Return(nil).Once()
	review, err := service.Add(ctx, 1, 5, 5, comment)
	require.NoError(t, err)
	assert.Equal(t, 5, review.Rating)

	// Second review by the same user
	reviews.On("Exists", ctx, uint(1), uint(5)).Return(true, nil).Once()
	_, err = service.Add(ctx, 1, 5, 4, comment)
	assert.ErrorIs(t, err, services.ErrConflict)

	// A concurrent submit slips past Exists and hits the unique index.
	reviews.On("Exists", ctx, uint(1), uint(5)).Return(false, nil).Once()
	reviews.On("Create", ctx, mock.AnythingOfType("*models.Review")).
		Return(fmt.Errorf("create review: %w", repositories.ErrDuplicate)).Once()
	_, err = service.Add(ctx, 1, 5, 4, comment)
	assert.ErrorIs(t, err, services.ErrConflict)

	products.On("GetByID", ctx, uint(404)).Return(nil, notFound).Once()
	_, err = service.Add(ctx, 1, 404, 4, comment)
	assert.ErrorIs(t, err, services.ErrNotFound)

	reviews.AssertExpectations(t)
}

func TestReviewService_ListAverage(t *testing.T) {
	ctx := context.Background()
	reviews := new(MockReviewRepository)
	service := services.NewReviewService(reviews, new(MockProductRepository))

	reviews.On("ListByProduct", ctx, uint(5)).Return([]models.ReviewView{{Rating: 5}, {Rating: 4}, {Rating: 3}}, nil).Once()
	summary, err := service.List(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, 4.0, summary.AverageRating)
	assert.Equal(t, 3, summary.TotalReviews)

	reviews.On("ListByProduct", ctx, uint(6)).Return([]models.ReviewView{{Rating: 5}, {Rating: 4}, {Rating: 4}}, nil).Once()
	summary, err = service.List(ctx, 6)
	require.NoError(t, err)
	assert.Equal(t, 4.3, summary.AverageRating)

	reviews.On("ListByProduct", ctx, uint(7)).Return([]models.ReviewView(nil), nil).Once()
	summary, err = service.List(ctx, 7)
	require.NoError(t, err)
	assert.Zero(t, summary.AverageRating)
	assert.NotNil(t, summary.Reviews)
}

func TestProfileService_StatisticsDegrade(t *testing.T) {
	ctx := context.Background()
	products := new(MockProductRepository)
	favorites := new(MockFavoriteRepository)
	cart := new(MockCartRepository)
	reviews := new(MockReviewRepository)
	service := services.NewProfileService(products, favorites, cart, reviews)

	products.On("CountByOwner", ctx, uint(1)).Return(int64(3), nil)
	favorites.On("Count", ctx, uint(1)).Return(int64(0), assert.AnError)
	cart.On("Count", ctx, uint(1)).Return(int64(2), nil)
	reviews.On("CountByUser", ctx, uint(1)).Return(int64(1), nil)

	stats := service.Statistics(ctx, 1)
	assert.Equal(t, models.ProfileStatistics{Products: 3, Favorites: 0, CartItems: 2, Reviews: 1}, stats)
}
