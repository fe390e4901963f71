package handlers

import (
	"context"
	"time"

	"rukami/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Version is reported by /status and /info.
const Version = "1.0.0"

// SystemHandler serves health and service information endpoints.
type SystemHandler struct {
	db      *gorm.DB
	driver  string
	started time.Time
}

// NewSystemHandler creates a new SystemHandler.
func NewSystemHandler(db *gorm.DB, driver string) *SystemHandler {
	return &SystemHandler{db: db, driver: driver, started: time.Now()}
}

// RegisterRoutes registers the system routes on the app root.
func (h *SystemHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/health", h.HandleHealth)
	router.Get("/status", h.HandleStatus)
	router.Get("/info", h.HandleInfo)
}

// HandleHealth pings the database.
func (h *SystemHandler) HandleHealth(c *fiber.Ctx) error {
	health, dbStatus := "healthy", "connected"
	code := fiber.StatusOK

	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()
	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		logger.Logger.Warn().Err(err).Msg("Health check failed")
		health, dbStatus = "unhealthy", "unavailable"
		code = fiber.StatusServiceUnavailable
	}

	return c.Status(code).JSON(fiber.Map{
		"status":   health,
		"time":     time.Now().Format(time.RFC3339),
		"database": dbStatus,
	})
}

// HandleStatus reports that the service is running.
func (h *SystemHandler) HandleStatus(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":      "running",
		"service":     "Rukami API",
		"version":     Version,
		"database":    h.driver,
		"uptime":      time.Since(h.started).Round(time.Second).String(),
		"description": "Marketplace for handmade goods",
	})
}

// HandleInfo lists the public endpoints.
func (h *SystemHandler) HandleInfo(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"service": "Rukami API",
		"version": Version,
		"endpoints": fiber.Map{
			"auth": fiber.Map{
				"POST /api/auth/register": "Create an account",
				"POST /api/auth/login":    "Log in and receive a session cookie",
				"POST /api/auth/logout":   "Clear the session cookie",
				"GET /api/auth/me":        "Current user",
			},
			"catalog": fiber.Map{
				"GET /api/categories":               "Active categories with product counts",
				"GET /api/categories/{id}":          "Category by id",
				"GET /api/categories/slug/{slug}":   "Category by slug",
				"GET /api/products":                 "Products with category, search and paging filters",
				"GET /api/products/{id}":            "Product details",
				"GET /api/products/category/{id}":   "Products of a category",
				"POST /api/products":                "List a product",
				"PUT /api/products/{id}":            "Edit an owned product",
				"DELETE /api/products/{id}":         "Withdraw an owned product",
				"POST /api/products/{id}/image":     "Upload a product image",
			},
			"favorites": fiber.Map{
				"GET /api/favorites":                 "Favorites of the current user",
				"POST /api/favorites/{product_id}":   "Add to favorites",
				"DELETE /api/favorites/{product_id}": "Remove from favorites",
			},
			"cart": fiber.Map{
				"GET /api/cart":                 "Cart with total",
				"POST /api/cart/{product_id}":   "Add to cart",
				"PUT /api/cart/{product_id}":    "Set quantity",
				"DELETE /api/cart/{product_id}": "Remove from cart",
				"DELETE /api/cart":              "Clear cart",
			},
			"reviews": fiber.Map{
				"GET /api/reviews/{product_id}":  "Reviews with average rating",
				"POST /api/reviews/{product_id}": "Add a review",
			},
			"profile": fiber.Map{
				"PUT /api/profile":            "Update profile",
				"POST /api/profile/password":  "Change password",
				"GET /api/profile/products":   "Own products",
				"GET /api/profile/statistics": "Activity counters",
				"GET /api/users/{id}":         "Public user profile",
			},
		},
	})
}
