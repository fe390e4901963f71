package handlers

import (
	"rukami/internal/middleware"
	"rukami/internal/services"
	"rukami/internal/validation"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ProfileHandler serves the current user's profile routes.
type ProfileHandler struct {
	authService    *services.AuthService
	productService *services.ProductService
	profileService *services.ProfileService
	validate       *validator.Validate
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(auth *services.AuthService, products *services.ProductService, profile *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{
		authService:    auth,
		productService: products,
		profileService: profile,
		validate:       validation.New(),
	}
}

// RegisterRoutes registers profile routes. All of them need a session.
func (h *ProfileHandler) RegisterRoutes(router fiber.Router, session fiber.Handler) {
	profile := router.Group("/profile", session)
	profile.Put("/", h.HandleUpdate)
	profile.Post("/password", h.HandleChangePassword)
	profile.Get("/products", h.HandleMyProducts)
	profile.Get("/statistics", h.HandleStatistics)
}

// ProfileRequest represents the editable profile fields.
type ProfileRequest struct {
	Name    string `json:"name" validate:"required,min=2,max=255"`
	Phone   string `json:"phone" validate:"omitempty,phone"`
	Address string `json:"address" validate:"omitempty,max=1000"`
}

// HandleUpdate changes name, phone and address.
func (h *ProfileHandler) HandleUpdate(c *fiber.Ctx) error {
	var req ProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	user, err := h.authService.UpdateProfile(c.UserContext(), middleware.CurrentUser(c).ID, services.ProfileInput{
		Name:    req.Name,
		Phone:   req.Phone,
		Address: req.Address,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Profile updated", "user": user})
}

// PasswordRequest represents a password change.
type PasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6,max=72"`
}

// HandleChangePassword replaces the password after checking the current one.
func (h *ProfileHandler) HandleChangePassword(c *fiber.Ctx) error {
	var req PasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	err := h.authService.ChangePassword(c.UserContext(), middleware.CurrentUser(c).ID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Password changed"})
}

// HandleMyProducts lists the caller's products, withdrawn ones included.
func (h *ProfileHandler) HandleMyProducts(c *fiber.Ctx) error {
	products, err := h.productService.ListByOwner(c.UserContext(), middleware.CurrentUser(c).ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"products": products})
}

// HandleStatistics returns activity counters for the caller.
func (h *ProfileHandler) HandleStatistics(c *fiber.Ctx) error {
	return c.JSON(h.profileService.Statistics(c.UserContext(), middleware.CurrentUser(c).ID))
}
