package handlers

import (
	"rukami/internal/middleware"
	"rukami/internal/services"
	"rukami/internal/validation"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ReviewHandler handles HTTP requests for product reviews.
type ReviewHandler struct {
	reviewService *services.ReviewService
	validate      *validator.Validate
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(reviewService *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService, validate: validation.New()}
}

// RegisterRoutes registers review routes. Posting requires session.
func (h *ReviewHandler) RegisterRoutes(router fiber.Router, session fiber.Handler) {
	reviews := router.Group("/reviews")
	reviews.Get("/:product_id", h.HandleList)
	reviews.Post("/:product_id", session, h.HandleAdd)
}

// HandleList returns a product's reviews with the average rating.
func (h *ReviewHandler) HandleList(c *fiber.Ctx) error {
	productID, err := idParam(c, "product_id")
	if err != nil {
		return err
	}
	summary, err := h.reviewService.List(c.UserContext(), productID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(summary)
}

// ReviewRequest represents the request body for a review.
type ReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"required"`
}

// HandleAdd stores the caller's review of a product.
func (h *ReviewHandler) HandleAdd(c *fiber.Ctx) error {
	productID, err := idParam(c, "product_id")
	if err != nil {
		return err
	}
	var req ReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	review, err := h.reviewService.Add(c.UserContext(), middleware.CurrentUser(c).ID, productID, req.Rating, req.Comment)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Review added", "review": review})
}
