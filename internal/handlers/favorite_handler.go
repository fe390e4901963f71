package handlers

import (
	"rukami/internal/middleware"
	"rukami/internal/services"

	"github.com/gofiber/fiber/v2"
)

// FavoriteHandler handles HTTP requests for the caller's favorites.
type FavoriteHandler struct {
	favoriteService *services.FavoriteService
}

// NewFavoriteHandler creates a new FavoriteHandler.
func NewFavoriteHandler(favoriteService *services.FavoriteService) *FavoriteHandler {
	return &FavoriteHandler{favoriteService: favoriteService}
}

// RegisterRoutes registers favorite routes behind session.
func (h *FavoriteHandler) RegisterRoutes(router fiber.Router, session fiber.Handler) {
	favorites := router.Group("/favorites", session)
	favorites.Get("/", h.HandleList)
	favorites.Post("/:product_id", h.HandleAdd)
	favorites.Delete("/:product_id", h.HandleRemove)
}

// HandleList returns the caller's favorites.
func (h *FavoriteHandler) HandleList(c *fiber.Ctx) error {
	favorites, err := h.favoriteService.List(c.UserContext(), middleware.CurrentUser(c).ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"favorites": favorites})
}

// HandleAdd marks a product as favorite.
func (h *FavoriteHandler) HandleAdd(c *fiber.Ctx) error {
	productID, err := idParam(c, "product_id")
	if err != nil {
		return err
	}
	if err := h.favoriteService.Add(c.UserContext(), middleware.CurrentUser(c).ID, productID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Added to favorites"})
}

// HandleRemove unmarks a product.
func (h *FavoriteHandler) HandleRemove(c *fiber.Ctx) error {
	productID, err := idParam(c, "product_id")
	if err != nil {
		return err
	}
	if err := h.favoriteService.Remove(c.UserContext(), middleware.CurrentUser(c).ID, productID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Removed from favorites"})
}
