package handlers

import (
	"rukami/internal/middleware"
	"rukami/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CartHandler handles HTTP requests for the caller's cart.
type CartHandler struct {
	cartService *services.CartService
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(cartService *services.CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

// RegisterRoutes registers cart routes behind session.
func (h *CartHandler) RegisterRoutes(router fiber.Router, session fiber.Handler) {
	cart := router.Group("/cart", session)
	cart.Get("/", h.HandleGet)
	cart.Delete("/", h.HandleClear)
	cart.Post("/:product_id", h.HandleAdd)
	cart.Put("/:product_id", h.HandleUpdate)
	cart.Delete("/:product_id", h.HandleRemove)
}

// QuantityRequest carries a cart quantity.
type QuantityRequest struct {
	Quantity *int `json:"quantity"`
}

func parseQuantity(c *fiber.Ctx) (*int, error) {
	var req QuantityRequest
	if len(c.Body()) == 0 {
		return nil, nil
	}
	if err := c.BodyParser(&req); err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	return req.Quantity, nil
}

// HandleGet returns the cart with its total.
func (h *CartHandler) HandleGet(c *fiber.Ctx) error {
	cart, err := h.cartService.Get(c.UserContext(), middleware.CurrentUser(c).ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(cart)
}

// HandleAdd adds quantity (default 1) of a product to the cart.
func (h *CartHandler) HandleAdd(c *fiber.Ctx) error {
	productID, err := idParam(c, "product_id")
	if err != nil {
		return err
	}
	qty, err := parseQuantity(c)
	if err != nil {
		return err
	}
	quantity := 1
	if qty != nil {
		quantity = *qty
	}

	if err := h.cartService.Add(c.UserContext(), middleware.CurrentUser(c).ID, productID, quantity); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Added to cart"})
}

// HandleUpdate sets the quantity of a line. Zero or less removes it.
func (h *CartHandler) HandleUpdate(c *fiber.Ctx) error {
	productID, err := idParam(c, "product_id")
	if err != nil {
		return err
	}
	qty, err := parseQuantity(c)
	if err != nil {
		return err
	}
	if qty == nil {
		return fiber.NewError(fiber.StatusBadRequest, "quantity is required")
	}

	if err := h.cartService.Update(c.UserContext(), middleware.CurrentUser(c).ID, productID, *qty); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Quantity updated"})
}

// HandleRemove deletes a line from the cart.
func (h *CartHandler) HandleRemove(c *fiber.Ctx) error {
	productID, err := idParam(c, "product_id")
	if err != nil {
		return err
	}
	if err := h.cartService.Remove(c.UserContext(), middleware.CurrentUser(c).ID, productID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Removed from cart"})
}

// HandleClear empties the cart.
func (h *CartHandler) HandleClear(c *fiber.Ctx) error {
	if err := h.cartService.Clear(c.UserContext(), middleware.CurrentUser(c).ID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Cart cleared"})
}
