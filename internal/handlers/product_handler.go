package handlers

import (
	"fmt"

	"rukami/internal/middleware"
	"rukami/internal/services"
	"rukami/internal/validation"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	productService *services.ProductService
	validate       *validator.Validate
	maxFileSize    int64
}

// NewProductHandler creates a new ProductHandler. Uploads above maxFileSize bytes are rejected.
func NewProductHandler(productService *services.ProductService, maxFileSize int64) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		validate:       validation.New(),
		maxFileSize:    maxFileSize,
	}
}

// RegisterRoutes registers product routes. Mutations require session.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, session fiber.Handler) {
	products := router.Group("/products")
	products.Get("/", h.HandleList)
	products.Get("/category/:id", h.HandleListByCategory)
	products.Get("/:id", h.HandleGet)

	products.Post("/", session, h.HandleCreate)
	products.Put("/:id", session, h.HandleUpdate)
	products.Delete("/:id", session, h.HandleDelete)
	products.Post("/:id/image", session, h.HandleUploadImage)
}

func pageParams(c *fiber.Ctx) (limit, offset int, err error) {
	if limit, err = queryInt(c, "limit", services.DefaultPageLimit); err != nil {
		return 0, 0, err
	}
	if offset, err = queryInt(c, "offset", 0); err != nil {
		return 0, 0, err
	}
	if limit < 1 || limit > services.MaxPageLimit {
		return 0, 0, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("limit must be between 1 and %d", services.MaxPageLimit))
	}
	if offset < 0 {
		return 0, 0, fiber.NewError(fiber.StatusBadRequest, "offset must not be negative")
	}
	return limit, offset, nil
}

// HandleList returns a page of in-stock products.
// Query: category_id, category_slug, search, limit, offset.
func (h *ProductHandler) HandleList(c *fiber.Ctx) error {
	limit, offset, err := pageParams(c)
	if err != nil {
		return err
	}
	categoryID, err := queryInt(c, "category_id", 0)
	if err != nil || categoryID < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid category_id")
	}

	page, err := h.productService.List(c.UserContext(), services.ProductListInput{
		CategoryID:   uint(categoryID),
		CategorySlug: c.Query("category_slug"),
		Search:       c.Query("search"),
		Limit:        limit,
		Offset:       offset,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

// HandleListByCategory returns a page of one category's products.
func (h *ProductHandler) HandleListByCategory(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	limit, offset, err := pageParams(c)
	if err != nil {
		return err
	}

	page, err := h.productService.ListByCategory(c.UserContext(), id, limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

// HandleGet returns one product.
func (h *ProductHandler) HandleGet(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	product, err := h.productService.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(product)
}

// ProductRequest represents the request body for creating or updating a product.
type ProductRequest struct {
	Name        string          `json:"name" validate:"required,max=500"`
	Description string          `json:"description" validate:"required"`
	Price       decimal.Decimal `json:"price"`
	CategoryID  uint            `json:"category_id" validate:"required"`
	Author      string          `json:"author" validate:"omitempty,max=255"`
	ImageURL    string          `json:"image_url" validate:"omitempty,max=500"`
	InStock     *bool           `json:"in_stock"`
}

func (r ProductRequest) input() services.ProductInput {
	return services.ProductInput{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		CategoryID:  r.CategoryID,
		Author:      r.Author,
		ImageURL:    r.ImageURL,
		InStock:     r.InStock,
	}
}

func (h *ProductHandler) parseProduct(c *fiber.Ctx) (*ProductRequest, error) {
	var req ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, invalidBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return nil, validationFailed(c, err)
	}
	return &req, nil
}

// HandleCreate lists a new product owned by the caller.
func (h *ProductHandler) HandleCreate(c *fiber.Ctx) error {
	req, err := h.parseProduct(c)
	if req == nil {
		return err
	}

	product, err := h.productService.Create(c.UserContext(), middleware.CurrentUser(c), req.input())
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleUpdate edits a product owned by the caller.
func (h *ProductHandler) HandleUpdate(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	req, err := h.parseProduct(c)
	if req == nil {
		return err
	}

	product, err := h.productService.Update(c.UserContext(), middleware.CurrentUser(c).ID, id, req.input())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(product)
}

// HandleDelete withdraws a product owned by the caller.
func (h *ProductHandler) HandleDelete(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.productService.Delete(c.UserContext(), middleware.CurrentUser(c).ID, id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product removed from sale"})
}

// HandleUploadImage stores the multipart "image" file for a product owned by the caller.
func (h *ProductHandler) HandleUploadImage(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	file, err := c.FormFile("image")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Missing image file")
	}
	if file.Size > h.maxFileSize {
		return fiber.NewError(fiber.StatusRequestEntityTooLarge, "File too large")
	}

	f, err := file.Open()
	if err != nil {
		return respondError(c, fmt.Errorf("failed to open upload: %w", err))
	}
	defer f.Close()

	product, err := h.productService.UploadImage(c.UserContext(), middleware.CurrentUser(c).ID, id, file.Filename, f)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(product)
}
