package handlers

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/noryangjin/auction-server/internal/api/dto"
	"github.com/noryangjin/auction-server/internal/auth"
	"github.com/noryangjin/auction-server/internal/domain"
	"github.com/noryangjin/auction-server/internal/service"
	apperrors "github.com/noryangjin/auction-server/pkg/util/errorutil"
)

// ProductService is the part of the product service used by HTTP handlers.
type ProductService interface {
	RegisterProduct(ctx context.Context, identity string, in service.ProductRegisterInput) (*domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	ListSellerProducts(ctx context.Context, identity string, limit, offset int) ([]domain.Product, error)
}

// ProductsHandler exposes listing endpoints.
type ProductsHandler struct {
	products ProductService
}

// NewProductsHandler constructs handler.
func NewProductsHandler(products ProductService) *ProductsHandler {
	return &ProductsHandler{products: products}
}

// Register handles POST /api/products.
func (h *ProductsHandler) Register(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.ProductRegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	product, err := h.products.RegisterProduct(c.UserContext(), identity, service.ProductRegisterInput{
		Name:     req.Name,
		Price:    req.Price,
		Quantity: req.Quantity,
		Category: req.Category,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewProductResponse(product)})
}

// Get handles GET /api/products/:id.
func (h *ProductsHandler) Get(c *fiber.Ctx) error {
	product, err := h.products.GetProduct(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProductResponse(product)})
}

// ListMine handles GET /api/products/mine.
func (h *ProductsHandler) ListMine(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	limit := c.QueryInt("limit", 0)
	offset := c.QueryInt("offset", 0)

	products, err := h.products.ListSellerProducts(c.UserContext(), identity, limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": dto.NewProductListResponse(products),
		"meta": fiber.Map{"limit": limit, "offset": offset, "count": len(products)},
	})
}
