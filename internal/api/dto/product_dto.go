package dto

import (
	"time"

	"github.com/noryangjin/auction-server/internal/domain"
)

// ProductRegisterRequest payload for POST /api/products. Absent fields stay nil.
type ProductRegisterRequest struct {
	Name     *string `json:"name"`
	Price    *int64  `json:"price"`
	Quantity *int    `json:"quantity"`
	Category *string `json:"category"`
}

// ProductResponse is the public view of a listing.
type ProductResponse struct {
	ID        string                 `json:"id"`
	SellerID  string                 `json:"seller_id"`
	Name      string                 `json:"name"`
	Price     int64                  `json:"price"`
	Quantity  int                    `json:"quantity"`
	Category  domain.ProductCategory `json:"category"`
	Status    domain.ProductStatus   `json:"status"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}

// NewProductResponse converts a listing for output.
func NewProductResponse(p *domain.Product) ProductResponse {
	return ProductResponse{
		ID:        p.ID,
		SellerID:  p.SellerID,
		Name:      p.Name,
		Price:     p.Price,
		Quantity:  p.Quantity,
		Category:  p.Category,
		Status:    p.Status,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// NewProductListResponse converts a page of listings.
func NewProductListResponse(products []domain.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, NewProductResponse(&products[i]))
	}
	return out
}
