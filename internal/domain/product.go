package domain

import (
	"math"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
)

// Field names reported in validation errors for listings.
const (
	FieldProductName = "name"
	FieldPrice       = "price"
	FieldQuantity    = "quantity"
	FieldCategory    = "category"
)

// Stock bounds of a listing. The upper bound is the range of the quantity column.
const (
	MinListingQuantity = 1
	MaxListingQuantity = math.MaxInt32
)

// ProductStatus enumerates listing states.
type ProductStatus string

const (
	ProductStatusOnSale  ProductStatus = "ON_SALE"
	ProductStatusSoldOut ProductStatus = "SOLD_OUT"
	ProductStatusClosed  ProductStatus = "CLOSED"
)

// ProductCategory is a normalized, non-blank category label such as SEAFOOD.
type ProductCategory string

// NormalizeCategory trims and upper-cases a category label.
func NormalizeCategory(raw string) ProductCategory {
	return ProductCategory(strings.ToUpper(strings.TrimSpace(raw)))
}

// ProductInput carries a listing submission together with its verified seller.
type ProductInput struct {
	Name     string
	Price    int64
	Quantity int
	Category string
	Seller   *User
}

// Product is a listing offered by a seller. Prices are whole KRW.
type Product struct {
	ID        string          `json:"id"`
	SellerID  string          `json:"seller_id"`
	Name      string          `json:"name"`
	Price     int64           `json:"price"`
	Quantity  int             `json:"quantity"`
	Category  ProductCategory `json:"category"`
	Status    ProductStatus   `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`

	seller *User
}

// NewProduct validates a submission and binds it to its seller.
// Field violations are all reported together; a seller that may not sell yields an
// AuthorizationError.
func NewProduct(in ProductInput) (*Product, error) {
	name := strings.TrimSpace(in.Name)
	category := NormalizeCategory(in.Category)

	var errs violations
	if name == "" {
		errs.add(FieldProductName, "is required")
	}
	if in.Price <= 0 {
		errs.add(FieldPrice, "must be greater than 0")
	}
	switch {
	case in.Quantity < MinListingQuantity:
		errs.add(FieldQuantity, "must be at least 1")
	case in.Quantity > MaxListingQuantity:
		errs.add(FieldQuantity, "must be at most 2147483647")
	}
	if category == "" {
		errs.add(FieldCategory, "is required")
	}
	if err := errs.err(); err != nil {
		return nil, err
	}

	if err := authorizeSeller(in.Seller); err != nil {
		return nil, err
	}

	createdAt := now()
	return &Product{
		SellerID:  in.Seller.ID(),
		Name:      name,
		Price:     in.Price,
		Quantity:  in.Quantity,
		Category:  category,
		Status:    ProductStatusOnSale,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
		seller:    in.Seller,
	}, nil
}

func authorizeSeller(seller *User) error {
	switch {
	case seller == nil:
		return NewAuthorizationError("seller is required")
	case !seller.IsPersisted():
		return NewAuthorizationError("seller is not a stored account")
	case !seller.Role().CanSell():
		return NewAuthorizationError("role " + seller.Role().String() + " may not register products")
	case !seller.Status().CanAct():
		return NewAuthorizationError("account is " + strings.ToLower(seller.Status().String()))
	}
	return nil
}

// Seller returns the account the listing was created for, when known in this process.
func (p *Product) Seller() *User {
	return p.seller
}

// BindSeller attaches the resolved seller to a listing loaded from storage.
func (p *Product) BindSeller(seller *User) {
	if seller != nil && seller.ID() == p.SellerID {
		p.seller = seller
	}
}

// MarshalLogObject lets the listing be logged with zap.Object.
func (p *Product) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("id", p.ID)
	enc.AddString("seller_id", p.SellerID)
	enc.AddString("name", p.Name)
	enc.AddInt64("price", p.Price)
	enc.AddInt("quantity", p.Quantity)
	enc.AddString("category", string(p.Category))
	return nil
}
