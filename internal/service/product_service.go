package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noryangjin/auction-server/internal/domain"
	"github.com/noryangjin/auction-server/internal/events"
	"github.com/noryangjin/auction-server/internal/repository"
	"github.com/noryangjin/auction-server/internal/validation"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ProductService authorizes and creates listings on behalf of sellers.
type ProductService struct {
	products   repository.ProductRepository
	identities IdentityResolver
	validator  *validation.Validator
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// ProductDependencies bundles collaborators for the product service.
type ProductDependencies struct {
	ProductRepo repository.ProductRepository
	Identities  IdentityResolver
	Validator   *validation.Validator
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// ProductRegisterInput is a listing submission. Nil fields were not supplied.
type ProductRegisterInput struct {
	Name     *string `json:"name" validate:"required,notblank,max=100"`
	Price    *int64  `json:"price" validate:"required,gt=0"`
	Quantity *int    `json:"quantity" validate:"required,gte=1,lte=2147483647"`
	Category *string `json:"category" validate:"required,notblank,max=50"`
}

// NewProductService constructs the service.
func NewProductService(deps ProductDependencies) *ProductService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	v := deps.Validator
	if v == nil {
		v = validation.New()
	}
	return &ProductService{
		products:   deps.ProductRepo,
		identities: deps.Identities,
		validator:  v,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// RegisterProduct creates a listing for the caller behind identity.
//
// The caller is resolved through the store and must be an active SELLER; the submission
// is then validated as a whole. Nothing is persisted unless both checks pass. Each call
// creates a new listing.
func (s *ProductService) RegisterProduct(ctx context.Context, identity string, in ProductRegisterInput) (*domain.Product, error) {
	seller, err := s.identities.Resolve(ctx, identity)
	if err != nil {
		return nil, err
	}
	if err := authorizeListing(seller); err != nil {
		s.logger.Info("listing rejected", zap.Object("caller", seller), zap.Error(err))
		return nil, err
	}

	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}

	product, err := domain.NewProduct(domain.ProductInput{
		Name:     *in.Name,
		Price:    *in.Price,
		Quantity: *in.Quantity,
		Category: *in.Category,
		Seller:   seller,
	})
	if err != nil {
		return nil, err
	}

	stored, err := s.products.Create(ctx, product)
	if err != nil {
		return nil, domain.NewStoreUnavailableError("create product", err)
	}

	s.logger.Info("product registered", zap.Object("product", stored))
	publishEvent(ctx, s.dispatcher, s.logger, events.Event{
		Type:      events.EventProductRegistered,
		SubjectID: stored.ID,
		Actor:     actorOf(seller),
		Payload: events.ProductRegisteredPayload{
			SellerID: stored.SellerID,
			Name:     stored.Name,
			Price:    stored.Price,
			Quantity: stored.Quantity,
			Category: stored.Category,
		},
	})
	return stored, nil
}

// GetProduct fetches a listing by id.
func (s *ProductService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	if _, err := uuid.Parse(strings.TrimSpace(id)); err != nil {
		return nil, repository.ErrNotFound
	}
	return s.products.GetByID(ctx, strings.TrimSpace(id))
}

// ListSellerProducts returns the caller's own listings, newest first.
func (s *ProductService) ListSellerProducts(ctx context.Context, identity string, limit, offset int) ([]domain.Product, error) {
	seller, err := s.identities.Resolve(ctx, identity)
	if err != nil {
		return nil, err
	}
	if !seller.Role().CanSell() {
		return nil, domain.NewAuthorizationError("role " + seller.Role().String() + " has no listings")
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	products, err := s.products.ListBySeller(ctx, seller.ID(), limit, offset)
	if err != nil {
		return nil, err
	}
	for i := range products {
		products[i].BindSeller(seller)
	}
	return products, nil
}

func authorizeListing(seller *domain.User) error {
	switch role := seller.Role(); {
	case !role.Valid():
		return domain.NewAuthorizationError("account has no role")
	case !role.CanSell():
		return domain.NewAuthorizationError("role " + role.String() + " may not register products")
	}
	if status := seller.Status(); !status.CanAct() {
		return domain.NewAuthorizationError("account is " + strings.ToLower(status.String()))
	}
	return nil
}
