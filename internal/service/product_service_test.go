package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noryangjin/auction-server/internal/domain"
	"github.com/noryangjin/auction-server/internal/events"
	"github.com/noryangjin/auction-server/internal/repository"
)

const sellerEmail = "seller@example.com"

func ptr[T any](v T) *T { return &v }

func tunaInput() ProductRegisterInput {
	return ProductRegisterInput{
		Name:     ptr("신선한 참치"),
		Price:    ptr(int64(10000)),
		Quantity: ptr(5),
		Category: ptr("SEAFOOD"),
	}
}

type productFixture struct {
	users      *fakeUserRepo
	products   *fakeProductRepo
	dispatcher *recordingDispatcher
	svc        *ProductService
}

func newProductFixture(users ...*domain.User) productFixture {
	userRepo := newFakeUserRepo(users...)
	productRepo := &fakeProductRepo{}
	dispatcher := &recordingDispatcher{}
	svc := NewProductService(ProductDependencies{
		ProductRepo: productRepo,
		Identities:  NewStoreIdentityResolver(userRepo),
		Dispatcher:  dispatcher,
	})
	return productFixture{users: userRepo, products: productRepo, dispatcher: dispatcher, svc: svc}
}

func TestRegisterProductCreatesListingForSeller(t *testing.T) {
	seller := storedAccount(uuid.NewString(), sellerEmail, "010-1111-2222", domain.RoleSeller, domain.UserStatusActive)
	f := newProductFixture(seller)

	product, err := f.svc.RegisterProduct(context.Background(), "Seller@Example.com", tunaInput())
	require.NoError(t, err)

	assert.NotEmpty(t, product.ID)
	assert.Equal(t, seller.ID(), product.SellerID)
	require.NotNil(t, product.Seller())
	assert.Equal(t, seller.Snapshot(), product.Seller().Snapshot())
	assert.Equal(t, "신선한 참치", product.Name)
	assert.Equal(t, int64(10000), product.Price)
	assert.Equal(t, 5, product.Quantity)
	assert.Equal(t, domain.ProductCategory("SEAFOOD"), product.Category)
	assert.Equal(t, 1, f.products.creates)

	require.Len(t, f.dispatcher.published, 1)
	assert.Equal(t, events.EventProductRegistered, f.dispatcher.published[0].Type)
	assert.Equal(t, product.ID, f.dispatcher.published[0].SubjectID)
}

func TestRegisterProductDoesNotDeduplicate(t *testing.T) {
	seller := storedAccount(uuid.NewString(), sellerEmail, "010-1111-2222", domain.RoleSeller, domain.UserStatusActive)
	f := newProductFixture(seller)

	first, err := f.svc.RegisterProduct(context.Background(), sellerEmail, tunaInput())
	require.NoError(t, err)
	second, err := f.svc.RegisterProduct(context.Background(), sellerEmail, tunaInput())
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, 2, f.products.creates)
}

func TestRegisterProductRejectsNonSellers(t *testing.T) {
	cases := map[string]*domain.User{
		"bidder":           storedAccount(uuid.NewString(), sellerEmail, "010-1", domain.RoleBidder, domain.UserStatusActive),
		"admin":            storedAccount(uuid.NewString(), sellerEmail, "010-1", domain.RoleAdmin, domain.UserStatusActive),
		"suspended seller": storedAccount(uuid.NewString(), sellerEmail, "010-1", domain.RoleSeller, domain.UserStatusSuspended),
		"withdrawn seller": storedAccount(uuid.NewString(), sellerEmail, "010-1", domain.RoleSeller, domain.UserStatusWithdrawn),
	}
	for name, caller := range cases {
		t.Run(name, func(t *testing.T) {
			f := newProductFixture(caller)

			product, err := f.svc.RegisterProduct(context.Background(), sellerEmail, tunaInput())

			assert.Nil(t, product)
			assert.True(t, domain.IsAuthorization(err), "got %v", err)
			assert.Zero(t, f.products.creates)
			assert.Empty(t, f.dispatcher.published)
		})
	}
}

func TestRegisterProductFailsClosedForUnknownIdentity(t *testing.T) {
	f := newProductFixture()

	for _, identity := range []string{"", "   ", "ghost@example.com"} {
		product, err := f.svc.RegisterProduct(context.Background(), identity, tunaInput())
		assert.Nil(t, product)
		assert.True(t, domain.IsAuthorization(err), "identity %q: %v", identity, err)
	}
	assert.Zero(t, f.products.creates)
}

func TestRegisterProductListsEveryMissingField(t *testing.T) {
	seller := storedAccount(uuid.NewString(), sellerEmail, "010-1111-2222", domain.RoleSeller, domain.UserStatusActive)
	f := newProductFixture(seller)

	product, err := f.svc.RegisterProduct(context.Background(), sellerEmail, ProductRegisterInput{})
	require.Error(t, err)
	assert.Nil(t, product)

	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"name", "price", "quantity", "category"}, verr.Fields())
	assert.Zero(t, f.products.creates)
}

func TestRegisterProductRejectsMalformedValues(t *testing.T) {
	seller := storedAccount(uuid.NewString(), sellerEmail, "010-1111-2222", domain.RoleSeller, domain.UserStatusActive)
	f := newProductFixture(seller)

	in := ProductRegisterInput{
		Name:     ptr("   "),
		Price:    ptr(int64(0)),
		Quantity: ptr(0),
		Category: ptr("SEAFOOD"),
	}
	_, err := f.svc.RegisterProduct(context.Background(), sellerEmail, in)

	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"name", "price", "quantity"}, verr.Fields())
	assert.Equal(t, "must be greater than 0", verr.Details()["price"])
	assert.Zero(t, f.products.creates)
}

func TestRegisterProductRejectsQuantityOutsideStorableRange(t *testing.T) {
	seller := storedAccount(uuid.NewString(), sellerEmail, "010-1111-2222", domain.RoleSeller, domain.UserStatusActive)
	f := newProductFixture(seller)
	in := tunaInput()
	in.Quantity = ptr(domain.MaxListingQuantity + 1)

	product, err := f.svc.RegisterProduct(context.Background(), sellerEmail, in)

	assert.Nil(t, product)
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"quantity"}, verr.Fields())
	assert.Equal(t, "must be at most 2147483647", verr.Details()["quantity"])
	assert.Zero(t, f.products.creates)
}

func TestRegisterProductPropagatesStoreFailure(t *testing.T) {
	seller := storedAccount(uuid.NewString(), sellerEmail, "010-1111-2222", domain.RoleSeller, domain.UserStatusActive)
	f := newProductFixture(seller)
	cause := errors.New("connection reset")
	f.products.err = domain.NewStoreUnavailableError("create product", cause)

	product, err := f.svc.RegisterProduct(context.Background(), sellerEmail, tunaInput())

	assert.Nil(t, product)
	assert.True(t, domain.IsStoreUnavailable(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 1, f.products.creates)
	assert.Empty(t, f.dispatcher.published)
}

func TestRegisterProductStoreFailureDuringResolution(t *testing.T) {
	f := newProductFixture()
	f.users.err = domain.NewStoreUnavailableError("get user by email", errors.New("timeout"))

	_, err := f.svc.RegisterProduct(context.Background(), sellerEmail, tunaInput())

	assert.True(t, domain.IsStoreUnavailable(err))
	assert.Zero(t, f.products.creates)
}

func TestGetProduct(t *testing.T) {
	seller := storedAccount(uuid.NewString(), sellerEmail, "010-1111-2222", domain.RoleSeller, domain.UserStatusActive)
	f := newProductFixture(seller)
	created, err := f.svc.RegisterProduct(context.Background(), sellerEmail, tunaInput())
	require.NoError(t, err)

	got, err := f.svc.GetProduct(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Name, got.Name)

	_, err = f.svc.GetProduct(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestListSellerProducts(t *testing.T) {
	seller := storedAccount(uuid.NewString(), sellerEmail, "010-1111-2222", domain.RoleSeller, domain.UserStatusActive)
	bidder := storedAccount(uuid.NewString(), "bidder@example.com", "010-3333-4444", domain.RoleBidder, domain.UserStatusActive)
	f := newProductFixture(seller, bidder)

	for i := 0; i < 3; i++ {
		_, err := f.svc.RegisterProduct(context.Background(), sellerEmail, tunaInput())
		require.NoError(t, err)
	}

	products, err := f.svc.ListSellerProducts(context.Background(), sellerEmail, 2, 0)
	require.NoError(t, err)
	assert.Len(t, products, 2)
	assert.Equal(t, seller.ID(), products[0].Seller().ID())

	_, err = f.svc.ListSellerProducts(context.Background(), "bidder@example.com", 10, 0)
	assert.True(t, domain.IsAuthorization(err))
}
