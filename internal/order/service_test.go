package order_test

import (
	"context"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/healclinics/shop-api/internal/address"
	"github.com/healclinics/shop-api/internal/cart"
	"github.com/healclinics/shop-api/internal/order"
)

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) CreateFromCart(ctx context.Context, o *order.Order, cartID uuid.UUID) (uuid.UUID, error) {
	args := m.Called(ctx, o, cartID)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) GetByPaymentReference(ctx context.Context, reference string) (*order.Order, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]order.Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderRepository) ListAll(ctx context.Context) ([]order.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderRepository) SetPaymentReference(ctx context.Context, orderID uuid.UUID, reference string) error {
	args := m.Called(ctx, orderID, reference)
	return args.Error(0)
}

func (m *MockOrderRepository) UpdateStatuses(ctx context.Context, orderID uuid.UUID, status order.Status, paymentStatus order.PaymentStatus) error {
	args := m.Called(ctx, orderID, status, paymentStatus)
	return args.Error(0)
}

type MockCartRepository struct {
	mock.Mock
}

func (m *MockCartRepository) GetOrCreateByUserID(ctx context.Context, userID uuid.UUID) (*cart.Cart, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.Cart), args.Error(1)
}

func (m *MockCartRepository) AddItem(ctx context.Context, cartID, productID uuid.UUID, quantity int) error {
	args := m.Called(ctx, cartID, productID, quantity)
	return args.Error(0)
}

func (m *MockCartRepository) UpdateItemQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) error {
	args := m.Called(ctx, userID, itemID, quantity)
	return args.Error(0)
}

func (m *MockCartRepository) DeleteItem(ctx context.Context, userID, itemID uuid.UUID) (string, error) {
	args := m.Called(ctx, userID, itemID)
	return args.String(0), args.Error(1)
}

type MockAddressRepository struct {
	mock.Mock
}

func (m *MockAddressRepository) Create(ctx context.Context, addr *address.Address) (uuid.UUID, error) {
	args := m.Called(ctx, addr)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockAddressRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*address.Address, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*address.Address), args.Error(1)
}

func (m *MockAddressRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]address.Address, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]address.Address), args.Error(1)
}

func (m *MockAddressRepository) Update(ctx context.Context, addr *address.Address) error {
	args := m.Called(ctx, addr)
	return args.Error(0)
}

func (m *MockAddressRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

func checkoutFixture(userID uuid.UUID) (*cart.Cart, *address.Address, *address.Address) {
	userCart := &cart.Cart{
		ID:     uuid.Must(uuid.NewV4()),
		UserID: userID,
		Items: []cart.Item{
			{ID: uuid.Must(uuid.NewV4()), ProductID: uuid.Must(uuid.NewV4()), UnitPrice: decimal.RequireFromString("10.00"), Quantity: 2},
			{ID: uuid.Must(uuid.NewV4()), ProductID: uuid.Must(uuid.NewV4()), UnitPrice: decimal.RequireFromString("5.00"), Quantity: 1},
		},
	}
	shipping := &address.Address{
		ID: uuid.Must(uuid.NewV4()), UserID: userID, AddressType: address.TypeShipping,
		FirstName: "Jan", LastName: "de Vries", StreetAddress: "Damstraat", HouseNumber: "12",
		PostalCode: "1012 NX", City: "Amsterdam", Country: "Nederland",
	}
	billing := &address.Address{
		ID: uuid.Must(uuid.NewV4()), UserID: userID, AddressType: address.TypeBilling,
		FirstName: "Jan", LastName: "de Vries", StreetAddress: "Damstraat", HouseNumber: "12",
		PostalCode: "1012 NX", City: "Amsterdam", Country: "Nederland",
	}
	return userCart, shipping, billing
}

func TestCheckout_Success(t *testing.T) {
	mockOrders := new(MockOrderRepository)
	mockCarts := new(MockCartRepository)
	mockAddresses := new(MockAddressRepository)
	svc := order.NewService(mockOrders, mockCarts, mockAddresses)

	userID := uuid.Must(uuid.NewV4())
	userCart, shipping, billing := checkoutFixture(userID)
	orderID := uuid.Must(uuid.NewV4())

	mockCarts.On("GetOrCreateByUserID", mock.Anything, userID).Return(userCart, nil).Once()
	mockAddresses.On("GetByID", mock.Anything, userID, shipping.ID).Return(shipping, nil).Once()
	mockAddresses.On("GetByID", mock.Anything, userID, billing.ID).Return(billing, nil).Once()
	mockOrders.On("CreateFromCart", mock.Anything, mock.AnythingOfType("*order.Order"), userCart.ID).
		Return(orderID, nil).Once()

	created, err := svc.Checkout(context.Background(), order.CheckoutInput{
		UserID:            userID,
		CustomerEmail:     "jan@example.com",
		CustomerName:      "Jan de Vries",
		ShippingAddressID: shipping.ID,
		BillingAddressID:  billing.ID,
		PaymentMethod:     "ideal",
		IdealBank:         "ING",
	})

	require.NoError(t, err)
	require.NotNil(t, created)
	require.Equal(t, userID, created.UserID)
	require.True(t, created.TaxRate.Equal(order.DefaultTaxRate))
	require.True(t, created.ShippingCost.Equal(order.DefaultShippingCost))
	require.Contains(t, created.ShippingAddressText, "Damstraat 12")
	require.Contains(t, created.ShippingAddressText, "1012 NX Amsterdam")

	mockOrders.AssertExpectations(t)
	mockCarts.AssertExpectations(t)
	mockAddresses.AssertExpectations(t)
}

func TestCheckout_EmptyCart(t *testing.T) {
	mockOrders := new(MockOrderRepository)
	mockCarts := new(MockCartRepository)
	mockAddresses := new(MockAddressRepository)
	svc := order.NewService(mockOrders, mockCarts, mockAddresses)

	userID := uuid.Must(uuid.NewV4())
	emptyCart := &cart.Cart{ID: uuid.Must(uuid.NewV4()), UserID: userID}

	mockCarts.On("GetOrCreateByUserID", mock.Anything, userID).Return(emptyCart, nil).Once()

	_, err := svc.Checkout(context.Background(), order.CheckoutInput{
		UserID:            userID,
		ShippingAddressID: uuid.Must(uuid.NewV4()),
		BillingAddressID:  uuid.Must(uuid.NewV4()),
	})

	require.ErrorIs(t, err, order.ErrCartEmpty)
	// The address lookups never run for an empty cart.
	mockAddresses.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything, mock.Anything)
	mockOrders.AssertNotCalled(t, "CreateFromCart", mock.Anything, mock.Anything, mock.Anything)
}

func TestCheckout_AddressNotOwned(t *testing.T) {
	mockOrders := new(MockOrderRepository)
	mockCarts := new(MockCartRepository)
	mockAddresses := new(MockAddressRepository)
	svc := order.NewService(mockOrders, mockCarts, mockAddresses)

	userID := uuid.Must(uuid.NewV4())
	userCart, _, _ := checkoutFixture(userID)
	foreignAddressID := uuid.Must(uuid.NewV4())

	mockCarts.On("GetOrCreateByUserID", mock.Anything, userID).Return(userCart, nil).Once()
	mockAddresses.On("GetByID", mock.Anything, userID, foreignAddressID).
		Return(nil, address.ErrNotFound).Once()

	_, err := svc.Checkout(context.Background(), order.CheckoutInput{
		UserID:            userID,
		ShippingAddressID: foreignAddressID,
		BillingAddressID:  uuid.Must(uuid.NewV4()),
	})

	require.ErrorIs(t, err, order.ErrAddressNotFound)
	mockOrders.AssertNotCalled(t, "CreateFromCart", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetOrder_OwnerScoping(t *testing.T) {
	mockOrders := new(MockOrderRepository)
	svc := order.NewService(mockOrders, new(MockCartRepository), new(MockAddressRepository))

	ownerID := uuid.Must(uuid.NewV4())
	strangerID := uuid.Must(uuid.NewV4())
	orderID := uuid.Must(uuid.NewV4())
	stored := &order.Order{ID: orderID, UserID: ownerID, Status: order.StatusPending}

	mockOrders.On("GetByID", mock.Anything, orderID).Return(stored, nil).Times(3)

	found, err := svc.GetOrder(context.Background(), ownerID, false, orderID)
	require.NoError(t, err)
	require.Equal(t, orderID, found.ID)

	// Another user's lookup reveals nothing, not even existence.
	_, err = svc.GetOrder(context.Background(), strangerID, false, orderID)
	require.ErrorIs(t, err, order.ErrNotFound)

	// Staff see everything.
	found, err = svc.GetOrder(context.Background(), strangerID, true, orderID)
	require.NoError(t, err)
	require.Equal(t, orderID, found.ID)
}

func TestCancelOrder_FromShippedFails(t *testing.T) {
	mockOrders := new(MockOrderRepository)
	svc := order.NewService(mockOrders, new(MockCartRepository), new(MockAddressRepository))

	userID := uuid.Must(uuid.NewV4())
	orderID := uuid.Must(uuid.NewV4())
	shipped := &order.Order{ID: orderID, UserID: userID, Status: order.StatusShipped}

	mockOrders.On("GetByID", mock.Anything, orderID).Return(shipped, nil).Once()

	_, err := svc.CancelOrder(context.Background(), userID, false, orderID)

	require.ErrorIs(t, err, order.ErrNotCancellable)
	mockOrders.AssertNotCalled(t, "UpdateStatuses", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCancelOrder_FromPendingSucceeds(t *testing.T) {
	mockOrders := new(MockOrderRepository)
	svc := order.NewService(mockOrders, new(MockCartRepository), new(MockAddressRepository))

	userID := uuid.Must(uuid.NewV4())
	orderID := uuid.Must(uuid.NewV4())
	pending := &order.Order{ID: orderID, UserID: userID, Status: order.StatusPending, PaymentStatus: order.PaymentPending}

	mockOrders.On("GetByID", mock.Anything, orderID).Return(pending, nil).Once()
	mockOrders.On("UpdateStatuses", mock.Anything, orderID, order.StatusCancelled, order.PaymentPending).
		Return(nil).Once()

	cancelled, err := svc.CancelOrder(context.Background(), userID, false, orderID)

	require.NoError(t, err)
	require.Equal(t, order.StatusCancelled, cancelled.Status)
	mockOrders.AssertExpectations(t)
}
