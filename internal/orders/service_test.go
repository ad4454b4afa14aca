package orders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/phamdt203/zenmart-backend/internal/balance"
	"github.com/phamdt203/zenmart-backend/internal/inventory"
	"github.com/phamdt203/zenmart-backend/internal/ledger"
	"github.com/phamdt203/zenmart-backend/pkg/db/models"
	"github.com/phamdt203/zenmart-backend/pkg/enums"
	pkgerrors "github.com/phamdt203/zenmart-backend/pkg/errors"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:orders_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  full_name TEXT NOT NULL,
  phone TEXT,
  role TEXT NOT NULL DEFAULT 'customer',
  balance NUMERIC NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  seller_id TEXT NOT NULL,
  name TEXT NOT NULL,
  price NUMERIC NOT NULL,
  stock INTEGER NOT NULL DEFAULT 0,
  status TEXT NOT NULL DEFAULT 'pending',
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS product_variants (
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  color TEXT,
  size TEXT,
  stock INTEGER NOT NULL DEFAULT 0
);`,
		`CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  customer_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending_confirmation',
  total_amount NUMERIC NOT NULL,
  shipping_address TEXT,
  payment_method TEXT NOT NULL DEFAULT 'cod',
  delivered_at DATETIME,
  canceled_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  seller_id TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  price NUMERIC NOT NULL,
  selected_color TEXT,
  selected_size TEXT,
  created_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS ledger_entries (
  id TEXT PRIMARY KEY,
  seller_id TEXT NOT NULL,
  kind TEXT NOT NULL,
  amount NUMERIC NOT NULL,
  reference_id TEXT NOT NULL,
  created_at DATETIME
);`,
	}
	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

type recordingNotifier struct {
	sent []uuid.UUID
	err  error
}

func (n *recordingNotifier) Notify(_ context.Context, userID uuid.UUID, _ enums.NotificationType, _, _ string) error {
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, userID)
	return nil
}

type ordersFixture struct {
	db       *gorm.DB
	svc      Service
	journal  ledger.Service
	notifier *recordingNotifier
}

func newOrdersFixture(t *testing.T) *ordersFixture {
	t.Helper()

	db := setupOrdersTestDB(t)
	stock, err := inventory.NewService(inventory.NewRepository(db))
	require.NoError(t, err)
	sellerLedger, err := balance.NewService(balance.NewRepository(db))
	require.NoError(t, err)
	journal, err := ledger.NewService(ledger.NewRepository(db))
	require.NoError(t, err)

	notifier := &recordingNotifier{}
	svc, err := NewService(NewRepository(db), gormTxRunner{db: db}, stock, sellerLedger, journal, notifier)
	require.NoError(t, err)

	return &ordersFixture{db: db, svc: svc, journal: journal, notifier: notifier}
}

func (f *ordersFixture) createUser(t *testing.T, role enums.UserRole) *models.User {
	t.Helper()

	user := &models.User{
		ID:       uuid.New(),
		Email:    uuid.NewString() + "@example.com",
		FullName: "Test User",
		Role:     role,
		Balance:  decimal.Zero,
		IsActive: true,
	}
	require.NoError(t, f.db.Create(user).Error)
	return user
}

func (f *ordersFixture) createProduct(t *testing.T, sellerID uuid.UUID, price string, stock int) *models.Product {
	t.Helper()

	product := &models.Product{
		ID:       uuid.New(),
		SellerID: sellerID,
		Name:     "Test Product",
		Price:    decimal.RequireFromString(price),
		Stock:    stock,
		Status:   enums.ProductStatusAvailable,
	}
	require.NoError(t, f.db.Create(product).Error)
	return product
}

func (f *ordersFixture) placeOrder(t *testing.T, customerID uuid.UUID, items ...CreateOrderItemInput) *models.Order {
	t.Helper()

	order, err := f.svc.Create(context.Background(), CreateOrderInput{
		CustomerID:      customerID,
		ShippingAddress: "12 Elm Street",
		PaymentMethod:   enums.PaymentMethodCOD,
		Items:           items,
	})
	require.NoError(t, err)
	return order
}

func TestCreateSnapshotsPriceAndDebitsStock(t *testing.T) {
	f := newOrdersFixture(t)
	seller := f.createUser(t, enums.UserRoleSeller)
	customer := f.createUser(t, enums.UserRoleCustomer)
	product := f.createProduct(t, seller.ID, "20.25", 10)

	order := f.placeOrder(t, customer.ID, CreateOrderItemInput{ProductID: product.ID, Quantity: 3})

	assert.Equal(t, enums.OrderStatusPendingConfirmation, order.Status)
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("60.75")))
	require.Len(t, order.Items, 1)
	assert.Equal(t, seller.ID, order.Items[0].SellerID)
	assert.True(t, order.Items[0].Price.Equal(decimal.RequireFromString("20.25")))

	var gotProduct models.Product
	require.NoError(t, f.db.First(&gotProduct, "id = ?", product.ID).Error)
	assert.Equal(t, 7, gotProduct.Stock)

	// Customer was told the order exists.
	assert.Contains(t, f.notifier.sent, customer.ID)
}

func TestCreateIsAllOrNothing(t *testing.T) {
	f := newOrdersFixture(t)
	seller := f.createUser(t, enums.UserRoleSeller)
	customer := f.createUser(t, enums.UserRoleCustomer)
	plentiful := f.createProduct(t, seller.ID, "10.00", 10)
	scarce := f.createProduct(t, seller.ID, "10.00", 1)

	_, err := f.svc.Create(context.Background(), CreateOrderInput{
		CustomerID:      customer.ID,
		ShippingAddress: "12 Elm Street",
		PaymentMethod:   enums.PaymentMethodCOD,
		Items: []CreateOrderItemInput{
			{ProductID: plentiful.ID, Quantity: 2},
			{ProductID: scarce.ID, Quantity: 5},
		},
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInsufficientStock))

	// The first line's debit rolled back with the failed order.
	var gotProduct models.Product
	require.NoError(t, f.db.First(&gotProduct, "id = ?", plentiful.ID).Error)
	assert.Equal(t, 10, gotProduct.Stock)

	var orderCount int64
	require.NoError(t, f.db.Model(&models.Order{}).Count(&orderCount).Error)
	assert.Zero(t, orderCount)
}

func TestCreateRejectsUnknownCustomer(t *testing.T) {
	f := newOrdersFixture(t)
	seller := f.createUser(t, enums.UserRoleSeller)
	product := f.createProduct(t, seller.ID, "10.00", 10)

	_, err := f.svc.Create(context.Background(), CreateOrderInput{
		CustomerID:      uuid.New(),
		ShippingAddress: "12 Elm Street",
		PaymentMethod:   enums.PaymentMethodCOD,
		Items:           []CreateOrderItemInput{{ProductID: product.ID, Quantity: 1}},
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestCreateRejectsUnavailableProduct(t *testing.T) {
	f := newOrdersFixture(t)
	seller := f.createUser(t, enums.UserRoleSeller)
	customer := f.createUser(t, enums.UserRoleCustomer)
	product := f.createProduct(t, seller.ID, "10.00", 10)
	require.NoError(t, f.db.Model(&models.Product{}).
		Where("id = ?", product.ID).
		UpdateColumn("status", enums.ProductStatusPending).Error)

	_, err := f.svc.Create(context.Background(), CreateOrderInput{
		CustomerID:      customer.ID,
		ShippingAddress: "12 Elm Street",
		PaymentMethod:   enums.PaymentMethodCOD,
		Items:           []CreateOrderItemInput{{ProductID: product.ID, Quantity: 1}},
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeConflict))
}

func TestDeliveryCreditsEachSellerOnce(t *testing.T) {
	f := newOrdersFixture(t)
	sellerA := f.createUser(t, enums.UserRoleSeller)
	sellerB := f.createUser(t, enums.UserRoleSeller)
	customer := f.createUser(t, enums.UserRoleCustomer)
	productA := f.createProduct(t, sellerA.ID, "10.50", 10)
	productB := f.createProduct(t, sellerB.ID, "5.25", 10)

	order := f.placeOrder(t, customer.ID,
		CreateOrderItemInput{ProductID: productA.ID, Quantity: 2},
		CreateOrderItemInput{ProductID: productB.ID, Quantity: 4},
	)

	ctx := context.Background()
	_, err := f.svc.UpdateStatus(ctx, UpdateStatusInput{OrderID: order.ID, Status: enums.OrderStatusWaitingForPickup})
	require.NoError(t, err)
	updated, err := f.svc.UpdateStatus(ctx, UpdateStatusInput{OrderID: order.ID, Status: enums.OrderStatusDelivered})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusDelivered, updated.Status)
	require.NotNil(t, updated.DeliveredAt)

	var gotA, gotB models.User
	require.NoError(t, f.db.First(&gotA, "id = ?", sellerA.ID).Error)
	require.NoError(t, f.db.First(&gotB, "id = ?", sellerB.ID).Error)
	assert.True(t, gotA.Balance.Equal(decimal.RequireFromString("21.00")))
	assert.True(t, gotB.Balance.Equal(decimal.RequireFromString("21.00")))

	// A repeated delivered update is a no-op and must not credit again.
	_, err = f.svc.UpdateStatus(ctx, UpdateStatusInput{OrderID: order.ID, Status: enums.OrderStatusDelivered})
	require.NoError(t, err)
	require.NoError(t, f.db.First(&gotA, "id = ?", sellerA.ID).Error)
	assert.True(t, gotA.Balance.Equal(decimal.RequireFromString("21.00")))

	// Each credit leaves one journal entry pointing back at the order.
	journaled, err := f.journal.HasEntry(ctx, order.ID, enums.LedgerEntryKindOrderCredit)
	require.NoError(t, err)
	assert.True(t, journaled)

	entries, err := f.journal.ListBySeller(ctx, sellerA.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, order.ID, entries[0].ReferenceID)
	assert.True(t, entries[0].Amount.Equal(decimal.RequireFromString("21.00")))
}

func TestCancellationReturnsStockOnce(t *testing.T) {
	f := newOrdersFixture(t)
	seller := f.createUser(t, enums.UserRoleSeller)
	customer := f.createUser(t, enums.UserRoleCustomer)
	product := f.createProduct(t, seller.ID, "10.00", 10)

	order := f.placeOrder(t, customer.ID, CreateOrderItemInput{ProductID: product.ID, Quantity: 4})

	ctx := context.Background()
	updated, err := f.svc.UpdateStatus(ctx, UpdateStatusInput{OrderID: order.ID, Status: enums.OrderStatusCanceled})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusCanceled, updated.Status)
	require.NotNil(t, updated.CanceledAt)

	var gotProduct models.Product
	require.NoError(t, f.db.First(&gotProduct, "id = ?", product.ID).Error)
	assert.Equal(t, 10, gotProduct.Stock)

	_, err = f.svc.UpdateStatus(ctx, UpdateStatusInput{OrderID: order.ID, Status: enums.OrderStatusCanceled})
	require.NoError(t, err)
	require.NoError(t, f.db.First(&gotProduct, "id = ?", product.ID).Error)
	assert.Equal(t, 10, gotProduct.Stock)
}

func TestDeliveryAndCancellationAreMutuallyExclusive(t *testing.T) {
	f := newOrdersFixture(t)
	seller := f.createUser(t, enums.UserRoleSeller)
	customer := f.createUser(t, enums.UserRoleCustomer)
	product := f.createProduct(t, seller.ID, "10.00", 10)

	ctx := context.Background()
	order := f.placeOrder(t, customer.ID, CreateOrderItemInput{ProductID: product.ID, Quantity: 3})
	_, err := f.svc.UpdateStatus(ctx, UpdateStatusInput{OrderID: order.ID, Status: enums.OrderStatusWaitingForPickup})
	require.NoError(t, err)
	_, err = f.svc.UpdateStatus(ctx, UpdateStatusInput{OrderID: order.ID, Status: enums.OrderStatusDelivered})
	require.NoError(t, err)

	// A cancel stamp issued from the stale waiting_for_pickup view, the way a
	// racing transaction would see the order, must find zero rows.
	repo := NewRepository(f.db)
	stamped, err := repo.MarkCanceled(ctx, order.ID, enums.OrderStatusWaitingForPickup, time.Now().UTC())
	require.NoError(t, err)
	assert.False(t, stamped)

	// Only the delivery side effects exist: the seller keeps the credit and
	// the sold units stay sold.
	var gotSeller models.User
	require.NoError(t, f.db.First(&gotSeller, "id = ?", seller.ID).Error)
	assert.True(t, gotSeller.Balance.Equal(decimal.RequireFromString("30.00")))

	var gotProduct models.Product
	require.NoError(t, f.db.First(&gotProduct, "id = ?", product.ID).Error)
	assert.Equal(t, 7, gotProduct.Stock)

	var gotOrder models.Order
	require.NoError(t, f.db.First(&gotOrder, "id = ?", order.ID).Error)
	assert.Equal(t, enums.OrderStatusDelivered, gotOrder.Status)
	assert.Nil(t, gotOrder.CanceledAt)

	// Same race in the other direction: a delivery stamp against an order
	// that was canceled first finds zero rows too.
	second := f.placeOrder(t, customer.ID, CreateOrderItemInput{ProductID: product.ID, Quantity: 2})
	_, err = f.svc.UpdateStatus(ctx, UpdateStatusInput{OrderID: second.ID, Status: enums.OrderStatusCanceled})
	require.NoError(t, err)
	stamped, err = repo.MarkDelivered(ctx, second.ID, enums.OrderStatusWaitingForPickup, time.Now().UTC())
	require.NoError(t, err)
	assert.False(t, stamped)
}

func TestDeliverySucceedsWhenNotifierFails(t *testing.T) {
	f := newOrdersFixture(t)
	seller := f.createUser(t, enums.UserRoleSeller)
	customer := f.createUser(t, enums.UserRoleCustomer)
	product := f.createProduct(t, seller.ID, "10.00", 10)

	ctx := context.Background()
	order := f.placeOrder(t, customer.ID, CreateOrderItemInput{ProductID: product.ID, Quantity: 2})
	_, err := f.svc.UpdateStatus(ctx, UpdateStatusInput{OrderID: order.ID, Status: enums.OrderStatusWaitingForPickup})
	require.NoError(t, err)

	f.notifier.err = errors.New("notification channel down")
	updated, err := f.svc.UpdateStatus(ctx, UpdateStatusInput{OrderID: order.ID, Status: enums.OrderStatusDelivered})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusDelivered, updated.Status)

	var gotSeller models.User
	require.NoError(t, f.db.First(&gotSeller, "id = ?", seller.ID).Error)
	assert.True(t, gotSeller.Balance.Equal(decimal.RequireFromString("20.00")))
}

func TestUpdateStatusRejectsIllegalTransition(t *testing.T) {
	f := newOrdersFixture(t)
	seller := f.createUser(t, enums.UserRoleSeller)
	customer := f.createUser(t, enums.UserRoleCustomer)
	product := f.createProduct(t, seller.ID, "10.00", 10)

	order := f.placeOrder(t, customer.ID, CreateOrderItemInput{ProductID: product.ID, Quantity: 1})

	// pending_confirmation cannot jump straight to delivered.
	_, err := f.svc.UpdateStatus(context.Background(), UpdateStatusInput{OrderID: order.ID, Status: enums.OrderStatusDelivered})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInvalidTransition))
}

func TestRequestCancelFlow(t *testing.T) {
	f := newOrdersFixture(t)
	seller := f.createUser(t, enums.UserRoleSeller)
	customer := f.createUser(t, enums.UserRoleCustomer)
	product := f.createProduct(t, seller.ID, "10.00", 10)

	ctx := context.Background()

	// Pending orders cancel immediately and return their stock.
	pending := f.placeOrder(t, customer.ID, CreateOrderItemInput{ProductID: product.ID, Quantity: 2})
	canceled, err := f.svc.RequestCancel(ctx, CancelRequestInput{OrderID: pending.ID, CustomerID: customer.ID})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusCanceled, canceled.Status)

	// Orders waiting for pickup only flag the request.
	waiting := f.placeOrder(t, customer.ID, CreateOrderItemInput{ProductID: product.ID, Quantity: 2})
	_, err = f.svc.UpdateStatus(ctx, UpdateStatusInput{OrderID: waiting.ID, Status: enums.OrderStatusWaitingForPickup})
	require.NoError(t, err)
	flagged, err := f.svc.RequestCancel(ctx, CancelRequestInput{OrderID: waiting.ID, CustomerID: customer.ID})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusCancelRequested, flagged.Status)

	// An admin can push the flagged order back to the pickup queue.
	restored, err := f.svc.UpdateStatus(ctx, UpdateStatusInput{OrderID: waiting.ID, Status: enums.OrderStatusWaitingForPickup})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusWaitingForPickup, restored.Status)
}

func TestRequestCancelHidesOtherCustomersOrders(t *testing.T) {
	f := newOrdersFixture(t)
	seller := f.createUser(t, enums.UserRoleSeller)
	customer := f.createUser(t, enums.UserRoleCustomer)
	stranger := f.createUser(t, enums.UserRoleCustomer)
	product := f.createProduct(t, seller.ID, "10.00", 10)

	order := f.placeOrder(t, customer.ID, CreateOrderItemInput{ProductID: product.ID, Quantity: 1})

	_, err := f.svc.RequestCancel(context.Background(), CancelRequestInput{OrderID: order.ID, CustomerID: stranger.ID})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestDeleteRemovesOrderAndItems(t *testing.T) {
	f := newOrdersFixture(t)
	seller := f.createUser(t, enums.UserRoleSeller)
	customer := f.createUser(t, enums.UserRoleCustomer)
	product := f.createProduct(t, seller.ID, "10.00", 10)

	ctx := context.Background()
	order := f.placeOrder(t, customer.ID, CreateOrderItemInput{ProductID: product.ID, Quantity: 1})

	require.NoError(t, f.svc.Delete(ctx, order.ID))

	_, err := f.svc.Get(ctx, order.ID)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))

	var itemCount int64
	require.NoError(t, f.db.Model(&models.OrderItem{}).Where("order_id = ?", order.ID).Count(&itemCount).Error)
	assert.Zero(t, itemCount)

	err = f.svc.Delete(ctx, uuid.New())
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestListByCustomerAndSellerItems(t *testing.T) {
	f := newOrdersFixture(t)
	seller := f.createUser(t, enums.UserRoleSeller)
	customer := f.createUser(t, enums.UserRoleCustomer)
	product := f.createProduct(t, seller.ID, "10.00", 20)

	f.placeOrder(t, customer.ID, CreateOrderItemInput{ProductID: product.ID, Quantity: 1})
	f.placeOrder(t, customer.ID, CreateOrderItemInput{ProductID: product.ID, Quantity: 2})

	orders, err := f.svc.ListByCustomer(context.Background(), customer.ID)
	require.NoError(t, err)
	assert.Len(t, orders, 2)

	items, err := f.svc.ListSellerItems(context.Background(), seller.ID)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}
