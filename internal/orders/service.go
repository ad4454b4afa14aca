package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/phamdt203/zenmart-backend/internal/inventory"
	"github.com/phamdt203/zenmart-backend/internal/ledger"
	"github.com/phamdt203/zenmart-backend/pkg/db"
	"github.com/phamdt203/zenmart-backend/pkg/db/models"
	"github.com/phamdt203/zenmart-backend/pkg/enums"
	pkgerrors "github.com/phamdt203/zenmart-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// StockController moves inventory for order lines.
type StockController interface {
	Product(ctx context.Context, tx *gorm.DB, productID uuid.UUID) (*models.Product, error)
	Debit(ctx context.Context, tx *gorm.DB, productID uuid.UUID, sel inventory.Selection, qty int) error
	Credit(ctx context.Context, tx *gorm.DB, productID uuid.UUID, sel inventory.Selection, qty int) error
}

// SellerLedger credits seller balances when revenue is earned.
type SellerLedger interface {
	Credit(ctx context.Context, tx *gorm.DB, sellerID uuid.UUID, amount decimal.Decimal) error
}

// BalanceJournal appends an audit entry for every seller balance movement,
// inside the same transaction as the movement itself.
type BalanceJournal interface {
	Record(ctx context.Context, tx *gorm.DB, input ledger.RecordEntryInput) (*models.LedgerEntry, error)
}

// Notifier delivers in-app notifications after lifecycle changes. Failures
// are reported but never fail the order operation itself.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, kind enums.NotificationType, title, message string) error
}

// Service defines the order lifecycle operations.
type Service interface {
	Create(ctx context.Context, input CreateOrderInput) (*models.Order, error)
	Get(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.Order, error)
	ListSellerItems(ctx context.Context, sellerID uuid.UUID) ([]models.OrderItem, error)
	UpdateStatus(ctx context.Context, input UpdateStatusInput) (*models.Order, error)
	RequestCancel(ctx context.Context, input CancelRequestInput) (*models.Order, error)
	Delete(ctx context.Context, orderID uuid.UUID) error
}

type service struct {
	repo     Repository
	tx       txRunner
	stock    StockController
	ledger   SellerLedger
	journal  BalanceJournal
	notifier Notifier
}

// NewService builds an order service with the required dependencies.
// The journal and notifier are optional.
func NewService(repo Repository, tx txRunner, stock StockController, ledger SellerLedger, journal BalanceJournal, notifier Notifier) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if stock == nil {
		return nil, fmt.Errorf("stock controller required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("seller ledger required")
	}
	return &service{
		repo:     repo,
		tx:       tx,
		stock:    stock,
		ledger:   ledger,
		journal:  journal,
		notifier: notifier,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	if input.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	if strings.TrimSpace(input.ShippingAddress) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping address required")
	}
	if !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order requires at least one item")
	}
	for _, item := range input.Items {
		if item.ProductID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item product id required")
		}
		if item.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be positive")
		}
	}

	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		known, err := repo.CustomerExists(ctx, input.CustomerID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
		}
		if !known {
			return pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}

		total := decimal.Zero
		items := make([]models.OrderItem, 0, len(input.Items))

		for _, line := range input.Items {
			product, err := s.stock.Product(ctx, tx, line.ProductID)
			if err != nil {
				return err
			}
			if product.Status != enums.ProductStatusAvailable {
				return pkgerrors.New(pkgerrors.CodeConflict, "product is not available for purchase")
			}

			sel := inventory.Selection{Color: line.Color, Size: line.Size}
			if err := s.stock.Debit(ctx, tx, product.ID, sel, line.Quantity); err != nil {
				return err
			}

			item := models.OrderItem{
				ID:        uuid.New(),
				ProductID: product.ID,
				SellerID:  product.SellerID,
				Quantity:  line.Quantity,
				Price:     product.Price,
			}
			if color := sel.NormalizedColor(); color != "" {
				item.SelectedColor = &color
			}
			if size := sel.NormalizedSize(); size != "" {
				item.SelectedSize = &size
			}
			total = total.Add(item.Subtotal())
			items = append(items, item)
		}

		order = &models.Order{
			ID:              uuid.New(),
			CustomerID:      input.CustomerID,
			Status:          enums.OrderStatusPendingConfirmation,
			TotalAmount:     total,
			ShippingAddress: strings.TrimSpace(input.ShippingAddress),
			PaymentMethod:   input.PaymentMethod,
			Items:           items,
		}
		if err := repo.Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, order.CustomerID, enums.NotificationTypeOrder,
		"Order placed",
		fmt.Sprintf("Your order %s has been placed and is awaiting confirmation.", order.ID))
	return order, nil
}

func (s *service) Get(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.Order, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	orders, err := s.repo.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list customer orders")
	}
	return orders, nil
}

func (s *service) ListSellerItems(ctx context.Context, sellerID uuid.UUID) ([]models.OrderItem, error) {
	if sellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller id required")
	}
	items, err := s.repo.ListSellerItems(ctx, sellerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list seller items")
	}
	return items, nil
}

// UpdateStatus moves an order along the lifecycle graph. Delivery and
// cancellation carry side effects that are applied exactly once, keyed on
// the delivered_at and canceled_at stamps.
func (s *service) UpdateStatus(ctx context.Context, input UpdateStatusInput) (*models.Order, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}

	var (
		order    *models.Order
		notices  []notice
		previous enums.OrderStatus
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		notices = notices[:0]
		repo := s.repo.WithTx(tx)

		loaded, err := repo.FindByID(ctx, input.OrderID)
		if err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		order = loaded
		previous = order.Status

		if order.Status == input.Status {
			return nil
		}
		if !CanTransition(order.Status, input.Status) {
			return pkgerrors.New(pkgerrors.CodeInvalidTransition,
				fmt.Sprintf("cannot move order from %s to %s", order.Status, input.Status))
		}

		switch input.Status {
		case enums.OrderStatusDelivered:
			return s.applyDelivery(ctx, tx, repo, order, &notices)
		case enums.OrderStatusCanceled:
			return s.applyCancellation(ctx, tx, repo, order, &notices)
		default:
			if err := repo.UpdateStatus(ctx, order.ID, input.Status); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
			}
			order.Status = input.Status
			return nil
		}
	})
	if err != nil {
		return nil, err
	}

	if previous != order.Status {
		for _, n := range notices {
			s.notify(ctx, n.userID, n.kind, n.title, n.message)
		}
	}
	return order, nil
}

func (s *service) applyDelivery(ctx context.Context, tx *gorm.DB, repo Repository, order *models.Order, notices *[]notice) error {
	now := time.Now().UTC()
	stamped, err := repo.MarkDelivered(ctx, order.ID, order.Status, now)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark order delivered")
	}
	if !stamped {
		return pkgerrors.New(pkgerrors.CodeConflict, "order changed concurrently")
	}
	order.Status = enums.OrderStatusDelivered
	order.DeliveredAt = &now

	for sellerID, amount := range revenueBySeller(order.Items) {
		if err := s.ledger.Credit(ctx, tx, sellerID, amount); err != nil {
			return err
		}
		if s.journal != nil {
			if _, err := s.journal.Record(ctx, tx, ledger.RecordEntryInput{
				SellerID:    sellerID,
				Kind:        enums.LedgerEntryKindOrderCredit,
				Amount:      amount,
				ReferenceID: order.ID,
			}); err != nil {
				return err
			}
		}
		*notices = append(*notices, notice{
			userID: sellerID,
			kind:   enums.NotificationTypeOrder,
			title:  "Order delivered",
			message: fmt.Sprintf("Order %s was delivered. %s was credited to your balance.",
				order.ID, amount.StringFixed(2)),
		})
	}
	*notices = append(*notices, notice{
		userID:  order.CustomerID,
		kind:    enums.NotificationTypeOrder,
		title:   "Order delivered",
		message: fmt.Sprintf("Your order %s has been delivered.", order.ID),
	})
	return nil
}

func (s *service) applyCancellation(ctx context.Context, tx *gorm.DB, repo Repository, order *models.Order, notices *[]notice) error {
	now := time.Now().UTC()
	stamped, err := repo.MarkCanceled(ctx, order.ID, order.Status, now)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark order canceled")
	}
	if !stamped {
		return pkgerrors.New(pkgerrors.CodeConflict, "order changed concurrently")
	}
	order.Status = enums.OrderStatusCanceled
	order.CanceledAt = &now

	for _, item := range order.Items {
		sel := selectionFromItem(item)
		if err := s.stock.Credit(ctx, tx, item.ProductID, sel, item.Quantity); err != nil {
			return err
		}
	}
	*notices = append(*notices, notice{
		userID:  order.CustomerID,
		kind:    enums.NotificationTypeOrder,
		title:   "Order canceled",
		message: fmt.Sprintf("Your order %s has been canceled.", order.ID),
	})
	return nil
}

// RequestCancel flags the order for cancellation on behalf of its customer.
// Pending orders cancel immediately; orders already moving to the carrier
// wait for an admin decision.
func (s *service) RequestCancel(ctx context.Context, input CancelRequestInput) (*models.Order, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}

	order, err := s.Get(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	if order.CustomerID != input.CustomerID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}

	switch order.Status {
	case enums.OrderStatusPendingConfirmation:
		return s.UpdateStatus(ctx, UpdateStatusInput{OrderID: order.ID, Status: enums.OrderStatusCanceled})
	case enums.OrderStatusWaitingForPickup:
		return s.UpdateStatus(ctx, UpdateStatusInput{OrderID: order.ID, Status: enums.OrderStatusCancelRequested})
	case enums.OrderStatusCancelRequested:
		return order, nil
	default:
		return nil, pkgerrors.New(pkgerrors.CodeInvalidTransition, "order can no longer be canceled")
	}
}

// Delete removes an order and its items.
func (s *service) Delete(ctx context.Context, orderID uuid.UUID) error {
	if orderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByID(ctx, orderID)
		if err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if err := repo.Delete(ctx, order.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete order")
		}
		return nil
	})
}

type notice struct {
	userID  uuid.UUID
	kind    enums.NotificationType
	title   string
	message string
}

func (s *service) notify(ctx context.Context, userID uuid.UUID, kind enums.NotificationType, title, message string) {
	if s.notifier == nil {
		return
	}
	// Notification failures never surface to the caller.
	_ = s.notifier.Notify(ctx, userID, kind, title, message)
}

func revenueBySeller(items []models.OrderItem) map[uuid.UUID]decimal.Decimal {
	revenue := make(map[uuid.UUID]decimal.Decimal, len(items))
	for _, item := range items {
		current, ok := revenue[item.SellerID]
		if !ok {
			current = decimal.Zero
		}
		revenue[item.SellerID] = current.Add(item.Subtotal())
	}
	return revenue
}

func selectionFromItem(item models.OrderItem) inventory.Selection {
	sel := inventory.Selection{}
	if item.SelectedColor != nil {
		sel.Color = *item.SelectedColor
	}
	if item.SelectedSize != nil {
		sel.Size = *item.SelectedSize
	}
	return sel
}
