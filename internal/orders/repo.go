package orders

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/phamdt203/zenmart-backend/pkg/db/models"
	"github.com/phamdt203/zenmart-backend/pkg/enums"
)

// Repository manages persistence for orders and their line items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) error
	CustomerExists(ctx context.Context, customerID uuid.UUID) (bool, error)
	FindByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.Order, error)
	ListSellerItems(ctx context.Context, sellerID uuid.UUID) ([]models.OrderItem, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) error
	MarkDelivered(ctx context.Context, orderID uuid.UUID, from enums.OrderStatus, now time.Time) (bool, error)
	MarkCanceled(ctx context.Context, orderID uuid.UUID, from enums.OrderStatus, now time.Time) (bool, error)
	Delete(ctx context.Context, orderID uuid.UUID) error
	SellerDeliveredRevenue(ctx context.Context, sellerID uuid.UUID) (decimal.Decimal, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an orders repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) CustomerExists(ctx context.Context, customerID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", customerID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) FindByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&order, "id = ?", orderID).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repository) ListSellerItems(ctx context.Context, sellerID uuid.UUID) ([]models.OrderItem, error) {
	var items []models.OrderItem
	if err := r.db.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Order("created_at DESC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) UpdateStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		UpdateColumn("status", status).Error
}

// MarkDelivered is a compare-and-swap from the status the caller loaded,
// stamping delivered_at exactly once. A false return means the order moved
// under the caller and no delivery side effects may be applied.
func (r *repository) MarkDelivered(ctx context.Context, orderID uuid.UUID, from enums.OrderStatus, now time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ? AND delivered_at IS NULL", orderID, from).
		UpdateColumns(map[string]any{
			"status":       enums.OrderStatusDelivered,
			"delivered_at": now,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// MarkCanceled stamps canceled_at exactly once, mirroring MarkDelivered.
func (r *repository) MarkCanceled(ctx context.Context, orderID uuid.UUID, from enums.OrderStatus, now time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ? AND canceled_at IS NULL", orderID, from).
		UpdateColumns(map[string]any{
			"status":      enums.OrderStatusCanceled,
			"canceled_at": now,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) Delete(ctx context.Context, orderID uuid.UUID) error {
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Delete(&models.OrderItem{}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Where("id = ?", orderID).
		Delete(&models.Order{}).Error
}

// SellerDeliveredRevenue sums the seller's line subtotals across delivered
// orders. This is the earned side of the reconciliation formula.
func (r *repository) SellerDeliveredRevenue(ctx context.Context, sellerID uuid.UUID) (decimal.Decimal, error) {
	var raw sql.NullString
	err := r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("order_items.seller_id = ? AND orders.status = ?", sellerID, enums.OrderStatusDelivered).
		Select("CAST(COALESCE(SUM(order_items.price * order_items.quantity), 0) AS TEXT)").
		Scan(&raw).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !raw.Valid || raw.String == "" {
		return decimal.Zero, nil
	}
	total, err := decimal.NewFromString(raw.String)
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}
