package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/phamdt203/zenmart-backend/pkg/enums"
)

// Order is a customer purchase. DeliveredAt and CanceledAt double as
// idempotency markers: the seller credit and the stock return are applied
// exactly once, when the corresponding timestamp is first set.
type Order struct {
	ID              uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID      uuid.UUID           `gorm:"column:customer_id;type:uuid;not null;index"`
	Status          enums.OrderStatus   `gorm:"column:status;type:text;not null;default:'pending_confirmation'"`
	TotalAmount     decimal.Decimal     `gorm:"column:total_amount;type:numeric(12,2);not null"`
	ShippingAddress string              `gorm:"column:shipping_address"`
	PaymentMethod   enums.PaymentMethod `gorm:"column:payment_method;type:text;not null;default:'cod'"`
	Items           []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	DeliveredAt     *time.Time          `gorm:"column:delivered_at"`
	CanceledAt      *time.Time          `gorm:"column:canceled_at"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// OrderItem captures the immutable snapshot of one line within an order.
// Price and seller are frozen at order time and never re-derived.
type OrderItem struct {
	ID            uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID       uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID     uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	SellerID      uuid.UUID       `gorm:"column:seller_id;type:uuid;not null;index"`
	Quantity      int             `gorm:"column:quantity;not null"`
	Price         decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	SelectedColor *string         `gorm:"column:selected_color"`
	SelectedSize  *string         `gorm:"column:selected_size"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
}

// Subtotal is the revenue this line contributes on delivery.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
