package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/phamdt203/zenmart-backend/pkg/enums"
)

// Payout is a seller withdrawal request. The balance debit happens at request
// time; completion only confirms the external transfer, cancellation refunds.
type Payout struct {
	ID        uuid.UUID          `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	SellerID  uuid.UUID          `gorm:"column:seller_id;type:uuid;not null;index"`
	Amount    decimal.Decimal    `gorm:"column:amount;type:numeric(12,2);not null"`
	Status    enums.PayoutStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	Method    string             `gorm:"column:method;not null"`
	CreatedAt time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
