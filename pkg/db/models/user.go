package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/phamdt203/zenmart-backend/pkg/enums"
)

// User represents the canonical identity entity. Sellers accumulate a
// spendable balance that only the balance ledger and payout workflow mutate.
type User struct {
	ID        uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email     string          `gorm:"type:text;not null;uniqueIndex"`
	FullName  string          `gorm:"column:full_name;not null"`
	Phone     *string         `gorm:"column:phone"`
	Role      enums.UserRole  `gorm:"column:role;type:text;not null;default:'customer'"`
	Balance   decimal.Decimal `gorm:"column:balance;type:numeric(12,2);not null;default:0"`
	IsActive  bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
