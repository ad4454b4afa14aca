package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/phamdt203/zenmart-backend/pkg/enums"
)

// LedgerEntry is one append-only movement on a seller balance. ReferenceID
// points at the order or payout that caused the movement, so the stored
// balance can always be traced back through its history.
type LedgerEntry struct {
	ID          uuid.UUID             `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	SellerID    uuid.UUID             `gorm:"column:seller_id;type:uuid;not null;index"`
	Kind        enums.LedgerEntryKind `gorm:"column:kind;type:text;not null"`
	Amount      decimal.Decimal       `gorm:"column:amount;type:numeric(12,2);not null"`
	ReferenceID uuid.UUID             `gorm:"column:reference_id;type:uuid;not null;index"`
	CreatedAt   time.Time             `gorm:"column:created_at;autoCreateTime"`
}
