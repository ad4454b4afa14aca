package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/phamdt203/zenmart-backend/pkg/enums"
)

// Product is a seller listing. Stock is the denormalized sum of the variant
// stocks whenever variants exist; the inventory ledger keeps both in step.
type Product struct {
	ID        uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	SellerID  uuid.UUID           `gorm:"column:seller_id;type:uuid;not null"`
	Name      string              `gorm:"column:name;not null"`
	Price     decimal.Decimal     `gorm:"column:price;type:numeric(12,2);not null"`
	Stock     int                 `gorm:"column:stock;not null;default:0"`
	Status    enums.ProductStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	Variants  []ProductVariant    `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// ProductVariant is a (color, size) stock-keeping unit under a product.
type ProductVariant struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null;index"`
	Color     string    `gorm:"column:color"`
	Size      string    `gorm:"column:size"`
	Stock     int       `gorm:"column:stock;not null;default:0"`
}
