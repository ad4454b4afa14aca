package balance

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/phamdt203/zenmart-backend/pkg/db/models"
)

// Repository moves seller balances with single-statement updates so the
// arithmetic happens inside the database and never races Go-side reads.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindSeller(ctx context.Context, sellerID uuid.UUID) (*models.User, error)
	Credit(ctx context.Context, sellerID uuid.UUID, amount decimal.Decimal) (bool, error)
	Debit(ctx context.Context, sellerID uuid.UUID, amount decimal.Decimal) (bool, error)
	SetBalance(ctx context.Context, sellerID uuid.UUID, amount decimal.Decimal) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a balance repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindSeller(ctx context.Context, sellerID uuid.UUID) (*models.User, error) {
	var seller models.User
	if err := r.db.WithContext(ctx).First(&seller, "id = ?", sellerID).Error; err != nil {
		return nil, err
	}
	return &seller, nil
}

func (r *repository) Credit(ctx context.Context, sellerID uuid.UUID, amount decimal.Decimal) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", sellerID).
		UpdateColumn("balance", gorm.Expr("balance + ?", amount))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Debit only succeeds when the seller holds at least the requested amount.
func (r *repository) Debit(ctx context.Context, sellerID uuid.UUID, amount decimal.Decimal) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND balance >= ?", sellerID, amount).
		UpdateColumn("balance", gorm.Expr("balance - ?", amount))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) SetBalance(ctx context.Context, sellerID uuid.UUID, amount decimal.Decimal) error {
	result := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", sellerID).
		UpdateColumn("balance", amount)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
