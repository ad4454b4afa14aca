package payouts

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/phamdt203/zenmart-backend/pkg/db/models"
	"github.com/phamdt203/zenmart-backend/pkg/enums"
)

// Repository manages persistence for seller payouts.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, payout *models.Payout) error
	SellerExists(ctx context.Context, sellerID uuid.UUID) (bool, error)
	FindByID(ctx context.Context, payoutID uuid.UUID) (*models.Payout, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]models.Payout, error)
	TransitionStatus(ctx context.Context, payoutID uuid.UUID, from, to enums.PayoutStatus) (bool, error)
	SumByStatus(ctx context.Context, sellerID uuid.UUID, status enums.PayoutStatus) (decimal.Decimal, error)
	SumNotCancelled(ctx context.Context, sellerID uuid.UUID) (decimal.Decimal, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a payouts repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, payout *models.Payout) error {
	return r.db.WithContext(ctx).Create(payout).Error
}

// SellerExists reports whether the user exists and holds the seller role.
func (r *repository) SellerExists(ctx context.Context, sellerID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND role = ?", sellerID, enums.UserRoleSeller).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) FindByID(ctx context.Context, payoutID uuid.UUID) (*models.Payout, error) {
	var payout models.Payout
	if err := r.db.WithContext(ctx).First(&payout, "id = ?", payoutID).Error; err != nil {
		return nil, err
	}
	return &payout, nil
}

func (r *repository) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]models.Payout, error) {
	var payouts []models.Payout
	if err := r.db.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Order("created_at DESC").
		Find(&payouts).Error; err != nil {
		return nil, err
	}
	return payouts, nil
}

// TransitionStatus is a compare-and-swap on payout status. A false return
// means the payout was not in the expected source state.
func (r *repository) TransitionStatus(ctx context.Context, payoutID uuid.UUID, from, to enums.PayoutStatus) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Payout{}).
		Where("id = ? AND status = ?", payoutID, from).
		UpdateColumn("status", to)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) SumByStatus(ctx context.Context, sellerID uuid.UUID, status enums.PayoutStatus) (decimal.Decimal, error) {
	return r.sumWhere(ctx, "seller_id = ? AND status = ?", sellerID, status)
}

func (r *repository) SumNotCancelled(ctx context.Context, sellerID uuid.UUID) (decimal.Decimal, error) {
	return r.sumWhere(ctx, "seller_id = ? AND status <> ?", sellerID, enums.PayoutStatusCancelled)
}

func (r *repository) sumWhere(ctx context.Context, condition string, args ...any) (decimal.Decimal, error) {
	var raw sql.NullString
	err := r.db.WithContext(ctx).
		Model(&models.Payout{}).
		Where(condition, args...).
		Select("CAST(COALESCE(SUM(amount), 0) AS TEXT)").
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
