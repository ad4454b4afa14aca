package ledger

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/phamdt203/zenmart-backend/pkg/db/models"
	"github.com/phamdt203/zenmart-backend/pkg/enums"
)

// Repository manages persistence for seller ledger entries.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, entry *models.LedgerEntry) error
	ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]models.LedgerEntry, error)
	CountByReference(ctx context.Context, referenceID uuid.UUID, kind enums.LedgerEntryKind) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, entry *models.LedgerEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]models.LedgerEntry, error) {
	var entries []models.LedgerEntry
	if err := r.db.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Order("created_at ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) CountByReference(ctx context.Context, referenceID uuid.UUID, kind enums.LedgerEntryKind) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.LedgerEntry{}).
		Where("reference_id = ? AND kind = ?", referenceID, kind).
		Count(&count).Error
	return count, err
}
