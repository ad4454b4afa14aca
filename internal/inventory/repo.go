package inventory

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/phamdt203/zenmart-backend/pkg/db/models"
	"github.com/phamdt203/zenmart-backend/pkg/enums"
)

// Repository manages stock persistence for products and their variants.
// The debit helpers use guarded single-statement updates so concurrent
// orders can never drive a stock count below zero.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error)
	FindVariantExact(ctx context.Context, productID uuid.UUID, color, size string) (*models.ProductVariant, error)
	FindVariantBySize(ctx context.Context, productID uuid.UUID, size string) (*models.ProductVariant, error)
	HasVariants(ctx context.Context, productID uuid.UUID) (bool, error)
	DebitVariantStock(ctx context.Context, variantID uuid.UUID, qty int) (bool, error)
	CreditVariantStock(ctx context.Context, variantID uuid.UUID, qty int) error
	DebitProductStock(ctx context.Context, productID uuid.UUID, qty int) (bool, error)
	CreditProductStock(ctx context.Context, productID uuid.UUID, qty int) error
	SumVariantStock(ctx context.Context, productID uuid.UUID) (int, error)
	SetProductStock(ctx context.Context, productID uuid.UUID, stock int) error
	MarkOutOfStock(ctx context.Context, productID uuid.UUID) error
	MarkBackInStock(ctx context.Context, productID uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an inventory repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", productID).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) FindVariantExact(ctx context.Context, productID uuid.UUID, color, size string) (*models.ProductVariant, error) {
	var variant models.ProductVariant
	if err := r.db.WithContext(ctx).
		Where("product_id = ? AND color = ? AND size = ?", productID, color, size).
		First(&variant).Error; err != nil {
		return nil, err
	}
	return &variant, nil
}

func (r *repository) FindVariantBySize(ctx context.Context, productID uuid.UUID, size string) (*models.ProductVariant, error) {
	var variant models.ProductVariant
	if err := r.db.WithContext(ctx).
		Where("product_id = ? AND size = ?", productID, size).
		Order("color ASC").
		First(&variant).Error; err != nil {
		return nil, err
	}
	return &variant, nil
}

func (r *repository) HasVariants(ctx context.Context, productID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ProductVariant{}).
		Where("product_id = ?", productID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) DebitVariantStock(ctx context.Context, variantID uuid.UUID, qty int) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.ProductVariant{}).
		Where("id = ? AND stock >= ?", variantID, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) CreditVariantStock(ctx context.Context, variantID uuid.UUID, qty int) error {
	return r.db.WithContext(ctx).
		Model(&models.ProductVariant{}).
		Where("id = ?", variantID).
		UpdateColumn("stock", gorm.Expr("stock + ?", qty)).Error
}

func (r *repository) DebitProductStock(ctx context.Context, productID uuid.UUID, qty int) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock >= ?", productID, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) CreditProductStock(ctx context.Context, productID uuid.UUID, qty int) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumn("stock", gorm.Expr("stock + ?", qty)).Error
}

func (r *repository) SumVariantStock(ctx context.Context, productID uuid.UUID) (int, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.ProductVariant{}).
		Where("product_id = ?", productID).
		Select("COALESCE(SUM(stock), 0)").
		Scan(&total).Error; err != nil {
		return 0, err
	}
	return int(total), nil
}

func (r *repository) SetProductStock(ctx context.Context, productID uuid.UUID, stock int) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumn("stock", stock).Error
}

func (r *repository) MarkOutOfStock(ctx context.Context, productID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock = 0 AND status = ?", productID, enums.ProductStatusAvailable).
		UpdateColumn("status", enums.ProductStatusOutOfStock).Error
}

func (r *repository) MarkBackInStock(ctx context.Context, productID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock > 0 AND status = ?", productID, enums.ProductStatusOutOfStock).
		UpdateColumn("status", enums.ProductStatusAvailable).Error
}
