package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/phamdt203/zenmart-backend/pkg/db"
	"github.com/phamdt203/zenmart-backend/pkg/db/models"
	pkgerrors "github.com/phamdt203/zenmart-backend/pkg/errors"
)

// Service defines stock movements against products and their variants.
// Debit and Credit expect to run inside the caller's transaction so an
// order either claims every line's stock or none of it.
type Service interface {
	Product(ctx context.Context, tx *gorm.DB, productID uuid.UUID) (*models.Product, error)
	Resolve(ctx context.Context, tx *gorm.DB, productID uuid.UUID, sel Selection) (*models.ProductVariant, error)
	Debit(ctx context.Context, tx *gorm.DB, productID uuid.UUID, sel Selection, qty int) error
	Credit(ctx context.Context, tx *gorm.DB, productID uuid.UUID, sel Selection, qty int) error
}

type service struct {
	repo Repository
}

// NewService wires an inventory service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Product(ctx context.Context, tx *gorm.DB, productID uuid.UUID) (*models.Product, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	product, err := s.repo.WithTx(tx).FindProduct(ctx, productID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

// Resolve finds the variant matching the selection. Resolution prefers an
// exact (color, size) match and falls back to a size-only match, since many
// listings carry a single color per size. Products without variants, and
// orders that name no size at all, resolve to nil and move stock on the
// aggregate alone.
func (s *service) Resolve(ctx context.Context, tx *gorm.DB, productID uuid.UUID, sel Selection) (*models.ProductVariant, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	repo := s.repo.WithTx(tx)

	hasVariants, err := repo.HasVariants(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check product variants")
	}
	if !hasVariants || !sel.HasSize() {
		return nil, nil
	}

	if sel.HasColor() {
		variant, err := repo.FindVariantExact(ctx, productID, sel.NormalizedColor(), sel.NormalizedSize())
		if err == nil {
			return variant, nil
		}
		if !db.IsNotFound(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find variant")
		}
	}

	variant, err := repo.FindVariantBySize(ctx, productID, sel.NormalizedSize())
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no variant matches the requested selection")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find variant by size")
	}
	return variant, nil
}

func (s *service) Debit(ctx context.Context, tx *gorm.DB, productID uuid.UUID, sel Selection, qty int) error {
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	repo := s.repo.WithTx(tx)

	variant, err := s.Resolve(ctx, tx, productID, sel)
	if err != nil {
		return err
	}

	if variant != nil {
		ok, err := repo.DebitVariantStock(ctx, variant.ID, qty)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "debit variant stock")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock for selected variant")
		}
	}

	ok, err := repo.DebitProductStock(ctx, productID, qty)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "debit product stock")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock for product")
	}

	if err := repo.MarkOutOfStock(ctx, productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "refresh product status")
	}
	return nil
}

func (s *service) Credit(ctx context.Context, tx *gorm.DB, productID uuid.UUID, sel Selection, qty int) error {
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	repo := s.repo.WithTx(tx)

	variant, err := s.Resolve(ctx, tx, productID, sel)
	if err != nil {
		// The variant may have been retired after the order was placed.
		// Stock still returns to the product aggregate.
		if !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
			return err
		}
		variant = nil
	}

	if variant != nil {
		if err := repo.CreditVariantStock(ctx, variant.ID, qty); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "credit variant stock")
		}
	}

	if err := repo.CreditProductStock(ctx, productID, qty); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "credit product stock")
	}

	if err := repo.MarkBackInStock(ctx, productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "refresh product status")
	}
	return nil
}
