package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/phamdt203/zenmart-backend/pkg/db/models"
	"github.com/phamdt203/zenmart-backend/pkg/enums"
	pkgerrors "github.com/phamdt203/zenmart-backend/pkg/errors"
	"github.com/phamdt203/zenmart-backend/pkg/money"
)

// Service records seller balance movements. Record runs inside the caller's
// transaction so an entry exists exactly when the movement it documents does.
type Service interface {
	Record(ctx context.Context, tx *gorm.DB, input RecordEntryInput) (*models.LedgerEntry, error)
	HasEntry(ctx context.Context, referenceID uuid.UUID, kind enums.LedgerEntryKind) (bool, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]models.LedgerEntry, error)
}

type service struct {
	repo Repository
}

// RecordEntryInput captures the immutable data a ledger entry requires.
type RecordEntryInput struct {
	SellerID    uuid.UUID
	Kind        enums.LedgerEntryKind
	Amount      decimal.Decimal
	ReferenceID uuid.UUID
}

// NewService wires a ledger service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Record(ctx context.Context, tx *gorm.DB, input RecordEntryInput) (*models.LedgerEntry, error) {
	if input.SellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller id required")
	}
	if input.ReferenceID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reference id required")
	}
	if !input.Kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid ledger entry kind %q", input.Kind))
	}
	if !money.IsPositive(input.Amount) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ledger amount must be positive")
	}

	entry := &models.LedgerEntry{
		ID:          uuid.New(),
		SellerID:    input.SellerID,
		Kind:        input.Kind,
		Amount:      input.Amount,
		ReferenceID: input.ReferenceID,
	}
	if err := s.repo.WithTx(tx).Create(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record ledger entry")
	}
	return entry, nil
}

func (s *service) HasEntry(ctx context.Context, referenceID uuid.UUID, kind enums.LedgerEntryKind) (bool, error) {
	if referenceID == uuid.Nil {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "reference id required")
	}
	if !kind.IsValid() {
		return false, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid ledger entry kind %q", kind))
	}
	count, err := s.repo.CountByReference(ctx, referenceID, kind)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count ledger entries")
	}
	return count > 0, nil
}

func (s *service) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]models.LedgerEntry, error) {
	if sellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller id required")
	}
	entries, err := s.repo.ListBySeller(ctx, sellerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list ledger entries")
	}
	return entries, nil
}
