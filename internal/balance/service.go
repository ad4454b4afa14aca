package balance

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/phamdt203/zenmart-backend/pkg/db"
	pkgerrors "github.com/phamdt203/zenmart-backend/pkg/errors"
	"github.com/phamdt203/zenmart-backend/pkg/money"
)

// Service defines the movements allowed against a seller's withdrawable
// balance. Callers run these inside their own transaction when the movement
// must commit together with an order or payout row.
type Service interface {
	Credit(ctx context.Context, tx *gorm.DB, sellerID uuid.UUID, amount decimal.Decimal) error
	Debit(ctx context.Context, tx *gorm.DB, sellerID uuid.UUID, amount decimal.Decimal) error
	Refund(ctx context.Context, tx *gorm.DB, sellerID uuid.UUID, amount decimal.Decimal) error
	Balance(ctx context.Context, sellerID uuid.UUID) (decimal.Decimal, error)
}

type service struct {
	repo Repository
}

// NewService wires a balance service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("balance repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Credit(ctx context.Context, tx *gorm.DB, sellerID uuid.UUID, amount decimal.Decimal) error {
	if sellerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "seller id required")
	}
	if !money.IsPositive(amount) {
		return pkgerrors.New(pkgerrors.CodeValidation, "credit amount must be positive")
	}

	ok, err := s.repo.WithTx(tx).Credit(ctx, sellerID, amount)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "credit seller balance")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "seller not found")
	}
	return nil
}

// Refund returns previously held funds. Same movement as Credit but the
// failure message names the refund so ledger audits can tell them apart.
func (s *service) Refund(ctx context.Context, tx *gorm.DB, sellerID uuid.UUID, amount decimal.Decimal) error {
	if sellerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "seller id required")
	}
	if !money.IsPositive(amount) {
		return pkgerrors.New(pkgerrors.CodeValidation, "refund amount must be positive")
	}

	ok, err := s.repo.WithTx(tx).Credit(ctx, sellerID, amount)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "refund seller balance")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "seller not found")
	}
	return nil
}

func (s *service) Debit(ctx context.Context, tx *gorm.DB, sellerID uuid.UUID, amount decimal.Decimal) error {
	if sellerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "seller id required")
	}
	if !money.IsPositive(amount) {
		return pkgerrors.New(pkgerrors.CodeValidation, "debit amount must be positive")
	}

	repo := s.repo.WithTx(tx)
	ok, err := repo.Debit(ctx, sellerID, amount)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "debit seller balance")
	}
	if ok {
		return nil
	}

	// Distinguish a missing seller from an underfunded one.
	if _, err := repo.FindSeller(ctx, sellerID); err != nil {
		if db.IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "seller not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load seller")
	}
	return pkgerrors.New(pkgerrors.CodeInsufficientBalance, "seller balance is insufficient")
}

func (s *service) Balance(ctx context.Context, sellerID uuid.UUID) (decimal.Decimal, error) {
	if sellerID == uuid.Nil {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "seller id required")
	}
	seller, err := s.repo.FindSeller(ctx, sellerID)
	if err != nil {
		if db.IsNotFound(err) {
			return decimal.Zero, pkgerrors.New(pkgerrors.CodeNotFound, "seller not found")
		}
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load seller")
	}
	return seller.Balance, nil
}
