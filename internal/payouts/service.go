package payouts

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/phamdt203/zenmart-backend/internal/ledger"
	"github.com/phamdt203/zenmart-backend/pkg/db"
	"github.com/phamdt203/zenmart-backend/pkg/db/models"
	"github.com/phamdt203/zenmart-backend/pkg/enums"
	pkgerrors "github.com/phamdt203/zenmart-backend/pkg/errors"
	"github.com/phamdt203/zenmart-backend/pkg/money"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// SellerLedger moves the seller balance when payouts are requested or refunded.
type SellerLedger interface {
	Debit(ctx context.Context, tx *gorm.DB, sellerID uuid.UUID, amount decimal.Decimal) error
	Refund(ctx context.Context, tx *gorm.DB, sellerID uuid.UUID, amount decimal.Decimal) error
	Balance(ctx context.Context, sellerID uuid.UUID) (decimal.Decimal, error)
}

// StatsCache caches the computed seller stats view. Implemented by the
// redis client; a nil cache disables caching.
type StatsCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	SellerStatsKey(sellerID string) string
}

// BalanceJournal appends an audit entry for every seller balance movement,
// inside the same transaction as the movement itself.
type BalanceJournal interface {
	Record(ctx context.Context, tx *gorm.DB, input ledger.RecordEntryInput) (*models.LedgerEntry, error)
}

// Notifier delivers in-app notifications for payout lifecycle changes.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, kind enums.NotificationType, title, message string) error
}

// RequestPayoutInput captures a seller withdrawal request.
type RequestPayoutInput struct {
	SellerID uuid.UUID
	Amount   decimal.Decimal
	Method   string
}

// UpdateStatusInput resolves a pending payout.
type UpdateStatusInput struct {
	PayoutID uuid.UUID
	Status   enums.PayoutStatus
}

// SellerStats is the financial summary shown on a seller dashboard.
// TotalEarned is the reporting view of lifetime revenue: what is still held
// plus everything ever moved into a non-refunded payout.
type SellerStats struct {
	Balance        decimal.Decimal `json:"balance"`
	TotalCompleted decimal.Decimal `json:"total_completed"`
	TotalPending   decimal.Decimal `json:"total_pending"`
	TotalEarned    decimal.Decimal `json:"total_earned"`
}

// Service defines payout workflow operations.
type Service interface {
	Request(ctx context.Context, input RequestPayoutInput) (*models.Payout, error)
	Get(ctx context.Context, payoutID uuid.UUID) (*models.Payout, error)
	UpdateStatus(ctx context.Context, input UpdateStatusInput) (*models.Payout, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]models.Payout, error)
	Stats(ctx context.Context, sellerID uuid.UUID) (*SellerStats, error)
}

type service struct {
	repo     Repository
	tx       txRunner
	ledger   SellerLedger
	journal  BalanceJournal
	cache    StatsCache
	cacheTTL time.Duration
	notifier Notifier
}

// NewService builds a payout service. Journal, cache and notifier are optional.
func NewService(repo Repository, tx txRunner, ledger SellerLedger, journal BalanceJournal, cache StatsCache, cacheTTL time.Duration, notifier Notifier) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("payouts repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("seller ledger required")
	}
	return &service{
		repo:     repo,
		tx:       tx,
		ledger:   ledger,
		journal:  journal,
		cache:    cache,
		cacheTTL: cacheTTL,
		notifier: notifier,
	}, nil
}

// Request debits the seller balance up front and records a pending payout.
// The debit is the guard: a seller can never have more requested than earned.
func (s *service) Request(ctx context.Context, input RequestPayoutInput) (*models.Payout, error) {
	if input.SellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller id required")
	}
	if !money.IsPositive(input.Amount) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payout amount must be positive")
	}
	method := strings.TrimSpace(input.Method)
	if method == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payout method required")
	}

	var payout *models.Payout
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		isSeller, err := repo.SellerExists(ctx, input.SellerID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load seller")
		}
		if !isSeller {
			return pkgerrors.New(pkgerrors.CodeNotFound, "seller not found")
		}
		if err := s.ledger.Debit(ctx, tx, input.SellerID, input.Amount); err != nil {
			return err
		}
		payout = &models.Payout{
			ID:       uuid.New(),
			SellerID: input.SellerID,
			Amount:   input.Amount,
			Status:   enums.PayoutStatusPending,
			Method:   method,
		}
		if err := repo.Create(ctx, payout); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payout")
		}
		return s.journalEntry(ctx, tx, payout, enums.LedgerEntryKindPayoutDebit)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateStats(ctx, input.SellerID)
	s.notify(ctx, input.SellerID, "Payout requested",
		fmt.Sprintf("Your payout request for %s is pending review.", input.Amount.StringFixed(2)))
	return payout, nil
}

// UpdateStatus resolves a pending payout. Completion confirms the transfer;
// cancellation refunds the held amount back to the seller balance.
func (s *service) UpdateStatus(ctx context.Context, input UpdateStatusInput) (*models.Payout, error) {
	if input.PayoutID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payout id required")
	}
	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payout status")
	}

	var payout *models.Payout
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		loaded, err := repo.FindByID(ctx, input.PayoutID)
		if err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "payout not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payout")
		}
		payout = loaded

		if payout.Status == input.Status {
			return nil
		}
		if payout.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeInvalidTransition, "payout is already settled")
		}
		if input.Status == enums.PayoutStatusPending {
			return pkgerrors.New(pkgerrors.CodeInvalidTransition, "payout cannot return to pending")
		}

		swapped, err := repo.TransitionStatus(ctx, payout.ID, enums.PayoutStatusPending, input.Status)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update payout status")
		}
		if !swapped {
			return pkgerrors.New(pkgerrors.CodeConflict, "payout changed concurrently")
		}
		payout.Status = input.Status

		if input.Status == enums.PayoutStatusCancelled {
			// Return the amount held since the request.
			if err := s.ledger.Refund(ctx, tx, payout.SellerID, payout.Amount); err != nil {
				return err
			}
			return s.journalEntry(ctx, tx, payout, enums.LedgerEntryKindPayoutRefund)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateStats(ctx, payout.SellerID)
	switch payout.Status {
	case enums.PayoutStatusCompleted:
		s.notify(ctx, payout.SellerID, "Payout completed",
			fmt.Sprintf("Your payout of %s has been transferred.", payout.Amount.StringFixed(2)))
	case enums.PayoutStatusCancelled:
		s.notify(ctx, payout.SellerID, "Payout cancelled",
			fmt.Sprintf("Your payout of %s was cancelled and refunded to your balance.", payout.Amount.StringFixed(2)))
	}
	return payout, nil
}

func (s *service) Get(ctx context.Context, payoutID uuid.UUID) (*models.Payout, error) {
	if payoutID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payout id required")
	}
	payout, err := s.repo.FindByID(ctx, payoutID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payout not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payout")
	}
	return payout, nil
}

func (s *service) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]models.Payout, error) {
	if sellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller id required")
	}
	payouts, err := s.repo.ListBySeller(ctx, sellerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list payouts")
	}
	return payouts, nil
}

// Stats assembles the seller dashboard summary, serving from cache when the
// cached copy is still fresh.
func (s *service) Stats(ctx context.Context, sellerID uuid.UUID) (*SellerStats, error) {
	if sellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller id required")
	}

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, s.cache.SellerStatsKey(sellerID.String())); err == nil {
			var stats SellerStats
			if err := json.Unmarshal([]byte(cached), &stats); err == nil {
				return &stats, nil
			}
		}
	}

	currentBalance, err := s.ledger.Balance(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	completed, err := s.repo.SumByStatus(ctx, sellerID, enums.PayoutStatusCompleted)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum completed payouts")
	}
	pending, err := s.repo.SumByStatus(ctx, sellerID, enums.PayoutStatusPending)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum pending payouts")
	}

	stats := &SellerStats{
		Balance:        currentBalance,
		TotalCompleted: completed,
		TotalPending:   pending,
		TotalEarned:    currentBalance.Add(completed).Add(pending),
	}

	if s.cache != nil {
		if payload, err := json.Marshal(stats); err == nil {
			_ = s.cache.Set(ctx, s.cache.SellerStatsKey(sellerID.String()), string(payload), s.cacheTTL)
		}
	}
	return stats, nil
}

func (s *service) invalidateStats(ctx context.Context, sellerID uuid.UUID) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Del(ctx, s.cache.SellerStatsKey(sellerID.String()))
}

func (s *service) journalEntry(ctx context.Context, tx *gorm.DB, payout *models.Payout, kind enums.LedgerEntryKind) error {
	if s.journal == nil {
		return nil
	}
	_, err := s.journal.Record(ctx, tx, ledger.RecordEntryInput{
		SellerID:    payout.SellerID,
		Kind:        kind,
		Amount:      payout.Amount,
		ReferenceID: payout.ID,
	})
	return err
}

func (s *service) notify(ctx context.Context, sellerID uuid.UUID, title, message string) {
	if s.notifier == nil {
		return
	}
	_ = s.notifier.Notify(ctx, sellerID, enums.NotificationTypePayout, title, message)
}
