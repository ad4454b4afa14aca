package reconcile

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/phamdt203/zenmart-backend/pkg/db"
	pkgerrors "github.com/phamdt203/zenmart-backend/pkg/errors"
	"github.com/phamdt203/zenmart-backend/pkg/money"
)

// RevenueSource reports what a seller has earned from delivered orders.
type RevenueSource interface {
	SellerDeliveredRevenue(ctx context.Context, sellerID uuid.UUID) (decimal.Decimal, error)
}

// PayoutSource reports what has already left (or is leaving) a seller balance.
type PayoutSource interface {
	SumNotCancelled(ctx context.Context, sellerID uuid.UUID) (decimal.Decimal, error)
}

// BalanceStore overwrites the stored seller balance with the derived value.
type BalanceStore interface {
	SetBalance(ctx context.Context, sellerID uuid.UUID, amount decimal.Decimal) error
}

// StockStore resyncs denormalized product stock from variant rows.
type StockStore interface {
	SumVariantStock(ctx context.Context, productID uuid.UUID) (int, error)
	SetProductStock(ctx context.Context, productID uuid.UUID, stock int) error
	MarkOutOfStock(ctx context.Context, productID uuid.UUID) error
	MarkBackInStock(ctx context.Context, productID uuid.UUID) error
}

// StatsCache invalidates cached seller stats after a balance rewrite.
type StatsCache interface {
	Del(ctx context.Context, keys ...string) error
	SellerStatsKey(sellerID string) string
}

// Service recomputes derived state from the source-of-truth tables. It exists
// to repair drift, whatever its cause, so every operation is safe to run
// repeatedly.
type Service interface {
	SyncSellerBalance(ctx context.Context, sellerID uuid.UUID) (decimal.Decimal, error)
	SyncAllSellerBalances(ctx context.Context) (int, error)
	SyncProductStock(ctx context.Context, productID uuid.UUID) (int, error)
	SyncAllProductStock(ctx context.Context) (int, error)
}

type service struct {
	repo    Repository
	revenue RevenueSource
	payouts PayoutSource
	balance BalanceStore
	stock   StockStore
	cache   StatsCache
}

// NewService builds a reconciliation service. The cache is optional.
func NewService(repo Repository, revenue RevenueSource, payouts PayoutSource, balance BalanceStore, stock StockStore, cache StatsCache) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reconcile repository required")
	}
	if revenue == nil {
		return nil, fmt.Errorf("revenue source required")
	}
	if payouts == nil {
		return nil, fmt.Errorf("payout source required")
	}
	if balance == nil {
		return nil, fmt.Errorf("balance store required")
	}
	if stock == nil {
		return nil, fmt.Errorf("stock store required")
	}
	return &service{
		repo:    repo,
		revenue: revenue,
		payouts: payouts,
		balance: balance,
		stock:   stock,
		cache:   cache,
	}, nil
}

// SyncSellerBalance recomputes a seller's balance as delivered revenue minus
// every payout that was not cancelled, clamped at zero.
func (s *service) SyncSellerBalance(ctx context.Context, sellerID uuid.UUID) (decimal.Decimal, error) {
	if sellerID == uuid.Nil {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "seller id required")
	}

	earned, err := s.revenue.SellerDeliveredRevenue(ctx, sellerID)
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum delivered revenue")
	}
	withdrawn, err := s.payouts.SumNotCancelled(ctx, sellerID)
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum payouts")
	}

	derived := money.ClampZero(earned.Sub(withdrawn))
	if err := s.balance.SetBalance(ctx, sellerID, derived); err != nil {
		if db.IsNotFound(err) {
			return decimal.Zero, pkgerrors.New(pkgerrors.CodeNotFound, "seller not found")
		}
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "write seller balance")
	}

	if s.cache != nil {
		_ = s.cache.Del(ctx, s.cache.SellerStatsKey(sellerID.String()))
	}
	return derived, nil
}

// SyncAllSellerBalances sweeps every seller. One seller's failure does not
// stop the sweep; errors are aggregated and returned together.
func (s *service) SyncAllSellerBalances(ctx context.Context) (int, error) {
	sellerIDs, err := s.repo.ListSellerIDs(ctx)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list sellers")
	}

	var errs error
	synced := 0
	for _, sellerID := range sellerIDs {
		if _, err := s.SyncSellerBalance(ctx, sellerID); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("seller %s: %w", sellerID, err))
			continue
		}
		synced++
	}
	return synced, errs
}

// SyncProductStock resets the denormalized product stock to the variant sum
// and fixes the availability flag if the counts drifted.
func (s *service) SyncProductStock(ctx context.Context, productID uuid.UUID) (int, error) {
	if productID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}

	total, err := s.stock.SumVariantStock(ctx, productID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum variant stock")
	}
	if err := s.stock.SetProductStock(ctx, productID, total); err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "write product stock")
	}
	if err := s.stock.MarkOutOfStock(ctx, productID); err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "refresh product status")
	}
	if err := s.stock.MarkBackInStock(ctx, productID); err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "refresh product status")
	}
	return total, nil
}

// SyncAllProductStock sweeps every product that carries variants.
func (s *service) SyncAllProductStock(ctx context.Context) (int, error) {
	productIDs, err := s.repo.ListProductIDsWithVariants(ctx)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}

	var errs error
	synced := 0
	for _, productID := range productIDs {
		if _, err := s.SyncProductStock(ctx, productID); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("product %s: %w", productID, err))
			continue
		}
		synced++
	}
	return synced, errs
}
