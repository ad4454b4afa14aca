package cron

import (
	"context"
	"fmt"

	"github.com/phamdt203/zenmart-backend/pkg/logger"
)

type balanceSyncer interface {
	SyncAllSellerBalances(ctx context.Context) (int, error)
}

// BalanceSyncJobParams configure the seller balance reconciliation job.
type BalanceSyncJobParams struct {
	Logger    *logger.Logger
	Reconcile balanceSyncer
}

// NewBalanceSyncJob builds the job that rewrites every seller balance from
// the delivered-order and payout ledgers.
func NewBalanceSyncJob(params BalanceSyncJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Reconcile == nil {
		return nil, fmt.Errorf("reconcile service required")
	}
	return &balanceSyncJob{
		logg:      params.Logger,
		reconcile: params.Reconcile,
	}, nil
}

type balanceSyncJob struct {
	logg      *logger.Logger
	reconcile balanceSyncer
}

func (j *balanceSyncJob) Name() string { return "seller-balance-sync" }

func (j *balanceSyncJob) Run(ctx context.Context) error {
	synced, err := j.reconcile.SyncAllSellerBalances(ctx)
	logCtx := j.logg.WithField(ctx, "sellers_synced", synced)
	if err != nil {
		// Partial failures still synced the sellers counted above.
		return fmt.Errorf("seller balance sync: %w", err)
	}
	j.logg.Info(logCtx, "seller balance sync complete")
	return nil
}
