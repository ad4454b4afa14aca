package cron

import (
	"context"
	"fmt"

	"github.com/phamdt203/zenmart-backend/pkg/logger"
)

type stockSyncer interface {
	SyncAllProductStock(ctx context.Context) (int, error)
}

// StockSyncJobParams configure the product stock reconciliation job.
type StockSyncJobParams struct {
	Logger    *logger.Logger
	Reconcile stockSyncer
}

// NewStockSyncJob builds the job that resets denormalized product stock to
// the sum of its variant rows.
func NewStockSyncJob(params StockSyncJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Reconcile == nil {
		return nil, fmt.Errorf("reconcile service required")
	}
	return &stockSyncJob{
		logg:      params.Logger,
		reconcile: params.Reconcile,
	}, nil
}

type stockSyncJob struct {
	logg      *logger.Logger
	reconcile stockSyncer
}

func (j *stockSyncJob) Name() string { return "product-stock-sync" }

func (j *stockSyncJob) Run(ctx context.Context) error {
	synced, err := j.reconcile.SyncAllProductStock(ctx)
	logCtx := j.logg.WithField(ctx, "products_synced", synced)
	if err != nil {
		return fmt.Errorf("product stock sync: %w", err)
	}
	j.logg.Info(logCtx, "product stock sync complete")
	return nil
}
