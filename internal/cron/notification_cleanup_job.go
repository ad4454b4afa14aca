package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/phamdt203/zenmart-backend/pkg/logger"
)

const notificationRetentionDays = 30

type notificationPruner interface {
	DeleteOlderThan(ctx context.Context, retention time.Duration) (int64, error)
}

// NotificationCleanupJobParams configure the notification retention job.
type NotificationCleanupJobParams struct {
	Logger        *logger.Logger
	Notifications notificationPruner
	RetentionDays int
}

// NewNotificationCleanupJob builds the job that prunes old notifications.
func NewNotificationCleanupJob(params NotificationCleanupJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Notifications == nil {
		return nil, fmt.Errorf("notifications service required")
	}
	retention := params.RetentionDays
	if retention <= 0 {
		retention = notificationRetentionDays
	}
	return &notificationCleanupJob{
		logg:          params.Logger,
		notifications: params.Notifications,
		retention:     retention,
	}, nil
}

type notificationCleanupJob struct {
	logg          *logger.Logger
	notifications notificationPruner
	retention     int
}

func (j *notificationCleanupJob) Name() string { return "notification-cleanup" }

func (j *notificationCleanupJob) Run(ctx context.Context) error {
	deleted, err := j.notifications.DeleteOlderThan(ctx, time.Duration(j.retention)*24*time.Hour)
	if err != nil {
		return fmt.Errorf("notification cleanup: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"retention_days": j.retention,
		"rows_deleted":   deleted,
	})
	j.logg.Info(logCtx, "notification cleanup complete")
	return nil
}
