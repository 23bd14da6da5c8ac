package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"

	"wealthline.backend/pkg/logger"
)

type expiredPlanDeactivator interface {
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
}

// PlanExpiryJob deactivates user plans whose end date has passed.
type PlanExpiryJob struct {
	repo     expiredPlanDeactivator
	interval time.Duration
	now      func() time.Time
	stop     chan struct{}
}

func NewPlanExpiryJob(repo expiredPlanDeactivator) *PlanExpiryJob {
	return &PlanExpiryJob{
		repo:     repo,
		interval: time.Minute,
		now:      time.Now,
		stop:     make(chan struct{}),
	}
}

func (j *PlanExpiryJob) Start(ctx context.Context) {
	logger.Info(ctx, "Starting plan expiry job", zap.Duration("interval", j.interval))

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Plan expiry job stopped (context cancelled)")
			return
		case <-j.stop:
			logger.Info(ctx, "Plan expiry job stopped")
			return
		case <-ticker.C:
			j.processExpiredPlans(ctx)
		}
	}
}

func (j *PlanExpiryJob) Stop() {
	close(j.stop)
}

func (j *PlanExpiryJob) processExpiredPlans(ctx context.Context) {
	n, err := j.repo.DeactivateExpired(ctx, j.now().UTC())
	if err != nil {
		logger.Error(ctx, "Failed to deactivate expired plans", zap.Error(err))
		return
	}
	if n > 0 {
		logger.Info(ctx, "Deactivated expired plans", zap.Int64("count", n))
	}
}
