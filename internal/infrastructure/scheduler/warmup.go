package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/facturo/backend/internal/domain/metrics"
)

// DashboardComputer recomputes a tenant's dashboard snapshot. Satisfied by
// the metrics application service.
type DashboardComputer interface {
	InvalidateTenant(ctx context.Context, tenantID uuid.UUID) int64
	GetDashboard(ctx context.Context, tenantID uuid.UUID) (*metrics.DashboardSnapshot, error)
}

// WarmupConfig configures the snapshot warmup job
type WarmupConfig struct {
	Enabled      bool
	CronSchedule string
	Tenants      []uuid.UUID
}

// WarmupScheduler periodically refreshes dashboard snapshots for a fixed
// tenant list so hot tenants never pay the cold-compute latency. Warmup
// never changes cache-aside semantics: it only invalidates and recomputes
// through the regular path.
type WarmupScheduler struct {
	scheduler *gocron.Scheduler
	config    WarmupConfig
	computer  DashboardComputer
	logger    *zap.Logger
}

// NewWarmupScheduler creates a new WarmupScheduler
func NewWarmupScheduler(computer DashboardComputer, cfg WarmupConfig, logger *zap.Logger) *WarmupScheduler {
	return &WarmupScheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		config:    cfg,
		computer:  computer,
		logger:    logger,
	}
}

// Start schedules the warmup job and runs it asynchronously until the
// context is cancelled. A disabled scheduler starts nothing.
func (s *WarmupScheduler) Start(ctx context.Context) error {
	if !s.config.Enabled || len(s.config.Tenants) == 0 {
		s.logger.Info("Snapshot warmup disabled")
		return nil
	}

	s.logger.Info("Starting snapshot warmup scheduler",
		zap.String("cron", s.config.CronSchedule),
		zap.Int("tenants", len(s.config.Tenants)),
	)

	_, err := s.scheduler.Cron(s.config.CronSchedule).Do(func() {
		s.warmAll(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule snapshot warmup: %w", err)
	}

	s.scheduler.StartAsync()

	go func() {
		<-ctx.Done()
		s.logger.Info("Stopping snapshot warmup scheduler")
		s.scheduler.Stop()
	}()

	return nil
}

// warmAll refreshes every configured tenant sequentially. A failing tenant
// is logged and skipped; warmup must never take the service down.
func (s *WarmupScheduler) warmAll(ctx context.Context) {
	for _, tenantID := range s.config.Tenants {
		if ctx.Err() != nil {
			return
		}

		s.computer.InvalidateTenant(ctx, tenantID)
		if _, err := s.computer.GetDashboard(ctx, tenantID); err != nil {
			s.logger.Warn("Snapshot warmup failed for tenant",
				zap.String("tenant_id", tenantID.String()),
				zap.Error(err),
			)
			continue
		}

		s.logger.Debug("Snapshot warmed",
			zap.String("tenant_id", tenantID.String()))
	}
}
