package app

import (
	"context"
	"time"

	"github.com/gyansetu/core/internal/config"
	"github.com/gyansetu/core/internal/modules/profile"
	pkgcron "github.com/gyansetu/core/internal/pkg/cron"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// auditRetentionDays bounds how long profile-update audit rows are kept.
const auditRetentionDays = 180

// registerCronJobs registers all scheduled background jobs.
func registerCronJobs(sched *pkgcron.Scheduler, db *gorm.DB, cfg *config.AppConfig, logger *zap.Logger) {
	cronLogger := logger.Named("CronService")
	profileSvc := profile.NewService(db, cfg, cronLogger)

	sched.Register(pkgcron.Job{
		Name:        "prune_profile_audit",
		Description: "delete profile-update audit rows past retention",
		Interval:    24 * time.Hour,
		Fn: func(ctx context.Context) error {
			if err := profileSvc.PruneAudit(ctx, auditRetentionDays); err != nil {
				cronLogger.Warn("audit prune failed", zap.Error(err))
				return err
			}
			cronLogger.Info("audit prune complete")
			return nil
		},
	})
}
