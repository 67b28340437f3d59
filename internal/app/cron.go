package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	pkgcron "github.com/wayfarer-labs/planner/internal/pkg/cron"
	"github.com/wayfarer-labs/planner/internal/pkg/session"
)

const (
	JobPurgeSessions = "purge_sessions"
	JobBackup        = "nightly_backup"

	backupsKept = 7
)

// registerCronJobs registers all scheduled background jobs.
func (a *App) registerCronJobs() {
	cronLogger := a.logger.Named("CronService")

	a.sched.Register(pkgcron.Job{
		Name:        JobPurgeSessions,
		Description: "delete sessions that expired or were revoked more than a day ago",
		Interval:    time.Hour,
		Fn: func(ctx context.Context) error {
			n, err := session.PurgeExpired(ctx, a.db, time.Now().Add(-24*time.Hour))
			if err != nil {
				return err
			}
			if n > 0 {
				cronLogger.Info("purged sessions", zap.Int64("count", n))
			}
			return nil
		},
	})

	if !a.cfg.Backup.Nightly {
		return
	}
	a.sched.Register(pkgcron.Job{
		Name:        JobBackup,
		Description: "export the planner tables to the backup directory",
		Interval:    24 * time.Hour,
		Fn: func(ctx context.Context) error {
			if _, err := a.backup.Run(ctx); err != nil {
				return err
			}
			removed, err := a.backup.Prune(backupsKept)
			if err != nil {
				return err
			}
			if removed > 0 {
				cronLogger.Info("pruned old backups", zap.Int("count", removed))
			}
			return nil
		},
	})
}
