package database

import (
	"context"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"

	"github.com/wayfarer-labs/planner/internal/config"
	"github.com/wayfarer-labs/planner/internal/models"
)

// Connect opens the process-wide connection pool for the configured driver and optionally runs auto-migration.
func Connect(cfg *config.AppConfig, autoMigrate bool) (*gorm.DB, error) {
	db, err := Open(cfg.Database.Driver, cfg.DSN, resolveLogLevel(cfg))
	if err != nil {
		return nil, err
	}

	if err := configurePool(db, cfg.Database); err != nil {
		_ = Close(db)
		return nil, err
	}

	if autoMigrate {
		if err := Migrate(db); err != nil {
			_ = Close(db)
			return nil, fmt.Errorf("migration failed: %w", err)
		}
	}
	return db, nil
}

// Open dials the database without touching the schema.
func Open(driver, dsn string, logLevel logger.LogLevel) (*gorm.DB, error) {
	dialector, err := dialectorFor(driver, dsn)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:  logger.Default.LogMode(logLevel),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	return db, nil
}

func dialectorFor(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case config.DriverPostgres:
		return postgres.Open(dsn), nil
	case config.DriverMySQL:
		return mysql.New(mysql.Config{
			DSN:               dsn,
			DefaultStringSize: 191,
		}), nil
	case config.DriverSQLite:
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

func configurePool(db *gorm.DB, cfg config.DatabaseRuntimeConfig) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("resolve sql db: %w", err)
	}
	if cfg.Driver == config.DriverSQLite {
		// one writer at a time
		sqlDB.SetMaxOpenConns(1)
	} else if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	return nil
}

func resolveLogLevel(cfg *config.AppConfig) logger.LogLevel {
	if cfg.IsDev() {
		return logger.Info
	}
	return logger.Warn
}

// Migrate runs GORM auto-migration for all models.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(models.All()...)
}

// Clear deletes every landmark, plan, plan item and visit log, children first.
// Users and sessions are kept. It returns the deleted row count per table.
func Clear(ctx context.Context, db *gorm.DB) (map[string]int64, error) {
	order := []schema.Tabler{&models.VisitLog{}, &models.PlanItem{}, &models.VisitingPlan{}, &models.Landmark{}}
	counts := make(map[string]int64, len(order))
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range order {
			res := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(m)
			if res.Error != nil {
				return res.Error
			}
			counts[m.TableName()] = res.RowsAffected
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("clear database: %w", err)
	}
	return counts, nil
}

// Ping checks connectivity through the pool.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the pool.
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// LogStats writes the pool counters, used on shutdown.
func LogStats(db *gorm.DB, logger *zap.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	st := sqlDB.Stats()
	logger.Info("database pool",
		zap.Int("open", st.OpenConnections),
		zap.Int("in_use", st.InUse),
		zap.Int("idle", st.Idle),
		zap.Int64("wait_count", st.WaitCount),
	)
}
