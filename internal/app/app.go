package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/wayfarer-labs/planner/internal/backup"
	"github.com/wayfarer-labs/planner/internal/config"
	"github.com/wayfarer-labs/planner/internal/database"
	"github.com/wayfarer-labs/planner/internal/middleware"
	pkgcron "github.com/wayfarer-labs/planner/internal/pkg/cron"
	jwtpkg "github.com/wayfarer-labs/planner/internal/pkg/jwt"
	pkgredis "github.com/wayfarer-labs/planner/internal/pkg/redis"
)

// App holds all application dependencies.
type App struct {
	cfg    *config.AppConfig
	router *gin.Engine
	db     *gorm.DB
	rc     *pkgredis.Client
	logger *zap.Logger
	sched  *pkgcron.Scheduler
	backup *backup.Service
	cancel context.CancelFunc
}

// New initializes the application: DB, Redis, middleware, routes and background jobs.
func New(logger *zap.Logger, cfg *config.AppConfig) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	applyRuntimeSettings(cfg, logger)

	db, err := database.Connect(cfg, true)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	var rc *pkgredis.Client
	if cfg.Redis.Enable {
		rc, err = pkgredis.Connect(context.Background(), cfg.RedisURL)
		if err != nil {
			_ = database.Close(db)
			return nil, fmt.Errorf("redis: %w", err)
		}
	}

	backupSvc, err := newBackupService(db, cfg, logger)
	if err != nil {
		_ = database.Close(db)
		if rc != nil {
			_ = rc.Close()
		}
		return nil, fmt.Errorf("backup: %w", err)
	}

	if cfg.IsDev() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))
	router.Use(newCORS(cfg))

	ctx, cancel := context.WithCancel(context.Background())
	sched := pkgcron.New(logger)

	a := &App{
		cfg:    cfg,
		router: router,
		db:     db,
		rc:     rc,
		logger: logger,
		sched:  sched,
		backup: backupSvc,
		cancel: cancel,
	}
	a.registerCronJobs()
	a.registerRoutes()
	sched.Start(ctx)
	return a, nil
}

func applyRuntimeSettings(cfg *config.AppConfig, logger *zap.Logger) {
	if secret := strings.TrimSpace(cfg.JWTSecret); secret != "" {
		jwtpkg.SetSecret(secret)
	} else {
		logger.Warn("jwt_secret is empty, using built-in default secret")
	}
}

func newBackupService(db *gorm.DB, cfg *config.AppConfig, logger *zap.Logger) (*backup.Service, error) {
	opts := []backup.Option{backup.WithLogger(logger)}
	if cfg.Backup.S3.Enabled() {
		up, err := backup.NewS3Uploader(cfg.Backup.S3)
		if err != nil {
			return nil, err
		}
		opts = append(opts, backup.WithUploader(up))
	}
	return backup.New(db, cfg.BackupDir(), opts...), nil
}

// Addr returns the listen address.
func (a *App) Addr() string { return a.cfg.Addr() }

// Router returns the HTTP handler.
func (a *App) Router() http.Handler { return a.router }

// Shutdown stops background jobs and releases the database and Redis connections.
func (a *App) Shutdown() {
	a.cancel()
	a.sched.Wait()
	database.LogStats(a.db, a.logger)
	if err := database.Close(a.db); err != nil {
		a.logger.Warn("close database", zap.Error(err))
	}
	if a.rc != nil {
		if err := a.rc.Close(); err != nil {
			a.logger.Warn("close redis", zap.Error(err))
		}
	}
}
