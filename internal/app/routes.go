package app

import (
	"github.com/gin-gonic/gin"

	"github.com/wayfarer-labs/planner/internal/middleware"
	"github.com/wayfarer-labs/planner/internal/modules/auth"
	"github.com/wayfarer-labs/planner/internal/modules/health"
	"github.com/wayfarer-labs/planner/internal/modules/landmark"
	"github.com/wayfarer-labs/planner/internal/modules/plan"
	"github.com/wayfarer-labs/planner/internal/modules/planitem"
	"github.com/wayfarer-labs/planner/internal/modules/visit"
	"github.com/wayfarer-labs/planner/internal/pkg/apperr"
	"github.com/wayfarer-labs/planner/internal/pkg/response"
)

// APIPrefix is the mount point of every module.
const APIPrefix = "/api"

func (a *App) registerRoutes() {
	r := a.router
	db := a.db
	log := a.logger
	authMW := middleware.Auth(db)
	optionalMW := middleware.OptionalAuth(db)

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c)
	})
	r.NoMethod(func(c *gin.Context) {
		response.Fail(c, apperr.KindMethodNotAllowed, "method not allowed")
	})

	api := r.Group(APIPrefix)
	api.Use(middleware.Timeout(a.cfg.RequestTimeout))
	api.Use(optionalMW)

	if a.rc != nil {
		api.Use(middleware.RateLimit(middleware.NewRedisLimiter(a.rc, 0, 0)))
		api.Use(middleware.Idempotence(a.rc))
		health.RegisterRoutes(api, db, a.rc, a.sched, authMW)
	} else {
		api.Use(middleware.RateLimit(middleware.NewLocalLimiter(0, 0)))
		health.RegisterRoutes(api, db, nil, a.sched, authMW)
	}

	auth.NewHandler(auth.NewService(db,
		auth.WithLogger(log),
		auth.WithSessionTTL(a.cfg.SessionTTL),
	)).RegisterRoutes(api, optionalMW)

	landmark.NewHandler(landmark.NewService(db, landmark.WithLogger(log))).RegisterRoutes(api, authMW)
	plan.NewHandler(plan.NewService(db, plan.WithLogger(log))).RegisterRoutes(api, authMW)
	planitem.NewHandler(planitem.NewService(db)).RegisterRoutes(api, authMW)
	visit.NewHandler(visit.NewService(db, visit.WithLogger(log))).RegisterRoutes(api, authMW)
}
