// Package health reports database, Redis and background job state.
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/wayfarer-labs/planner/internal/database"
	"github.com/wayfarer-labs/planner/internal/pkg/apperr"
	"github.com/wayfarer-labs/planner/internal/pkg/cron"
	"github.com/wayfarer-labs/planner/internal/pkg/response"
)

const pingTimeout = 2 * time.Second

// Pinger is satisfied by the Redis client.
type Pinger interface {
	Ping(ctx context.Context) error
}

type report struct {
	Status   string          `json:"status"`
	Database bool            `json:"database"`
	Redis    *bool           `json:"redis,omitempty"`
	Jobs     []cron.Snapshot `json:"jobs"`
}

// RegisterRoutes mounts GET /health, plus job triggering behind authMW. rdb may be nil when Redis is disabled.
func RegisterRoutes(rg *gin.RouterGroup, db *gorm.DB, rdb Pinger, sched *cron.Scheduler, authMW gin.HandlerFunc) {
	rg.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout)
		defer cancel()

		out := report{Status: "ok", Database: database.Ping(ctx, db) == nil, Jobs: []cron.Snapshot{}}
		healthy := out.Database
		if rdb != nil {
			ok := rdb.Ping(ctx) == nil
			out.Redis = &ok
			healthy = healthy && ok
		}
		if sched != nil {
			out.Jobs = sched.List()
		}

		code := http.StatusOK
		if !healthy {
			out.Status = "degraded"
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, out)
	})

	if sched == nil {
		return
	}
	rg.POST("/health/cron/:name", authMW, func(c *gin.Context) {
		name := c.Param("name")
		if !sched.Has(name) {
			response.Error(c, apperr.NotFound("job "+name))
			return
		}
		if err := sched.Run(c.Request.Context(), name); err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, gin.H{"name": name, "status": cron.StatusOK})
	})
}
