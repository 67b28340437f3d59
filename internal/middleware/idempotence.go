package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wayfarer-labs/planner/internal/pkg/apperr"
	redispkg "github.com/wayfarer-labs/planner/internal/pkg/redis"
)

const (
	IdempotenceHeader = "X-Idempotence-Key"
	idempotenceTTL    = 60 * time.Second
)

// Idempotence rejects a repeat of the same POST while the first is in flight
// or within idempotenceTTL of its success. Toggle requests (PUT), auth routes and
// POSTs that are no-ops on repeat are not covered.
func Idempotence(client *redispkg.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost || skipIdempotence(c.Request.URL.Path) {
			c.Next()
			return
		}

		key, err := idempotenceKey(c)
		if err != nil || key == "" {
			c.Next()
			return
		}

		redisKey := "planner:idempotence:" + key
		ctx := c.Request.Context()

		won, err := client.Claim(ctx, redisKey, "0", idempotenceTTL)
		if err != nil {
			c.Next()
			return
		}
		if !won {
			msg := "duplicate request"
			if val, _ := client.Get(ctx, redisKey); val == "0" {
				msg = "request is already being processed"
			}
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"error": msg,
				"code":  apperr.KindConflict,
			})
			return
		}

		c.Next()

		status := c.Writer.Status()
		if status >= 200 && status < 300 {
			_ = client.Set(ctx, redisKey, "1", idempotenceTTL)
		} else {
			_ = client.Del(ctx, redisKey)
		}
	}
}

// Routes whose POST already converges on repeat: marking visited and plan find-or-create.
var idempotentRoutes = []string{"/visit", "/plans"}

func skipIdempotence(path string) bool {
	p := strings.TrimRight(strings.ToLower(strings.TrimSpace(path)), "/")
	if strings.Contains(p, "/auth/") {
		return true
	}
	for _, suffix := range idempotentRoutes {
		if strings.HasSuffix(p, suffix) {
			return true
		}
	}
	return false
}

// idempotenceKey prefers the explicit header; otherwise it hashes method, URL, body and caller.
func idempotenceKey(c *gin.Context) (string, error) {
	if hdr := strings.TrimSpace(c.GetHeader(IdempotenceHeader)); hdr != "" {
		return CurrentUserID(c) + ":" + hdr, nil
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return "", err
	}
	c.Request.Body = io.NopCloser(bytes.NewBuffer(body))

	caller := CurrentUserID(c)
	if caller == "" {
		caller = c.ClientIP()
	}
	if len(body) == 0 && caller == "" {
		return "", nil
	}

	raw := c.Request.Method + "|" + c.Request.URL.String() + "|" + string(body) + "|" + caller
	h := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(h[:]), nil
}
