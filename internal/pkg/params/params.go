package params

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/wayfarer-labs/planner/internal/pkg/apperr"
)

// ID parses a positive numeric path parameter.
func ID(c *gin.Context, name string) (uint, error) {
	return parseID(name, c.Param(name))
}

// QueryID parses a required positive numeric query parameter.
func QueryID(c *gin.Context, name string) (uint, error) {
	raw, ok := c.GetQuery(name)
	if !ok || strings.TrimSpace(raw) == "" {
		return 0, apperr.Validation("%s is required", name)
	}
	return parseID(name, raw)
}

func parseID(name, raw string) (uint, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || v == 0 {
		return 0, apperr.Validation("invalid %s", name)
	}
	return uint(v), nil
}

// OptionalBool parses ?name=true|false. Absent or empty yields nil.
func OptionalBool(c *gin.Context, name string) (*bool, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, apperr.Validation("%s must be true or false", name)
	}
	return &v, nil
}
