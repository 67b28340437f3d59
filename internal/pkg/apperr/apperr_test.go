package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, KindValidation.Status())
	assert.Equal(t, http.StatusUnauthorized, KindUnauthorized.Status())
	assert.Equal(t, http.StatusForbidden, KindForbidden.Status())
	assert.Equal(t, http.StatusNotFound, KindNotFound.Status())
	assert.Equal(t, http.StatusInternalServerError, KindPersistence.Status())
	assert.Equal(t, http.StatusGatewayTimeout, KindTimeout.Status())
}

func TestErrorsIsMatchesKind(t *testing.T) {
	err := fmt.Errorf("load plan: %w", NotFound("plan"))
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrForbidden))
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, "plan not found", PublicMessage(err))
}

func TestPersistenceHidesCause(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := Persistence("create landmark", cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, KindPersistence, KindOf(err))
	assert.Equal(t, "create landmark failed", PublicMessage(err))
	assert.Contains(t, err.Error(), "refused")
}

func TestUnknownErrorsArePersistence(t *testing.T) {
	err := errors.New("boom")
	assert.Equal(t, KindPersistence, KindOf(err))
	assert.Equal(t, "internal error", PublicMessage(err))
}

func TestDeadlineIsTimeout(t *testing.T) {
	assert.Equal(t, KindTimeout, KindOf(context.DeadlineExceeded))
	assert.Equal(t, KindTimeout, KindOf(Persistence("list plans", context.DeadlineExceeded)))
	assert.Equal(t, "request timed out", PublicMessage(Persistence("x", context.DeadlineExceeded)))
}
