package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wayfarer-labs/planner/internal/pkg/apperr"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func run(t *testing.T, fn func(c *gin.Context)) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	fn(c)
	c.Writer.WriteHeaderNow()
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestOKWrapsData(t *testing.T) {
	w := run(t, func(c *gin.Context) { OK(c, []int{1, 2}) })
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{1.0, 2.0}, decode(t, w)["data"])
}

func TestCreated(t *testing.T) {
	w := run(t, func(c *gin.Context) { Created(c, gin.H{"id": 7}) })
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, map[string]any{"id": 7.0}, decode(t, w)["data"])
}

func TestNoContentHasNoBody(t *testing.T) {
	w := run(t, NoContent)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
		msg    string
	}{
		{apperr.Validation("name is required"), http.StatusBadRequest, "validation_error", "name is required"},
		{apperr.Forbidden("not your plan"), http.StatusForbidden, "forbidden", "not your plan"},
		{apperr.NotFound("landmark"), http.StatusNotFound, "not_found", "landmark not found"},
		{apperr.Unauthorized("not signed in"), http.StatusUnauthorized, "unauthorized", "not signed in"},
		{errors.New("driver exploded"), http.StatusInternalServerError, "persistence_error", "internal error"},
	}
	for _, tc := range cases {
		w := run(t, func(c *gin.Context) { Error(c, tc.err) })
		assert.Equal(t, tc.status, w.Code)
		body := decode(t, w)
		assert.Equal(t, tc.code, body["code"])
		assert.Equal(t, tc.msg, body["error"])
	}
}
