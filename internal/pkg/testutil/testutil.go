// Package testutil holds shared fixtures for package tests: a migrated SQLite
// database, users with live sessions, and JSON request helpers.
package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/wayfarer-labs/planner/internal/models"
	"github.com/wayfarer-labs/planner/internal/pkg/session"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// OpenDB returns a migrated file-backed SQLite database that is removed with the test.
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "planner.db") + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

// Logger returns a no-op logger for services under test.
func Logger() *zap.Logger { return zap.NewNop() }

// CreateUser inserts a user with an unusable password hash.
func CreateUser(t *testing.T, db *gorm.DB, email string) *models.UserModel {
	t.Helper()
	u := &models.UserModel{Email: email, Password: "!"}
	require.NoError(t, db.Create(u).Error)
	return u
}

// Token issues a live session for userID and returns its bearer token.
func Token(t *testing.T, db *gorm.DB, userID string) string {
	t.Helper()
	token, _, err := session.Issue(context.Background(), db, userID, "127.0.0.1", "go-test", time.Hour)
	require.NoError(t, err)
	return token
}

// CreateLandmark inserts a landmark owned by userID.
func CreateLandmark(t *testing.T, db *gorm.DB, userID, name string, lat, lng float64) *models.Landmark {
	t.Helper()
	lm := &models.Landmark{UserID: userID, Name: name, Latitude: lat, Longitude: lng}
	require.NoError(t, db.Create(lm).Error)
	return lm
}

// CreatePlan inserts a plan with one item per landmark, in order.
func CreatePlan(t *testing.T, db *gorm.DB, userID, name string, landmarks ...*models.Landmark) *models.VisitingPlan {
	t.Helper()
	plan := &models.VisitingPlan{UserID: userID, Name: name}
	require.NoError(t, db.Create(plan).Error)
	date := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for i, lm := range landmarks {
		item := &models.PlanItem{VisitingPlanID: plan.ID, LandmarkID: lm.ID, Position: i, PlannedDate: date}
		require.NoError(t, db.Create(item).Error)
		plan.Items = append(plan.Items, *item)
	}
	return plan
}

// Do sends a JSON request through handler. body may be nil, a string, or any JSON-marshalable value.
func Do(t *testing.T, handler http.Handler, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

// Data decodes the {data} envelope of w into dest.
func Data(t *testing.T, w *httptest.ResponseRecorder, dest any) {
	t.Helper()
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, dest), string(env.Data))
}

// ErrorCode returns the code field of an {error, code} body.
func ErrorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body.Code
}
