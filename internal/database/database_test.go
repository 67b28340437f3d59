package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"github.com/wayfarer-labs/planner/internal/config"
	"github.com/wayfarer-labs/planner/internal/models"
	"github.com/wayfarer-labs/planner/internal/pkg/testutil"
)

func TestConnectSQLiteMigrates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "planner.db")
	cfg := &config.AppConfig{
		Env: "test",
		DSN: path + "?_pragma=foreign_keys(1)",
		Database: config.DatabaseRuntimeConfig{
			Driver: config.DriverSQLite,
		},
	}
	db, err := Connect(cfg, true)
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	require.NoError(t, Ping(context.Background(), db))
	for _, m := range models.All() {
		assert.True(t, db.Migrator().HasTable(m))
	}
	assert.True(t, db.Migrator().HasIndex(&models.VisitingPlan{}, "idx_plan_owner_name"))
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open("oracle", "x", logger.Silent)
	require.Error(t, err)
}

func TestCloseNil(t *testing.T) {
	assert.NoError(t, Close(nil))
}

func TestClearDeletesChildrenFirst(t *testing.T) {
	db := testutil.OpenDB(t)
	user := testutil.CreateUser(t, db, "ada@example.com")
	eiffel := testutil.CreateLandmark(t, db, user.ID, "Eiffel Tower", 48.8584, 2.2945)
	plan := testutil.CreatePlan(t, db, user.ID, "Paris", eiffel)
	require.NoError(t, db.Create(&models.VisitLog{
		UserID: user.ID, LandmarkID: eiffel.ID, PlanItemID: &plan.Items[0].ID, VisitedDate: time.Now().UTC(),
	}).Error)

	counts, err := Clear(context.Background(), db)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{
		"visited_landmarks": 1,
		"plan_items":        1,
		"visiting_plans":    1,
		"landmarks":         1,
	}, counts)

	var users int64
	require.NoError(t, db.Model(&models.UserModel{}).Count(&users).Error)
	assert.EqualValues(t, 1, users)
}
