package visitstate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/wayfarer-labs/planner/internal/models"
	"github.com/wayfarer-labs/planner/internal/pkg/testutil"
	"github.com/wayfarer-labs/planner/internal/pkg/visitstate"
)

func reload(t *testing.T, db *gorm.DB, lm *models.Landmark) *models.Landmark {
	t.Helper()
	var out models.Landmark
	require.NoError(t, db.First(&out, lm.ID).Error)
	return &out
}

func countLogs(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.VisitLog{}).Count(&n).Error)
	return n
}

func TestSetItemsDerivesLandmark(t *testing.T) {
	db := testutil.OpenDB(t)
	user := testutil.CreateUser(t, db, "ada@example.com")
	lm := testutil.CreateLandmark(t, db, user.ID, "Eiffel Tower", 48.8584, 2.2945)
	weekend := testutil.CreatePlan(t, db, user.ID, "Weekend", lm)
	summer := testutil.CreatePlan(t, db, user.ID, "Summer", lm)

	actor, err := visitstate.ActorFor(db, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", actor.Name)

	n, err := visitstate.SetItems(db, actor, weekend.Items, true)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	assert.False(t, reload(t, db, lm).IsVisited, "one plan still open")

	n, err = visitstate.SetItems(db, actor, summer.Items, true)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	assert.True(t, reload(t, db, lm).IsVisited)

	n, err = visitstate.SetItems(db, actor, summer.Items, true)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.EqualValues(t, 2, countLogs(t, db))
}

func TestSetLandmarkWithoutItems(t *testing.T) {
	db := testutil.OpenDB(t)
	user := testutil.CreateUser(t, db, "ada@example.com")
	lm := testutil.CreateLandmark(t, db, user.ID, "Taj Mahal", 27.1751, 78.0421)
	actor := visitstate.Actor{UserID: user.ID, Name: "Ada"}

	n, err := visitstate.SetLandmark(db, actor, lm, true)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	assert.True(t, lm.IsVisited)

	n, err = visitstate.SetLandmark(db, actor, lm, true)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.EqualValues(t, 1, countLogs(t, db))

	_, err = visitstate.SetLandmark(db, actor, lm, false)
	require.NoError(t, err)
	assert.False(t, lm.IsVisited)
	assert.EqualValues(t, 1, countLogs(t, db))
}

func TestSetLandmarkWritesThroughItems(t *testing.T) {
	db := testutil.OpenDB(t)
	user := testutil.CreateUser(t, db, "ada@example.com")
	lm := testutil.CreateLandmark(t, db, user.ID, "Colosseum", 41.8902, 12.4922)
	testutil.CreatePlan(t, db, user.ID, "Rome", lm)
	testutil.CreatePlan(t, db, user.ID, "Italy", lm)
	actor := visitstate.Actor{UserID: user.ID}

	n, err := visitstate.SetLandmark(db, actor, lm, true)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
	assert.True(t, lm.IsVisited)

	var open int64
	require.NoError(t, db.Model(&models.PlanItem{}).Where("visited = ?", false).Count(&open).Error)
	assert.Zero(t, open)
}

func itemFlags(t *testing.T, db *gorm.DB, plans ...*models.VisitingPlan) []bool {
	t.Helper()
	out := make([]bool, 0, len(plans))
	for _, p := range plans {
		var item models.PlanItem
		require.NoError(t, db.First(&item, p.Items[0].ID).Error)
		out = append(out, item.Visited)
	}
	return out
}

func TestToggleLandmarkFlipsEachItem(t *testing.T) {
	db := testutil.OpenDB(t)
	user := testutil.CreateUser(t, db, "ada@example.com")
	lm := testutil.CreateLandmark(t, db, user.ID, "Louvre", 48.8606, 2.3376)
	paris := testutil.CreatePlan(t, db, user.ID, "Paris", lm)
	europe := testutil.CreatePlan(t, db, user.ID, "Europe", lm)
	actor := visitstate.Actor{UserID: user.ID}

	_, err := visitstate.SetItems(db, actor, paris.Items, true)
	require.NoError(t, err)
	require.Equal(t, []bool{true, false}, itemFlags(t, db, paris, europe))

	n, err := visitstate.ToggleLandmark(db, actor, lm)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
	assert.Equal(t, []bool{false, true}, itemFlags(t, db, paris, europe))
	assert.False(t, lm.IsVisited)

	_, err = visitstate.ToggleLandmark(db, actor, lm)
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false}, itemFlags(t, db, paris, europe))
	assert.False(t, lm.IsVisited)
}

func TestToggleLandmarkWithoutItems(t *testing.T) {
	db := testutil.OpenDB(t)
	user := testutil.CreateUser(t, db, "ada@example.com")
	lm := testutil.CreateLandmark(t, db, user.ID, "Petra", 30.3285, 35.4444)
	actor := visitstate.Actor{UserID: user.ID}

	_, err := visitstate.ToggleLandmark(db, actor, lm)
	require.NoError(t, err)
	assert.True(t, lm.IsVisited)
	_, err = visitstate.ToggleLandmark(db, actor, lm)
	require.NoError(t, err)
	assert.False(t, lm.IsVisited)
	assert.EqualValues(t, 1, countLogs(t, db))
}

func TestSetItemsSkipsRowsMovedElsewhere(t *testing.T) {
	db := testutil.OpenDB(t)
	user := testutil.CreateUser(t, db, "ada@example.com")
	lm := testutil.CreateLandmark(t, db, user.ID, "Alhambra", 37.1761, -3.5881)
	p := testutil.CreatePlan(t, db, user.ID, "Granada", lm)
	actor := visitstate.Actor{UserID: user.ID}

	stale := append([]models.PlanItem(nil), p.Items...)
	n, err := visitstate.SetItems(db, actor, p.Items, true)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	n, err = visitstate.SetItems(db, actor, stale, true)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.True(t, stale[0].Visited)
	assert.EqualValues(t, 1, countLogs(t, db))
}
