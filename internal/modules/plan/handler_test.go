package plan

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/wayfarer-labs/planner/internal/middleware"
	"github.com/wayfarer-labs/planner/internal/models"
	"github.com/wayfarer-labs/planner/internal/pkg/testutil"
)

type fixture struct {
	r     *gin.Engine
	db    *gorm.DB
	user  *models.UserModel
	token string
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db := testutil.OpenDB(t)
	r := gin.New()
	NewHandler(NewService(db, WithLogger(testutil.Logger()))).RegisterRoutes(r.Group(""), middleware.Auth(db))
	user := testutil.CreateUser(t, db, "ada@example.com")
	return &fixture{r: r, db: db, user: user, token: testutil.Token(t, db, user.ID)}
}

func (f *fixture) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(model).Count(&n).Error)
	return n
}

func TestFindOrCreateReusesPlan(t *testing.T) {
	f := setup(t)
	eiffel := testutil.CreateLandmark(t, f.db, f.user.ID, "Eiffel Tower", 48.8584, 2.2945)
	louvre := testutil.CreateLandmark(t, f.db, f.user.ID, "Louvre", 48.8606, 2.3376)

	w := testutil.Do(t, f.r, http.MethodPost, "/plans", map[string]any{
		"name":  "Paris Trip",
		"items": []map[string]any{{"landmarkId": eiffel.ID, "plannedDate": "2025-06-01"}},
	}, f.token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var first CreateResult
	testutil.Data(t, w, &first)
	assert.Equal(t, "Paris Trip", first.Plan.Name)
	require.Len(t, first.PlanItems, 1)
	assert.Equal(t, eiffel.ID, first.PlanItems[0].LandmarkID)
	assert.Equal(t, 0, first.PlanItems[0].Position)

	w = testutil.Do(t, f.r, http.MethodPost, "/plans", map[string]any{
		"name":  "Paris Trip",
		"items": []map[string]any{{"landmarkId": louvre.ID, "plannedDate": "2025-06-02T09:00:00Z"}},
	}, f.token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var second CreateResult
	testutil.Data(t, w, &second)
	assert.Equal(t, first.Plan.ID, second.Plan.ID)
	require.Len(t, second.PlanItems, 1)
	assert.Equal(t, 1, second.PlanItems[0].Position)

	assert.EqualValues(t, 1, f.count(t, &models.VisitingPlan{}))
	assert.EqualValues(t, 2, f.count(t, &models.PlanItem{}))
}

func TestSameNameDifferentUsersAreDistinct(t *testing.T) {
	f := setup(t)
	other := testutil.CreateUser(t, f.db, "bob@example.com")
	otherToken := testutil.Token(t, f.db, other.ID)

	for _, tok := range []string{f.token, otherToken, f.token} {
		w := testutil.Do(t, f.r, http.MethodPost, "/plans", map[string]any{"name": "Weekend Trip"}, tok)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}
	assert.EqualValues(t, 2, f.count(t, &models.VisitingPlan{}))
}

func TestInvalidDateRollsBackWholeBatch(t *testing.T) {
	f := setup(t)
	lm := testutil.CreateLandmark(t, f.db, f.user.ID, "Colosseum", 41.8902, 12.4922)

	w := testutil.Do(t, f.r, http.MethodPost, "/plans", map[string]any{
		"name": "Rome",
		"items": []map[string]any{
			{"landmarkId": lm.ID, "plannedDate": "2025-06-01"},
			{"landmarkId": lm.ID, "plannedDate": "not-a-date"},
		},
	}, f.token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation_error", testutil.ErrorCode(t, w))
	assert.Zero(t, f.count(t, &models.PlanItem{}))
	assert.Zero(t, f.count(t, &models.VisitingPlan{}))
}

func TestMissingLandmarkRollsBackNewPlan(t *testing.T) {
	f := setup(t)
	lm := testutil.CreateLandmark(t, f.db, f.user.ID, "Colosseum", 41.8902, 12.4922)

	w := testutil.Do(t, f.r, http.MethodPost, "/plans", map[string]any{
		"name": "Rome",
		"items": []map[string]any{
			{"landmarkId": lm.ID, "plannedDate": "2025-06-01"},
			{"landmarkId": lm.ID + 1000, "plannedDate": "2025-06-02"},
		},
	}, f.token)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Zero(t, f.count(t, &models.PlanItem{}))
	assert.Zero(t, f.count(t, &models.VisitingPlan{}))
}

func TestForeignLandmarkIsForbidden(t *testing.T) {
	f := setup(t)
	bob := testutil.CreateUser(t, f.db, "bob@example.com")
	bobs := testutil.CreateLandmark(t, f.db, bob.ID, "Bob's cafe", 1, 1)

	w := testutil.Do(t, f.r, http.MethodPost, "/plans", map[string]any{
		"name":  "Sneaky",
		"items": []map[string]any{{"landmarkId": bobs.ID, "plannedDate": "2025-06-01"}},
	}, f.token)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Zero(t, f.count(t, &models.VisitingPlan{}))
}

func TestCreateValidation(t *testing.T) {
	f := setup(t)
	cases := []string{
		`{"items":[]}`,
		`{"name":"   "}`,
		`{"name":"x","items":[{"plannedDate":"2025-06-01"}]}`,
		`{"name":"x","items":[{"landmarkId":1}]}`,
		`{"name":"x","items":[{"landmarkId":1,"plannedDate":"2025-06-01"}],"landmarks":[{"name":"y","position":[1,2]}]}`,
		`{"name":"x","landmarks":[{"name":"y","position":[1]}]}`,
		`{"name":"x","landmarks":[{"name":"y","position":[100,2]}]}`,
	}
	for _, body := range cases {
		w := testutil.Do(t, f.r, http.MethodPost, "/plans", body, f.token)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
}

func TestComposeFromLocations(t *testing.T) {
	f := setup(t)
	w := testutil.Do(t, f.r, http.MethodPost, "/plans", map[string]any{
		"name": "Istanbul",
		"landmarks": []map[string]any{
			{"name": "Hagia Sophia", "position": []any{41.0086, 28.9802}, "visit_date": "2025-07-01"},
			{"name": "Galata Tower", "position": []any{"41.0256", "28.9744"}},
		},
	}, f.token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var res CreateResult
	testutil.Data(t, w, &res)
	require.Len(t, res.PlanItems, 2)
	require.NotNil(t, res.PlanItems[1].Landmark)
	assert.Equal(t, "Galata Tower", res.PlanItems[1].Landmark.Name)
	assert.Equal(t, 41.0256, res.PlanItems[1].Landmark.Latitude)
	assert.Equal(t, f.user.ID, res.PlanItems[0].Landmark.UserID)
	assert.EqualValues(t, 2, f.count(t, &models.Landmark{}))
}

func TestDeleteCascadesToItems(t *testing.T) {
	f := setup(t)
	a := testutil.CreateLandmark(t, f.db, f.user.ID, "A", 1, 1)
	b := testutil.CreateLandmark(t, f.db, f.user.ID, "B", 2, 2)
	p := testutil.CreatePlan(t, f.db, f.user.ID, "Trip", a, b)
	keep := testutil.CreatePlan(t, f.db, f.user.ID, "Other", a)

	w := testutil.Do(t, f.r, http.MethodDelete, fmt.Sprintf("/plans/%d", p.ID), nil, f.token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var n int64
	require.NoError(t, f.db.Model(&models.PlanItem{}).Where("visiting_plan_id = ?", p.ID).Count(&n).Error)
	assert.Zero(t, n)
	require.NoError(t, f.db.Model(&models.PlanItem{}).Where("visiting_plan_id = ?", keep.ID).Count(&n).Error)
	assert.EqualValues(t, 1, n)
	assert.EqualValues(t, 2, f.count(t, &models.Landmark{}))

	w = testutil.Do(t, f.r, http.MethodDelete, fmt.Sprintf("/plans/%d", p.ID), nil, f.token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCrossUserPlanAccess(t *testing.T) {
	f := setup(t)
	lm := testutil.CreateLandmark(t, f.db, f.user.ID, "A", 1, 1)
	p := testutil.CreatePlan(t, f.db, f.user.ID, "Private", lm)
	bob := testutil.CreateUser(t, f.db, "bob@example.com")
	bobToken := testutil.Token(t, f.db, bob.ID)

	for _, path := range []string{"/plans/%d", "/plans/%d/landmarks", "/plans/%d/geojson"} {
		w := testutil.Do(t, f.r, http.MethodGet, fmt.Sprintf(path, p.ID), nil, bobToken)
		assert.Equal(t, http.StatusForbidden, w.Code, path)
	}
	w := testutil.Do(t, f.r, http.MethodDelete, fmt.Sprintf("/plans/%d", p.ID), nil, bobToken)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.EqualValues(t, 1, f.count(t, &models.VisitingPlan{}))
}

func TestListAnnotatesPlans(t *testing.T) {
	f := setup(t)
	a := testutil.CreateLandmark(t, f.db, f.user.ID, "A", 1, 1)
	done := testutil.CreatePlan(t, f.db, f.user.ID, "Done", a)
	open := testutil.CreatePlan(t, f.db, f.user.ID, "Open", a)
	testutil.CreatePlan(t, f.db, f.user.ID, "Empty")
	require.NoError(t, f.db.Model(&models.PlanItem{}).Where("visiting_plan_id = ?", done.ID).Update("visited", true).Error)

	var views []View
	testutil.Data(t, testutil.Do(t, f.r, http.MethodGet, "/plans", nil, f.token), &views)
	require.Len(t, views, 3)
	assert.True(t, views[0].IsCompleted)
	assert.False(t, views[1].IsCompleted)
	assert.False(t, views[2].IsCompleted)
	assert.Equal(t, ColorFor(open.ID), views[1].Color)
	assert.Empty(t, views[0].Items)

	var withItems []View
	testutil.Data(t, testutil.Do(t, f.r, http.MethodGet, "/plans?include=items", nil, f.token), &withItems)
	require.Len(t, withItems, 3)
	require.Len(t, withItems[1].Items, 1)
	require.NotNil(t, withItems[1].Items[0].Landmark)
	assert.Equal(t, "A", withItems[1].Items[0].Landmark.Name)
}

func TestPlanLandmarksInVisitingOrder(t *testing.T) {
	f := setup(t)
	a := testutil.CreateLandmark(t, f.db, f.user.ID, "A", 1, 1)
	b := testutil.CreateLandmark(t, f.db, f.user.ID, "B", 2, 2)
	c := testutil.CreateLandmark(t, f.db, f.user.ID, "C", 3, 3)
	p := testutil.CreatePlan(t, f.db, f.user.ID, "Loop", c, a, b)

	var lms []models.Landmark
	testutil.Data(t, testutil.Do(t, f.r, http.MethodGet, fmt.Sprintf("/plans/%d/landmarks", p.ID), nil, f.token), &lms)
	require.Len(t, lms, 3)
	assert.Equal(t, []string{"C", "A", "B"}, []string{lms[0].Name, lms[1].Name, lms[2].Name})
}

func TestGeoJSON(t *testing.T) {
	f := setup(t)
	a := testutil.CreateLandmark(t, f.db, f.user.ID, "A", 48.8584, 2.2945)
	b := testutil.CreateLandmark(t, f.db, f.user.ID, "B", 48.8606, 2.3376)
	p := testutil.CreatePlan(t, f.db, f.user.ID, "Paris", a, b)

	w := testutil.Do(t, f.r, http.MethodGet, fmt.Sprintf("/plans/%d/geojson", p.ID), nil, f.token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var fc struct {
		Type     string `json:"type"`
		Features []struct {
			Geometry struct {
				Type        string          `json:"type"`
				Coordinates json.RawMessage `json:"coordinates"`
			} `json:"geometry"`
			Properties map[string]any `json:"properties"`
		} `json:"features"`
	}
	testutil.Data(t, w, &fc)
	assert.Equal(t, "FeatureCollection", fc.Type)
	require.Len(t, fc.Features, 3)
	assert.Equal(t, "Point", fc.Features[0].Geometry.Type)
	assert.JSONEq(t, `[2.2945,48.8584]`, string(fc.Features[0].Geometry.Coordinates))
	assert.Equal(t, "A", fc.Features[0].Properties["name"])
	assert.Equal(t, "LineString", fc.Features[2].Geometry.Type)
}

func TestSuggestionsEndpoint(t *testing.T) {
	f := setup(t)
	var list []string
	testutil.Data(t, testutil.Do(t, f.r, http.MethodGet, "/plans/suggestions", nil, ""), &list)
	assert.Len(t, list, len(suggestions))

	var one struct {
		Name string `json:"name"`
	}
	testutil.Data(t, testutil.Do(t, f.r, http.MethodGet, "/plans/suggestions?random=true", nil, ""), &one)
	assert.Contains(t, suggestions, one.Name)
}
