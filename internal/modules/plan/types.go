package plan

import (
	"github.com/wayfarer-labs/planner/internal/models"
	"github.com/wayfarer-labs/planner/internal/pkg/jsonnum"
)

const maxNameLength = 255

// ItemInput links an existing landmark to the plan.
type ItemInput struct {
	LandmarkID  jsonnum.Uint `json:"landmarkId"`
	PlannedDate string       `json:"plannedDate"`
}

// LocationInput is a point picked on the map that becomes a new landmark.
type LocationInput struct {
	Name        string          `json:"name"`
	Position    []jsonnum.Float `json:"position"` // [lat, lng]
	VisitDate   string          `json:"visit_date"`
	Description *string         `json:"description"`
	Category    *string         `json:"category"`
}

// CreatePlanDTO accepts either items (existing landmarks) or landmarks (new locations), not both.
type CreatePlanDTO struct {
	Name      string          `json:"name"`
	Items     []ItemInput     `json:"items"`
	Landmarks []LocationInput `json:"landmarks"`
}

type CreateResult struct {
	Plan      *models.VisitingPlan `json:"plan"`
	PlanItems []models.PlanItem    `json:"planItems"`
}

// View is a plan annotated for display. Color and IsCompleted are computed per response.
type View struct {
	models.VisitingPlan
	Color       string `json:"color"`
	IsCompleted bool   `json:"is_completed"`
}
