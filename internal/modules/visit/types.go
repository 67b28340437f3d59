package visit

import (
	"github.com/wayfarer-labs/planner/internal/pkg/jsonnum"
)

// VisitRequest targets a landmark, a single plan item, or a whole plan.
type VisitRequest struct {
	LandmarkID jsonnum.Uint `json:"landmarkId"`
	PlanItemID jsonnum.Uint `json:"planItemId"`
	PlanID     jsonnum.Uint `json:"plan_id"`
}

// Result reports how many plan items a bulk mark changed.
type Result struct {
	Message string `json:"message"`
	Count   int64  `json:"count"`
}

type CreateLogDTO struct {
	LandmarkID  jsonnum.Uint `json:"landmarkId"`
	PlanItemID  jsonnum.Uint `json:"planItemId"`
	VisitedDate string       `json:"visited_date"`
	VisitorName *string      `json:"visitor_name"`
}
