package planitem

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/wayfarer-labs/planner/internal/models"
	"github.com/wayfarer-labs/planner/internal/pkg/apperr"
	"github.com/wayfarer-labs/planner/internal/pkg/ownership"
)

// Row is a plan item flattened with its landmark's display fields.
type Row struct {
	ID          uint      `json:"id"`
	LandmarkID  uint      `json:"landmarkId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Visited     bool      `json:"visited"`
	PlannedDate time.Time `json:"plannedDate"`
	PlanID      uint      `json:"planId"`
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// ListItems returns the plan's items in visiting order, optionally filtered by visited.
// A plan that does not exist (or was deleted) has no items, so the result is empty.
func (s *Service) ListItems(ctx context.Context, userID string, planID uint, visited *bool) ([]Row, error) {
	db := s.db.WithContext(ctx)
	if _, err := ownership.Plan(db, planID, userID); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return []Row{}, nil
		}
		return nil, err
	}

	q := db.Where("visiting_plan_id = ?", planID)
	if visited != nil {
		q = q.Where("visited = ?", *visited)
	}
	var items []models.PlanItem
	if err := q.Preload("Landmark").Order("position ASC, id ASC").Find(&items).Error; err != nil {
		return nil, apperr.Persistence("list plan items", err)
	}

	rows := make([]Row, 0, len(items))
	for _, it := range items {
		row := Row{
			ID:          it.ID,
			LandmarkID:  it.LandmarkID,
			Visited:     it.Visited,
			PlannedDate: it.PlannedDate,
			PlanID:      it.VisitingPlanID,
		}
		if lm := it.Landmark; lm != nil {
			row.Name = lm.Name
			row.Description = lm.Description
			row.Category = lm.Category
			row.Latitude = lm.Latitude
			row.Longitude = lm.Longitude
		}
		rows = append(rows, row)
	}
	return rows, nil
}
