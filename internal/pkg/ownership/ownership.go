package ownership

import (
	"errors"

	"gorm.io/gorm"

	"github.com/wayfarer-labs/planner/internal/models"
	"github.com/wayfarer-labs/planner/internal/pkg/apperr"
)

// Find loads the row with the given id and checks it belongs to userID.
// Missing rows are NotFound, rows owned by someone else are Forbidden.
func Find[T any, PT interface {
	*T
	models.Owned
}](db *gorm.DB, what string, id uint, userID string) (PT, error) {
	var row T
	if err := db.First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(what)
		}
		return nil, apperr.Persistence("load "+what, err)
	}
	p := PT(&row)
	if p.OwnerID() != userID {
		return nil, apperr.Forbidden(what + " belongs to another user")
	}
	return p, nil
}

// Landmark is Find for landmarks.
func Landmark(db *gorm.DB, id uint, userID string) (*models.Landmark, error) {
	return Find[models.Landmark](db, "landmark", id, userID)
}

// Plan is Find for visiting plans.
func Plan(db *gorm.DB, id uint, userID string) (*models.VisitingPlan, error) {
	return Find[models.VisitingPlan](db, "plan", id, userID)
}

// PlanItem loads an item and checks that its plan belongs to userID.
func PlanItem(db *gorm.DB, id uint, userID string) (*models.PlanItem, error) {
	var item models.PlanItem
	if err := db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("plan item")
		}
		return nil, apperr.Persistence("load plan item", err)
	}
	if _, err := Plan(db, item.VisitingPlanID, userID); err != nil {
		if errors.Is(err, apperr.ErrForbidden) {
			return nil, apperr.Forbidden("plan item belongs to another user")
		}
		return nil, err
	}
	return &item, nil
}
