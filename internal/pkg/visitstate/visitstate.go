// Package visitstate owns every write to the visited flags.
//
// The flag of record lives on plan_items. landmarks.is_visited is derived:
// with one or more plan items it is true exactly when all of them are visited,
// with none it is whatever was last stored directly. Every function here must be
// called inside the transaction that changes the items so the projection never drifts.
package visitstate

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/wayfarer-labs/planner/internal/models"
)

// Actor is the user a visit is attributed to in the visit log.
type Actor struct {
	UserID string
	Name   string
}

// ActorFor loads the display name used for visit log entries.
func ActorFor(tx *gorm.DB, userID string) (Actor, error) {
	var user models.UserModel
	if err := tx.Select("id", "email", "name").First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Actor{UserID: userID}, nil
		}
		return Actor{}, fmt.Errorf("load user: %w", err)
	}
	return Actor{UserID: userID, Name: user.DisplayName()}, nil
}

// SetItems moves every item whose flag differs from visited, logs each
// Unvisited to Visited transition, and re-derives the affected landmarks.
// Each row is updated only if it still holds the opposite flag, so an item a
// concurrent writer already moved is neither counted nor logged again.
// It returns the number of items that changed.
func SetItems(tx *gorm.DB, actor Actor, items []models.PlanItem, visited bool) (int64, error) {
	var (
		changed   int64
		logs      []models.VisitLog
		landmarks = map[uint]struct{}{}
		now       = time.Now().UTC()
	)
	for i := range items {
		if items[i].Visited == visited {
			continue
		}
		res := tx.Model(&models.PlanItem{}).
			Where("id = ? AND visited = ?", items[i].ID, !visited).
			Update("visited", visited)
		if res.Error != nil {
			return 0, fmt.Errorf("update plan item %d: %w", items[i].ID, res.Error)
		}
		items[i].Visited = visited
		if res.RowsAffected == 0 {
			continue
		}
		changed++
		landmarks[items[i].LandmarkID] = struct{}{}
		if visited {
			itemID := items[i].ID
			logs = append(logs, models.VisitLog{
				UserID:      actor.UserID,
				LandmarkID:  items[i].LandmarkID,
				PlanItemID:  &itemID,
				VisitedDate: now,
				VisitorName: actor.Name,
			})
		}
	}
	if changed == 0 {
		return 0, nil
	}

	if len(logs) > 0 {
		if err := tx.Create(&logs).Error; err != nil {
			return 0, fmt.Errorf("append visit log: %w", err)
		}
	}
	if err := SyncLandmarks(tx, keys(landmarks)...); err != nil {
		return 0, err
	}
	return changed, nil
}

// SetLandmark applies visited to every plan item of the landmark. A landmark
// that is in no plan has its own flag written instead. lm is refreshed in place.
func SetLandmark(tx *gorm.DB, actor Actor, lm *models.Landmark, visited bool) (int64, error) {
	items, err := landmarkItems(tx, lm.ID)
	if err != nil {
		return 0, err
	}

	var n int64
	if len(items) > 0 {
		n, err = SetItems(tx, actor, items, visited)
		if err != nil {
			return 0, err
		}
	} else {
		n, err = setStored(tx, actor, lm, visited)
		if err != nil {
			return 0, err
		}
	}
	return n, reload(tx, lm)
}

// ToggleLandmark flips each plan item of the landmark on its own, so items in
// different plans keep their relative state. A landmark in no plan has its
// stored flag flipped. lm is refreshed in place.
func ToggleLandmark(tx *gorm.DB, actor Actor, lm *models.Landmark) (int64, error) {
	items, err := landmarkItems(tx, lm.ID)
	if err != nil {
		return 0, err
	}
	if len(items) == 0 {
		n, err := setStored(tx, actor, lm, !lm.IsVisited)
		if err != nil {
			return 0, err
		}
		return n, reload(tx, lm)
	}

	var open, done []models.PlanItem
	for _, item := range items {
		if item.Visited {
			done = append(done, item)
		} else {
			open = append(open, item)
		}
	}
	opened, err := SetItems(tx, actor, done, false)
	if err != nil {
		return 0, err
	}
	closed, err := SetItems(tx, actor, open, true)
	if err != nil {
		return 0, err
	}
	return opened + closed, reload(tx, lm)
}

func landmarkItems(tx *gorm.DB, landmarkID uint) ([]models.PlanItem, error) {
	var items []models.PlanItem
	if err := tx.Where("landmark_id = ?", landmarkID).Order("id ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("load plan items: %w", err)
	}
	return items, nil
}

// setStored writes the flag of a landmark that has no plan items.
func setStored(tx *gorm.DB, actor Actor, lm *models.Landmark, visited bool) (int64, error) {
	res := tx.Model(&models.Landmark{}).
		Where("id = ? AND is_visited = ?", lm.ID, !visited).
		Update("is_visited", visited)
	if res.Error != nil {
		return 0, fmt.Errorf("update landmark: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return 0, nil
	}
	if visited {
		entry := models.VisitLog{
			UserID:      actor.UserID,
			LandmarkID:  lm.ID,
			VisitedDate: time.Now().UTC(),
			VisitorName: actor.Name,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return 0, fmt.Errorf("append visit log: %w", err)
		}
	}
	return 1, nil
}

func reload(tx *gorm.DB, lm *models.Landmark) error {
	if err := tx.First(lm, lm.ID).Error; err != nil {
		return fmt.Errorf("reload landmark: %w", err)
	}
	return nil
}

// SyncLandmarks re-derives is_visited for landmarks that have plan items.
func SyncLandmarks(tx *gorm.DB, ids ...uint) error {
	for _, id := range ids {
		var total, open int64
		if err := tx.Model(&models.PlanItem{}).Where("landmark_id = ?", id).Count(&total).Error; err != nil {
			return fmt.Errorf("count plan items: %w", err)
		}
		if total == 0 {
			continue
		}
		if err := tx.Model(&models.PlanItem{}).Where("landmark_id = ? AND visited = ?", id, false).Count(&open).Error; err != nil {
			return fmt.Errorf("count open plan items: %w", err)
		}
		if err := tx.Model(&models.Landmark{}).Where("id = ?", id).Update("is_visited", open == 0).Error; err != nil {
			return fmt.Errorf("sync landmark %d: %w", id, err)
		}
	}
	return nil
}

func keys(m map[uint]struct{}) []uint {
	out := make([]uint, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
