package plan

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wayfarer-labs/planner/internal/models"
	"github.com/wayfarer-labs/planner/internal/pkg/apperr"
	"github.com/wayfarer-labs/planner/internal/pkg/ownership"
	"github.com/wayfarer-labs/planner/internal/pkg/visitstate"
)

// Service manages visiting plans and their items.
type Service struct {
	db     *gorm.DB
	logger *zap.Logger
}

// ServiceOption configures a plan Service.
type ServiceOption func(*Service)

// WithLogger sets the logger for the plan service.
func WithLogger(l *zap.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l.Named("PlanService")
		}
	}
}

func NewService(db *gorm.DB, opts ...ServiceOption) *Service {
	s := &Service{db: db, logger: zap.NewNop()}
	for _, o := range opts {
		o(s)
	}
	return s
}

func preloadItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("position ASC, id ASC")
	}).Preload("Items.Landmark")
}

// List returns the caller's plans ordered by id.
func (s *Service) List(ctx context.Context, userID string, includeItems bool) ([]View, error) {
	q := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC")
	if includeItems {
		q = preloadItems(q)
	}
	var plans []models.VisitingPlan
	if err := q.Find(&plans).Error; err != nil {
		return nil, apperr.Persistence("list plans", err)
	}

	ids := make([]uint, len(plans))
	for i := range plans {
		ids[i] = plans[i].ID
	}
	completed, err := s.completion(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]View, len(plans))
	for i := range plans {
		views[i] = View{VisitingPlan: plans[i], Color: ColorFor(plans[i].ID), IsCompleted: completed[plans[i].ID]}
	}
	return views, nil
}

// completion reports, per plan, whether it has at least one item and none left open.
func (s *Service) completion(ctx context.Context, ids []uint) (map[uint]bool, error) {
	out := make(map[uint]bool, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	type row struct {
		VisitingPlanID uint
		N              int64
	}
	var totals, open []row
	db := s.db.WithContext(ctx)
	if err := db.Model(&models.PlanItem{}).
		Select("visiting_plan_id, COUNT(*) AS n").
		Where("visiting_plan_id IN ?", ids).
		Group("visiting_plan_id").
		Scan(&totals).Error; err != nil {
		return nil, apperr.Persistence("count plan items", err)
	}
	if err := db.Model(&models.PlanItem{}).
		Select("visiting_plan_id, COUNT(*) AS n").
		Where("visiting_plan_id IN ? AND visited = ?", ids, false).
		Group("visiting_plan_id").
		Scan(&open).Error; err != nil {
		return nil, apperr.Persistence("count open plan items", err)
	}
	for _, r := range totals {
		out[r.VisitingPlanID] = r.N > 0
	}
	for _, r := range open {
		if r.N > 0 {
			out[r.VisitingPlanID] = false
		}
	}
	return out, nil
}

// Get returns one plan with its items and their landmarks.
func (s *Service) Get(ctx context.Context, userID string, id uint) (*View, error) {
	db := s.db.WithContext(ctx)
	if _, err := ownership.Plan(db, id, userID); err != nil {
		return nil, err
	}
	var p models.VisitingPlan
	if err := preloadItems(db).First(&p, id).Error; err != nil {
		return nil, apperr.Persistence("load plan", err)
	}
	return toView(&p), nil
}

func toView(p *models.VisitingPlan) *View {
	done := len(p.Items) > 0
	for _, it := range p.Items {
		if !it.Visited {
			done = false
			break
		}
	}
	return &View{VisitingPlan: *p, Color: ColorFor(p.ID), IsCompleted: done}
}

type pendingItem struct {
	landmark *models.Landmark
	date     time.Time
}

// CreateWithItems finds or creates the caller's plan by name and appends one item per input.
// Dates are validated before anything is written; the whole batch is one transaction.
func (s *Service) CreateWithItems(ctx context.Context, userID, rawName string, items []ItemInput) (*CreateResult, error) {
	name, err := normalizeName(rawName)
	if err != nil {
		return nil, err
	}
	dates := make([]time.Time, len(items))
	for i, it := range items {
		if it.LandmarkID == 0 {
			return nil, apperr.Validation("items[%d]: landmarkId is required", i)
		}
		d, err := ParsePlannedDate(it.PlannedDate)
		if err != nil {
			return nil, apperr.Validation("items[%d]: %s", i, apperr.PublicMessage(err))
		}
		dates[i] = d
	}

	var result *CreateResult
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pending := make([]pendingItem, len(items))
		for i, it := range items {
			lm, err := ownership.Landmark(tx, uint(it.LandmarkID), userID)
			if err != nil {
				return err
			}
			pending[i] = pendingItem{landmark: lm, date: dates[i]}
		}
		result, err = s.appendToPlan(tx, userID, name, pending)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("plan items added",
		zap.Uint("plan", result.Plan.ID), zap.Int("items", len(result.PlanItems)), zap.String("user", userID))
	return result, nil
}

// CreateFromLocations is the compose-on-map path: each location becomes a new landmark and a plan item.
func (s *Service) CreateFromLocations(ctx context.Context, userID, rawName string, locs []LocationInput) (*CreateResult, error) {
	name, err := normalizeName(rawName)
	if err != nil {
		return nil, err
	}
	today := time.Now().UTC().Truncate(24 * time.Hour)
	landmarks := make([]*models.Landmark, len(locs))
	dates := make([]time.Time, len(locs))
	for i, loc := range locs {
		lmName := strings.TrimSpace(loc.Name)
		if lmName == "" {
			return nil, apperr.Validation("landmarks[%d]: name is required", i)
		}
		if len(loc.Position) != 2 || !loc.Position[0].Set || !loc.Position[1].Set {
			return nil, apperr.Validation("landmarks[%d]: position must be [latitude, longitude]", i)
		}
		coords := models.Coordinates{Latitude: loc.Position[0].Value, Longitude: loc.Position[1].Value}
		if err := coords.Validate(); err != nil {
			return nil, apperr.Validation("landmarks[%d]: %s", i, err.Error())
		}
		dates[i] = today
		if strings.TrimSpace(loc.VisitDate) != "" {
			d, err := ParsePlannedDate(loc.VisitDate)
			if err != nil {
				return nil, apperr.Validation("landmarks[%d]: invalid visit_date %q", i, loc.VisitDate)
			}
			dates[i] = d
		}
		lm := &models.Landmark{UserID: userID, Name: lmName}
		if loc.Description != nil {
			lm.Description = strings.TrimSpace(*loc.Description)
		}
		if loc.Category != nil {
			lm.Category = strings.TrimSpace(*loc.Category)
		}
		lm.SetCoordinates(coords)
		landmarks[i] = lm
	}

	var result *CreateResult
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pending := make([]pendingItem, len(landmarks))
		for i, lm := range landmarks {
			if err := tx.Create(lm).Error; err != nil {
				return apperr.Persistence("create landmark", err)
			}
			pending[i] = pendingItem{landmark: lm, date: dates[i]}
		}
		result, err = s.appendToPlan(tx, userID, name, pending)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("plan composed",
		zap.Uint("plan", result.Plan.ID), zap.Int("landmarks", len(landmarks)), zap.String("user", userID))
	return result, nil
}

func (s *Service) appendToPlan(tx *gorm.DB, userID, name string, pending []pendingItem) (*CreateResult, error) {
	plan, err := findOrCreate(tx, userID, name)
	if err != nil {
		return nil, err
	}

	var last sql.NullInt64
	if err := tx.Model(&models.PlanItem{}).
		Where("visiting_plan_id = ?", plan.ID).
		Select("MAX(position)").
		Row().Scan(&last); err != nil {
		return nil, apperr.Persistence("read plan positions", err)
	}
	next := 0
	if last.Valid {
		next = int(last.Int64) + 1
	}

	created := make([]models.PlanItem, len(pending))
	landmarkIDs := make([]uint, 0, len(pending))
	for i, p := range pending {
		created[i] = models.PlanItem{
			VisitingPlanID: plan.ID,
			LandmarkID:     p.landmark.ID,
			Position:       next + i,
			PlannedDate:    p.date,
		}
		landmarkIDs = append(landmarkIDs, p.landmark.ID)
	}
	if len(created) > 0 {
		if err := tx.Omit("Landmark").Create(&created).Error; err != nil {
			return nil, apperr.Persistence("create plan items", err)
		}
		if err := visitstate.SyncLandmarks(tx, landmarkIDs...); err != nil {
			return nil, apperr.Persistence("sync landmarks", err)
		}
	}
	for i := range created {
		lm := *pending[i].landmark
		if err := tx.First(&lm, lm.ID).Error; err != nil {
			return nil, apperr.Persistence("reload landmark", err)
		}
		created[i].Landmark = &lm
	}
	return &CreateResult{Plan: plan, PlanItems: created}, nil
}

// findOrCreate treats (owner, name) as the natural key. Concurrent creators race on the
// unique index; the loser re-reads the winner's row.
func findOrCreate(tx *gorm.DB, userID, name string) (*models.VisitingPlan, error) {
	plan := &models.VisitingPlan{UserID: userID, Name: name}
	res := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "name"}},
		DoNothing: true,
	}).Omit("Items").Create(plan)
	if res.Error != nil {
		return nil, apperr.Persistence("create plan", res.Error)
	}
	if res.RowsAffected > 0 && plan.ID != 0 {
		return plan, nil
	}

	var existing models.VisitingPlan
	if err := tx.Where("user_id = ? AND name = ?", userID, name).First(&existing).Error; err != nil {
		return nil, apperr.Persistence("load plan", err)
	}
	return &existing, nil
}

// Delete removes the plan's items, then the plan, in one transaction.
// Landmarks stay in the owner's library.
func (s *Service) Delete(ctx context.Context, userID string, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := ownership.Plan(tx, id, userID)
		if err != nil {
			return err
		}
		var items []models.PlanItem
		if err := tx.Where("visiting_plan_id = ?", p.ID).Find(&items).Error; err != nil {
			return apperr.Persistence("load plan items", err)
		}
		itemIDs := make([]uint, 0, len(items))
		landmarkIDs := make([]uint, 0, len(items))
		for _, it := range items {
			itemIDs = append(itemIDs, it.ID)
			landmarkIDs = append(landmarkIDs, it.LandmarkID)
		}
		if len(itemIDs) > 0 {
			if err := tx.Model(&models.VisitLog{}).Where("plan_item_id IN ?", itemIDs).
				Update("plan_item_id", nil).Error; err != nil {
				return apperr.Persistence("detach visit log", err)
			}
			if err := tx.Where("id IN ?", itemIDs).Delete(&models.PlanItem{}).Error; err != nil {
				return apperr.Persistence("delete plan items", err)
			}
		}
		if err := tx.Delete(p).Error; err != nil {
			return apperr.Persistence("delete plan", err)
		}
		if err := visitstate.SyncLandmarks(tx, landmarkIDs...); err != nil {
			return apperr.Persistence("sync landmarks", err)
		}
		return nil
	})
}

// Landmarks returns the plan's landmarks in visiting order.
func (s *Service) Landmarks(ctx context.Context, userID string, id uint) ([]models.Landmark, error) {
	db := s.db.WithContext(ctx)
	if _, err := ownership.Plan(db, id, userID); err != nil {
		return nil, err
	}
	landmarks := make([]models.Landmark, 0)
	err := db.Model(&models.Landmark{}).
		Select("landmarks.*").
		Joins("JOIN plan_items ON plan_items.landmark_id = landmarks.id").
		Where("plan_items.visiting_plan_id = ?", id).
		Order("plan_items.position ASC, plan_items.id ASC").
		Find(&landmarks).Error
	if err != nil {
		return nil, apperr.Persistence("list plan landmarks", err)
	}
	return landmarks, nil
}
