package visit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/wayfarer-labs/planner/internal/models"
	"github.com/wayfarer-labs/planner/internal/pkg/apperr"
	"github.com/wayfarer-labs/planner/internal/pkg/dates"
	"github.com/wayfarer-labs/planner/internal/pkg/ownership"
	"github.com/wayfarer-labs/planner/internal/pkg/pagination"
	"github.com/wayfarer-labs/planner/internal/pkg/response"
	"github.com/wayfarer-labs/planner/internal/pkg/visitstate"
)

// Service flips visited flags and keeps the visit log.
//
// Mark operations are idempotent: marking something already visited changes nothing
// and still succeeds. Toggle operations flip on every call.
type Service struct {
	db     *gorm.DB
	logger *zap.Logger
}

// ServiceOption configures a visit Service.
type ServiceOption func(*Service)

// WithLogger sets the logger for the visit service.
func WithLogger(l *zap.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l.Named("VisitService")
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

func (s *Service) tx(ctx context.Context, userID string, fn func(tx *gorm.DB, actor visitstate.Actor) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		actor, err := visitstate.ActorFor(tx, userID)
		if err != nil {
			return apperr.Persistence("load visitor", err)
		}
		return fn(tx, actor)
	})
}

// MarkLandmarkVisited marks every open plan item of the landmark as visited.
func (s *Service) MarkLandmarkVisited(ctx context.Context, userID string, landmarkID uint) (*Result, error) {
	var n int64
	err := s.tx(ctx, userID, func(tx *gorm.DB, actor visitstate.Actor) error {
		lm, err := ownership.Landmark(tx, landmarkID, userID)
		if err != nil {
			return err
		}
		n, err = visitstate.SetLandmark(tx, actor, lm, true)
		if err != nil {
			return apperr.Persistence("mark landmark visited", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return countResult(n), nil
}

// MarkItemVisited marks a single plan item visited.
func (s *Service) MarkItemVisited(ctx context.Context, userID string, itemID uint) (*models.PlanItem, error) {
	return s.setItem(ctx, userID, itemID, func(bool) bool { return true })
}

// ToggleItem flips one plan item.
func (s *Service) ToggleItem(ctx context.Context, userID string, itemID uint) (*models.PlanItem, error) {
	return s.setItem(ctx, userID, itemID, func(cur bool) bool { return !cur })
}

func (s *Service) setItem(ctx context.Context, userID string, itemID uint, next func(bool) bool) (*models.PlanItem, error) {
	var out models.PlanItem
	err := s.tx(ctx, userID, func(tx *gorm.DB, actor visitstate.Actor) error {
		item, err := ownership.PlanItem(tx, itemID, userID)
		if err != nil {
			return err
		}
		if _, err := visitstate.SetItems(tx, actor, []models.PlanItem{*item}, next(item.Visited)); err != nil {
			return apperr.Persistence("update plan item", err)
		}
		if err := tx.Preload("Landmark").First(&out, item.ID).Error; err != nil {
			return apperr.Persistence("reload plan item", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// MarkPlanVisited marks every item of the plan visited.
func (s *Service) MarkPlanVisited(ctx context.Context, userID string, planID uint) (*Result, error) {
	var n int64
	err := s.tx(ctx, userID, func(tx *gorm.DB, actor visitstate.Actor) error {
		p, err := ownership.Plan(tx, planID, userID)
		if err != nil {
			return err
		}
		var items []models.PlanItem
		if err := tx.Where("visiting_plan_id = ?", p.ID).Order("position ASC, id ASC").Find(&items).Error; err != nil {
			return apperr.Persistence("load plan items", err)
		}
		n, err = visitstate.SetItems(tx, actor, items, true)
		if err != nil {
			return apperr.Persistence("mark plan visited", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return countResult(n), nil
}

// ToggleLandmark flips every plan item of the landmark, or its stored flag when it is in no plan.
func (s *Service) ToggleLandmark(ctx context.Context, userID string, landmarkID uint) (*models.Landmark, error) {
	var out *models.Landmark
	err := s.tx(ctx, userID, func(tx *gorm.DB, actor visitstate.Actor) error {
		lm, err := ownership.Landmark(tx, landmarkID, userID)
		if err != nil {
			return err
		}
		if _, err := visitstate.ToggleLandmark(tx, actor, lm); err != nil {
			return apperr.Persistence("toggle landmark", err)
		}
		out = lm
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func countResult(n int64) *Result {
	if n == 0 {
		return &Result{Message: "already visited", Count: 0}
	}
	return &Result{Message: fmt.Sprintf("marked %d as visited", n), Count: n}
}

// ListLog pages through the caller's visit log, newest first.
func (s *Service) ListLog(ctx context.Context, userID string, q pagination.Query) ([]models.VisitLog, response.Pagination, error) {
	logs := make([]models.VisitLog, 0)
	query := s.db.WithContext(ctx).Model(&models.VisitLog{}).
		Where("user_id = ?", userID).
		Order("visited_date DESC, id DESC")
	page, err := pagination.Paginate(query, q, &logs)
	if err != nil {
		return nil, response.Pagination{}, apperr.Persistence("list visit log", err)
	}
	if err := s.attachLandmarks(ctx, logs); err != nil {
		return nil, response.Pagination{}, err
	}
	return logs, page, nil
}

func (s *Service) attachLandmarks(ctx context.Context, logs []models.VisitLog) error {
	if len(logs) == 0 {
		return nil
	}
	ids := make([]uint, 0, len(logs))
	for _, l := range logs {
		ids = append(ids, l.LandmarkID)
	}
	var landmarks []models.Landmark
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&landmarks).Error; err != nil {
		return apperr.Persistence("load visited landmarks", err)
	}
	byID := make(map[uint]*models.Landmark, len(landmarks))
	for i := range landmarks {
		byID[landmarks[i].ID] = &landmarks[i]
	}
	for i := range logs {
		logs[i].Landmark = byID[logs[i].LandmarkID]
	}
	return nil
}

// CreateLog appends an explicit visit record. It never changes visited flags.
func (s *Service) CreateLog(ctx context.Context, userID string, dto *CreateLogDTO) (*models.VisitLog, error) {
	if dto.LandmarkID == 0 {
		return nil, apperr.Validation("landmarkId is required")
	}
	visitedAt := time.Now().UTC()
	if strings.TrimSpace(dto.VisitedDate) != "" {
		t, err := dates.Parse(dto.VisitedDate)
		if err != nil {
			return nil, apperr.Validation("invalid visited_date %q", dto.VisitedDate)
		}
		visitedAt = t
	}

	var entry models.VisitLog
	err := s.tx(ctx, userID, func(tx *gorm.DB, actor visitstate.Actor) error {
		lm, err := ownership.Landmark(tx, uint(dto.LandmarkID), userID)
		if err != nil {
			return err
		}
		entry = models.VisitLog{
			UserID:      userID,
			LandmarkID:  lm.ID,
			VisitedDate: visitedAt,
			VisitorName: actor.Name,
		}
		if dto.VisitorName != nil && strings.TrimSpace(*dto.VisitorName) != "" {
			entry.VisitorName = strings.TrimSpace(*dto.VisitorName)
		}
		if dto.PlanItemID != 0 {
			item, err := ownership.PlanItem(tx, uint(dto.PlanItemID), userID)
			if err != nil {
				return err
			}
			if item.LandmarkID != lm.ID {
				return apperr.Validation("plan item %d does not reference landmark %d", item.ID, lm.ID)
			}
			entry.PlanItemID = &item.ID
		}
		if err := tx.Omit("Landmark").Create(&entry).Error; err != nil {
			return apperr.Persistence("create visit log", err)
		}
		entry.Landmark = lm
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *Service) DeleteLog(ctx context.Context, userID string, id uint) error {
	db := s.db.WithContext(ctx)
	entry, err := ownership.Find[models.VisitLog](db, "visit log entry", id, userID)
	if err != nil {
		return err
	}
	if err := db.Delete(entry).Error; err != nil {
		return apperr.Persistence("delete visit log", err)
	}
	return nil
}
