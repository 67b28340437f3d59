package landmark

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/wayfarer-labs/planner/internal/models"
	"github.com/wayfarer-labs/planner/internal/pkg/apperr"
	"github.com/wayfarer-labs/planner/internal/pkg/markdown"
	"github.com/wayfarer-labs/planner/internal/pkg/ownership"
	"github.com/wayfarer-labs/planner/internal/pkg/visitstate"
)

// Service manages a user's landmark library.
type Service struct {
	db     *gorm.DB
	logger *zap.Logger
}

// ServiceOption configures a landmark Service.
type ServiceOption func(*Service)

// WithLogger sets the logger for the landmark service.
func WithLogger(l *zap.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l.Named("LandmarkService")
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

func (s *Service) List(ctx context.Context, userID string, f Filter) ([]models.Landmark, error) {
	q := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if c := strings.TrimSpace(f.Category); c != "" {
		q = q.Where("category = ?", c)
	}
	if f.Visited != nil {
		q = q.Where("is_visited = ?", *f.Visited)
	}
	landmarks := make([]models.Landmark, 0)
	if err := q.Order("id ASC").Find(&landmarks).Error; err != nil {
		return nil, apperr.Persistence("list landmarks", err)
	}
	return landmarks, nil
}

func (s *Service) Get(ctx context.Context, userID string, id uint) (*Detail, error) {
	lm, err := ownership.Landmark(s.db.WithContext(ctx), id, userID)
	if err != nil {
		return nil, err
	}
	return &Detail{Landmark: *lm, DescriptionHTML: markdown.Render(lm.Description)}, nil
}

func (s *Service) Create(ctx context.Context, userID string, dto *CreateLandmarkDTO) (*models.Landmark, error) {
	name, err := normalizeName(dto.Name)
	if err != nil {
		return nil, err
	}
	if !dto.Latitude.Set || !dto.Longitude.Set {
		return nil, apperr.Validation("latitude and longitude are required")
	}
	coords := models.Coordinates{Latitude: dto.Latitude.Value, Longitude: dto.Longitude.Value}
	if err := coords.Validate(); err != nil {
		return nil, apperr.Validation("%s", err.Error())
	}

	lm := &models.Landmark{
		UserID:      userID,
		Name:        name,
		Description: strings.TrimSpace(deref(dto.Description)),
		Category:    strings.TrimSpace(deref(dto.Category)),
	}
	lm.SetCoordinates(coords)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(lm).Error; err != nil {
			return apperr.Persistence("create landmark", err)
		}
		if !dto.IsVisited {
			return nil
		}
		actor, err := visitstate.ActorFor(tx, userID)
		if err != nil {
			return apperr.Persistence("create landmark", err)
		}
		if _, err := visitstate.SetLandmark(tx, actor, lm, true); err != nil {
			return apperr.Persistence("create landmark", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("landmark created", zap.Uint("id", lm.ID), zap.String("user", userID))
	return lm, nil
}

// Update applies only the fields present in dto. A present is_visited is written
// through to every plan item of the landmark.
func (s *Service) Update(ctx context.Context, userID string, id uint, dto *UpdateLandmarkDTO) (*models.Landmark, error) {
	var out *models.Landmark
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lm, err := ownership.Landmark(tx, id, userID)
		if err != nil {
			return err
		}

		updates := map[string]interface{}{}
		if dto.Name != nil {
			name, err := normalizeName(*dto.Name)
			if err != nil {
				return err
			}
			updates["name"] = name
		}
		if dto.Latitude.Set || dto.Longitude.Set {
			coords := lm.Coordinates()
			if dto.Latitude.Set {
				coords.Latitude = dto.Latitude.Value
			}
			if dto.Longitude.Set {
				coords.Longitude = dto.Longitude.Value
			}
			if err := coords.Validate(); err != nil {
				return apperr.Validation("%s", err.Error())
			}
			updates["latitude"] = coords.Latitude
			updates["longitude"] = coords.Longitude
		}
		if dto.Description != nil {
			updates["description"] = strings.TrimSpace(*dto.Description)
		}
		if dto.Category != nil {
			updates["category"] = strings.TrimSpace(*dto.Category)
		}
		if len(updates) > 0 {
			if err := tx.Model(lm).Updates(updates).Error; err != nil {
				return apperr.Persistence("update landmark", err)
			}
		}

		if dto.IsVisited != nil {
			actor, err := visitstate.ActorFor(tx, userID)
			if err != nil {
				return apperr.Persistence("update landmark", err)
			}
			if _, err := visitstate.SetLandmark(tx, actor, lm, *dto.IsVisited); err != nil {
				return apperr.Persistence("update landmark", err)
			}
		} else if err := tx.First(lm, lm.ID).Error; err != nil {
			return apperr.Persistence("reload landmark", err)
		}
		out = lm
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes the landmark together with its plan items and visit log entries.
func (s *Service) Delete(ctx context.Context, userID string, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lm, err := ownership.Landmark(tx, id, userID)
		if err != nil {
			return err
		}
		if err := tx.Where("landmark_id = ?", lm.ID).Delete(&models.VisitLog{}).Error; err != nil {
			return apperr.Persistence("delete visit log", err)
		}
		if err := tx.Where("landmark_id = ?", lm.ID).Delete(&models.PlanItem{}).Error; err != nil {
			return apperr.Persistence("delete plan items", err)
		}
		if err := tx.Delete(lm).Error; err != nil {
			return apperr.Persistence("delete landmark", err)
		}
		return nil
	})
}

func normalizeName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", apperr.Validation("name is required")
	}
	if len(name) > maxNameLength {
		return "", apperr.Validation("name too long (max %d characters)", maxNameLength)
	}
	return name, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
