package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base is the base model for planner entities. IDs are numeric and assigned by the database.
type Base struct {
	ID        uint      `json:"id"         gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AccountBase is the base model for identity rows, keyed by UUID strings.
type AccountBase struct {
	ID        string    `json:"id"         gorm:"type:varchar(36);primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *AccountBase) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	return nil
}

// Owned is implemented by every row that belongs to exactly one user.
type Owned interface {
	OwnerID() string
}

// All lists every model in migration order (parents before children).
func All() []interface{} {
	return []interface{}{
		&UserModel{},
		&UserSession{},
		&Landmark{},
		&VisitingPlan{},
		&PlanItem{},
		&VisitLog{},
	}
}
