package models

import "time"

// VisitingPlan is a named, user-owned collection of plan items.
// The name is unique per owner and acts as the find-or-create key.
type VisitingPlan struct {
	ID        uint       `json:"id"         gorm:"primaryKey"`
	UserID    string     `json:"user_id"    gorm:"type:varchar(36);not null;uniqueIndex:idx_plan_owner_name,priority:1"`
	Name      string     `json:"name"       gorm:"type:varchar(255);not null;uniqueIndex:idx_plan_owner_name,priority:2"`
	CreatedAt time.Time  `json:"created_at"`
	Items     []PlanItem `json:"items,omitempty" gorm:"foreignKey:VisitingPlanID;constraint:OnDelete:CASCADE"`
}

func (VisitingPlan) TableName() string { return "visiting_plans" }

func (p *VisitingPlan) OwnerID() string { return p.UserID }

// PlanItem links one landmark to one plan with a per-plan date and visited flag.
type PlanItem struct {
	ID             uint      `json:"id"             gorm:"primaryKey"`
	VisitingPlanID uint      `json:"visitingPlanId" gorm:"index;not null"`
	LandmarkID     uint      `json:"landmarkId"     gorm:"index;not null"`
	Position       int       `json:"position"       gorm:"not null;default:0"`
	PlannedDate    time.Time `json:"plannedDate"    gorm:"not null"`
	Visited        bool      `json:"visited"        gorm:"not null;default:false"`
	Landmark       *Landmark `json:"landmark,omitempty" gorm:"foreignKey:LandmarkID;constraint:OnDelete:CASCADE"`
}

func (PlanItem) TableName() string { return "plan_items" }
