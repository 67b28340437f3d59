package models

import "time"

// VisitLog is an append-only record of a landmark visit. It never feeds back into the visited flags.
type VisitLog struct {
	ID          uint      `json:"id"           gorm:"primaryKey"`
	UserID      string    `json:"user_id"      gorm:"type:varchar(36);index;not null"`
	LandmarkID  uint      `json:"landmark_id"  gorm:"index;not null"`
	PlanItemID  *uint     `json:"plan_item_id" gorm:"index"`
	VisitedDate time.Time `json:"visited_date" gorm:"index;not null"`
	VisitorName string    `json:"visitor_name" gorm:"type:varchar(255)"`
	Landmark    *Landmark `json:"landmark,omitempty" gorm:"foreignKey:LandmarkID;constraint:OnDelete:CASCADE"`
}

func (VisitLog) TableName() string { return "visited_landmarks" }

func (v *VisitLog) OwnerID() string { return v.UserID }
