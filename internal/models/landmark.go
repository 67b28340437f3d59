package models

// Landmark is a point of interest in a user's library.
// IsVisited mirrors the plan items that reference it; see visitstate.
type Landmark struct {
	Base
	UserID      string  `json:"user_id"     gorm:"type:varchar(36);index;not null"`
	Name        string  `json:"name"        gorm:"type:varchar(255);not null"`
	Latitude    float64 `json:"latitude"    gorm:"not null"`
	Longitude   float64 `json:"longitude"   gorm:"not null"`
	Description string  `json:"description" gorm:"type:text"`
	Category    string  `json:"category"    gorm:"type:varchar(120);index"`
	IsVisited   bool    `json:"is_visited"  gorm:"not null;default:false"`
}

func (Landmark) TableName() string { return "landmarks" }

func (l *Landmark) OwnerID() string { return l.UserID }

// Coordinates returns the landmark position as a pair.
func (l *Landmark) Coordinates() Coordinates {
	return Coordinates{Latitude: l.Latitude, Longitude: l.Longitude}
}

// SetCoordinates writes both halves of the pair at once.
func (l *Landmark) SetCoordinates(c Coordinates) {
	l.Latitude = c.Latitude
	l.Longitude = c.Longitude
}
