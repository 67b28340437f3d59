package landmark

import (
	"github.com/wayfarer-labs/planner/internal/models"
	"github.com/wayfarer-labs/planner/internal/pkg/jsonnum"
)

const maxNameLength = 255

type CreateLandmarkDTO struct {
	Name        string        `json:"name"`
	Latitude    jsonnum.Float `json:"latitude"`
	Longitude   jsonnum.Float `json:"longitude"`
	Description *string       `json:"description"`
	Category    *string       `json:"category"`
	IsVisited   bool          `json:"is_visited"`
}

// UpdateLandmarkDTO carries a partial update. Absent fields are left untouched.
type UpdateLandmarkDTO struct {
	Name        *string       `json:"name"`
	Latitude    jsonnum.Float `json:"latitude"`
	Longitude   jsonnum.Float `json:"longitude"`
	Description *string       `json:"description"`
	Category    *string       `json:"category"`
	IsVisited   *bool         `json:"is_visited"`
}

// Filter narrows List.
type Filter struct {
	Category string
	Visited  *bool
}

// Detail is a landmark with its description rendered for display.
type Detail struct {
	models.Landmark
	DescriptionHTML string `json:"description_html"`
}
