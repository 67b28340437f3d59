// Package seed loads the built-in world landmarks into a user's collection.
package seed

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/wayfarer-labs/planner/internal/models"
)

const (
	historical = "Historical Landmark"
	cultural   = "Cultural Landmark"
	religious  = "Religious Landmark"
)

var world = []models.Landmark{
	{Name: "Eiffel Tower", Latitude: 48.8584, Longitude: 2.2945, Category: historical,
		Description: "A wrought-iron lattice tower on the Champ de Mars in Paris, France."},
	{Name: "Great Wall of China", Latitude: 40.4319, Longitude: 116.5704, Category: historical,
		Description: "A series of fortifications that stretch across northern China."},
	{Name: "Machu Picchu", Latitude: -13.1631, Longitude: -72.5450, Category: historical,
		Description: "An ancient Inca city located in the Andes Mountains of Peru."},
	{Name: "Colosseum", Latitude: 41.8902, Longitude: 12.4922, Category: historical,
		Description: "An ancient amphitheater located in the center of Rome, Italy."},
	{Name: "Taj Mahal", Latitude: 27.1751, Longitude: 78.0421, Category: cultural,
		Description: "An ivory-white marble mausoleum located in Agra, India."},
	{Name: "Statue of Liberty", Latitude: 40.6892, Longitude: -74.0445, Category: historical,
		Description: "A colossal statue on Liberty Island in New York Harbor, USA."},
	{Name: "Christ the Redeemer", Latitude: -22.9519, Longitude: -43.2105, Category: religious,
		Description: "An iconic statue of Jesus Christ located in Rio de Janeiro, Brazil."},
	{Name: "Pyramids of Giza", Latitude: 29.9792, Longitude: 31.1342, Category: historical,
		Description: "A group of ancient pyramids located near Cairo, Egypt."},
	{Name: "Sydney Opera House", Latitude: -33.8568, Longitude: 151.2153, Category: cultural,
		Description: "A multi-venue performing arts center located in Sydney, Australia."},
	{Name: "Angkor Wat", Latitude: 13.4125, Longitude: 103.8667, Category: historical,
		Description: "A temple complex in Cambodia, originally built as a Hindu temple."},
}

// World returns a copy of the built-in landmark list, without ids or owners.
func World() []models.Landmark {
	out := make([]models.Landmark, len(world))
	copy(out, world)
	return out
}

// Landmarks inserts every built-in landmark the user does not already have (matched by name).
// It returns the landmarks that were created.
func Landmarks(ctx context.Context, db *gorm.DB, userID string) ([]models.Landmark, error) {
	var created []models.Landmark
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var owner int64
		if err := tx.Model(&models.UserModel{}).Where("id = ?", userID).Count(&owner).Error; err != nil {
			return err
		}
		if owner == 0 {
			return fmt.Errorf("user %s not found", userID)
		}

		var existing []string
		if err := tx.Model(&models.Landmark{}).Where("user_id = ?", userID).Pluck("name", &existing).Error; err != nil {
			return err
		}
		have := make(map[string]struct{}, len(existing))
		for _, name := range existing {
			have[name] = struct{}{}
		}

		for _, lm := range World() {
			if _, ok := have[lm.Name]; ok {
				continue
			}
			lm.UserID = userID
			if err := tx.Create(&lm).Error; err != nil {
				return fmt.Errorf("seed %s: %w", lm.Name, err)
			}
			created = append(created, lm)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}
