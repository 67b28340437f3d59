package plan

import (
	"errors"
	"hash/fnv"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/wayfarer-labs/planner/internal/pkg/apperr"
	"github.com/wayfarer-labs/planner/internal/pkg/dates"
)

var palette = []string{
	"#2563EB", "#DC2626", "#059669", "#D97706", "#7C3AED",
	"#DB2777", "#0891B2", "#65A30D", "#EA580C", "#4F46E5",
}

// ColorFor returns a stable palette color for a plan id.
func ColorFor(id uint) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strconv.FormatUint(uint64(id), 10)))
	return palette[h.Sum32()%uint32(len(palette))]
}

var suggestions = []string{
	"Weekend Adventure",
	"Hidden Gems Tour",
	"Local Foodie Journey",
	"Cultural Discovery Route",
	"Photography Spots Trail",
	"Sunset Chase Itinerary",
	"Historical Landmarks Tour",
	"Urban Explorer's Path",
	"Nature Escape Route",
	"Architectural Wonders Tour",
	"Street Art Safari",
	"Romantic City Walk",
	"Coffee Shop Hopping",
	"Vintage Store Trail",
	"Garden & Parks Tour",
	"Night Life Adventure",
	"Local Markets Route",
	"Sacred Places Journey",
	"Scenic Viewpoints Tour",
	"Art Gallery Expedition",
}

// Suggestions returns the plan name suggestions.
func Suggestions() []string {
	out := make([]string, len(suggestions))
	copy(out, suggestions)
	return out
}

// RandomSuggestion picks one suggestion.
func RandomSuggestion() string {
	return suggestions[rand.IntN(len(suggestions))]
}

// ParsePlannedDate validates a plannedDate field.
func ParsePlannedDate(raw string) (time.Time, error) {
	t, err := dates.Parse(raw)
	if errors.Is(err, dates.ErrEmpty) {
		return time.Time{}, apperr.Validation("plannedDate is required")
	}
	if err != nil {
		return time.Time{}, apperr.Validation("invalid plannedDate %q", raw)
	}
	return t, nil
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
