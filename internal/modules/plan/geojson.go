package plan

import (
	"context"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/wayfarer-labs/planner/internal/pkg/dates"
)

// GeoJSON renders the plan as one Point per item plus a LineString route in visiting order.
func (s *Service) GeoJSON(ctx context.Context, userID string, id uint) (*geojson.FeatureCollection, error) {
	view, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return buildFeatureCollection(view), nil
}

func buildFeatureCollection(view *View) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	route := make(orb.LineString, 0, len(view.Items))
	for i, item := range view.Items {
		if item.Landmark == nil {
			continue
		}
		lm := item.Landmark
		pt := orb.Point{lm.Longitude, lm.Latitude}
		route = append(route, pt)

		f := geojson.NewFeature(pt)
		f.ID = item.ID
		f.Properties["order"] = i + 1
		f.Properties["landmarkId"] = lm.ID
		f.Properties["name"] = lm.Name
		f.Properties["category"] = lm.Category
		f.Properties["visited"] = item.Visited
		f.Properties["plannedDate"] = item.PlannedDate.Format(dates.Layout)
		fc.Append(f)
	}
	if len(route) >= 2 {
		line := geojson.NewFeature(route)
		line.Properties["planId"] = view.ID
		line.Properties["name"] = view.Name
		line.Properties["stroke"] = view.Color
		fc.Append(line)
	}
	return fc
}
