package parks

import (
	"math"
	"sort"

	"github.com/npsdash/backend-go/internal/models"
)

const earthRadiusKm = 6371.0

// Distance is the great-circle distance in kilometres.
func Distance(a, b models.Point) float64 {
	dLat := toRadians(b.Latitude - a.Latitude)
	dLon := toRadians(b.Longitude - a.Longitude)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(a.Latitude))*math.Cos(toRadians(b.Latitude))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusKm * c
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

type Ranked struct {
	Park       models.Park
	DistanceKm float64
}

// Nearest ranks parks with a known location by distance from p. A
// non-positive limit returns all of them.
func Nearest(parks []models.Park, p models.Point, limit int) []Ranked {
	if !p.Defined() {
		return nil
	}
	ranked := make([]Ranked, 0, len(parks))
	for _, park := range parks {
		if !park.Location.Defined() {
			continue
		}
		ranked = append(ranked, Ranked{Park: park, DistanceKm: Distance(p, park.Location)})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].DistanceKm < ranked[j].DistanceKm
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
