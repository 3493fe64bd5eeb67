package station

import (
	"math"
	"sort"

	"github.com/voltpath/stationfinder/internal/geo"
	"github.com/voltpath/stationfinder/internal/models"
)

const (
	UnnamedStation = "Unnamed station"
	DefaultAmenity = "station"
)

// Rank turns raw elements into stations sorted by distance from origin.
// Elements without a usable coordinate are dropped. With a nil origin every
// distance is nil and input order is kept.
func Rank(elements []models.Element, origin *models.Coordinate) []models.RankedStation {
	stations := make([]models.RankedStation, 0, len(elements))
	for _, el := range elements {
		coord, ok := el.Position()
		if !ok || coord.Validate() != nil {
			continue
		}

		s := models.RankedStation{
			Name:        firstTag(el.Tags, "name", "operator"),
			AmenityKind: firstTag(el.Tags, "amenity"),
			Coordinate:  coord,
		}
		if s.Name == "" {
			s.Name = UnnamedStation
		}
		if s.AmenityKind == "" {
			s.AmenityKind = DefaultAmenity
		}
		if price := firstTag(el.Tags, "fuel:price", "charging:price"); price != "" {
			s.Price = &price
		}
		if origin != nil {
			d := geo.Distance(*origin, coord)
			s.DistanceKm = &d
		}
		stations = append(stations, s)
	}

	sort.SliceStable(stations, func(i, j int) bool {
		return distanceOrInf(stations[i]) < distanceOrInf(stations[j])
	})
	return stations
}

func distanceOrInf(s models.RankedStation) float64 {
	if s.DistanceKm == nil {
		return math.Inf(1)
	}
	return *s.DistanceKm
}

func firstTag(tags map[string]string, keys ...string) string {
	for _, k := range keys {
		if v := tags[k]; v != "" {
			return v
		}
	}
	return ""
}
