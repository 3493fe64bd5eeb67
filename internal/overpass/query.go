package overpass

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/voltpath/stationfinder/internal/models"
)

// ServerTimeoutSeconds is the timeout the interpreter is asked to honor
const ServerTimeoutSeconds = 25

const (
	AmenityChargingStation = "charging_station"
	AmenityFuel            = "fuel"
)

var geometryTypes = []string{"node", "way", "relation"}

// AmenityFilters returns the amenity values to search for, in a fixed order
func AmenityFilters(t models.VehicleEnergyType) []string {
	switch t {
	case models.VehicleElectric:
		return []string{AmenityChargingStation}
	case models.VehiclePetrol, models.VehicleGas:
		return []string{AmenityFuel}
	default:
		return []string{AmenityChargingStation, AmenityFuel}
	}
}

// BuildQuery renders an Overpass QL union of point, way and relation
// clauses for every amenity filter. The same query always yields the same text.
func BuildQuery(q models.StationQuery) string {
	lat := formatFloat(q.Center.Lat)
	lng := formatFloat(q.Center.Lng)

	var parts []string
	for _, amenity := range AmenityFilters(q.Type) {
		for _, geometry := range geometryTypes {
			parts = append(parts, fmt.Sprintf("%s(around:%d,%s,%s)[amenity=%s];", geometry, q.RadiusMeters, lat, lng, amenity))
		}
	}

	return fmt.Sprintf("[out:json][timeout:%d];(%s);out center;", ServerTimeoutSeconds, strings.Join(parts, "\n"))
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
