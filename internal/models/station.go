package models

// StationQuery is built fresh for every search
type StationQuery struct {
	Center       Coordinate
	RadiusMeters int
	Type         VehicleEnergyType
}

// ElementCenter is the center point Overpass returns for ways and relations
type ElementCenter struct {
	Lat float64 `json:"lat" dynamodbav:"lat"`
	Lon float64 `json:"lon" dynamodbav:"lon"`
}

// Element is a raw point of interest as returned by Overpass
type Element struct {
	Type   string            `json:"type,omitempty" dynamodbav:"type,omitempty"`
	ID     int64             `json:"id" dynamodbav:"id"`
	Lat    *float64          `json:"lat,omitempty" dynamodbav:"lat,omitempty"`
	Lon    *float64          `json:"lon,omitempty" dynamodbav:"lon,omitempty"`
	Center *ElementCenter    `json:"center,omitempty" dynamodbav:"center,omitempty"`
	Tags   map[string]string `json:"tags,omitempty" dynamodbav:"tags,omitempty"`
}

// Position returns the element's own coordinate, falling back to its
// geometry center. ok is false when neither is present.
func (e Element) Position() (Coordinate, bool) {
	if e.Lat != nil && e.Lon != nil {
		return Coordinate{Lat: *e.Lat, Lng: *e.Lon}, true
	}
	if e.Center != nil {
		return Coordinate{Lat: e.Center.Lat, Lng: e.Center.Lon}, true
	}
	return Coordinate{}, false
}

// RankedStation is a station ready for presentation. DistanceKm is nil when
// no origin was known at ranking time.
type RankedStation struct {
	Name        string     `json:"name"`
	AmenityKind string     `json:"amenityKind"`
	Price       *string    `json:"price,omitempty"`
	Coordinate  Coordinate `json:"coordinate"`
	DistanceKm  *float64   `json:"distanceKm,omitempty"`
}
