package present

import (
	"fmt"
	"math"
	"strconv"

	"github.com/voltpath/stationfinder/internal/models"
)

const (
	EmptyNotice   = "No nearby stations found (OpenStreetMap data)."
	FailureNotice = "Could not load nearby stations. Try again later."

	// SingleStationZoom is the map zoom used when only one station matched
	SingleStationZoom = 14
	// LocationZoom frames a freshly obtained user location
	LocationZoom = 13
	// DefaultCenterZoom frames the default center after a reset
	DefaultCenterZoom = 12
	UserMarkerTitle   = "You"

	// BoundsPadding is the fraction of the marker span added on every side
	BoundsPadding = 0.2

	directionsBaseURL = "https://www.google.com/maps/dir/?api=1&destination="
)

// ListRow is one station entry in the list view
type ListRow struct {
	Name          string  `json:"name"`
	Distance      string  `json:"distance,omitempty"`
	AmenityKind   string  `json:"amenityKind"`
	Price         *string `json:"price,omitempty"`
	DirectionsURL string  `json:"directionsUrl"`
}

type ListView struct {
	Notice string    `json:"notice,omitempty"`
	Rows   []ListRow `json:"rows"`
}

type Marker struct {
	Position models.Coordinate `json:"position"`
	Title    string            `json:"title"`
	Subtitle string            `json:"subtitle"`
}

// Bounds is a south-west / north-east box
type Bounds struct {
	SouthWest models.Coordinate `json:"southWest"`
	NorthEast models.Coordinate `json:"northEast"`
}

// Pad grows the box by ratio of its span in every direction
func (b Bounds) Pad(ratio float64) Bounds {
	dLat := (b.NorthEast.Lat - b.SouthWest.Lat) * ratio
	dLng := (b.NorthEast.Lng - b.SouthWest.Lng) * ratio
	return Bounds{
		SouthWest: models.Coordinate{Lat: b.SouthWest.Lat - dLat, Lng: b.SouthWest.Lng - dLng},
		NorthEast: models.Coordinate{Lat: b.NorthEast.Lat + dLat, Lng: b.NorthEast.Lng + dLng},
	}
}

// Viewport is either a center and zoom or a box to fit, never both
type Viewport struct {
	Center *models.Coordinate `json:"center,omitempty"`
	Zoom   int                `json:"zoom,omitempty"`
	Bounds *Bounds            `json:"bounds,omitempty"`
}

// MapView describes what the map should show. Unchanged means the current
// map state is left alone.
type MapView struct {
	Unchanged bool      `json:"unchanged"`
	Markers   []Marker  `json:"markers,omitempty"`
	Viewport  *Viewport `json:"viewport,omitempty"`
}

// Present builds the list and map view models for a ranked station list
func Present(stations []models.RankedStation) (ListView, MapView) {
	if len(stations) == 0 {
		return ListView{Notice: EmptyNotice, Rows: []ListRow{}}, MapView{Unchanged: true}
	}

	rows := make([]ListRow, 0, len(stations))
	markers := make([]Marker, 0, len(stations))
	for _, s := range stations {
		rows = append(rows, ListRow{
			Name:          s.Name,
			Distance:      FormatDistance(s.DistanceKm),
			AmenityKind:   s.AmenityKind,
			Price:         s.Price,
			DirectionsURL: DirectionsURL(s.Coordinate),
		})
		markers = append(markers, Marker{
			Position: s.Coordinate,
			Title:    s.Name,
			Subtitle: s.AmenityKind,
		})
	}

	return ListView{Rows: rows}, MapView{Markers: markers, Viewport: viewportFor(markers)}
}

// PresentLocation centers the map on the user and marks them
func PresentLocation(c models.Coordinate) MapView {
	return MapView{
		Markers:  []Marker{{Position: c, Title: UserMarkerTitle}},
		Viewport: &Viewport{Center: &c, Zoom: LocationZoom},
	}
}

// PresentReset recenters on the default center with no markers
func PresentReset(center models.Coordinate) MapView {
	return MapView{
		Markers:  []Marker{},
		Viewport: &Viewport{Center: &center, Zoom: DefaultCenterZoom},
	}
}

func viewportFor(markers []Marker) *Viewport {
	if len(markers) == 1 {
		center := markers[0].Position
		return &Viewport{Center: &center, Zoom: SingleStationZoom}
	}

	b := Bounds{
		SouthWest: models.Coordinate{Lat: math.Inf(1), Lng: math.Inf(1)},
		NorthEast: models.Coordinate{Lat: math.Inf(-1), Lng: math.Inf(-1)},
	}
	for _, m := range markers {
		b.SouthWest.Lat = math.Min(b.SouthWest.Lat, m.Position.Lat)
		b.SouthWest.Lng = math.Min(b.SouthWest.Lng, m.Position.Lng)
		b.NorthEast.Lat = math.Max(b.NorthEast.Lat, m.Position.Lat)
		b.NorthEast.Lng = math.Max(b.NorthEast.Lng, m.Position.Lng)
	}
	padded := b.Pad(BoundsPadding)
	return &Viewport{Bounds: &padded}
}

// FormatDistance renders a distance with one decimal, or "" when unknown
func FormatDistance(km *float64) string {
	if km == nil {
		return ""
	}
	return fmt.Sprintf("%.1f km", *km)
}

// DirectionsURL is a driving-directions deep link to the coordinate
func DirectionsURL(c models.Coordinate) string {
	return directionsBaseURL +
		strconv.FormatFloat(c.Lat, 'f', -1, 64) + "," +
		strconv.FormatFloat(c.Lng, 'f', -1, 64)
}
