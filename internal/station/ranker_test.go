package station

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voltpath/stationfinder/internal/models"
)

var origin = models.Coordinate{Lat: 12.9716, Lng: 77.5946}

func floatPtr(f float64) *float64 {
	return &f
}

func node(id int64, lat, lon float64, tags map[string]string) models.Element {
	return models.Element{Type: "node", ID: id, Lat: floatPtr(lat), Lon: floatPtr(lon), Tags: tags}
}

// offsetNorth returns a point roughly km kilometers north of c
func offsetNorth(c models.Coordinate, km float64) models.Coordinate {
	return models.Coordinate{Lat: c.Lat + km/111.195, Lng: c.Lng}
}

func TestRankDerivesFields(t *testing.T) {
	elements := []models.Element{
		node(1, 12.98, 77.60, map[string]string{"name": "Shell", "operator": "Shell plc", "amenity": "fuel", "fuel:price": "104.2"}),
		node(2, 12.99, 77.61, map[string]string{"operator": "Tata Power", "amenity": "charging_station", "charging:price": "18/kWh"}),
		node(3, 13.00, 77.62, nil),
		node(4, 13.01, 77.63, map[string]string{"name": "", "fuel:price": "", "charging:price": "21"}),
	}

	got := Rank(elements, nil)
	require.Len(t, got, 4)

	assert.Equal(t, "Shell", got[0].Name)
	assert.Equal(t, "fuel", got[0].AmenityKind)
	require.NotNil(t, got[0].Price)
	assert.Equal(t, "104.2", *got[0].Price)

	assert.Equal(t, "Tata Power", got[1].Name)
	assert.Equal(t, "charging_station", got[1].AmenityKind)
	require.NotNil(t, got[1].Price)
	assert.Equal(t, "18/kWh", *got[1].Price)

	assert.Equal(t, "Unnamed station", got[2].Name)
	assert.Equal(t, "station", got[2].AmenityKind)
	assert.Nil(t, got[2].Price)

	assert.Equal(t, "Unnamed station", got[3].Name)
	require.NotNil(t, got[3].Price)
	assert.Equal(t, "21", *got[3].Price)
}

func TestRankDropsElementsWithoutCoordinates(t *testing.T) {
	assert.Empty(t, Rank([]models.Element{{Tags: map[string]string{}}}, &origin))

	elements := []models.Element{
		{Type: "way", ID: 1, Tags: map[string]string{"name": "No geometry"}},
		{Type: "node", ID: 2, Lat: floatPtr(12.9), Tags: map[string]string{"name": "Half"}},
		node(3, 91, 77.6, map[string]string{"name": "Off the globe"}),
		{Type: "way", ID: 4, Center: &models.ElementCenter{Lat: 12.975, Lon: 77.6}, Tags: map[string]string{"name": "Centered"}},
	}

	got := Rank(elements, &origin)
	require.Len(t, got, 1)
	assert.Equal(t, "Centered", got[0].Name)
	assert.Equal(t, models.Coordinate{Lat: 12.975, Lng: 77.6}, got[0].Coordinate)
}

func TestRankSortsByDistanceWithStableTies(t *testing.T) {
	far := offsetNorth(origin, 4)
	near := offsetNorth(origin, 1)
	elements := []models.Element{
		node(1, far.Lat, far.Lng, map[string]string{"name": "far"}),
		node(2, near.Lat, near.Lng, map[string]string{"name": "near A"}),
		node(3, near.Lat, near.Lng, map[string]string{"name": "near B"}),
		node(4, origin.Lat, origin.Lng, map[string]string{"name": "here"}),
	}

	got := Rank(elements, &origin)

	require.Len(t, got, 4)
	assert.Equal(t, []string{"here", "near A", "near B", "far"}, names(got))
	for i := 1; i < len(got); i++ {
		assert.LessOrEqual(t, *got[i-1].DistanceKm, *got[i].DistanceKm)
	}
	assert.InDelta(t, 0, *got[0].DistanceKm, 1e-9)
	assert.InDelta(t, 4, *got[3].DistanceKm, 0.01)
}

func TestRankWithoutOriginKeepsInputOrder(t *testing.T) {
	far := offsetNorth(origin, 4)
	near := offsetNorth(origin, 1)
	elements := []models.Element{
		node(1, far.Lat, far.Lng, map[string]string{"name": "far"}),
		node(2, near.Lat, near.Lng, map[string]string{"name": "near"}),
	}

	got := Rank(elements, nil)

	assert.Equal(t, []string{"far", "near"}, names(got))
	for _, s := range got {
		assert.Nil(t, s.DistanceKm)
	}
}

func TestRankIsIdempotent(t *testing.T) {
	var elements []models.Element
	for i, km := range []float64{3, 0.5, 7, 0.5, 2, 9, 1} {
		p := offsetNorth(origin, km)
		elements = append(elements, node(int64(i), p.Lat, p.Lng, map[string]string{"name": string(rune('a' + i))}))
	}

	first := Rank(elements, &origin)

	// Feed the elements back in ranked order
	byName := map[string]models.Element{}
	for _, el := range elements {
		byName[el.Tags["name"]] = el
	}
	var reordered []models.Element
	for _, s := range first {
		reordered = append(reordered, byName[s.Name])
	}

	assert.Equal(t, first, Rank(reordered, &origin))
}

func TestRankEndToEndScenario(t *testing.T) {
	central := offsetNorth(origin, 1.2)
	elements := []models.Element{
		node(1, central.Lat, central.Lng, map[string]string{"name": "Central Station", "amenity": "fuel"}),
		{Type: "way", ID: 2, Tags: map[string]string{"name": "Ghost"}},
	}

	got := Rank(elements, &origin)

	require.Len(t, got, 1)
	assert.Equal(t, "Central Station", got[0].Name)
	require.NotNil(t, got[0].DistanceKm)
	assert.InDelta(t, 1.2, *got[0].DistanceKm, 0.01)
}

func TestDistanceOrInf(t *testing.T) {
	assert.True(t, math.IsInf(distanceOrInf(models.RankedStation{}), 1))
	assert.Equal(t, 2.5, distanceOrInf(models.RankedStation{DistanceKm: floatPtr(2.5)}))
}

func names(stations []models.RankedStation) []string {
	out := make([]string, len(stations))
	for i, s := range stations {
		out[i] = s.Name
	}
	return out
}
