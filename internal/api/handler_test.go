package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voltpath/stationfinder/internal/geo"
	"github.com/voltpath/stationfinder/internal/models"
	"github.com/voltpath/stationfinder/internal/present"
	"github.com/voltpath/stationfinder/internal/station"
)

func floatPtr(f float64) *float64 {
	return &f
}

func TestSuccess(t *testing.T) {
	tests := []struct {
		name     string
		response interface{ GetResponseType() string }
		want     int
	}{
		{
			name: "search response",
			response: SearchResponse{
				APIResponse: APIResponse{ResponseType: "stations"},
				List:        present.ListView{Rows: []present.ListRow{}},
			},
			want: http.StatusOK,
		},
		{
			name:     "location response",
			response: NewLocationResponse(models.Coordinate{Lat: 1, Lng: 2}, "device"),
			want:     http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Success(tt.response)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.StatusCode)

			var resp APIResponse
			err = json.Unmarshal([]byte(got.Body), &resp)
			require.NoError(t, err)
			assert.Equal(t, tt.response.GetResponseType(), resp.ResponseType)

			assert.Equal(t, "application/json", got.Headers["Content-Type"])
			assert.Equal(t, "*", got.Headers["Access-Control-Allow-Origin"])
		})
	}
}

func TestSuccessUnencodable(t *testing.T) {
	got, err := Success(map[string]interface{}{"bad": make(chan int)})
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, got.StatusCode)
}

func TestError(t *testing.T) {
	tests := []struct {
		name       string
		message    string
		statusCode int
	}{
		{name: "bad request", message: "Invalid coordinates", statusCode: http.StatusBadRequest},
		{name: "upstream failure", message: present.FailureNotice, statusCode: http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Error(tt.message, tt.statusCode)
			require.NoError(t, err)
			assert.Equal(t, tt.statusCode, got.StatusCode)

			var errorResp ErrorResponse
			err = json.Unmarshal([]byte(got.Body), &errorResp)
			require.NoError(t, err)
			assert.Equal(t, "error", errorResp.ResponseType)
			assert.Equal(t, tt.message, errorResp.Error)
		})
	}
}

func TestNewSearchResponse(t *testing.T) {
	result := &station.SearchResult{
		ID: "abc",
		Origin: geo.Resolution{
			Coordinate: models.Coordinate{Lat: 12.9716, Lng: 77.5946},
			Source:     geo.SourceDefault,
			Warning:    &geo.PermissionDeniedError{},
		},
		Query: models.StationQuery{RadiusMeters: 5000, Type: models.VehicleElectric},
		Stations: []models.RankedStation{{
			Name:        "Central Station",
			AmenityKind: "charging_station",
			Coordinate:  models.Coordinate{Lat: 12.9824, Lng: 77.5946},
			DistanceKm:  floatPtr(1.2),
		}},
	}

	resp := NewSearchResponse(result)

	assert.Equal(t, "stations", resp.ResponseType)
	assert.Equal(t, "abc", resp.SearchID)
	assert.Equal(t, "default", resp.OriginSource)
	assert.Equal(t, "location permission denied", resp.Warning)
	assert.Equal(t, "electric", resp.VehicleType)
	require.Len(t, resp.List.Rows, 1)
	assert.Equal(t, "1.2 km", resp.List.Rows[0].Distance)
	assert.Len(t, resp.Map.Markers, 1)

	body, err := json.Marshal(resp)
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Contains(t, decoded, "list")
	assert.Contains(t, decoded, "map")
	assert.Contains(t, decoded, "searchId")
}

func TestNewSearchResponseEmpty(t *testing.T) {
	resp := NewSearchResponse(&station.SearchResult{Origin: geo.Resolution{Source: geo.SourceCached}})

	assert.Empty(t, resp.Warning)
	assert.Equal(t, present.EmptyNotice, resp.List.Notice)
	assert.True(t, resp.Map.Unchanged)
}

func TestParseCoordinates(t *testing.T) {
	tests := []struct {
		name    string
		params  map[string]string
		want    models.Coordinate
		wantOK  bool
		wantErr bool
	}{
		{
			name:   "valid coordinates",
			params: map[string]string{"lat": "12.9716", "lon": "77.5946"},
			want:   models.Coordinate{Lat: 12.9716, Lng: 77.5946},
			wantOK: true,
		},
		{
			name:   "missing coordinates",
			params: map[string]string{},
		},
		{
			name:   "only latitude",
			params: map[string]string{"lat": "12.9716"},
		},
		{
			name:    "latitude out of range",
			params:  map[string]string{"lat": "91.0", "lon": "0"},
			wantErr: true,
		},
		{
			name:    "not a number",
			params:  map[string]string{"lat": "north", "lon": "0"},
			wantErr: true,
		},
		{
			name:    "not finite",
			params:  map[string]string{"lat": "NaN", "lon": "0"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := ParseCoordinates(tt.params)
			if tt.wantErr {
				var invalid InvalidCoordinatesError
				assert.True(t, errors.As(err, &invalid))
				assert.False(t, ok)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSearchRequest(t *testing.T) {
	tests := []struct {
		name    string
		params  map[string]string
		want    station.SearchRequest
		wantErr string
	}{
		{
			name:   "defaults",
			params: map[string]string{},
			want:   station.SearchRequest{VehicleType: models.VehicleUnspecified, UseCurrentLocation: true},
		},
		{
			name:   "all parameters",
			params: map[string]string{"type": "ev", "radius": "2500", "useLocation": "false"},
			want:   station.SearchRequest{VehicleType: models.VehicleElectric, RadiusMeters: 2500},
		},
		{
			name:    "bad radius",
			params:  map[string]string{"radius": "far"},
			wantErr: "radius",
		},
		{
			name:    "negative radius",
			params:  map[string]string{"radius": "-5"},
			wantErr: "radius",
		},
		{
			name:    "bad useLocation",
			params:  map[string]string{"useLocation": "maybe"},
			wantErr: "useLocation",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSearchRequest(tt.params)
			if tt.wantErr != "" {
				var invalid InvalidParameterError
				require.True(t, errors.As(err, &invalid))
				assert.Equal(t, tt.wantErr, invalid.Name)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewLocationResponse(t *testing.T) {
	here := models.Coordinate{Lat: 28.6139, Lng: 77.209}

	resp := NewLocationResponse(here, "device")

	assert.Equal(t, "location", resp.ResponseType)
	require.Len(t, resp.Map.Markers, 1)
	assert.Equal(t, present.UserMarkerTitle, resp.Map.Markers[0].Title)
	require.NotNil(t, resp.Map.Viewport)
	assert.Equal(t, present.LocationZoom, resp.Map.Viewport.Zoom)
	assert.Equal(t, here, *resp.Map.Viewport.Center)

	reset := NewResetResponse(here)
	assert.Equal(t, "default", reset.Source)
	assert.Empty(t, reset.Map.Markers)
	assert.Equal(t, present.DefaultCenterZoom, reset.Map.Viewport.Zoom)
}
