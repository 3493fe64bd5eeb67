package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/voltpath/stationfinder/internal/models"
	"github.com/voltpath/stationfinder/internal/present"
	"github.com/voltpath/stationfinder/internal/station"
)

type APIResponse struct {
	ResponseType string `json:"responseType"`
}

func (r APIResponse) GetResponseType() string {
	return r.ResponseType
}

// SearchResponse is the JSON binding of one station search
type SearchResponse struct {
	APIResponse
	SearchID     string            `json:"searchId"`
	Origin       models.Coordinate `json:"origin"`
	OriginSource string            `json:"originSource"`
	Warning      string            `json:"warning,omitempty"`
	RadiusMeters int               `json:"radiusMeters"`
	VehicleType  string            `json:"vehicleType"`
	List         present.ListView  `json:"list"`
	Map          present.MapView   `json:"map"`
}

type LocationResponse struct {
	APIResponse
	Location models.Coordinate `json:"location"`
	Source   string            `json:"source"`
	Map      present.MapView   `json:"map"`
}

type ErrorResponse struct {
	APIResponse
	Error string `json:"error"`
}

func NewSearchResponse(result *station.SearchResult) *SearchResponse {
	list, mp := present.Present(result.Stations)
	resp := &SearchResponse{
		APIResponse:  APIResponse{ResponseType: "stations"},
		SearchID:     result.ID,
		Origin:       result.Origin.Coordinate,
		OriginSource: string(result.Origin.Source),
		RadiusMeters: result.Query.RadiusMeters,
		VehicleType:  string(result.Query.Type),
		List:         list,
		Map:          mp,
	}
	if result.Origin.Warning != nil {
		resp.Warning = result.Origin.Warning.Error()
	}
	return resp
}

// NewLocationResponse answers "use my location". The map recenters on the
// user and shows a single marker for them.
func NewLocationResponse(location models.Coordinate, source string) *LocationResponse {
	return &LocationResponse{
		APIResponse: APIResponse{ResponseType: "location"},
		Location:    location,
		Source:      source,
		Map:         present.PresentLocation(location),
	}
}

// NewResetResponse answers "reset to default"
func NewResetResponse(center models.Coordinate) *LocationResponse {
	return &LocationResponse{
		APIResponse: APIResponse{ResponseType: "location"},
		Location:    center,
		Source:      "default",
		Map:         present.PresentReset(center),
	}
}

func NewErrorResponse(message string) *ErrorResponse {
	return &ErrorResponse{
		APIResponse: APIResponse{ResponseType: "error"},
		Error:       message,
	}
}

// Response helpers
func Success(body interface{}) (events.APIGatewayProxyResponse, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return Error("Internal Server Error", http.StatusInternalServerError)
	}

	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Headers:    headers(),
		Body:       string(jsonBody),
	}, nil
}

func Error(message string, statusCode int) (events.APIGatewayProxyResponse, error) {
	body, _ := json.Marshal(NewErrorResponse(message))

	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Headers:    headers(),
		Body:       string(body),
	}, nil
}

func headers() map[string]string {
	return map[string]string{
		"Content-Type":                "application/json",
		"Access-Control-Allow-Origin": "*",
	}
}

// Parameter parsing helpers

// ParseCoordinates reads lat/lon. ok is false when either is absent.
func ParseCoordinates(params map[string]string) (coord models.Coordinate, ok bool, err error) {
	latStr, hasLat := params["lat"]
	lonStr, hasLon := params["lon"]

	if !hasLat || !hasLon || latStr == "" || lonStr == "" {
		return models.Coordinate{}, false, nil
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return models.Coordinate{}, false, InvalidCoordinatesError{Err: err}
	}

	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return models.Coordinate{}, false, InvalidCoordinatesError{Err: err}
	}

	coord = models.Coordinate{Lat: lat, Lng: lon}
	if err := coord.Validate(); err != nil {
		return models.Coordinate{}, false, InvalidCoordinatesError{Err: err}
	}

	return coord, true, nil
}

// ParseSearchRequest turns query parameters into a search request.
// A missing or non-positive radius is left zero so the finder default applies.
func ParseSearchRequest(params map[string]string) (station.SearchRequest, error) {
	req := station.SearchRequest{
		VehicleType:        models.ParseVehicleEnergyType(params["type"]),
		UseCurrentLocation: true,
	}

	if radiusStr := params["radius"]; radiusStr != "" {
		radius, err := strconv.Atoi(radiusStr)
		if err != nil || radius < 0 {
			return station.SearchRequest{}, InvalidParameterError{Name: "radius", Value: radiusStr}
		}
		req.RadiusMeters = radius
	}

	if useStr := params["useLocation"]; useStr != "" {
		use, err := strconv.ParseBool(strings.ToLower(useStr))
		if err != nil {
			return station.SearchRequest{}, InvalidParameterError{Name: "useLocation", Value: useStr}
		}
		req.UseCurrentLocation = use
	}

	return req, nil
}

type InvalidCoordinatesError struct {
	Err error
}

func (e InvalidCoordinatesError) Error() string {
	return "Invalid coordinates"
}

func (e InvalidCoordinatesError) Unwrap() error {
	return e.Err
}

type InvalidParameterError struct {
	Name  string
	Value string
}

func (e InvalidParameterError) Error() string {
	return "Invalid " + e.Name + ": " + strconv.Quote(e.Value)
}
