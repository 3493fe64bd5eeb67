package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/voltpath/stationfinder/internal/models"
	"github.com/voltpath/stationfinder/pkg/http/client"
)

// PositionOptions mirrors the knobs of a one-shot device fix request
type PositionOptions struct {
	HighAccuracy bool
	Timeout      time.Duration
}

// Device is the location capability of whatever is driving a search
type Device interface {
	Available() bool
	CurrentPosition(ctx context.Context, opts PositionOptions) (models.Coordinate, error)
}

// FixedDevice reports a fix obtained elsewhere, e.g. browser coordinates sent
// along with a request or coordinates given on the command line.
type FixedDevice struct {
	Coordinate models.Coordinate
}

func (d FixedDevice) Available() bool {
	return true
}

func (d FixedDevice) CurrentPosition(_ context.Context, _ PositionOptions) (models.Coordinate, error) {
	if err := d.Coordinate.Validate(); err != nil {
		return models.Coordinate{}, &PositionUnavailableError{Message: "invalid fix", Err: err}
	}
	return d.Coordinate, nil
}

// NoDevice is used when there is no location capability
type NoDevice struct{}

func (NoDevice) Available() bool {
	return false
}

func (NoDevice) CurrentPosition(_ context.Context, _ PositionOptions) (models.Coordinate, error) {
	return models.Coordinate{}, ErrDeviceUnavailable
}

// IPDevice approximates the caller's position with an IP geolocation lookup.
// The lookup is city-level at best, so HighAccuracy cannot be honored.
type IPDevice struct {
	httpClient client.Interface
	url        string
}

func NewIPDevice(httpClient client.Interface, url string) *IPDevice {
	return &IPDevice{httpClient: httpClient, url: url}
}

func (d *IPDevice) Available() bool {
	return d.httpClient != nil && d.url != ""
}

type ipLookupResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	City    string  `json:"city"`
}

func (d *IPDevice) CurrentPosition(ctx context.Context, opts PositionOptions) (models.Coordinate, error) {
	if opts.HighAccuracy {
		log.Trace().Msg("IP lookup cannot provide a high accuracy fix")
	}

	resp, err := d.httpClient.Get(ctx, d.url)
	if err != nil {
		return models.Coordinate{}, &PositionUnavailableError{Message: "ip lookup failed", Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return models.Coordinate{}, &PermissionDeniedError{Err: fmt.Errorf("ip lookup returned %d", resp.StatusCode)}
	case !resp.OK():
		return models.Coordinate{}, &PositionUnavailableError{Message: fmt.Sprintf("ip lookup returned %d", resp.StatusCode)}
	}

	var body ipLookupResponse
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return models.Coordinate{}, &PositionUnavailableError{Message: "decoding ip lookup", Err: err}
	}
	if body.Status != "success" {
		return models.Coordinate{}, &PositionUnavailableError{Message: body.Message}
	}

	coord := models.Coordinate{Lat: body.Lat, Lng: body.Lon}
	if err := coord.Validate(); err != nil {
		return models.Coordinate{}, &PositionUnavailableError{Message: "ip lookup returned invalid coordinate", Err: err}
	}

	log.Debug().Str("city", body.City).Str("coordinate", coord.String()).Msg("Resolved position from IP")
	return coord, nil
}
