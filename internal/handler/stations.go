package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/rs/zerolog/log"
	"github.com/voltpath/stationfinder/internal/api"
	"github.com/voltpath/stationfinder/internal/geo"
	"github.com/voltpath/stationfinder/internal/present"
	"github.com/voltpath/stationfinder/internal/station"
)

type StationsHandler struct {
	newFinder station.FinderFactory
}

func NewStationsHandler(newFinder station.FinderFactory) *StationsHandler {
	return &StationsHandler{
		newFinder: newFinder,
	}
}

func (h *StationsHandler) HandleRequest(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	params := request.QueryStringParameters
	if params == nil {
		params = map[string]string{}
	}

	// Browser coordinates, when sent, act as the device fix
	coord, hasFix, err := api.ParseCoordinates(params)
	if err != nil {
		var invalidCoordErr api.InvalidCoordinatesError
		if errors.As(err, &invalidCoordErr) {
			return api.Error(err.Error(), http.StatusBadRequest)
		}
		return api.Error("Invalid parameters", http.StatusBadRequest)
	}

	req, err := api.ParseSearchRequest(params)
	if err != nil {
		return api.Error(err.Error(), http.StatusBadRequest)
	}

	var device geo.Device = geo.NoDevice{}
	if hasFix {
		device = geo.FixedDevice{Coordinate: coord}
	}

	// Invocations share nothing, so each one gets its own session
	result, err := h.newFinder(device).Search(ctx, geo.NewSession(), req)
	if err != nil {
		log.Error().Err(err).Msg("Station search failed")
		return api.Error(present.FailureNotice, http.StatusBadGateway)
	}

	return api.Success(api.NewSearchResponse(result))
}
