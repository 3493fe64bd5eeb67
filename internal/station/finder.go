package station

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/voltpath/stationfinder/internal/geo"
	"github.com/voltpath/stationfinder/internal/models"
	"github.com/voltpath/stationfinder/internal/overpass"
)

// SearchRequest carries the inputs of one "find stations" action
type SearchRequest struct {
	VehicleType        models.VehicleEnergyType
	RadiusMeters       int
	UseCurrentLocation bool
}

// SearchResult is a ranked station list plus where the search was centered.
// Superseded is set when a newer search started on the same session before
// this one finished; callers should not render it.
type SearchResult struct {
	ID         string
	Origin     geo.Resolution
	Query      models.StationQuery
	Stations   []models.RankedStation
	Superseded bool
}

type Finder struct {
	locator       *geo.Locator
	source        overpass.ElementSource
	defaultRadius int
}

var _ StationFinder = (*Finder)(nil)

func NewFinder(locator *geo.Locator, source overpass.ElementSource, defaultRadius int) *Finder {
	return &Finder{
		locator:       locator,
		source:        source,
		defaultRadius: defaultRadius,
	}
}

// Search resolves the origin, queries the element source and ranks the
// result. Overlapping searches on one session are not cancelled; the latest
// one wins and earlier ones come back marked Superseded.
func (f *Finder) Search(ctx context.Context, session *geo.Session, req SearchRequest) (*SearchResult, error) {
	if session == nil {
		session = geo.NewSession()
	}
	token := session.BeginSearch()
	id := uuid.NewString()
	start := time.Now()
	logger := log.With().Str("search_id", id).Logger()

	origin := f.locator.Default()
	if req.UseCurrentLocation {
		origin = f.locator.Resolve(ctx, session, true)
	}

	radius := req.RadiusMeters
	if radius <= 0 {
		radius = f.defaultRadius
	}
	query := models.StationQuery{
		Center:       origin.Coordinate,
		RadiusMeters: radius,
		Type:         req.VehicleType,
	}

	logger.Debug().
		Str("origin", origin.Coordinate.String()).
		Str("origin_source", string(origin.Source)).
		Int("radius_m", radius).
		Str("vehicle_type", string(req.VehicleType)).
		Msg("Searching for nearby stations")

	elements, err := f.source.Fetch(ctx, overpass.BuildQuery(query))
	if err != nil && !session.IsCurrent(token) {
		// Nobody is waiting for this result anymore
		logger.Debug().Err(err).Msg("Superseded search failed")
		return &SearchResult{ID: id, Origin: origin, Query: query, Superseded: true}, nil
	}
	if err != nil {
		logger.Error().Err(err).Dur("duration", time.Since(start)).Msg("Failed to load stations")
		return nil, fmt.Errorf("fetching stations: %w", err)
	}

	center := origin.Coordinate
	stations := Rank(elements, &center)

	result := &SearchResult{
		ID:         id,
		Origin:     origin,
		Query:      query,
		Stations:   stations,
		Superseded: !session.IsCurrent(token),
	}

	logger.Info().
		Int("element_count", len(elements)).
		Int("station_count", len(stations)).
		Bool("superseded", result.Superseded).
		Dur("duration", time.Since(start)).
		Msg("Station search complete")

	return result, nil
}

// Locate is the "use my location" action: a fresh device fix that becomes
// the session's cached location.
func (f *Finder) Locate(ctx context.Context, session *geo.Session) (*geo.Resolution, error) {
	coord, err := f.locator.Locate(ctx, session)
	if err != nil {
		return nil, err
	}
	return &geo.Resolution{Coordinate: coord, Source: geo.SourceDevice}, nil
}
