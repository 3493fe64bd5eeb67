package station

import (
	"context"

	"github.com/voltpath/stationfinder/internal/config"
	"github.com/voltpath/stationfinder/internal/geo"
	"github.com/voltpath/stationfinder/internal/overpass"
)

// StationFinder defines the interface for finding stations
type StationFinder interface {
	Search(ctx context.Context, session *geo.Session, req SearchRequest) (*SearchResult, error)
	Locate(ctx context.Context, session *geo.Session) (*geo.Resolution, error)
}

// FinderFactory builds a finder around the location capability of one caller
type FinderFactory func(device geo.Device) StationFinder

// NewFinderFactory binds the configured defaults and element source
func NewFinderFactory(cfg *config.Config, source overpass.ElementSource) FinderFactory {
	return func(device geo.Device) StationFinder {
		locator := geo.NewLocator(device, cfg.DefaultCenter, cfg.GeolocationTimeout)
		return NewFinder(locator, source, cfg.DefaultRadiusMeters)
	}
}
