package present

import (
	"github.com/rs/zerolog/log"
	"github.com/voltpath/stationfinder/internal/models"
)

// ListRenderer is the list half of a UI binding
type ListRenderer interface {
	RenderNotice(message string)
	RenderRows(rows []ListRow)
}

// MapRenderer is the map half of a UI binding
type MapRenderer interface {
	ClearMarkers()
	DrawMarkers(markers []Marker)
	SetView(center models.Coordinate, zoom int)
	FitBounds(bounds Bounds)
}

// Presenter pushes view models to a concrete UI binding. Either renderer may
// be nil when the binding has no such surface.
type Presenter struct {
	list ListRenderer
	mp   MapRenderer
}

func NewPresenter(list ListRenderer, mp MapRenderer) *Presenter {
	return &Presenter{list: list, mp: mp}
}

// Show replaces whatever was displayed before with the given stations
func (p *Presenter) Show(stations []models.RankedStation) {
	listView, mapView := Present(stations)

	if p.list != nil {
		if listView.Notice != "" {
			p.list.RenderNotice(listView.Notice)
		} else {
			p.list.RenderRows(listView.Rows)
		}
	}

	p.applyMap(mapView)
}

// ShowLocation reflects a new "use my location" fix on the map
func (p *Presenter) ShowLocation(c models.Coordinate) {
	p.applyMap(PresentLocation(c))
}

// ShowReset returns the map to the default center
func (p *Presenter) ShowReset(center models.Coordinate) {
	p.applyMap(PresentReset(center))
}

func (p *Presenter) applyMap(mapView MapView) {
	if p.mp == nil || mapView.Unchanged {
		return
	}

	p.mp.ClearMarkers()
	if len(mapView.Markers) > 0 {
		p.mp.DrawMarkers(mapView.Markers)
	}
	switch vp := mapView.Viewport; {
	case vp == nil:
	case vp.Center != nil:
		p.mp.SetView(*vp.Center, vp.Zoom)
	case vp.Bounds != nil:
		p.mp.FitBounds(*vp.Bounds)
	}

	log.Debug().Int("markers", len(mapView.Markers)).Msg("Updated map")
}

// ShowFailure reports a failed load. The map is left as it was.
func (p *Presenter) ShowFailure() {
	if p.list != nil {
		p.list.RenderNotice(FailureNotice)
	}
}
