package geo

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/voltpath/stationfinder/internal/models"
)

// Source tells where a resolved coordinate came from
type Source string

const (
	SourceCached  Source = "cached"
	SourceDevice  Source = "device"
	SourceDefault Source = "default"
)

// Resolution is the outcome of Resolve. Warning carries the non-fatal reason
// a fallback was used.
type Resolution struct {
	Coordinate models.Coordinate
	Source     Source
	Warning    error
}

type Locator struct {
	device        Device
	defaultCenter models.Coordinate
	timeout       time.Duration
}

func NewLocator(device Device, defaultCenter models.Coordinate, timeout time.Duration) *Locator {
	if device == nil {
		device = NoDevice{}
	}
	return &Locator{
		device:        device,
		defaultCenter: defaultCenter,
		timeout:       timeout,
	}
}

// Default resolves to the fixed fallback center
func (l *Locator) Default() Resolution {
	return Resolution{Coordinate: l.defaultCenter, Source: SourceDefault}
}

// Resolve never fails. Device errors degrade to the default center and are
// reported through Resolution.Warning.
func (l *Locator) Resolve(ctx context.Context, session *Session, preferCached bool) Resolution {
	if preferCached && session != nil {
		if last, ok := session.LastKnown(); ok {
			return Resolution{Coordinate: last, Source: SourceCached}
		}
	}

	if !l.device.Available() {
		return l.Default()
	}

	coord, err := l.fix(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Geolocation failed, using default center")
		res := l.Default()
		res.Warning = err
		return res
	}

	if session != nil {
		session.Remember(coord)
	}
	return Resolution{Coordinate: coord, Source: SourceDevice}
}

// Locate asks the device for a fresh fix and caches it. Unlike Resolve it
// reports failures instead of falling back.
func (l *Locator) Locate(ctx context.Context, session *Session) (models.Coordinate, error) {
	if !l.device.Available() {
		return models.Coordinate{}, ErrDeviceUnavailable
	}

	coord, err := l.fix(ctx)
	if err != nil {
		return models.Coordinate{}, err
	}
	if session != nil {
		session.Remember(coord)
	}
	return coord, nil
}

type fixResult struct {
	coord models.Coordinate
	err   error
}

func (l *Locator) fix(ctx context.Context) (models.Coordinate, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	done := make(chan fixResult, 1)
	go func() {
		coord, err := l.device.CurrentPosition(ctx, PositionOptions{HighAccuracy: true, Timeout: l.timeout})
		done <- fixResult{coord: coord, err: err}
	}()

	select {
	case <-ctx.Done():
		return models.Coordinate{}, &LocationTimeoutError{Timeout: l.timeout}
	case res := <-done:
		if res.err != nil {
			return models.Coordinate{}, classify(res.err, l.timeout)
		}
		if err := res.coord.Validate(); err != nil {
			return models.Coordinate{}, &PositionUnavailableError{Message: "device returned invalid coordinate", Err: err}
		}
		return res.coord, nil
	}
}

func classify(err error, timeout time.Duration) error {
	var denied *PermissionDeniedError
	var timedOut *LocationTimeoutError
	var unavailable *PositionUnavailableError
	switch {
	case errors.As(err, &denied), errors.As(err, &timedOut), errors.As(err, &unavailable):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return &LocationTimeoutError{Timeout: timeout}
	default:
		return &PositionUnavailableError{Message: "device error", Err: err}
	}
}
