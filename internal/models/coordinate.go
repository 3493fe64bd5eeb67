package models

import (
	"fmt"
	"math"
)

// Coordinate is a WGS84 position. Lng follows the dashboard's naming;
// Overpass payloads call the same axis "lon".
type Coordinate struct {
	Lat float64 `json:"lat" dynamodbav:"lat"`
	Lng float64 `json:"lng" dynamodbav:"lng"`
}

// CoordinateError reports a latitude or longitude that cannot be used
type CoordinateError struct {
	Field   string
	Value   float64
	Message string
}

func (e *CoordinateError) Error() string {
	return fmt.Sprintf("%s: %s (value: %.6f)", e.Field, e.Message, e.Value)
}

// Validate checks that the coordinate is finite and within range
func (c Coordinate) Validate() error {
	if err := validateAxis("lat", c.Lat, 90); err != nil {
		return err
	}
	return validateAxis("lng", c.Lng, 180)
}

func (c Coordinate) String() string {
	return fmt.Sprintf("%.6f,%.6f", c.Lat, c.Lng)
}

func validateAxis(field string, v, limit float64) error {
	switch {
	case math.IsNaN(v):
		return &CoordinateError{Field: field, Value: v, Message: "NaN is not allowed"}
	case math.IsInf(v, 0):
		return &CoordinateError{Field: field, Value: v, Message: "infinite value is not allowed"}
	case v < -limit || v > limit:
		return &CoordinateError{Field: field, Value: v, Message: fmt.Sprintf("must be between %.0f and %.0f", -limit, limit)}
	}
	return nil
}
