package geo

import (
	"errors"
	"fmt"
	"time"
)

// ErrDeviceUnavailable is returned by devices that cannot produce a fix at all
var ErrDeviceUnavailable = errors.New("geolocation not supported")

// PermissionDeniedError means the user or platform refused the location request
type PermissionDeniedError struct {
	Err error
}

func (e *PermissionDeniedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("location permission denied: %v", e.Err)
	}
	return "location permission denied"
}

func (e *PermissionDeniedError) Unwrap() error {
	return e.Err
}

// LocationTimeoutError means no fix arrived before the configured timeout
type LocationTimeoutError struct {
	Timeout time.Duration
}

func (e *LocationTimeoutError) Error() string {
	return fmt.Sprintf("location request timed out after %s", e.Timeout)
}

// PositionUnavailableError covers every other device failure
type PositionUnavailableError struct {
	Message string
	Err     error
}

func (e *PositionUnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("position unavailable: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("position unavailable: %s", e.Message)
}

func (e *PositionUnavailableError) Unwrap() error {
	return e.Err
}
