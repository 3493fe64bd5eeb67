package overpass

import "fmt"

// TransportError covers network failures and non-success responses
type TransportError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("overpass transport error: %v", e.Err)
	}
	return fmt.Sprintf("overpass transport error: status %d: %s", e.StatusCode, e.Body)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// DecodeError means the response body was not the expected JSON document
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("overpass decode error: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
