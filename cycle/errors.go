package cycle

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned for non-physical boundary conditions or
	// coefficients, before any property is evaluated.
	ErrInvalidInput = errors.New("invalid input")
	// ErrDegenerate is returned when resolved states leave a cycle metric
	// undefined.
	ErrDegenerate = errors.New("degenerate cycle")
)

// StationError reports a property lookup or root-finding failure while
// resolving a station. The solve is abandoned; no partial result is returned.
type StationError struct {
	Station StationID
	Err     error
}

func (e *StationError) Error() string {
	return fmt.Sprintf("state resolution failed at station %d (%s): %v", int(e.Station), e.Station, e.Err)
}

func (e *StationError) Unwrap() error {
	return e.Err
}

func stationErr(id StationID, err error) error {
	return &StationError{Station: id, Err: err}
}
