package distance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

var (
	ErrNoRoute       = errors.New("no route found")
	ErrUnresolvable  = errors.New("locations cannot be resolved to a distance")
	ErrEmptyLocation = errors.New("location has no address or coordinates")
)

// Location is a street address, a coordinate pair, or both
type Location struct {
	Address string   `json:"address,omitempty" validate:"omitempty,max=300"`
	Lat     *float64 `json:"lat,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Lng     *float64 `json:"lng,omitempty" validate:"omitempty,gte=-180,lte=180"`
}

// HasCoordinates reports whether both Lat and Lng are set
func (l Location) HasCoordinates() bool {
	return l.Lat != nil && l.Lng != nil
}

// IsZero reports whether l carries nothing usable
func (l Location) IsZero() bool {
	return strings.TrimSpace(l.Address) == "" && !l.HasCoordinates()
}

// query renders l for the Directions API, preferring coordinates
func (l Location) query() string {
	if l.HasCoordinates() {
		return strconv.FormatFloat(*l.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(*l.Lng, 'f', -1, 64)
	}
	return strings.TrimSpace(l.Address)
}

// Estimator returns driving miles between two locations
type Estimator interface {
	DrivingMiles(ctx context.Context, origin, destination Location) (float64, error)
}

// Calculator estimates miles with an Estimator and falls back to straight-line
// distance when both ends have coordinates.
type Calculator struct {
	estimator Estimator
}

// NewCalculator creates a calculator. estimator may be nil.
func NewCalculator(estimator Estimator) *Calculator {
	return &Calculator{estimator: estimator}
}

// CanEstimate reports whether Miles has a way to measure origin to
// destination: an estimator, or coordinates on both ends
func (c *Calculator) CanEstimate(origin, destination Location) bool {
	if origin.IsZero() || destination.IsZero() {
		return false
	}
	return c.estimator != nil || (origin.HasCoordinates() && destination.HasCoordinates())
}

// Miles returns the distance from origin to destination
func (c *Calculator) Miles(ctx context.Context, origin, destination Location) (float64, error) {
	if origin.IsZero() || destination.IsZero() {
		return 0, ErrEmptyLocation
	}

	if c.estimator != nil {
		miles, err := c.estimator.DrivingMiles(ctx, origin, destination)
		if err == nil {
			return miles, nil
		}
		if !origin.HasCoordinates() || !destination.HasCoordinates() {
			return 0, err
		}
		slog.Warn("Driving distance unavailable, using straight-line distance", "error", err)
	}

	if origin.HasCoordinates() && destination.HasCoordinates() {
		return HaversineMiles(*origin.Lat, *origin.Lng, *destination.Lat, *destination.Lng), nil
	}

	return 0, fmt.Errorf("%w: addresses need a maps API key", ErrUnresolvable)
}
