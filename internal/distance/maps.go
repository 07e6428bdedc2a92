package distance

import (
	"context"
	"fmt"

	"googlemaps.github.io/maps"
)

const metersPerMile = 1609.344

// MapsEstimator handles interactions with the Google Maps Directions API
type MapsEstimator struct {
	client *maps.Client
}

// NewMapsEstimator creates an estimator with the given API key. Extra options
// are passed to the maps client.
func NewMapsEstimator(apiKey string, opts ...maps.ClientOption) (*MapsEstimator, error) {
	client, err := maps.NewClient(append([]maps.ClientOption{maps.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &MapsEstimator{client: client}, nil
}

// DrivingMiles returns the driving distance of the first suggested route
func (e *MapsEstimator) DrivingMiles(ctx context.Context, origin, destination Location) (float64, error) {
	r := &maps.DirectionsRequest{
		Origin:      origin.query(),
		Destination: destination.query(),
		Mode:        maps.TravelModeDriving,
		Units:       maps.UnitsImperial,
		Region:      "us",
	}

	routes, _, err := e.client.Directions(ctx, r)
	if err != nil {
		return 0, fmt.Errorf("maps api error: %w", err)
	}

	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return 0, ErrNoRoute
	}

	meters := 0
	for _, leg := range routes[0].Legs {
		meters += leg.Distance.Meters
	}
	return float64(meters) / metersPerMile, nil
}
