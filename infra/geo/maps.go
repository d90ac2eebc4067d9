package geo

import (
	"context"
	"fmt"
	"time"

	"googlemaps.github.io/maps"

	"github.com/kilianp07/qdispatch/core/model"
)

// MapsProvider resolves distances through the Google Maps Distance
// Matrix API. This is the only network boundary of the optimizer; API
// failures propagate to the caller unchanged.
type MapsProvider struct {
	client  *maps.Client
	speed   speedModel
	timeout time.Duration
}

// NewMapsProvider creates a provider with the given API key. Durations
// still come from the local speed profile so that the duration estimate
// stays a pure function of distance and time of day.
func NewMapsProvider(apiKey string, speed speedModel) (*MapsProvider, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("maps client: %w", err)
	}
	return &MapsProvider{client: client, speed: speed, timeout: 10 * time.Second}, nil
}

// Distance queries the Distance Matrix API for the driving distance in
// kilometers.
func (p *MapsProvider) Distance(from, to model.Location) (float64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	req := &maps.DistanceMatrixRequest{
		Origins:      []string{fmt.Sprintf("%f,%f", from.Lat, from.Lng)},
		Destinations: []string{fmt.Sprintf("%f,%f", to.Lat, to.Lng)},
		Mode:         maps.TravelModeDriving,
	}
	resp, err := p.client.DistanceMatrix(ctx, req)
	if err != nil {
		return 0, fmt.Errorf("distance matrix: %w", err)
	}
	if len(resp.Rows) == 0 || len(resp.Rows[0].Elements) == 0 {
		return 0, fmt.Errorf("distance matrix: empty response")
	}
	el := resp.Rows[0].Elements[0]
	if el.Status != "OK" {
		return 0, fmt.Errorf("distance matrix: element status %s", el.Status)
	}
	return float64(el.Distance.Meters) / 1000, nil
}

// Duration estimates travel time from the local speed profile.
func (p *MapsProvider) Duration(distanceKm float64, at time.Time) (time.Duration, error) {
	return p.speed.duration(distanceKm, at), nil
}
