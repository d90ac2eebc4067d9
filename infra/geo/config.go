// Package geo provides concrete travel-estimate providers behind the
// core geo.DistanceProvider interface.
package geo

import (
	"fmt"

	coregeo "github.com/kilianp07/qdispatch/core/geo"
)

// Config selects and configures the travel-estimate provider.
type Config struct {
	// Type is "haversine" or "googlemaps".
	Type string `json:"type"`
	// APIKey authenticates against the Google Maps APIs when Type is
	// "googlemaps".
	APIKey string `json:"api_key"`
	// AvgSpeedKmh is the off-peak average speed for the haversine model.
	AvgSpeedKmh float64 `json:"avg_speed_kmh"`
	// PeakFactor multiplies travel time during rush hours.
	PeakFactor float64 `json:"peak_factor"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Type == "" {
		c.Type = "haversine"
	}
	if c.AvgSpeedKmh == 0 {
		c.AvgSpeedKmh = 40
	}
	if c.PeakFactor == 0 {
		c.PeakFactor = 1.6
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	switch c.Type {
	case "haversine":
	case "googlemaps":
		if c.APIKey == "" {
			return fmt.Errorf("api_key is required for the googlemaps provider")
		}
	default:
		return fmt.Errorf("unknown provider type %q", c.Type)
	}
	if c.AvgSpeedKmh <= 0 {
		return fmt.Errorf("avg_speed_kmh must be positive")
	}
	if c.PeakFactor < 1 {
		return fmt.Errorf("peak_factor must be at least 1")
	}
	return nil
}

// New builds the configured provider.
func New(cfg Config) (coregeo.DistanceProvider, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	speed := speedModel{avgSpeedKmh: cfg.AvgSpeedKmh, peakFactor: cfg.PeakFactor}
	switch cfg.Type {
	case "googlemaps":
		return NewMapsProvider(cfg.APIKey, speed)
	default:
		return &HaversineProvider{speedModel: speed}, nil
	}
}
