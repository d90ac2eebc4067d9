// Package simulator generates random dispatch snapshots for load testing
// and the simulate command.
package simulator

import (
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/qdispatch/core/model"
)

// Config controls fleet generation.
type Config struct {
	Drivers    int
	Passengers int
	Seed       int64
	Center     model.Location
	RadiusKm   float64
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Drivers == 0 {
		c.Drivers = 20
	}
	if c.Passengers == 0 {
		c.Passengers = 15
	}
	if c.RadiusKm == 0 {
		c.RadiusKm = 10
	}
	if c.Center == (model.Location{}) {
		c.Center = model.Location{Lat: 48.8566, Lng: 2.3522}
	}
}

var allCapabilities = []model.Capability{
	model.CapWheelchair,
	model.CapPetFriendly,
	model.CapChildSeat,
	model.CapWiFi,
	model.CapPremium,
	model.CapBikeRack,
	model.CapQuietRide,
	model.CapExtraLuggage,
}

// GenerateFleet returns a random but valid snapshot of drivers and
// pending ride requests around the configured center.
func GenerateFleet(cfg Config) ([]model.Driver, []model.Passenger) {
	cfg.SetDefaults()
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	now := time.Now()

	drivers := make([]model.Driver, cfg.Drivers)
	for i := range drivers {
		var caps model.CapabilitySet
		for _, c := range allCapabilities {
			if rng.Float64() < 0.25 {
				caps |= model.CapabilitySet(c)
			}
		}
		drivers[i] = model.Driver{
			ID:             uuid.NewString(),
			Location:       randomPoint(rng, cfg.Center, cfg.RadiusKm),
			Capacity:       1 + rng.Intn(4),
			AvailableAt:    now.Add(time.Duration(rng.Intn(10)) * time.Minute),
			Capabilities:   caps,
			Rating:         3 + rng.Float64()*2,
			FuelEfficiency: 0.7 + rng.Float64()*0.6,
		}
	}

	passengers := make([]model.Passenger, cfg.Passengers)
	for i := range passengers {
		var required model.CapabilitySet
		if rng.Float64() < 0.2 {
			required = model.CapabilitySet(allCapabilities[rng.Intn(len(allCapabilities))])
		}
		passengers[i] = model.Passenger{
			ID:          uuid.NewString(),
			Pickup:      randomPoint(rng, cfg.Center, cfg.RadiusKm),
			Dropoff:     randomPoint(rng, cfg.Center, cfg.RadiusKm),
			RequestedAt: now.Add(time.Duration(rng.Intn(15)) * time.Minute),
			Seats:       1 + rng.Intn(3),
			Required:    required,
			MaxWait:     time.Duration(10+rng.Intn(20)) * time.Minute,
			Priority:    1,
		}
	}
	return drivers, passengers
}

// randomPoint draws a uniform point within radiusKm of center.
func randomPoint(rng *rand.Rand, center model.Location, radiusKm float64) model.Location {
	// Uniform over the disk, not the bounding box.
	r := radiusKm * math.Sqrt(rng.Float64())
	theta := rng.Float64() * 2 * math.Pi
	dLat := (r / 111.0) * math.Cos(theta)
	dLng := (r / (111.0 * math.Cos(center.Lat*math.Pi/180))) * math.Sin(theta)
	return model.Location{Lat: center.Lat + dLat, Lng: center.Lng + dLng}
}
