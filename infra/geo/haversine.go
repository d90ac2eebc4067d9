package geo

import (
	"math"
	"time"

	"github.com/kilianp07/qdispatch/core/model"
)

const earthRadiusKm = 6371.0

// speedModel estimates travel time from distance and time of day using a
// flat average speed with a rush-hour slowdown.
type speedModel struct {
	avgSpeedKmh float64
	peakFactor  float64
}

func (m speedModel) duration(distanceKm float64, at time.Time) time.Duration {
	speed := m.avgSpeedKmh
	h := at.Hour()
	if (h >= 7 && h < 10) || (h >= 17 && h < 20) {
		speed /= m.peakFactor
	}
	hours := distanceKm / speed
	return time.Duration(hours * float64(time.Hour))
}

// HaversineProvider computes great-circle distances and estimates
// durations from a time-of-day speed profile. It never fails and is the
// default provider for tests, the simulator and offline runs.
type HaversineProvider struct {
	speedModel
}

// NewHaversineProvider returns a provider with the default speed profile.
func NewHaversineProvider() *HaversineProvider {
	return &HaversineProvider{speedModel{avgSpeedKmh: 40, peakFactor: 1.6}}
}

// Distance returns the great-circle distance in kilometers.
func (p *HaversineProvider) Distance(from, to model.Location) (float64, error) {
	lat1 := from.Lat * math.Pi / 180
	lat2 := to.Lat * math.Pi / 180
	dLat := (to.Lat - from.Lat) * math.Pi / 180
	dLng := (to.Lng - from.Lng) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c, nil
}

// Duration estimates travel time for the distance at the given time of
// day.
func (p *HaversineProvider) Duration(distanceKm float64, at time.Time) (time.Duration, error) {
	return p.duration(distanceKm, at), nil
}
