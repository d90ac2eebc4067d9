// Package geo defines the travel-estimate boundary of the optimization
// core. Distances and durations always come from an external provider;
// the core never computes them itself.
package geo

import (
	"time"

	"github.com/kilianp07/qdispatch/core/model"
)

// DistanceProvider supplies pairwise travel estimates. Implementations
// live outside the core (haversine model, Google routing APIs, ...).
// Provider errors propagate to the caller unchanged: the core performs
// no retries so that runs stay deterministic and side-effect free.
type DistanceProvider interface {
	// Distance returns the travel distance in kilometers between two
	// coordinates.
	Distance(from, to model.Location) (float64, error)
	// Duration estimates travel time for a distance, taking the time of
	// day into account.
	Duration(distanceKm float64, at time.Time) (time.Duration, error)
}
