package model

import "time"

// Assignment maps a driver id to the passenger it serves. A driver absent
// from the map (or mapped to an empty id) serves nobody this run.
type Assignment map[string]string

// Passengers returns the set of assigned passenger ids.
func (a Assignment) Passengers() map[string]bool {
	out := make(map[string]bool, len(a))
	for _, pid := range a {
		if pid != "" {
			out[pid] = true
		}
	}
	return out
}

// RouteSegment is one ordered step of a driver's route.
type RouteSegment struct {
	From        Location      `json:"from"`
	To          Location      `json:"to"`
	DistanceKm  float64       `json:"distance_km"`
	Duration    time.Duration `json:"duration"`
	EmissionsKg float64       `json:"emissions_kg"`
}

// TotalDistance sums the distance of all segments in a route.
func TotalDistance(route []RouteSegment) float64 {
	var total float64
	for _, s := range route {
		total += s.DistanceKm
	}
	return total
}
