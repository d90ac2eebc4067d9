package model

import "time"

// Driver represents an available vehicle in the dispatch snapshot.
// Records are immutable for the duration of an optimization run.
type Driver struct {
	ID             string        `json:"id"`
	Location       Location      `json:"location"`
	Capacity       int           `json:"capacity"`
	AvailableAt    time.Time     `json:"available_at"`
	Capabilities   CapabilitySet `json:"capabilities"`
	Rating         float64       `json:"rating"`
	FuelEfficiency float64       `json:"fuel_efficiency"` // relative to fleet average, 1 means average
}

// Validate checks that the driver record is well formed.
func (d Driver) Validate() error {
	if d.ID == "" {
		return &InvalidInputError{Kind: "driver", Reason: "missing id"}
	}
	if err := d.Location.Validate(); err != nil {
		return &InvalidInputError{Kind: "driver", ID: d.ID, Reason: err.Error()}
	}
	if d.Capacity <= 0 {
		return &InvalidInputError{Kind: "driver", ID: d.ID, Reason: "capacity must be positive"}
	}
	if d.Rating < 0 || d.Rating > 5 {
		return &InvalidInputError{Kind: "driver", ID: d.ID, Reason: "rating must be within [0,5]"}
	}
	if d.FuelEfficiency < 0 {
		return &InvalidInputError{Kind: "driver", ID: d.ID, Reason: "fuel efficiency must not be negative"}
	}
	return nil
}

// CanServe reports whether the driver satisfies the passenger's seat and
// capability requirements.
func (d Driver) CanServe(p Passenger) bool {
	return p.Seats <= d.Capacity && d.Capabilities.Covers(p.Required)
}
