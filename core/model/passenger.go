package model

import "time"

// Passenger represents a pending ride request in the dispatch snapshot.
// Records are immutable for the duration of an optimization run.
type Passenger struct {
	ID          string        `json:"id"`
	Pickup      Location      `json:"pickup"`
	Dropoff     Location      `json:"dropoff"`
	RequestedAt time.Time     `json:"requested_at"`
	Seats       int           `json:"seats"`
	Required    CapabilitySet `json:"required"`
	MaxWait     time.Duration `json:"max_wait"`
	Priority    float64       `json:"priority"` // weight >= 0, 1 means normal
}

// Validate checks that the ride request is well formed.
func (p Passenger) Validate() error {
	if p.ID == "" {
		return &InvalidInputError{Kind: "passenger", Reason: "missing id"}
	}
	if err := p.Pickup.Validate(); err != nil {
		return &InvalidInputError{Kind: "passenger", ID: p.ID, Reason: "pickup: " + err.Error()}
	}
	if err := p.Dropoff.Validate(); err != nil {
		return &InvalidInputError{Kind: "passenger", ID: p.ID, Reason: "dropoff: " + err.Error()}
	}
	if p.Seats <= 0 {
		return &InvalidInputError{Kind: "passenger", ID: p.ID, Reason: "seats must be positive"}
	}
	if p.MaxWait < 0 {
		return &InvalidInputError{Kind: "passenger", ID: p.ID, Reason: "max wait must not be negative"}
	}
	if p.Priority < 0 {
		return &InvalidInputError{Kind: "passenger", ID: p.ID, Reason: "priority must not be negative"}
	}
	return nil
}

// PriorityWeight returns the configured priority, defaulting to 1 when unset.
func (p Passenger) PriorityWeight() float64 {
	if p.Priority == 0 {
		return 1
	}
	return p.Priority
}
