package model

import (
	"errors"
	"testing"
	"time"
)

func validDriver() Driver {
	return Driver{
		ID:       "d1",
		Location: Location{Lat: 48.85, Lng: 2.35},
		Capacity: 4,
		Rating:   4.5,
	}
}

func validPassenger() Passenger {
	return Passenger{
		ID:          "p1",
		Pickup:      Location{Lat: 48.86, Lng: 2.34},
		Dropoff:     Location{Lat: 48.84, Lng: 2.37},
		RequestedAt: time.Now(),
		Seats:       1,
		MaxWait:     10 * time.Minute,
	}
}

func TestDriverValidate(t *testing.T) {
	if err := validDriver().Validate(); err != nil {
		t.Fatalf("valid driver rejected: %v", err)
	}

	d := validDriver()
	d.Capacity = 0
	err := d.Validate()
	if err == nil {
		t.Fatalf("expected error for zero capacity")
	}
	var iie *InvalidInputError
	if !errors.As(err, &iie) {
		t.Fatalf("expected InvalidInputError, got %T", err)
	}
	if iie.ID != "d1" || iie.Kind != "driver" {
		t.Fatalf("error does not name the offending record: %+v", iie)
	}

	d = validDriver()
	d.Location.Lat = 123
	if d.Validate() == nil {
		t.Fatalf("expected error for out-of-range latitude")
	}
}

func TestPassengerValidate(t *testing.T) {
	if err := validPassenger().Validate(); err != nil {
		t.Fatalf("valid passenger rejected: %v", err)
	}

	p := validPassenger()
	p.Seats = -1
	if p.Validate() == nil {
		t.Fatalf("expected error for negative seats")
	}

	p = validPassenger()
	p.Dropoff.Lng = -999
	err := p.Validate()
	if err == nil {
		t.Fatalf("expected error for bad dropoff")
	}
	var iie *InvalidInputError
	if !errors.As(err, &iie) || iie.ID != "p1" {
		t.Fatalf("error does not name the offending record: %v", err)
	}
}

func TestDriverCanServe(t *testing.T) {
	d := validDriver()
	d.Capabilities = NewCapabilitySet(CapWheelchair)

	p := validPassenger()
	if !d.CanServe(p) {
		t.Fatalf("expected driver to serve unconstrained passenger")
	}

	p.Required = NewCapabilitySet(CapWheelchair)
	if !d.CanServe(p) {
		t.Fatalf("expected capability match to allow service")
	}

	p.Required = NewCapabilitySet(CapChildSeat)
	if d.CanServe(p) {
		t.Fatalf("missing capability must block service")
	}

	p.Required = 0
	p.Seats = 5
	if d.CanServe(p) {
		t.Fatalf("seat overflow must block service")
	}
}

func TestTotalDistance(t *testing.T) {
	route := []RouteSegment{{DistanceKm: 1.5}, {DistanceKm: 2.5}}
	if got := TotalDistance(route); got != 4 {
		t.Fatalf("expected 4, got %v", got)
	}
	if got := TotalDistance(nil); got != 0 {
		t.Fatalf("expected 0 for empty route, got %v", got)
	}
}
