package simulator

import (
	"testing"

	"github.com/kilianp07/qdispatch/core/model"
)

func TestGenerateFleet(t *testing.T) {
	drivers, passengers := GenerateFleet(Config{Drivers: 12, Passengers: 9, Seed: 4})
	if len(drivers) != 12 || len(passengers) != 9 {
		t.Fatalf("unexpected sizes: %d drivers, %d passengers", len(drivers), len(passengers))
	}
	for _, d := range drivers {
		if err := d.Validate(); err != nil {
			t.Fatalf("generated driver invalid: %v", err)
		}
	}
	for _, p := range passengers {
		if err := p.Validate(); err != nil {
			t.Fatalf("generated passenger invalid: %v", err)
		}
	}
}

func TestGenerateFleet_SeedReproducible(t *testing.T) {
	d1, p1 := GenerateFleet(Config{Drivers: 5, Passengers: 5, Seed: 77})
	d2, p2 := GenerateFleet(Config{Drivers: 5, Passengers: 5, Seed: 77})
	for i := range d1 {
		if d1[i].Location != d2[i].Location || d1[i].Capacity != d2[i].Capacity {
			t.Fatalf("same seed produced different drivers at %d", i)
		}
	}
	for i := range p1 {
		if p1[i].Pickup != p2[i].Pickup || p1[i].Seats != p2[i].Seats {
			t.Fatalf("same seed produced different passengers at %d", i)
		}
	}
}

func TestGenerateFleet_WithinRadius(t *testing.T) {
	center := model.Location{Lat: 40, Lng: -3}
	drivers, _ := GenerateFleet(Config{Drivers: 50, Passengers: 1, Seed: 5, Center: center, RadiusKm: 5})
	for _, d := range drivers {
		dLat := (d.Location.Lat - center.Lat) * 111
		dLng := (d.Location.Lng - center.Lng) * 111 * 0.766 // cos(40 deg)
		if dLat*dLat+dLng*dLng > 5.5*5.5 {
			t.Fatalf("driver outside radius: %+v", d.Location)
		}
	}
}
