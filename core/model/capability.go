package model

import (
	"encoding/json"
	"fmt"
	"math/bits"
	"strings"
)

// Capability identifies a single vehicle feature a passenger may require.
type Capability uint64

const (
	CapWheelchair Capability = 1 << iota
	CapPetFriendly
	CapChildSeat
	CapWiFi
	CapPremium
	CapBikeRack
	CapQuietRide
	CapExtraLuggage
)

var capabilityNames = []struct {
	cap  Capability
	name string
}{
	{CapWheelchair, "wheelchair"},
	{CapPetFriendly, "pet_friendly"},
	{CapChildSeat, "child_seat"},
	{CapWiFi, "wifi"},
	{CapPremium, "premium"},
	{CapBikeRack, "bike_rack"},
	{CapQuietRide, "quiet_ride"},
	{CapExtraLuggage, "extra_luggage"},
}

// String returns the canonical name of the capability.
func (c Capability) String() string {
	for _, e := range capabilityNames {
		if e.cap == c {
			return e.name
		}
	}
	return "unknown"
}

// ParseCapability resolves a capability by its canonical name.
func ParseCapability(name string) (Capability, error) {
	for _, e := range capabilityNames {
		if e.name == name {
			return e.cap, nil
		}
	}
	return 0, fmt.Errorf("unknown capability %q", name)
}

// CapabilitySet is a bitset of capabilities. Subset and intersection
// checks are O(1) regardless of set size.
type CapabilitySet uint64

// NewCapabilitySet builds a set from the given capabilities.
func NewCapabilitySet(caps ...Capability) CapabilitySet {
	var s CapabilitySet
	for _, c := range caps {
		s |= CapabilitySet(c)
	}
	return s
}

// ParseCapabilitySet builds a set from canonical capability names.
func ParseCapabilitySet(names []string) (CapabilitySet, error) {
	var s CapabilitySet
	for _, n := range names {
		c, err := ParseCapability(n)
		if err != nil {
			return 0, err
		}
		s |= CapabilitySet(c)
	}
	return s, nil
}

// Has reports whether the set contains the capability.
func (s CapabilitySet) Has(c Capability) bool { return s&CapabilitySet(c) != 0 }

// Covers reports whether every capability in required is present in s.
func (s CapabilitySet) Covers(required CapabilitySet) bool { return required&^s == 0 }

// Missing returns the capabilities in required that s lacks.
func (s CapabilitySet) Missing(required CapabilitySet) CapabilitySet { return required &^ s }

// Intersect returns the capabilities present in both sets.
func (s CapabilitySet) Intersect(other CapabilitySet) CapabilitySet { return s & other }

// Count returns the number of capabilities in the set.
func (s CapabilitySet) Count() int { return bits.OnesCount64(uint64(s)) }

// Names returns the canonical names of the capabilities in the set.
func (s CapabilitySet) Names() []string {
	var out []string
	for _, e := range capabilityNames {
		if s.Has(e.cap) {
			out = append(out, e.name)
		}
	}
	return out
}

// String returns a comma-separated list of capability names.
func (s CapabilitySet) String() string { return strings.Join(s.Names(), ",") }

// MarshalJSON encodes the set as an array of capability names.
func (s CapabilitySet) MarshalJSON() ([]byte, error) {
	names := s.Names()
	if names == nil {
		names = []string{}
	}
	return json.Marshal(names)
}

// UnmarshalJSON decodes an array of capability names.
func (s *CapabilitySet) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return err
	}
	set, err := ParseCapabilitySet(names)
	if err != nil {
		return err
	}
	*s = set
	return nil
}
