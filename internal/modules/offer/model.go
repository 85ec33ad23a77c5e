// README: Offer record, per-offer state, lifecycle phases and outcome definitions.
package offer

import (
	"math"
	"time"

	"offerstack/internal/types"
)

type Phase string

const (
	PhasePending  Phase = "pending"
	PhaseAccepted Phase = "accepted"
	PhaseRejected Phase = "rejected"
	PhaseExpired  Phase = "expired"
)

func (p Phase) Terminal() bool {
	return p == PhaseAccepted || p == PhaseRejected || p == PhaseExpired
}

// AllowedTransitions represents the offer lifecycle as code. Terminal phases
// have no outgoing edges.
var AllowedTransitions = map[Phase][]Phase{
	PhasePending: {PhaseAccepted, PhaseRejected, PhaseExpired},
}

func CanTransition(from, to Phase) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, p := range next {
		if p == to {
			return true
		}
	}
	return false
}

type Passenger struct {
	Name   string `json:"name" yaml:"name"`
	Avatar string `json:"avatar" yaml:"avatar"`
}

// Record is an offer exactly as the source delivered it. It is never mutated.
type Record struct {
	ID               types.ID   `json:"id" yaml:"id"`
	BaseFare         types.Fare `json:"base_fare" yaml:"base_fare"`
	DistanceKm       float64    `json:"distance_km" yaml:"distance_km"`
	PickupDistanceKm float64    `json:"pickup_distance_km" yaml:"pickup_distance_km"`
	PickupLocation   string     `json:"pickup_location" yaml:"pickup_location"`
	DropLocation     string     `json:"drop_location" yaml:"drop_location"`
	Passenger        Passenger  `json:"passenger" yaml:"passenger"`
	// ExpiresIn is the countdown in ticks. Zero means the configured default.
	ExpiresIn int `json:"expires_in" yaml:"expires_in"`
}

func (r Record) Validate() error {
	fare := float64(r.BaseFare)
	if r.ID == "" || math.IsNaN(fare) || math.IsInf(fare, 0) || fare <= 0 || r.ExpiresIn < 0 {
		return ErrBadRecord
	}
	return nil
}

type State struct {
	Record         Record
	Seq            uint64
	Remaining      int
	NegotiatedFare types.Fare
	Phase          Phase
	AdmittedAt     time.Time
}

type EventKind string

const (
	EventAdmitted     EventKind = "admitted"
	EventFareChanged  EventKind = "fare_changed"
	EventTicked       EventKind = "ticked"
	EventTransitioned EventKind = "transitioned"
	EventRemoved      EventKind = "removed"
)

// Event is emitted by the Store for every observable state change.
type Event struct {
	Kind           EventKind
	OfferID        types.ID
	Phase          Phase
	NegotiatedFare types.Fare
	Remaining      int
}

// Resolution tells the sink how an offer ended. Bargained offers end in
// PhaseAccepted at the negotiated fare.
type Resolution string

const (
	ResolutionAccepted  Resolution = "accepted"
	ResolutionBargained Resolution = "bargained"
	ResolutionRejected  Resolution = "rejected"
	ResolutionExpired   Resolution = "expired"
)

type Outcome struct {
	EventID    string     `json:"event_id"`
	OfferID    types.ID   `json:"offer_id"`
	Phase      Phase      `json:"phase"`
	Resolution Resolution `json:"resolution"`
	Fare       types.Fare `json:"fare"`
	BaseFare   types.Fare `json:"base_fare"`
	DecidedAt  time.Time  `json:"decided_at"`
}

// Availability mirrors the driver's status toggle.
type Availability string

const (
	AvailabilityOffline Availability = "offline"
	AvailabilityOnline  Availability = "online"
	AvailabilityGoHome  Availability = "go_home"
)

func (a Availability) Valid() bool {
	switch a {
	case AvailabilityOffline, AvailabilityOnline, AvailabilityGoHome:
		return true
	}
	return false
}

func (a Availability) Receiving() bool {
	return a == AvailabilityOnline || a == AvailabilityGoHome
}
