// README: Offer state store; owns per-offer countdown, negotiated fare and phase keyed by offer id.
package offer

import (
	"sort"
	"time"

	"offerstack/internal/modules/pricing"
	"offerstack/internal/types"
)

// Store is not safe for concurrent use. The Runner is the only caller in
// production.
type Store struct {
	states  map[types.ID]*State
	pricing *pricing.Service
	notify  func(Event)
}

func NewStore(p *pricing.Service) *Store {
	return &Store{
		states:  make(map[types.ID]*State),
		pricing: p,
		notify:  func(Event) {},
	}
}

// OnEvent installs the single event observer.
func (s *Store) OnEvent(fn func(Event)) {
	if fn == nil {
		fn = func(Event) {}
	}
	s.notify = fn
}

func (s *Store) Admit(r Record, seq uint64, countdown int, now time.Time) (State, error) {
	if cur, ok := s.states[r.ID]; ok && !cur.Phase.Terminal() {
		return State{}, ErrDuplicateOffer
	}
	st := &State{
		Record:         r,
		Seq:            seq,
		Remaining:      countdown,
		NegotiatedFare: r.BaseFare,
		Phase:          PhasePending,
		AdmittedAt:     now,
	}
	s.states[r.ID] = st
	s.notify(Event{Kind: EventAdmitted, OfferID: r.ID, Phase: st.Phase, NegotiatedFare: st.NegotiatedFare, Remaining: st.Remaining})
	return *st, nil
}

// SetNegotiatedFare clamps v into the fare band and stores it. changed is
// false when the clamped value equals the current one.
func (s *Store) SetNegotiatedFare(id types.ID, v types.Fare) (fare types.Fare, changed bool, err error) {
	st, ok := s.states[id]
	if !ok || st.Phase != PhasePending {
		return 0, false, ErrUnknownOffer
	}
	clamped := s.pricing.Clamp(st.Record.BaseFare, v)
	if clamped == st.NegotiatedFare {
		return clamped, false, nil
	}
	st.NegotiatedFare = clamped
	s.notify(Event{Kind: EventFareChanged, OfferID: id, Phase: st.Phase, NegotiatedFare: clamped, Remaining: st.Remaining})
	return clamped, true, nil
}

// Tick decrements the countdown of a pending offer and returns what is left.
func (s *Store) Tick(id types.ID) (int, error) {
	st, ok := s.states[id]
	if !ok || st.Phase != PhasePending {
		return 0, ErrUnknownOffer
	}
	if st.Remaining > 0 {
		st.Remaining--
	}
	s.notify(Event{Kind: EventTicked, OfferID: id, Phase: st.Phase, NegotiatedFare: st.NegotiatedFare, Remaining: st.Remaining})
	return st.Remaining, nil
}

func (s *Store) Transition(id types.ID, to Phase) (Event, error) {
	st, ok := s.states[id]
	if !ok {
		return Event{}, ErrUnknownOffer
	}
	if !CanTransition(st.Phase, to) {
		return Event{}, ErrInvalidTransition
	}
	st.Phase = to
	ev := Event{Kind: EventTransitioned, OfferID: id, Phase: to, NegotiatedFare: st.NegotiatedFare, Remaining: st.Remaining}
	s.notify(ev)
	return ev, nil
}

// Remove deletes the state for id regardless of phase.
func (s *Store) Remove(id types.ID) bool {
	st, ok := s.states[id]
	if !ok {
		return false
	}
	delete(s.states, id)
	s.notify(Event{Kind: EventRemoved, OfferID: id, Phase: st.Phase, NegotiatedFare: st.NegotiatedFare, Remaining: st.Remaining})
	return true
}

func (s *Store) Get(id types.ID) (State, bool) {
	st, ok := s.states[id]
	if !ok {
		return State{}, false
	}
	return *st, true
}

// Pending returns pending offers in insertion order.
func (s *Store) Pending() []State {
	out := make([]State, 0, len(s.states))
	for _, st := range s.states {
		if st.Phase == PhasePending {
			out = append(out, *st)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out
}

func (s *Store) Len() int {
	return len(s.states)
}
