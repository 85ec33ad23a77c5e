// README: Offer stack service; admits offers, drives countdowns, resolves driver actions and queues outcomes.
package offer

import (
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"offerstack/internal/modules/pricing"
	"offerstack/internal/types"
)

var (
	ErrDuplicateOffer    = errors.New("offer already pending")
	ErrUnknownOffer      = errors.New("offer not found")
	ErrInvalidTransition = errors.New("invalid offer transition")
	ErrBadRecord         = errors.New("bad offer record")
	ErrUnknownAction     = errors.New("unknown driver action")
	ErrUnavailable       = errors.New("driver is offline")
	ErrBadStatus         = errors.New("unknown driver status")
)

const DefaultCountdown = 20

type Options struct {
	MaxVisible       int
	TickInterval     time.Duration
	DefaultCountdown int
	Logger           *slog.Logger
	// NewEventID defaults to uuid.NewString.
	NewEventID func() string
}

// Service is the single owner of every offer's state. It is not safe for
// concurrent use; wrap it in a Runner to serve more than one goroutine.
type Service struct {
	store   *Store
	timers  *TimerEngine
	stack   *Stack
	pricing *pricing.Service

	defaultCountdown int
	seq              uint64
	availability     Availability
	outbox           []Outcome
	log              *slog.Logger
	newEventID       func() string
}

func NewService(p *pricing.Service, opts Options) *Service {
	if opts.DefaultCountdown <= 0 {
		opts.DefaultCountdown = DefaultCountdown
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.NewEventID == nil {
		opts.NewEventID = uuid.NewString
	}
	return &Service{
		store:            NewStore(p),
		timers:           NewTimerEngine(opts.TickInterval),
		stack:            NewStack(opts.MaxVisible),
		pricing:          p,
		defaultCountdown: opts.DefaultCountdown,
		availability:     AvailabilityOnline,
		log:              opts.Logger.With("component", "offer_stack"),
		newEventID:       opts.NewEventID,
	}
}

// OnEvent forwards every store event to fn.
func (s *Service) OnEvent(fn func(Event)) {
	s.store.OnEvent(fn)
}

// Admit adds r to the stack. It returns false without an error when the
// stack is already full; the source may offer the record again later.
func (s *Service) Admit(now time.Time, r Record) (bool, error) {
	if err := r.Validate(); err != nil {
		return false, err
	}
	if !s.availability.Receiving() {
		return false, ErrUnavailable
	}
	if s.stack.Contains(r.ID) {
		s.log.Info("duplicate offer ignored", "offer_id", r.ID)
		return false, ErrDuplicateOffer
	}
	if s.stack.Full() {
		s.log.Debug("stack full, offer dropped", "offer_id", r.ID, "pending", s.stack.Len())
		return false, nil
	}

	countdown := r.ExpiresIn
	if countdown == 0 {
		countdown = s.defaultCountdown
	}
	s.seq++
	if _, err := s.store.Admit(r, s.seq, countdown, now); err != nil {
		s.log.Info("offer admission refused", "offer_id", r.ID, "err", err)
		return false, err
	}
	s.stack.Push(r.ID)
	s.timers.Start(r.ID, s.seq, countdown, now)
	s.log.Info("offer admitted", "offer_id", r.ID, "base_fare", float64(r.BaseFare), "countdown", countdown)
	return true, nil
}

// Press marks id as the offer the driver is interacting with.
func (s *Service) Press(id types.ID) error {
	if err := s.stack.Press(id); err != nil {
		s.log.Info("press on unknown offer", "offer_id", id)
		return err
	}
	return nil
}

// SetFare moves the slider of offer id. The stored fare is clamped to the
// band; moving the slider also makes the offer active.
func (s *Service) SetFare(id types.ID, v types.Fare) (types.Fare, error) {
	fare, changed, err := s.store.SetNegotiatedFare(id, v)
	if err != nil {
		s.log.Info("fare update on unknown offer", "offer_id", id)
		return 0, err
	}
	_ = s.stack.Press(id)
	if changed {
		s.log.Debug("fare negotiated", "offer_id", id, "fare", float64(fare))
	}
	return fare, nil
}

func (s *Service) Accept(now time.Time, id types.ID) (Outcome, error) {
	return s.Act(now, id, ActionAcceptOrBargain)
}

func (s *Service) Reject(now time.Time, id types.ID) (Outcome, error) {
	return s.Act(now, id, ActionReject)
}

// Act applies a driver action to a pending offer and queues its outcome.
func (s *Service) Act(now time.Time, id types.ID, a Action) (Outcome, error) {
	st, ok := s.store.Get(id)
	if !ok || st.Phase != PhasePending {
		s.log.Info("action on unknown offer", "offer_id", id, "action", a)
		return Outcome{}, ErrUnknownOffer
	}
	d, err := Resolve(st, a)
	if err != nil {
		return Outcome{}, err
	}
	return s.finish(now, st, d)
}

// Remove withdraws an offer without reporting an outcome.
func (s *Service) Remove(id types.ID) error {
	s.timers.Cancel(id)
	s.stack.Remove(id)
	if !s.store.Remove(id) {
		return ErrUnknownOffer
	}
	s.log.Info("offer withdrawn", "offer_id", id)
	return nil
}

// Advance runs every countdown tick due at or before now and returns the
// outcomes of offers that expired.
func (s *Service) Advance(now time.Time) []Outcome {
	var expired []Outcome
	for _, t := range s.timers.Due(now) {
		st, ok := s.store.Get(t.OfferID)
		if !ok || st.Phase != PhasePending {
			continue
		}
		remaining, err := s.store.Tick(t.OfferID)
		if err != nil || remaining > 0 {
			continue
		}
		out, err := s.finish(t.At, st, Decision{Phase: PhaseExpired, Resolution: ResolutionExpired, Fare: st.NegotiatedFare})
		if err != nil {
			s.log.Error("expire offer", "offer_id", t.OfferID, "err", err)
			continue
		}
		expired = append(expired, out)
	}
	return expired
}

func (s *Service) finish(now time.Time, st State, d Decision) (Outcome, error) {
	id := st.Record.ID
	if _, err := s.store.Transition(id, d.Phase); err != nil {
		return Outcome{}, err
	}
	s.timers.Cancel(id)
	s.stack.Remove(id)

	out := Outcome{
		EventID:    s.newEventID(),
		OfferID:    id,
		Phase:      d.Phase,
		Resolution: d.Resolution,
		Fare:       d.Fare,
		BaseFare:   st.Record.BaseFare,
		DecidedAt:  now,
	}
	s.outbox = append(s.outbox, out)
	s.store.Remove(id)
	s.log.Info("offer resolved", "offer_id", id, "resolution", d.Resolution, "fare", float64(d.Fare))
	return out, nil
}

// Drain hands over queued outcomes in the order they were produced.
func (s *Service) Drain() []Outcome {
	out := s.outbox
	s.outbox = nil
	return out
}

func (s *Service) Get(id types.ID) (State, bool) {
	return s.store.Get(id)
}

func (s *Service) Pending() []State {
	return s.store.Pending()
}

func (s *Service) Active() (types.ID, bool) {
	return s.stack.Active()
}

func (s *Service) RenderOrder() []types.ID {
	return s.stack.RenderOrder()
}

// CanAdmit reports whether a new record has a chance of being admitted now.
func (s *Service) CanAdmit() bool {
	return s.availability.Receiving() && !s.stack.Full()
}

func (s *Service) NextDeadline() (time.Time, bool) {
	return s.timers.NextDeadline()
}

func (s *Service) Availability() Availability {
	return s.availability
}

// SetAvailability changes the driver status. Going offline stops intake only;
// offers already on the stack keep counting down.
func (s *Service) SetAvailability(a Availability) error {
	if !a.Valid() {
		return ErrBadStatus
	}
	if a != s.availability {
		s.log.Info("driver availability changed", "from", s.availability, "to", a)
	}
	s.availability = a
	return nil
}
