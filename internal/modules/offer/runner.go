// README: Runner is the single event loop that owns the offer stack; actions, timers and source polls all run on it.
package offer

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"offerstack/internal/types"
)

var ErrStopped = errors.New("offer runner stopped")

// Source delivers at most one new offer record per call and must not block
// for long; an empty inbox is (Record{}, false, nil).
type Source interface {
	NextOffer(ctx context.Context) (Record, bool, error)
}

// Reporter receives terminal outcomes. Its errors never undo the local
// transition.
type Reporter interface {
	ReportOutcome(ctx context.Context, out Outcome) error
}

type RunnerOptions struct {
	PollInterval  time.Duration
	ReportTimeout time.Duration
	Logger        *slog.Logger
	Now           func() time.Time
}

type command struct {
	fn   func(s *Service, now time.Time) error
	errc chan error
}

type pollResult struct {
	rec Record
	ok  bool
	err error
}

type Runner struct {
	svc      *Service
	source   Source
	reporter Reporter
	opts     RunnerOptions
	log      *slog.Logger

	cmds    chan command
	polled  chan pollResult
	polling bool
	dirty   bool
	done    chan struct{}
	outbox  *outbox

	subsMu sync.Mutex
	subs   map[int]chan View
	nextID int
}

// NewRunner wires svc to a source and a reporter; either may be nil.
func NewRunner(svc *Service, source Source, reporter Reporter, opts RunnerOptions) *Runner {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 2 * time.Second
	}
	if opts.ReportTimeout <= 0 {
		opts.ReportTimeout = 5 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	r := &Runner{
		svc:      svc,
		source:   source,
		reporter: reporter,
		opts:     opts,
		log:      opts.Logger.With("component", "offer_runner"),
		cmds:     make(chan command),
		polled:   make(chan pollResult, 1),
		done:     make(chan struct{}),
		outbox:   newOutbox(),
		subs:     make(map[int]chan View),
	}
	svc.OnEvent(func(Event) { r.dirty = true })
	return r
}

// Run blocks until ctx is cancelled. Outcomes still queued at that point are
// reported before Run returns.
func (r *Runner) Run(ctx context.Context) error {
	defer close(r.done)

	dispatched := make(chan struct{})
	go func() {
		defer close(dispatched)
		r.dispatch(context.WithoutCancel(ctx))
	}()

	var pollC <-chan time.Time
	if r.source != nil {
		ticker := time.NewTicker(r.opts.PollInterval)
		defer ticker.Stop()
		pollC = ticker.C
	}
	timer := time.NewTimer(time.Hour)
	defer timer.Stop()

	for {
		r.arm(timer)
		select {
		case <-ctx.Done():
			r.outbox.close()
			<-dispatched
			return nil
		case cmd := <-r.cmds:
			// Deadlines that passed before the command arrived win over it.
			now := r.opts.Now()
			r.svc.Advance(now)
			cmd.errc <- cmd.fn(r.svc, now)
			r.dirty = true
		case <-timer.C:
			r.svc.Advance(r.opts.Now())
		case <-pollC:
			r.startPoll(ctx)
		case res := <-r.polled:
			r.polling = false
			r.admitPolled(res)
		}
		r.flush()
	}
}

// Do runs fn on the loop goroutine and waits for its result. ctx only bounds
// the hand-off: once the loop has taken fn, Do reports what fn returned.
func (r *Runner) Do(ctx context.Context, fn func(s *Service, now time.Time) error) error {
	cmd := command{fn: fn, errc: make(chan error, 1)}
	select {
	case r.cmds <- cmd:
	case <-r.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	return <-cmd.errc
}

func (r *Runner) Submit(ctx context.Context, rec Record) (bool, error) {
	var admitted bool
	err := r.Do(ctx, func(s *Service, now time.Time) error {
		var err error
		admitted, err = s.Admit(now, rec)
		return err
	})
	return admitted, err
}

func (r *Runner) Press(ctx context.Context, id types.ID) error {
	return r.Do(ctx, func(s *Service, _ time.Time) error { return s.Press(id) })
}

func (r *Runner) SetFare(ctx context.Context, id types.ID, fare types.Fare) (types.Fare, error) {
	var got types.Fare
	err := r.Do(ctx, func(s *Service, _ time.Time) error {
		var err error
		got, err = s.SetFare(id, fare)
		return err
	})
	return got, err
}

func (r *Runner) Act(ctx context.Context, id types.ID, a Action) (Outcome, error) {
	var out Outcome
	err := r.Do(ctx, func(s *Service, now time.Time) error {
		var err error
		out, err = s.Act(now, id, a)
		return err
	})
	return out, err
}

func (r *Runner) Remove(ctx context.Context, id types.ID) error {
	return r.Do(ctx, func(s *Service, _ time.Time) error { return s.Remove(id) })
}

func (r *Runner) SetAvailability(ctx context.Context, a Availability) error {
	return r.Do(ctx, func(s *Service, _ time.Time) error { return s.SetAvailability(a) })
}

func (r *Runner) Snapshot(ctx context.Context) (View, error) {
	var v View
	err := r.Do(ctx, func(s *Service, _ time.Time) error {
		v = s.View()
		return nil
	})
	return v, err
}

// Subscribe returns a channel carrying the latest view after every change.
// Slow readers only ever miss intermediate views.
func (r *Runner) Subscribe() (<-chan View, func()) {
	r.subsMu.Lock()
	defer r.subsMu.Unlock()
	id := r.nextID
	r.nextID++
	ch := make(chan View, 1)
	r.subs[id] = ch
	return ch, func() {
		r.subsMu.Lock()
		defer r.subsMu.Unlock()
		delete(r.subs, id)
	}
}

func (r *Runner) arm(timer *time.Timer) {
	deadline, ok := r.svc.NextDeadline()
	if !ok {
		timer.Stop()
		return
	}
	d := deadline.Sub(r.opts.Now())
	if d < 0 {
		d = 0
	}
	timer.Reset(d)
}

func (r *Runner) startPoll(ctx context.Context) {
	if r.polling || !r.svc.CanAdmit() {
		return
	}
	r.polling = true
	go func() {
		rec, ok, err := r.source.NextOffer(ctx)
		r.polled <- pollResult{rec: rec, ok: ok, err: err}
	}()
}

func (r *Runner) admitPolled(res pollResult) {
	if res.err != nil {
		r.log.Warn("poll offer source", "err", res.err)
		return
	}
	if !res.ok {
		return
	}
	admitted, err := r.svc.Admit(r.opts.Now(), res.rec)
	switch {
	case err != nil:
		r.log.Info("polled offer not admitted", "offer_id", res.rec.ID, "err", err)
	case !admitted:
		r.log.Info("polled offer dropped, stack full", "offer_id", res.rec.ID)
	}
}

func (r *Runner) flush() {
	if outs := r.svc.Drain(); len(outs) > 0 {
		r.outbox.push(outs...)
		r.dirty = true
	}
	if !r.dirty {
		return
	}
	r.dirty = false
	v := r.svc.View()
	r.subsMu.Lock()
	defer r.subsMu.Unlock()
	for _, ch := range r.subs {
		select {
		case <-ch:
		default:
		}
		ch <- v
	}
}

func (r *Runner) dispatch(ctx context.Context) {
	for {
		batch, open := r.outbox.wait()
		for _, out := range batch {
			r.report(ctx, out)
		}
		if !open {
			return
		}
	}
}

func (r *Runner) report(ctx context.Context, out Outcome) {
	if r.reporter == nil {
		return
	}
	rctx, cancel := context.WithTimeout(ctx, r.opts.ReportTimeout)
	defer cancel()
	if err := r.reporter.ReportOutcome(rctx, out); err != nil {
		r.log.Error("report outcome", "offer_id", out.OfferID, "resolution", out.Resolution, "err", err)
	}
}

// outbox is an unbounded FIFO between the loop and the dispatcher so the loop
// never waits on a sink.
type outbox struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []Outcome
	closed bool
}

func newOutbox() *outbox {
	o := &outbox{}
	o.cond = sync.NewCond(&o.mu)
	return o
}

func (o *outbox) push(items ...Outcome) {
	o.mu.Lock()
	o.items = append(o.items, items...)
	o.mu.Unlock()
	o.cond.Signal()
}

func (o *outbox) close() {
	o.mu.Lock()
	o.closed = true
	o.mu.Unlock()
	o.cond.Signal()
}

func (o *outbox) wait() ([]Outcome, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for len(o.items) == 0 && !o.closed {
		o.cond.Wait()
	}
	items := o.items
	o.items = nil
	return items, !o.closed
}
