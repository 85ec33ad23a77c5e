// README: Timer engine; one cancellable countdown task per pending offer, keyed by offer id.
package offer

import (
	"sort"
	"time"

	"offerstack/internal/types"
)

type timerTask struct {
	id   types.ID
	seq  uint64
	next time.Time
	left int
}

// Tick is one due countdown step for one offer.
type Tick struct {
	OfferID types.ID
	Seq     uint64
	At      time.Time
}

// TimerEngine keeps each offer's schedule independent: a task's phase is set
// by its own admission time and one task's catch-up never shifts another.
type TimerEngine struct {
	interval time.Duration
	tasks    map[types.ID]*timerTask
}

func NewTimerEngine(interval time.Duration) *TimerEngine {
	if interval <= 0 {
		interval = time.Second
	}
	return &TimerEngine{interval: interval, tasks: make(map[types.ID]*timerTask)}
}

func (e *TimerEngine) Interval() time.Duration {
	return e.interval
}

// Start schedules ticks ticks, the first one interval after now. Starting an
// id that already has a task replaces it.
func (e *TimerEngine) Start(id types.ID, seq uint64, ticks int, now time.Time) {
	if ticks <= 0 {
		return
	}
	e.tasks[id] = &timerTask{id: id, seq: seq, next: now.Add(e.interval), left: ticks}
}

// Cancel reports whether a task was running.
func (e *TimerEngine) Cancel(id types.ID) bool {
	if _, ok := e.tasks[id]; !ok {
		return false
	}
	delete(e.tasks, id)
	return true
}

func (e *TimerEngine) Running(id types.ID) bool {
	_, ok := e.tasks[id]
	return ok
}

func (e *TimerEngine) Len() int {
	return len(e.tasks)
}

// Due collects every tick scheduled at or before now, ordered by tick time and
// then insertion order, and advances the tasks past them. A task never yields
// more ticks than it was started with and is dropped after its last one.
func (e *TimerEngine) Due(now time.Time) []Tick {
	var ticks []Tick
	for id, t := range e.tasks {
		for t.left > 0 && !t.next.After(now) {
			ticks = append(ticks, Tick{OfferID: t.id, Seq: t.seq, At: t.next})
			t.next = t.next.Add(e.interval)
			t.left--
		}
		if t.left == 0 {
			delete(e.tasks, id)
		}
	}
	sort.Slice(ticks, func(i, j int) bool {
		if !ticks[i].At.Equal(ticks[j].At) {
			return ticks[i].At.Before(ticks[j].At)
		}
		return ticks[i].Seq < ticks[j].Seq
	})
	return ticks
}

// NextDeadline returns the earliest scheduled tick across all tasks.
func (e *TimerEngine) NextDeadline() (time.Time, bool) {
	var (
		earliest time.Time
		found    bool
	)
	for _, t := range e.tasks {
		if !found || t.next.Before(earliest) {
			earliest = t.next
			found = true
		}
	}
	return earliest, found
}
