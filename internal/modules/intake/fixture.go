// README: YAML ride fixture; a mock ride service that feeds canned offers and answers lookups by id.
package intake

import (
	"context"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"offerstack/internal/modules/offer"
	"offerstack/internal/types"
)

// FallbackExpiresIn is the countdown of the ride returned for unknown ids.
const FallbackExpiresIn = 30

type fixtureFile struct {
	Rides []offer.Record `yaml:"rides"`
}

// Fixture hands out its rides in file order. With loop set it starts over
// once exhausted, suffixing ids with the round number so they do not collide
// with offers still on the stack.
type Fixture struct {
	mu    sync.Mutex
	rides []offer.Record
	loop  bool
	next  int
	round int
}

func LoadFixture(path string, loop bool) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	f, err := ParseFixture(data, loop)
	if err != nil {
		return nil, fmt.Errorf("fixture %s: %w", path, err)
	}
	return f, nil
}

func ParseFixture(data []byte, loop bool) (*Fixture, error) {
	var file fixtureFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	seen := make(map[types.ID]bool, len(file.Rides))
	for i, r := range file.Rides {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("ride %d (%q): %w", i, r.ID, err)
		}
		if seen[r.ID] {
			return nil, fmt.Errorf("ride %d: duplicate id %q", i, r.ID)
		}
		seen[r.ID] = true
	}
	return &Fixture{rides: file.Rides, loop: loop}, nil
}

func (f *Fixture) NextOffer(context.Context) (offer.Record, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.rides) == 0 {
		return offer.Record{}, false, nil
	}
	if f.next == len(f.rides) {
		if !f.loop {
			return offer.Record{}, false, nil
		}
		f.next = 0
		f.round++
	}
	r := f.rides[f.next]
	f.next++
	if f.round > 0 {
		r.ID = types.ID(fmt.Sprintf("%s-r%d", r.ID, f.round))
	}
	return r, true, nil
}

// Lookup returns the ride with id, or a placeholder Guest ride when the
// fixture has none. The placeholder carries no fare, so the stack refuses it.
func (f *Fixture) Lookup(id types.ID) (offer.Record, bool) {
	for _, r := range f.rides {
		if r.ID == id {
			return r, true
		}
	}
	return offer.Record{
		ID:             id,
		PickupLocation: "Not available",
		DropLocation:   "Not available",
		Passenger:      offer.Passenger{Name: "Guest"},
		ExpiresIn:      FallbackExpiresIn,
	}, false
}

func (f *Fixture) Rides() []offer.Record {
	out := make([]offer.Record, len(f.rides))
	copy(out, f.rides)
	return out
}
