// README: Stack ordering policy; admission cap, active offer selection and render order.
package offer

import "offerstack/internal/types"

const DefaultMaxVisible = 3

type Stack struct {
	max    int
	order  []types.ID
	active types.ID
}

func NewStack(max int) *Stack {
	if max <= 0 {
		max = DefaultMaxVisible
	}
	return &Stack{max: max}
}

func (s *Stack) Max() int {
	return s.max
}

func (s *Stack) Len() int {
	return len(s.order)
}

func (s *Stack) Full() bool {
	return len(s.order) >= s.max
}

func (s *Stack) Contains(id types.ID) bool {
	return s.index(id) >= 0
}

// Push appends id in insertion order. The first offer into an empty stack
// becomes active.
func (s *Stack) Push(id types.ID) {
	s.order = append(s.order, id)
	if s.active == "" {
		s.active = id
	}
}

// Press makes id the active offer.
func (s *Stack) Press(id types.ID) error {
	if !s.Contains(id) {
		return ErrUnknownOffer
	}
	s.active = id
	return nil
}

// Remove drops id. If it was active, the earliest remaining offer takes over.
func (s *Stack) Remove(id types.ID) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	s.order = append(s.order[:i], s.order[i+1:]...)
	if s.active == id {
		s.active = ""
		if len(s.order) > 0 {
			s.active = s.order[0]
		}
	}
	return true
}

func (s *Stack) Active() (types.ID, bool) {
	return s.active, s.active != ""
}

// Order returns ids in insertion order.
func (s *Stack) Order() []types.ID {
	out := make([]types.ID, len(s.order))
	copy(out, s.order)
	return out
}

// RenderOrder keeps insertion order for the cards underneath and puts the
// active offer last, i.e. on top.
func (s *Stack) RenderOrder() []types.ID {
	out := make([]types.ID, 0, len(s.order))
	for _, id := range s.order {
		if id != s.active {
			out = append(out, id)
		}
	}
	if s.active != "" {
		out = append(out, s.active)
	}
	return out
}

func (s *Stack) index(id types.ID) int {
	for i, v := range s.order {
		if v == id {
			return i
		}
	}
	return -1
}
