package offer

import (
	"testing"

	"offerstack/internal/types"
)

func TestResolve(t *testing.T) {
	pending := func(baseFare, negotiated float64) State {
		r := rec("n", 0, 10)
		r.BaseFare = types.Fare(baseFare)
		return State{Record: r, NegotiatedFare: types.Fare(negotiated), Phase: PhasePending}
	}

	tests := []struct {
		name   string
		state  State
		action Action
		want   Decision
		label  string
	}{
		{
			name:   "accept at base fare",
			state:  pending(100, 100),
			action: ActionAcceptOrBargain,
			want:   Decision{Phase: PhaseAccepted, Resolution: ResolutionAccepted, Fare: 100},
			label:  LabelAccept,
		},
		{
			name:   "bargain up",
			state:  pending(100, 110),
			action: ActionAcceptOrBargain,
			want:   Decision{Phase: PhaseAccepted, Resolution: ResolutionBargained, Fare: 110},
			label:  LabelBargain,
		},
		{
			name:   "bargain down keeps fractional fare",
			state:  pending(99, 79.2),
			action: ActionAcceptOrBargain,
			want:   Decision{Phase: PhaseAccepted, Resolution: ResolutionBargained, Fare: 79.2},
			label:  LabelBargain,
		},
		{
			name:   "reject",
			state:  pending(100, 115),
			action: ActionReject,
			want:   Decision{Phase: PhaseRejected, Resolution: ResolutionRejected, Fare: 115},
			label:  LabelBargain,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.state, tt.action)
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}
			if got != tt.want {
				t.Errorf("Resolve() = %+v, want %+v", got, tt.want)
			}
			if l := ButtonLabel(tt.state); l != tt.label {
				t.Errorf("ButtonLabel() = %q, want %q", l, tt.label)
			}
		})
	}
}

func TestResolveRejectsNonPendingAndUnknownActions(t *testing.T) {
	st := State{Record: rec("n", 100, 10), NegotiatedFare: 100, Phase: PhaseExpired}
	if _, err := Resolve(st, ActionReject); err != ErrInvalidTransition {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	st.Phase = PhasePending
	if _, err := Resolve(st, "counter_offer"); err != ErrUnknownAction {
		t.Fatalf("expected ErrUnknownAction, got %v", err)
	}
}

func TestDisplayFareRounds(t *testing.T) {
	cases := map[float64]int64{100: 100, 109.4: 109, 109.5: 110, 79.2: 79}
	for in, want := range cases {
		st := State{NegotiatedFare: types.Fare(in)}
		if got := DisplayFare(st); got != want {
			t.Errorf("DisplayFare(%v) = %d, want %d", in, got, want)
		}
	}
}
