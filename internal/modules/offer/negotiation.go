// README: Negotiation resolver; maps a driver action and the slider state to a terminal outcome.
package offer

import "offerstack/internal/types"

type Action string

const (
	ActionReject Action = "reject"
	// ActionAcceptOrBargain is the single green button. Whether it accepts or
	// bargains depends only on whether the fare moved off the base fare.
	ActionAcceptOrBargain Action = "accept_or_bargain"
)

const (
	LabelAccept  = "Accept"
	LabelBargain = "Bargain"
)

// Decision is what an action on a pending offer resolves to.
type Decision struct {
	Phase      Phase
	Resolution Resolution
	Fare       types.Fare
}

func Resolve(st State, a Action) (Decision, error) {
	if st.Phase != PhasePending {
		return Decision{}, ErrInvalidTransition
	}
	switch a {
	case ActionReject:
		return Decision{Phase: PhaseRejected, Resolution: ResolutionRejected, Fare: st.NegotiatedFare}, nil
	case ActionAcceptOrBargain:
		if st.NegotiatedFare == st.Record.BaseFare {
			return Decision{Phase: PhaseAccepted, Resolution: ResolutionAccepted, Fare: st.Record.BaseFare}, nil
		}
		return Decision{Phase: PhaseAccepted, Resolution: ResolutionBargained, Fare: st.NegotiatedFare}, nil
	}
	return Decision{}, ErrUnknownAction
}

func ButtonLabel(st State) string {
	if st.NegotiatedFare == st.Record.BaseFare {
		return LabelAccept
	}
	return LabelBargain
}

func DisplayFare(st State) int64 {
	return st.NegotiatedFare.Rounded()
}
