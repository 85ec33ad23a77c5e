// README: Read model of the offer stack as the driver app renders it.
package offer

import (
	"offerstack/internal/modules/pricing"
	"offerstack/internal/types"
)

// CardOffsetY is the vertical gap between stacked cards in the driver app.
const CardOffsetY = 70

type Card struct {
	ID               types.ID       `json:"id"`
	BaseFare         types.Fare     `json:"base_fare"`
	NegotiatedFare   types.Fare     `json:"negotiated_fare"`
	Fare             int64          `json:"fare"`
	MinFare          types.Fare     `json:"min_fare"`
	MaxFare          types.Fare     `json:"max_fare"`
	Marks            []pricing.Mark `json:"marks"`
	ButtonLabel      string         `json:"button_label"`
	RemainingSeconds int            `json:"remaining_seconds"`
	DistanceKm       float64        `json:"distance_km"`
	PickupDistanceKm float64        `json:"pickup_distance_km"`
	PickupLocation   string         `json:"pickup_location"`
	DropLocation     string         `json:"drop_location"`
	Passenger        Passenger      `json:"passenger"`
	Active           bool           `json:"active"`
	ZIndex           int            `json:"z_index"`
	OffsetY          int            `json:"offset_y"`
}

type View struct {
	Availability Availability `json:"availability"`
	ActiveID     types.ID     `json:"active_id,omitempty"`
	MaxVisible   int          `json:"max_visible"`
	SingleCard   bool         `json:"single_card"`
	// Cards are in render order: the active card is last.
	Cards []Card `json:"cards"`
}

func (s *Service) View() View {
	order := s.stack.RenderOrder()
	active, _ := s.stack.Active()
	v := View{
		Availability: s.availability,
		ActiveID:     active,
		MaxVisible:   s.stack.Max(),
		SingleCard:   len(order) == 1,
		Cards:        make([]Card, 0, len(order)),
	}
	for i, id := range order {
		st, ok := s.store.Get(id)
		if !ok {
			continue
		}
		b := s.pricing.Bounds(st.Record.BaseFare)
		offset := 0
		if !v.SingleCard {
			offset = i * CardOffsetY
		}
		v.Cards = append(v.Cards, Card{
			ID:               id,
			BaseFare:         st.Record.BaseFare,
			NegotiatedFare:   st.NegotiatedFare,
			Fare:             DisplayFare(st),
			MinFare:          b.Min,
			MaxFare:          b.Max,
			Marks:            s.pricing.Marks(st.Record.BaseFare),
			ButtonLabel:      ButtonLabel(st),
			RemainingSeconds: st.Remaining,
			DistanceKm:       st.Record.DistanceKm,
			PickupDistanceKm: st.Record.PickupDistanceKm,
			PickupLocation:   st.Record.PickupLocation,
			DropLocation:     st.Record.DropLocation,
			Passenger:        st.Record.Passenger,
			Active:           id == active,
			ZIndex:           i,
			OffsetY:          offset,
		})
	}
	return v
}
