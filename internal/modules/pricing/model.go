// README: Fare band definition bounding how far a driver may move an offer's fare.
package pricing

import "offerstack/internal/types"

// Band is a pair of multipliers applied to a base fare. The original driver
// app used [0.8, 1.2].
type Band struct {
	Low  float64
	High float64
}

var DefaultBand = Band{Low: 0.8, High: 1.2}

// Bounds is the inclusive fare range for one offer.
type Bounds struct {
	Min  types.Fare
	Base types.Fare
	Max  types.Fare
}

// Mark is one tick under the fare slider, e.g. "-10%".
type Mark struct {
	Label string     `json:"label"`
	Fare  types.Fare `json:"fare"`
}
