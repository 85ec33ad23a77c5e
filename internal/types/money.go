// README: Shared identifier and fare value types used across modules.
package types

import "math"

type ID string

// Fare is a ride price in the driver's local currency. Negotiation works on
// fractional values; drivers only ever see the rounded amount.
type Fare float64

func (f Fare) Rounded() int64 {
	return int64(math.Round(float64(f)))
}
