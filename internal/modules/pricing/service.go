// README: Pricing service clamps negotiated fares into the band and produces slider marks.
package pricing

import (
	"errors"
	"fmt"
	"math"

	"offerstack/internal/types"
)

var ErrBadBand = errors.New("fare band must contain the base fare")

type Service struct {
	band Band
}

func NewService(band Band) (*Service, error) {
	if band.Low <= 0 || band.Low > 1 || band.High < 1 {
		return nil, ErrBadBand
	}
	return &Service{band: band}, nil
}

func (s *Service) Band() Band {
	return s.band
}

func (s *Service) Bounds(base types.Fare) Bounds {
	return Bounds{
		Min:  types.Fare(float64(base) * s.band.Low),
		Base: base,
		Max:  types.Fare(float64(base) * s.band.High),
	}
}

// Clamp pulls v into the band around base. NaN collapses to base.
func (s *Service) Clamp(base, v types.Fare) types.Fare {
	if math.IsNaN(float64(v)) {
		return base
	}
	b := s.Bounds(base)
	if v < b.Min {
		return b.Min
	}
	if v > b.Max {
		return b.Max
	}
	return v
}

// Marks returns five evenly spaced slider labels from Low to High.
func (s *Service) Marks(base types.Fare) []Mark {
	const n = 5
	marks := make([]Mark, 0, n)
	step := (s.band.High - s.band.Low) / float64(n-1)
	for i := 0; i < n; i++ {
		m := s.band.Low + step*float64(i)
		pct := int(math.Round((m - 1) * 100))
		label := fmt.Sprintf("%+d%%", pct)
		if pct == 0 {
			label = "0%"
		}
		marks = append(marks, Mark{Label: label, Fare: types.Fare(float64(base) * m)})
	}
	return marks
}
