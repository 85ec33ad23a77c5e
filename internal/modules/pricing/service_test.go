package pricing

import (
	"math"
	"testing"

	"offerstack/internal/types"
)

func TestService_Clamp(t *testing.T) {
	s, err := NewService(DefaultBand)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	tests := []struct {
		name string
		base types.Fare
		in   types.Fare
		want types.Fare
	}{
		{name: "inside band", base: 100, in: 110, want: 110},
		{name: "base fare", base: 100, in: 100, want: 100},
		{name: "below floor", base: 100, in: 10, want: 80},
		{name: "above ceiling", base: 100, in: 500, want: 120},
		{name: "negative", base: 250, in: -5, want: 200},
		{name: "NaN falls back to base", base: 100, in: types.Fare(math.NaN()), want: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Clamp(tt.base, tt.in)
			if math.Abs(float64(got-tt.want)) > 1e-9 {
				t.Errorf("Clamp(%v, %v) = %v, want %v", tt.base, tt.in, got, tt.want)
			}
		})
	}
}

func TestService_ClampCustomBand(t *testing.T) {
	s, err := NewService(Band{Low: 0.9, High: 1.5})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	if got := s.Clamp(200, 1000); math.Abs(float64(got)-300) > 1e-9 {
		t.Errorf("Clamp above custom ceiling = %v, want 300", got)
	}
	if got := s.Clamp(200, 0); math.Abs(float64(got)-180) > 1e-9 {
		t.Errorf("Clamp below custom floor = %v, want 180", got)
	}
}

func TestNewService_RejectsBandWithoutBase(t *testing.T) {
	bands := []Band{
		{Low: 1.1, High: 1.2},
		{Low: 0.8, High: 0.9},
		{Low: 0, High: 1.2},
		{Low: -0.5, High: 1.2},
	}
	for _, b := range bands {
		if _, err := NewService(b); err != ErrBadBand {
			t.Errorf("NewService(%+v) err = %v, want ErrBadBand", b, err)
		}
	}
}

func TestService_Marks(t *testing.T) {
	s, _ := NewService(DefaultBand)
	marks := s.Marks(100)
	wantLabels := []string{"-20%", "-10%", "0%", "+10%", "+20%"}
	wantFares := []int64{80, 90, 100, 110, 120}
	if len(marks) != len(wantLabels) {
		t.Fatalf("expected %d marks, got %d", len(wantLabels), len(marks))
	}
	for i, m := range marks {
		if m.Label != wantLabels[i] {
			t.Errorf("mark %d label = %q, want %q", i, m.Label, wantLabels[i])
		}
		if m.Fare.Rounded() != wantFares[i] {
			t.Errorf("mark %d fare = %v, want %d", i, m.Fare, wantFares[i])
		}
	}
}

func TestService_Bounds(t *testing.T) {
	s, _ := NewService(DefaultBand)
	b := s.Bounds(150)
	if b.Min.Rounded() != 120 || b.Base != 150 || b.Max.Rounded() != 180 {
		t.Fatalf("unexpected bounds %+v", b)
	}
}
