package intake

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"offerstack/internal/modules/offer"
)

const sampleFixture = `
rides:
  - id: ride-1
    base_fare: 120
    distance_km: 5.4
    pickup_distance_km: 1.1
    pickup_location: Cyber Hub
    drop_location: Sector 29
    passenger:
      name: Asha
    expires_in: 20
  - id: ride-2
    base_fare: 85.5
    pickup_location: MG Road
    drop_location: Airport T3
    passenger:
      name: Ravi
`

func TestFixtureNextOfferInOrder(t *testing.T) {
	f, err := ParseFixture([]byte(sampleFixture), false)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	ctx := context.Background()

	r, ok, err := f.NextOffer(ctx)
	if err != nil || !ok || r.ID != "ride-1" || r.BaseFare != 120 || r.Passenger.Name != "Asha" {
		t.Fatalf("first ride: %+v ok=%v err=%v", r, ok, err)
	}
	r, ok, _ = f.NextOffer(ctx)
	if !ok || r.ID != "ride-2" || r.ExpiresIn != 0 {
		t.Fatalf("second ride: %+v ok=%v", r, ok)
	}
	if _, ok, _ := f.NextOffer(ctx); ok {
		t.Fatal("exhausted fixture returned a ride")
	}
}

func TestFixtureLoopRenamesIDs(t *testing.T) {
	f, err := ParseFixture([]byte(sampleFixture), true)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	ctx := context.Background()
	var ids []string
	for i := 0; i < 5; i++ {
		r, ok, _ := f.NextOffer(ctx)
		if !ok {
			t.Fatalf("looping fixture ran dry at %d", i)
		}
		ids = append(ids, string(r.ID))
	}
	want := []string{"ride-1", "ride-2", "ride-1-r1", "ride-2-r1", "ride-1-r2"}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("ids = %v, want %v", ids, want)
		}
	}
	// renaming must not leak into the stored rides
	if f.Rides()[0].ID != "ride-1" {
		t.Fatal("stored ride id was modified")
	}
}

func TestFixtureLookupFallsBackToGuest(t *testing.T) {
	f, err := ParseFixture([]byte(sampleFixture), false)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if r, ok := f.Lookup("ride-2"); !ok || r.BaseFare != 85.5 {
		t.Fatalf("lookup ride-2: %+v ok=%v", r, ok)
	}
	r, ok := f.Lookup("nope")
	if ok {
		t.Fatal("unknown id reported as found")
	}
	if r.ID != "nope" || r.Passenger.Name != "Guest" || r.PickupLocation != "Not available" || r.ExpiresIn != FallbackExpiresIn {
		t.Fatalf("unexpected fallback ride %+v", r)
	}
	if !errors.Is(r.Validate(), offer.ErrBadRecord) {
		t.Fatal("fallback ride should not be admissible")
	}
}

func TestParseFixtureRejectsBadRides(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"missing id", "rides:\n  - base_fare: 10\n"},
		{"zero fare", "rides:\n  - id: a\n    base_fare: 0\n"},
		{"nan fare", "rides:\n  - id: a\n    base_fare: .nan\n"},
		{"inf fare", "rides:\n  - id: a\n    base_fare: .inf\n"},
		{"duplicate id", "rides:\n  - id: a\n    base_fare: 10\n  - id: a\n    base_fare: 12\n"},
		{"not yaml", "rides: [unterminated"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseFixture([]byte(tt.yaml), false); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestLoadFixture(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rides.yaml")
	if err := os.WriteFile(path, []byte(sampleFixture), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	f, err := LoadFixture(path, false)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(f.Rides()) != 2 {
		t.Fatalf("rides = %d, want 2", len(f.Rides()))
	}
	if _, err := LoadFixture(filepath.Join(t.TempDir(), "missing.yaml"), false); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestBundledFixtureParses(t *testing.T) {
	f, err := LoadFixture(filepath.Join("..", "..", "..", "data", "rides.yaml"), false)
	if err != nil {
		t.Fatalf("load bundled fixture: %v", err)
	}
	if len(f.Rides()) == 0 {
		t.Fatal("bundled fixture is empty")
	}
}
