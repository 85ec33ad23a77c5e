package offer

import (
	"reflect"
	"testing"

	"offerstack/internal/types"
)

func TestStackActiveSelection(t *testing.T) {
	s := NewStack(3)
	if _, ok := s.Active(); ok {
		t.Fatal("empty stack has an active offer")
	}
	s.Push("a")
	s.Push("b")
	s.Push("c")
	if id, _ := s.Active(); id != "a" {
		t.Fatalf("default active = %q, want earliest inserted", id)
	}
	if !s.Full() {
		t.Fatal("stack of 3 should be full")
	}

	if err := s.Press("c"); err != nil {
		t.Fatalf("press: %v", err)
	}
	if err := s.Press("zzz"); err != ErrUnknownOffer {
		t.Fatalf("press unknown: expected ErrUnknownOffer, got %v", err)
	}
	if got := s.RenderOrder(); !reflect.DeepEqual(got, []types.ID{"a", "b", "c"}) {
		t.Fatalf("render order = %v", got)
	}
	if err := s.Press("a"); err != nil {
		t.Fatalf("press: %v", err)
	}
	if got := s.RenderOrder(); !reflect.DeepEqual(got, []types.ID{"b", "c", "a"}) {
		t.Fatalf("render order = %v", got)
	}

	// removing a non-active offer keeps the selection
	s.Remove("b")
	if id, _ := s.Active(); id != "a" {
		t.Fatalf("active = %q after removing b, want a", id)
	}
	// removing the active offer falls back to the earliest remaining one
	s.Remove("a")
	if id, _ := s.Active(); id != "c" {
		t.Fatalf("active = %q after removing a, want c", id)
	}
	s.Remove("c")
	if _, ok := s.Active(); ok || s.Len() != 0 {
		t.Fatal("expected empty stack with no active offer")
	}
	if s.Remove("c") {
		t.Fatal("removing twice returned true")
	}
}

func TestStackDefaultsMax(t *testing.T) {
	if got := NewStack(0).Max(); got != DefaultMaxVisible {
		t.Fatalf("max = %d, want %d", got, DefaultMaxVisible)
	}
}

func TestStackOrderIsACopy(t *testing.T) {
	s := NewStack(3)
	s.Push("a")
	s.Push("b")
	o := s.Order()
	o[0] = "mutated"
	if s.Order()[0] != "a" {
		t.Fatal("Order leaked internal slice")
	}
}
