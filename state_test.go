package microfolio

import (
	"encoding/json"
	"slices"
	"testing"
)

func TestNewState_DropsZeroPositions(t *testing.T) {
	s := NewState(M(100), map[string]Quantity{
		"ARQ":  Q(37),
		"GEVO": Q(0),
	}, Date{})
	if got := slices.Collect(s.Symbols()); !slices.Equal(got, []string{"ARQ"}) {
		t.Errorf("symbols = %v, want [ARQ]", got)
	}
}

func TestState_Immutability(t *testing.T) {
	source := map[string]Quantity{"ARQ": Q(37)}
	s := NewState(M(100), source, Date{})

	// Mutating the source map must not reach the state.
	source["ARQ"] = Q(1)
	if got := s.Holding("ARQ"); !got.Equal(Q(37)) {
		t.Errorf("holding = %s after source mutation, want 37", got)
	}

	// Operations return new values and leave the receiver untouched.
	next := s.credit(M(50)).withHolding("ARQ", Q(0))
	if !s.Cash().Equal(M(100)) || !s.Holding("ARQ").Equal(Q(37)) {
		t.Errorf("receiver mutated: cash %s holding %s", s.Cash(), s.Holding("ARQ"))
	}
	if !next.Cash().Equal(M(150)) || !next.Holding("ARQ").IsZero() {
		t.Errorf("derived state wrong: cash %s holding %s", next.Cash(), next.Holding("ARQ"))
	}
}

func TestState_Check(t *testing.T) {
	if err := NewState(M(0), nil, Date{}).Check(); err != nil {
		t.Errorf("empty state invalid: %v", err)
	}
	if err := (State{cash: M(-1)}).Check(); err == nil {
		t.Error("negative cash accepted")
	}
	if err := (State{cash: M(0), holdings: map[string]Quantity{"ARQ": Q(-1)}}).Check(); err == nil {
		t.Error("negative holding accepted")
	}
}

func TestState_JSONRejectsInvalid(t *testing.T) {
	var s State
	if err := json.Unmarshal([]byte(`{"cash":"-5","holdings":{},"as_of":"2025-08-22"}`), &s); err == nil {
		t.Error("negative cash decoded without error")
	}
}

func TestState_JSONRoundTrip(t *testing.T) {
	s := NewState(M(54.84), map[string]Quantity{"CDXS": Q(12)}, MustParseDate("2025-08-22"))
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal() = %v", err)
	}
	var got State
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal() = %v", err)
	}
	if !got.Equal(s) {
		t.Errorf("round trip = %+v, want %+v", got, s)
	}
}
