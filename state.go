package microfolio

import (
	"encoding/json"
	"fmt"
	"iter"
	"maps"
	"slices"
)

// State is the portfolio state carried from one run to the next: the cash
// balance and the number of shares held per symbol.
//
// State values are immutable. Every operation returns a new State with a
// fresh holdings map, so "state after" can be compared to "state before"
// by simple equality in tests, and a failed run never leaves a
// half-mutated value behind.
type State struct {
	cash     Money
	holdings map[string]Quantity
	asOf     Date
}

// NewState creates a State from a cash balance and a holdings map.
// The map is copied; zero positions are dropped.
func NewState(cash Money, holdings map[string]Quantity, asOf Date) State {
	h := make(map[string]Quantity, len(holdings))
	for symbol, qty := range holdings {
		if qty.IsZero() {
			continue
		}
		h[symbol] = qty
	}
	return State{cash: cash, holdings: h, asOf: asOf}
}

// Cash returns the cash balance.
func (s State) Cash() Money { return s.cash }

// AsOf returns the date the state was last reconciled.
func (s State) AsOf() Date { return s.asOf }

// Holding returns the number of shares held for a symbol, zero when none.
func (s State) Holding(symbol string) Quantity { return s.holdings[symbol] }

// Symbols iterates over the symbols held in positive quantity, in
// alphabetical order so that every run processes them deterministically.
func (s State) Symbols() iter.Seq[string] {
	return func(yield func(string) bool) {
		symbols := slices.Collect(maps.Keys(s.holdings))
		slices.Sort(symbols)
		for _, symbol := range symbols {
			if s.holdings[symbol].IsZero() {
				continue
			}
			if !yield(symbol) {
				return
			}
		}
	}
}

// Holdings returns a copy of the holdings map.
func (s State) Holdings() map[string]Quantity {
	return maps.Clone(s.holdings)
}

// Equal reports whether two states carry the same cash, holdings and date.
func (s State) Equal(o State) bool {
	if !s.cash.Equal(o.cash) || s.asOf != o.asOf {
		return false
	}
	if len(s.holdings) != len(o.holdings) {
		return false
	}
	for symbol, qty := range s.holdings {
		if !qty.Equal(o.holdings[symbol]) {
			return false
		}
	}
	return true
}

// credit returns a new State with the amount added to cash.
func (s State) credit(amount Money) State {
	return State{cash: s.cash.Add(amount), holdings: s.holdings, asOf: s.asOf}
}

// debit returns a new State with the amount removed from cash.
func (s State) debit(amount Money) State {
	return State{cash: s.cash.Sub(amount), holdings: s.holdings, asOf: s.asOf}
}

// withHolding returns a new State where the symbol holds exactly qty shares.
func (s State) withHolding(symbol string, qty Quantity) State {
	h := maps.Clone(s.holdings)
	if qty.IsZero() {
		delete(h, symbol)
	} else {
		h[symbol] = qty
	}
	return State{cash: s.cash, holdings: h, asOf: s.asOf}
}

// withAsOf returns a new State stamped with the given date.
func (s State) withAsOf(on Date) State {
	return State{cash: s.cash, holdings: s.holdings, asOf: on}
}

// Check verifies the state invariants: cash and every holding non-negative.
func (s State) Check() error {
	if s.cash.IsNegative() {
		return fmt.Errorf("invalid state: negative cash %s", s.cash)
	}
	for symbol, qty := range s.holdings {
		if qty.IsNegative() {
			return fmt.Errorf("invalid state: negative holding %s for %s", qty, symbol)
		}
	}
	return nil
}

// jstate is the persisted form of a State.
type jstate struct {
	Cash     Money               `json:"cash"`
	Holdings map[string]Quantity `json:"holdings"`
	AsOf     Date                `json:"as_of"`
}

// MarshalJSON implements json.Marshaler.
func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(jstate{Cash: s.cash, Holdings: s.holdings, AsOf: s.asOf})
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *State) UnmarshalJSON(data []byte) error {
	var js jstate
	if err := json.Unmarshal(data, &js); err != nil {
		return err
	}
	*s = NewState(js.Cash, js.Holdings, js.AsOf)
	return s.Check()
}
