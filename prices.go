package microfolio

import (
	"iter"
	"maps"
	"slices"
)

// PriceSnapshot is an immutable mapping from symbol to last close price,
// valid for a single trading date. A symbol absent from the snapshot has
// no price for that date; it is never treated as price zero.
type PriceSnapshot struct {
	on     Date
	prices map[string]Money
}

// NewPriceSnapshot creates a snapshot for the given date. Only symbols
// whose price could be fetched appear in the map; the map is copied and
// non-positive prices are rejected by omission.
func NewPriceSnapshot(on Date, prices map[string]Money) PriceSnapshot {
	p := make(map[string]Money, len(prices))
	for symbol, price := range prices {
		if !price.IsPositive() {
			continue
		}
		p[symbol] = price
	}
	return PriceSnapshot{on: on, prices: p}
}

// On returns the trading date the snapshot is valid for.
func (s PriceSnapshot) On() Date { return s.on }

// Price returns the close price for a symbol and whether it is available.
func (s PriceSnapshot) Price(symbol string) (Money, bool) {
	price, ok := s.prices[symbol]
	return price, ok
}

// Len returns the number of symbols with an available price.
func (s PriceSnapshot) Len() int { return len(s.prices) }

// Symbols iterates over the symbols with an available price, in
// alphabetical order.
func (s PriceSnapshot) Symbols() iter.Seq[string] {
	return func(yield func(string) bool) {
		symbols := slices.Collect(maps.Keys(s.prices))
		slices.Sort(symbols)
		for _, symbol := range symbols {
			if !yield(symbol) {
				return
			}
		}
	}
}
