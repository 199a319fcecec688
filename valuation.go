package microfolio

import "encoding/json"

// Valuation is one dated, immutable snapshot of the portfolio's worth and
// its components. One record is produced per run; the most recent record
// is the sole input for the next run's delta computation.
type Valuation struct {
	Date       Date
	Cash       Money
	Holdings   map[string]Quantity
	Prices     map[string]Money // close per symbol, only the available ones
	Values     map[string]Money // position value per held symbol
	TotalValue Money
	PriorTotal *Money   // total of the previous record, nil on first run
	Actions    []string // audit trail of the run's execution log
}

// NewValuation computes the valuation record for a reconciled state and
// price snapshot. Amounts are rounded to two fractional digits, the
// precision at which records are persisted and reported.
//
// A position whose price is unavailable values at zero for the day; it is
// reported as missing, never as a real zero price.
func NewValuation(state State, prices PriceSnapshot, log ExecutionLog, prior *Valuation) Valuation {
	v := Valuation{
		Date:     prices.On(),
		Cash:     state.Cash().Round2(),
		Holdings: state.Holdings(),
		Prices:   make(map[string]Money),
		Values:   make(map[string]Money),
	}

	total := state.Cash()
	for symbol := range state.Symbols() {
		price, known := prices.Price(symbol)
		if !known {
			v.Values[symbol] = M(0)
			continue
		}
		value := price.Mul(state.Holding(symbol))
		v.Values[symbol] = value.Round2()
		total = total.Add(value)
	}
	for symbol := range prices.Symbols() {
		price, _ := prices.Price(symbol)
		v.Prices[symbol] = price
	}

	v.TotalValue = total.Round2()
	if prior != nil {
		priorTotal := prior.TotalValue
		v.PriorTotal = &priorTotal
	}
	for _, entry := range log {
		v.Actions = append(v.Actions, entry.Describe())
	}
	return v
}

// PositionValue returns the recorded value of one position, zero when the
// symbol was not held or had no price.
func (v Valuation) PositionValue(symbol string) Money {
	return v.Values[symbol]
}

// SymbolDelta is the day-over-day change of a single position.
type SymbolDelta struct {
	PriceChange    Money   `json:"price_change"`
	PriceChangePct Percent `json:"price_change_pct"`
	ValueChange    Money   `json:"value_change"`
}

// Delta is the day-over-day change between two consecutive valuation
// records. The zero value (no prior record) has every field zero: a cold
// start is not an error.
type Delta struct {
	Symbols        map[string]SymbolDelta `json:"individual"`
	TotalChange    Money                  `json:"total_change"`
	TotalChangePct Percent                `json:"total_change_pct"`
}

// NewDelta derives the delta record from the current and immediately-prior
// valuation records. prior may be nil.
//
// Per-symbol changes are zero unless both records carry a price for the
// symbol. The value change attributes the price movement to the position
// size that actually experienced it: the quantity held as of the prior
// record.
func NewDelta(current Valuation, prior *Valuation) Delta {
	d := Delta{Symbols: make(map[string]SymbolDelta)}
	if prior == nil {
		return d
	}

	for symbol, price := range current.Prices {
		prevPrice, ok := prior.Prices[symbol]
		if !ok || !prevPrice.IsPositive() {
			continue
		}
		change := price.Sub(prevPrice)
		d.Symbols[symbol] = SymbolDelta{
			PriceChange:    change.Round2(),
			PriceChangePct: change.Percent(prevPrice),
			ValueChange:    change.Mul(prior.Holdings[symbol]).Round2(),
		}
	}

	d.TotalChange = current.TotalValue.Sub(prior.TotalValue).Round2()
	d.TotalChangePct = d.TotalChange.Percent(prior.TotalValue)
	return d
}

// Symbol returns the delta for one symbol, zero when none was recorded.
func (d Delta) Symbol(symbol string) SymbolDelta {
	return d.Symbols[symbol]
}

// jvaluation is the persisted form of a Valuation.
type jvaluation struct {
	Date       Date                `json:"date"`
	Cash       Money               `json:"cash"`
	Holdings   map[string]Quantity `json:"holdings"`
	Prices     map[string]Money    `json:"prices"`
	Values     map[string]Money    `json:"values"`
	TotalValue Money               `json:"total_value"`
	PriorTotal *Money              `json:"prior_total_value,omitempty"`
	Actions    []string            `json:"actions,omitempty"`
}

// MarshalJSON implements json.Marshaler with a stable field order, so the
// JSONL history stays diff-friendly.
func (v Valuation) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("date", v.Date)
	w.Append("cash", v.Cash)
	w.Append("holdings", v.Holdings)
	w.Append("prices", v.Prices)
	w.Append("values", v.Values)
	w.Append("total_value", v.TotalValue)
	if v.PriorTotal != nil {
		w.Append("prior_total_value", v.PriorTotal)
	}
	if len(v.Actions) > 0 {
		w.Append("actions", v.Actions)
	}
	return w.MarshalJSON()
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Valuation) UnmarshalJSON(data []byte) error {
	var j jvaluation
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	*v = Valuation{
		Date:       j.Date,
		Cash:       j.Cash,
		Holdings:   j.Holdings,
		Prices:     j.Prices,
		Values:     j.Values,
		TotalValue: j.TotalValue,
		PriorTotal: j.PriorTotal,
		Actions:    j.Actions,
	}
	return nil
}
