package microfolio

// StopLossInstructions derives forced-sell instructions from the current
// holdings, the price snapshot, and the configured per-symbol thresholds.
//
// A STOP_LOSS instruction is emitted for each symbol held in positive
// quantity whose snapshot price is known and at or below its threshold.
// The execution price is the snapshot price, not the threshold. Symbols
// with an unavailable price are skipped: a position is never force-sold
// blind.
//
// Instructions are regenerated fresh every run from the current state and
// are never persisted as pending, so a position already flattened in a
// prior run yields no new instruction.
func StopLossInstructions(state State, prices PriceSnapshot, thresholds map[string]Money) []Instruction {
	var out []Instruction
	for symbol := range state.Symbols() {
		threshold, configured := thresholds[symbol]
		if !configured || !threshold.IsPositive() {
			continue
		}
		price, known := prices.Price(symbol)
		if !known {
			continue
		}
		if price.GreaterThan(threshold) {
			continue
		}
		out = append(out, Instruction{
			Symbol: symbol,
			Kind:   StopLoss,
			Status: Pending,
		})
	}
	return out
}
