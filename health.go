package microfolio

import "slices"

// BufferLevel classifies how much room a position has above its stop-loss.
type BufferLevel string

const (
	// BufferCritical means the position is less than 10% above its stop-loss.
	BufferCritical BufferLevel = "CRITICAL"
	// BufferWatch means less than 20% above the stop-loss.
	BufferWatch BufferLevel = "WATCH"
	// BufferHealthy means 20% or more above the stop-loss.
	BufferHealthy BufferLevel = "HEALTHY"
)

// StopBuffer is the distance between a held position's last close and its
// configured stop-loss threshold.
type StopBuffer struct {
	Symbol    string
	Price     Money
	Threshold Money
	Buffer    Percent
	Level     BufferLevel
}

// Health is the result of the monitoring checks run against the latest
// persisted data: record freshness, price completeness, stop-loss buffers
// and queue hygiene.
type Health struct {
	Checked       Date
	LastRun       Date // zero when no valuation record exists
	DaysOld       int
	Stale         bool
	MissingPrices []string // held symbols without a price in the latest record
	Buffers       []StopBuffer
	PendingCount  int
}

// staleAfterDays is how old the latest record may be before the data is
// flagged stale. Three days spans a regular weekend.
const staleAfterDays = 3

// NewHealth runs the monitoring checks. latest may be nil when no run has
// been persisted yet.
func NewHealth(cfg Config, latest *Valuation, queue *Queue, now Date) Health {
	h := Health{Checked: now}
	if queue != nil {
		h.PendingCount = queue.PendingCount()
	}
	if latest == nil {
		h.Stale = true
		return h
	}

	h.LastRun = latest.Date
	h.DaysOld = now.DaysSince(latest.Date)
	h.Stale = h.DaysOld > staleAfterDays

	symbols := make([]string, 0, len(latest.Holdings))
	for symbol, qty := range latest.Holdings {
		if qty.IsPositive() {
			symbols = append(symbols, symbol)
		}
	}
	slices.Sort(symbols)

	for _, symbol := range symbols {
		price, ok := latest.Prices[symbol]
		if !ok {
			h.MissingPrices = append(h.MissingPrices, symbol)
			continue
		}
		threshold, configured := cfg.StopLoss[symbol]
		if !configured {
			continue
		}
		buffer := price.Sub(threshold).Percent(threshold)
		level := BufferHealthy
		switch {
		case buffer < 10:
			level = BufferCritical
		case buffer < 20:
			level = BufferWatch
		}
		h.Buffers = append(h.Buffers, StopBuffer{
			Symbol:    symbol,
			Price:     price,
			Threshold: threshold,
			Buffer:    buffer,
			Level:     level,
		})
	}
	return h
}

// Healthy reports whether no check raised a flag.
func (h Health) Healthy() bool {
	if h.Stale || len(h.MissingPrices) > 0 {
		return false
	}
	for _, b := range h.Buffers {
		if b.Level != BufferHealthy {
			return false
		}
	}
	return true
}
