package microfolio

import (
	"errors"
	"fmt"
)

// ErrNoPrices reports that no price could be obtained for any symbol of
// the universe. A run failing this way terminates before any persistence.
var ErrNoPrices = errors.New("no prices available for any symbol")

// ExecutionEntry is an append-only record of the outcome of one
// instruction: exactly what moved, at what price, and why.
//
// EXECUTED entries carry the deltas applied to the state. SKIPPED entries
// carry zero deltas and the reason money did not move, so a human
// reviewing the run can audit every decision.
type ExecutionEntry struct {
	Instruction Instruction `json:"instruction"`
	Symbol      string      `json:"symbol"`
	PriceUsed   Money       `json:"price_used"`
	SharesDelta Quantity    `json:"shares_delta"`
	CashDelta   Money       `json:"cash_delta"`
	Reason      string      `json:"reason"`
}

// Describe returns a one-line summary suitable for reports,
// e.g. "SELL_ALL ARQ: -37 shares @ $5.00 = +$185.00 (stop loss triggered)".
func (e ExecutionEntry) Describe() string {
	if e.Instruction.Status == Skipped {
		return fmt.Sprintf("SKIPPED %s: %s", e.Instruction.Describe(), e.Reason)
	}
	if e.SharesDelta.IsZero() {
		return fmt.Sprintf("%s (%s)", e.Instruction.Describe(), e.Reason)
	}
	return fmt.Sprintf("%s: %s shares @ %s = %s (%s)",
		e.Instruction.Describe(), e.SharesDelta, e.PriceUsed, e.CashDelta.SignedString(), e.Reason)
}

// ExecutionLog is the ordered list of instruction outcomes for one run.
type ExecutionLog []ExecutionEntry

// Executed returns the entries that moved money, one per EXECUTED instruction.
func (l ExecutionLog) Executed() ExecutionLog {
	var out ExecutionLog
	for _, e := range l {
		if e.Instruction.Status == Executed {
			out = append(out, e)
		}
	}
	return out
}

// Skipped returns the entries for instructions that were skipped.
func (l ExecutionLog) Skipped() ExecutionLog {
	var out ExecutionLog
	for _, e := range l {
		if e.Instruction.Status == Skipped {
			out = append(out, e)
		}
	}
	return out
}

// Engine is the state reconciler. It is constructed once from an explicit
// Config and applies the same rules for every caller.
type Engine struct {
	cfg Config
}

// NewEngine creates a reconciliation engine from a validated configuration.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &Engine{cfg: cfg}, nil
}

// Result bundles the outputs of a complete run.
type Result struct {
	State     State
	Log       ExecutionLog
	Valuation Valuation
}

// Run reconciles the queue against the prior state and prices, then values
// the resulting portfolio. prior may be nil when no valuation record
// exists yet; all deltas are then zero.
func (e *Engine) Run(state State, prices PriceSnapshot, queue *Queue, prior *Valuation) (Result, error) {
	if prices.Len() == 0 {
		return Result{}, fmt.Errorf("cannot run for %s: %w", prices.On(), ErrNoPrices)
	}
	newState, log, err := e.Reconcile(state, prices, queue)
	if err != nil {
		return Result{}, err
	}
	valuation := NewValuation(newState, prices, log, prior)
	return Result{State: newState, Log: log, Valuation: valuation}, nil
}

// Reconcile applies the queue's pending instructions in queue order, then
// the freshly evaluated stop-loss instructions, against the price snapshot
// and the prior state. It returns the new state and the execution log, and
// transitions each applied queue entry out of PENDING exactly once.
//
// Stop-losses are evaluated on the state left by the manual instructions:
// explicit intent is honored first, and a position a manual instruction
// already flattened yields no stop-loss entry at all.
func (e *Engine) Reconcile(state State, prices PriceSnapshot, queue *Queue) (State, ExecutionLog, error) {
	var log ExecutionLog
	next := state

	for i, in := range queue.Pending() {
		applied, entry := apply(next, in, prices, "queued decision")
		if err := queue.mark(i, entry.Instruction.Status); err != nil {
			return State{}, nil, err
		}
		next = applied
		log = append(log, entry)
	}

	for _, in := range StopLossInstructions(next, prices, e.cfg.StopLoss) {
		applied, entry := apply(next, in, prices, "stop loss triggered")
		next = applied
		log = append(log, entry)
	}

	next = next.withAsOf(prices.On())
	if err := next.Check(); err != nil {
		return State{}, nil, err
	}
	return next, log, nil
}

// apply executes a single instruction against the state, returning the new
// state and the log entry. The state is returned unchanged for skipped
// instructions.
func apply(state State, in Instruction, prices PriceSnapshot, reason string) (State, ExecutionEntry) {
	skip := func(why string) (State, ExecutionEntry) {
		in.Status = Skipped
		return state, ExecutionEntry{Instruction: in, Symbol: in.Symbol, Reason: why}
	}

	if err := in.Validate(); err != nil {
		return skip(fmt.Sprintf("invalid instruction: %v", err))
	}

	held := state.Holding(in.Symbol)
	price, known := prices.Price(in.Symbol)

	switch in.Kind {
	case SellAll, StopLoss:
		if held.IsZero() {
			return skip("no shares held")
		}
		if !known {
			return skip("price unavailable")
		}
		proceeds := price.Mul(held)
		in.Status = Executed
		return state.credit(proceeds).withHolding(in.Symbol, Q(0)), ExecutionEntry{
			Instruction: in,
			Symbol:      in.Symbol,
			PriceUsed:   price,
			SharesDelta: held.Neg(),
			CashDelta:   proceeds,
			Reason:      reason,
		}

	case TrimTo:
		if !held.GreaterThan(in.TargetQuantity) {
			return skip(fmt.Sprintf("target %s does not reduce holding of %s", in.TargetQuantity, held))
		}
		if !known {
			return skip("price unavailable")
		}
		sold := held.Sub(in.TargetQuantity)
		proceeds := price.Mul(sold)
		in.Status = Executed
		return state.credit(proceeds).withHolding(in.Symbol, in.TargetQuantity), ExecutionEntry{
			Instruction: in,
			Symbol:      in.Symbol,
			PriceUsed:   price,
			SharesDelta: sold.Neg(),
			CashDelta:   proceeds,
			Reason:      reason,
		}

	case Add:
		if state.Cash().LessThan(in.TargetValue) {
			return skip(fmt.Sprintf("insufficient cash: %s needed, %s available", in.TargetValue, state.Cash()))
		}
		if !known {
			return skip("price unavailable")
		}
		// Whole shares only: floor so the cost can never exceed the cash check above.
		shares := in.TargetValue.Shares(price)
		if shares.IsZero() {
			return skip(fmt.Sprintf("target value %s buys no whole share at %s", in.TargetValue, price))
		}
		cost := price.Mul(shares)
		if cost.GreaterThan(state.Cash()) {
			return skip(fmt.Sprintf("cost %s exceeds cash %s", cost, state.Cash()))
		}
		in.Status = Executed
		return state.debit(cost).withHolding(in.Symbol, held.Add(shares)), ExecutionEntry{
			Instruction: in,
			Symbol:      in.Symbol,
			PriceUsed:   price,
			SharesDelta: shares,
			CashDelta:   cost.Neg(),
			Reason:      reason,
		}

	case Hold:
		in.Status = Executed
		return state, ExecutionEntry{
			Instruction: in,
			Symbol:      in.Symbol,
			PriceUsed:   price,
			Reason:      "hold",
		}
	}

	return skip(fmt.Sprintf("unknown instruction kind %q", in.Kind))
}
