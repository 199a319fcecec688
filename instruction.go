package microfolio

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"iter"
)

// Kind identifies a trading instruction.
type Kind string

const (
	// SellAll liquidates the full held quantity of a symbol.
	SellAll Kind = "SELL_ALL"
	// TrimTo sells down to a target quantity of shares.
	TrimTo Kind = "TRIM_TO"
	// Add buys shares for up to a target cash value.
	Add Kind = "ADD"
	// StopLoss is a forced full liquidation emitted by the stop-loss
	// evaluator. It is generated fresh each run and never persisted as pending.
	StopLoss Kind = "STOP_LOSS"
	// Hold changes nothing; it exists to leave an audit trail entry.
	Hold Kind = "HOLD"
)

// ParseKind parses a string into a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case SellAll, TrimTo, Add, StopLoss, Hold:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("unknown instruction kind: %q", s)
	}
}

// Status is the lifecycle state of an instruction. An instruction
// transitions PENDING to EXECUTED or SKIPPED at most once; it is never
// re-applied in a later run.
type Status string

const (
	Pending  Status = "PENDING"
	Executed Status = "EXECUTED"
	Skipped  Status = "SKIPPED"
)

// Instruction is a single trading instruction for one symbol.
//
// TargetQuantity is meaningful for TRIM_TO, TargetValue for ADD; both are
// zero otherwise.
type Instruction struct {
	Symbol         string
	Kind           Kind
	TargetQuantity Quantity
	TargetValue    Money
	Status         Status
}

// Validate checks an instruction for well-formedness. A malformed
// instruction is skipped with the returned error as reason; it never
// aborts a run.
func (in Instruction) Validate() error {
	if in.Symbol == "" {
		return fmt.Errorf("instruction has no symbol")
	}
	if _, err := ParseKind(string(in.Kind)); err != nil {
		return err
	}
	switch in.Kind {
	case TrimTo:
		if in.TargetQuantity.IsNegative() {
			return fmt.Errorf("negative target quantity %s", in.TargetQuantity)
		}
	case Add:
		if !in.TargetValue.IsPositive() {
			return fmt.Errorf("target value %s is not positive", in.TargetValue)
		}
	}
	return nil
}

// Describe returns a short human-readable form, e.g. "TRIM_TO ARQ 20".
func (in Instruction) Describe() string {
	switch in.Kind {
	case TrimTo:
		return fmt.Sprintf("%s %s %s", in.Kind, in.Symbol, in.TargetQuantity)
	case Add:
		return fmt.Sprintf("%s %s %s", in.Kind, in.Symbol, in.TargetValue)
	default:
		return fmt.Sprintf("%s %s", in.Kind, in.Symbol)
	}
}

// jinstruction is the persisted form of an Instruction. The queue file is
// externally writable: a decision source appends pending entries and this
// package only ever transitions their status.
type jinstruction struct {
	Symbol         string   `json:"symbol"`
	Kind           Kind     `json:"kind"`
	TargetQuantity Quantity `json:"target_quantity"`
	TargetValue    Money    `json:"target_value"`
	Status         Status   `json:"status"`
}

// MarshalJSON implements json.Marshaler, omitting zero targets.
func (in Instruction) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("symbol", in.Symbol)
	w.Append("kind", in.Kind)
	if !in.TargetQuantity.IsZero() {
		w.Append("target_quantity", in.TargetQuantity)
	}
	if !in.TargetValue.IsZero() {
		w.Append("target_value", in.TargetValue)
	}
	w.Append("status", in.Status)
	return w.MarshalJSON()
}

// UnmarshalJSON implements json.Unmarshaler. A missing status defaults to
// PENDING, so a decision source can append bare entries.
func (in *Instruction) UnmarshalJSON(data []byte) error {
	var j jinstruction
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	if j.Status == "" {
		j.Status = Pending
	}
	*in = Instruction{
		Symbol:         j.Symbol,
		Kind:           j.Kind,
		TargetQuantity: j.TargetQuantity,
		TargetValue:    j.TargetValue,
		Status:         j.Status,
	}
	return nil
}

// Queue is the ordered list of trading instructions for the portfolio.
//
// The queue preserves insertion order; the reconciler applies pending
// entries in that order. Entries that are already EXECUTED or SKIPPED
// stay in the queue as an audit trail and are never re-applied.
type Queue struct {
	items []Instruction
}

// NewQueue creates a queue with the given instructions.
func NewQueue(items ...Instruction) *Queue {
	return &Queue{items: append([]Instruction(nil), items...)}
}

// Append adds an instruction to the end of the queue. An empty status
// defaults to PENDING.
func (q *Queue) Append(in Instruction) {
	if in.Status == "" {
		in.Status = Pending
	}
	q.items = append(q.items, in)
}

// Len returns the number of instructions in the queue.
func (q *Queue) Len() int { return len(q.items) }

// Items returns a copy of the instructions in queue order.
func (q *Queue) Items() []Instruction {
	return append([]Instruction(nil), q.items...)
}

// Pending iterates over the pending instructions in queue order.
func (q *Queue) Pending() iter.Seq2[int, Instruction] {
	return func(yield func(int, Instruction) bool) {
		for i, in := range q.items {
			if in.Status != Pending {
				continue
			}
			if !yield(i, in) {
				return
			}
		}
	}
}

// PendingCount returns the number of pending instructions.
func (q *Queue) PendingCount() int {
	n := 0
	for range q.Pending() {
		n++
	}
	return n
}

// mark transitions the instruction at index i out of PENDING. Transitions
// from EXECUTED or SKIPPED are refused: an instruction is applied at most once.
func (q *Queue) mark(i int, status Status) error {
	if q.items[i].Status != Pending {
		return fmt.Errorf("instruction %s is already %s", q.items[i].Describe(), q.items[i].Status)
	}
	q.items[i].Status = status
	return nil
}

// jqueue is the persisted form of a Queue.
type jqueue struct {
	Instructions []Instruction `json:"instructions"`
}

// EncodeQueue writes the queue as an indented JSON document, the format a
// decision source edits by hand or by script.
func EncodeQueue(w io.Writer, q *Queue) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(jqueue{Instructions: q.items}); err != nil {
		return fmt.Errorf("failed to encode queue: %w", err)
	}
	return nil
}

// DecodeQueue reads a queue from its JSON document form.
func DecodeQueue(r io.Reader) (*Queue, error) {
	var j jqueue
	dec := json.NewDecoder(bufio.NewReader(r))
	if err := dec.Decode(&j); err != nil {
		return nil, fmt.Errorf("failed to decode queue: %w", err)
	}
	return &Queue{items: j.Instructions}, nil
}
