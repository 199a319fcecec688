package microfolio

import (
	"bytes"
	"strings"
	"testing"
)

func TestInstructionValidate(t *testing.T) {
	tests := []struct {
		name    string
		in      Instruction
		wantErr bool
	}{
		{"sell all", Instruction{Symbol: "ARQ", Kind: SellAll}, false},
		{"hold", Instruction{Symbol: "ARQ", Kind: Hold}, false},
		{"trim to zero is valid", Instruction{Symbol: "ARQ", Kind: TrimTo, TargetQuantity: Q(0)}, false},
		{"add", Instruction{Symbol: "CDXS", Kind: Add, TargetValue: M(100)}, false},
		{"no symbol", Instruction{Kind: SellAll}, true},
		{"unknown kind", Instruction{Symbol: "ARQ", Kind: "SHORT"}, true},
		{"negative trim target", Instruction{Symbol: "ARQ", Kind: TrimTo, TargetQuantity: Q(-1)}, true},
		{"add without value", Instruction{Symbol: "ARQ", Kind: Add}, true},
		{"add negative value", Instruction{Symbol: "ARQ", Kind: Add, TargetValue: M(-10)}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.in.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestQueue_PendingOrderAndMark(t *testing.T) {
	q := NewQueue(
		Instruction{Symbol: "A", Kind: Hold, Status: Executed},
		Instruction{Symbol: "B", Kind: SellAll, Status: Pending},
		Instruction{Symbol: "C", Kind: Hold, Status: Pending},
	)

	var pending []string
	for i, in := range q.Pending() {
		pending = append(pending, in.Symbol)
		if err := q.mark(i, Executed); err != nil {
			t.Fatalf("mark(%d) = %v", i, err)
		}
	}
	if got, want := strings.Join(pending, ","), "B,C"; got != want {
		t.Errorf("pending = %s, want %s", got, want)
	}
	if q.PendingCount() != 0 {
		t.Errorf("pending count = %d after marking, want 0", q.PendingCount())
	}
	// A second transition must be refused.
	if err := q.mark(1, Skipped); err == nil {
		t.Error("mark() on an executed entry succeeded, want error")
	}
}

func TestQueueCodec(t *testing.T) {
	q := NewQueue(
		Instruction{Symbol: "ARQ", Kind: TrimTo, TargetQuantity: Q(20), Status: Pending},
		Instruction{Symbol: "CDXS", Kind: Add, TargetValue: M(100), Status: Executed},
	)

	var buf bytes.Buffer
	if err := EncodeQueue(&buf, q); err != nil {
		t.Fatalf("EncodeQueue() = %v", err)
	}
	got, err := DecodeQueue(&buf)
	if err != nil {
		t.Fatalf("DecodeQueue() = %v", err)
	}
	if got.Len() != 2 {
		t.Fatalf("decoded %d instructions, want 2", got.Len())
	}
	items := got.Items()
	if !items[0].TargetQuantity.Equal(Q(20)) || items[0].Status != Pending {
		t.Errorf("first = %+v", items[0])
	}
	if !items[1].TargetValue.Equal(M(100)) || items[1].Status != Executed {
		t.Errorf("second = %+v", items[1])
	}
}

func TestDecodeQueue_MissingStatusDefaultsToPending(t *testing.T) {
	// The shape a decision source appends by hand.
	doc := `{"instructions":[{"symbol":"GEVO","kind":"SELL_ALL"}]}`
	q, err := DecodeQueue(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("DecodeQueue() = %v", err)
	}
	if got := q.Items()[0].Status; got != Pending {
		t.Errorf("status = %s, want PENDING", got)
	}
}
