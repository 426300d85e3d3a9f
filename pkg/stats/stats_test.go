package stats

import (
	"bytes"
	"errors"
	"testing"
)

func TestAccumulator_Append(t *testing.T) {
	acc := NewAccumulator()

	if acc.Len() != 0 || acc.Records() != 0 {
		t.Errorf("expected empty accumulator, got %d bytes, %d records", acc.Len(), acc.Records())
	}

	acc.Append([]byte{1, 2, 3, 4})
	acc.Append([]byte{5, 6, 7, 8})

	if acc.Records() != 2 {
		t.Errorf("expected 2 records, got %d", acc.Records())
	}
	want := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	if !bytes.Equal(acc.Bytes(), want) {
		t.Errorf("expected %v, got %v", want, acc.Bytes())
	}
}

func TestAccumulator_PreservesOrder(t *testing.T) {
	acc := NewAccumulator()
	for i := 0; i < 10; i++ {
		acc.Append([]byte{byte(i), 0})
	}

	buf := acc.Bytes()
	if len(buf) != 20 {
		t.Fatalf("expected 20 bytes, got %d", len(buf))
	}
	for i := 0; i < 10; i++ {
		if buf[i*2] != byte(i) {
			t.Errorf("record %d out of order: got %d", i, buf[i*2])
		}
	}
}

func TestNewFeeder_Valid(t *testing.T) {
	buf := make([]byte, 3*8)
	for i := 0; i < 3; i++ {
		buf[i*8] = byte(i + 1)
	}

	feeder, err := NewFeeder(buf, 8)
	if err != nil {
		t.Fatalf("NewFeeder failed: %v", err)
	}
	if feeder.Degraded() {
		t.Fatal("expected usable feeder")
	}
	if feeder.Count() != 3 {
		t.Errorf("expected 3 records, got %d", feeder.Count())
	}

	rec := feeder.Record(1)
	if len(rec) != 8 || rec[0] != 2 {
		t.Errorf("unexpected record 1: %v", rec)
	}
}

func TestNewFeeder_Degraded(t *testing.T) {
	cases := []struct {
		name       string
		buf        []byte
		recordSize int
	}{
		{"empty buffer", nil, 8},
		{"length not a multiple", make([]byte, 13), 8},
		{"zero record size", make([]byte, 8), 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			feeder, err := NewFeeder(tc.buf, tc.recordSize)
			if !errors.Is(err, ErrStatsMismatch) {
				t.Errorf("expected ErrStatsMismatch, got %v", err)
			}
			if feeder == nil {
				t.Fatal("expected a degraded feeder, not nil")
			}
			if !feeder.Degraded() {
				t.Error("expected degraded feeder")
			}
			if feeder.Count() != 0 {
				t.Errorf("expected 0 records, got %d", feeder.Count())
			}
			if rec := feeder.Record(0); rec != nil {
				t.Errorf("expected nil record, got %v", rec)
			}
			if win := feeder.Window(0, 2); win != nil {
				t.Errorf("expected nil window, got %v", win)
			}
		})
	}
}

func TestFeeder_Window(t *testing.T) {
	buf := make([]byte, 4*8)
	for i := 0; i < 4; i++ {
		buf[i*8] = byte(i)
	}
	feeder, err := NewFeeder(buf, 8)
	if err != nil {
		t.Fatalf("NewFeeder failed: %v", err)
	}

	// Full window in range.
	win := feeder.Window(1, 2)
	if len(win) != 2 || win[0][0] != 1 || win[1][0] != 2 {
		t.Errorf("unexpected window: %v", win)
	}

	// Window truncates at the end of the buffer.
	win = feeder.Window(3, 3)
	if len(win) != 1 || win[0][0] != 3 {
		t.Errorf("expected truncated window of 1, got %v", win)
	}

	// Out of range.
	if win = feeder.Window(4, 1); win != nil {
		t.Errorf("expected nil window past the end, got %v", win)
	}
	if win = feeder.Window(-1, 1); win != nil {
		t.Errorf("expected nil window for negative index, got %v", win)
	}
}

func TestAccumulatorFeedsFeeder(t *testing.T) {
	// The accumulator's output is the feeder's input.
	acc := NewAccumulator()
	for i := 0; i < 5; i++ {
		rec := make([]byte, 8)
		rec[0] = byte(i * 10)
		acc.Append(rec)
	}

	feeder, err := NewFeeder(acc.Bytes(), 8)
	if err != nil {
		t.Fatalf("NewFeeder failed: %v", err)
	}
	if feeder.Count() != acc.Records() {
		t.Errorf("feeder count %d != accumulator records %d", feeder.Count(), acc.Records())
	}
	for i := 0; i < 5; i++ {
		if feeder.Record(i)[0] != byte(i*10) {
			t.Errorf("record %d mismatch", i)
		}
	}
}
