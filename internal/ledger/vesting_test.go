package ledger

import (
	"math"
	"testing"
)

func stream(deposit, remaining, start, stop int64) Stream {
	return Stream{ID: 1, Deposit: deposit, Remaining: remaining, Start: start, Stop: stop}
}

func TestAvailable(t *testing.T) {
	cases := []struct {
		name string
		s    Stream
		now  int64
		want int64
	}{
		{"before start", stream(100, 100, 1000, 2000), 999, 0},
		{"at start", stream(100, 100, 1000, 2000), 1000, 0},
		{"midpoint", stream(100, 100, 1000, 2000), 1500, 50},
		{"midpoint after withdrawal", stream(100, 70, 1000, 2000), 1500, 20},
		{"floor", stream(10, 10, 0+1, 4), 2, 3},
		{"at stop", stream(100, 40, 1000, 2000), 2000, 40},
		{"after stop", stream(100, 40, 1000, 2000), 9000, 40},
		{"withdrawn ahead of vesting clamps to zero", stream(100, 10, 1000, 2000), 1100, 0},
	}
	for _, c := range cases {
		if got := Available(c.s, c.now); got != c.want {
			t.Fatalf("%s: Available = %d want %d", c.name, got, c.want)
		}
	}
}

func TestAvailableNeverExceedsRemaining(t *testing.T) {
	s := stream(1000, 1000, 10, 1010)
	for now := int64(0); now <= 1100; now += 7 {
		a := Available(s, now)
		if a < 0 || a > s.Remaining {
			t.Fatalf("now=%d: available %d outside [0,%d]", now, a, s.Remaining)
		}
		// withdraw everything available and the next point must not go negative
		s.Remaining -= a
		if s.Remaining == 0 {
			break
		}
	}
}

func TestAvailableMonotonicWithoutWithdrawals(t *testing.T) {
	s := stream(999, 999, 100, 777)
	prev := int64(-1)
	for now := int64(50); now < 900; now++ {
		a := Available(s, now)
		if a < prev {
			t.Fatalf("available decreased at %d: %d < %d", now, a, prev)
		}
		prev = a
	}
}

func TestVestedNoOverflow(t *testing.T) {
	s := stream(math.MaxInt64, math.MaxInt64, 1, math.MaxInt64)
	mid := int64(1) + (math.MaxInt64-1)/2
	got := Vested(s, mid)
	want := int64(math.MaxInt64 / 2)
	if got < want-1 || got > want+1 {
		t.Fatalf("vested = %d want ~%d", got, want)
	}
	if Available(s, math.MaxInt64) != math.MaxInt64 {
		t.Fatalf("all remaining should be available at stop")
	}
}

func TestLinearVestingExample(t *testing.T) {
	// deposit 1000 over [1000, 2000): 250 vested at t=1250
	s := stream(1000, 1000, 1000, 2000)
	if got := Available(s, 1250); got != 250 {
		t.Fatalf("got %d", got)
	}
	s.Remaining = 750
	if got := Available(s, 1500); got != 250 {
		t.Fatalf("after withdrawing 250, got %d", got)
	}
}
