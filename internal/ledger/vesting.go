package ledger

import "math/bits"

// Vested returns the cumulative amount unlocked by now, ignoring withdrawals.
// deposit*elapsed is computed in 128 bits so no input can overflow.
func Vested(s Stream, now int64) int64 {
	if now <= s.Start || s.Deposit <= 0 || s.Stop <= s.Start {
		return 0
	}
	if now >= s.Stop {
		return s.Deposit
	}
	elapsed := uint64(now - s.Start)
	total := uint64(s.Stop - s.Start)
	hi, lo := bits.Mul64(uint64(s.Deposit), elapsed)
	// elapsed < total, so the quotient is below deposit and hi < total.
	q, _ := bits.Div64(hi, lo, total)
	return int64(q)
}

// Available returns what may be withdrawn at now: vested minus already
// withdrawn, clamped to [0, remaining]. All remaining value is available
// once now reaches stop.
func Available(s Stream, now int64) int64 {
	if now < s.Start {
		return 0
	}
	if now >= s.Stop {
		return s.Remaining
	}
	avail := Vested(s, now) - s.Withdrawn()
	switch {
	case avail < 0:
		return 0
	case avail > s.Remaining:
		return s.Remaining
	}
	return avail
}
