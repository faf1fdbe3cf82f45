package ledger

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorKindsMatchSentinels(t *testing.T) {
	cases := []struct {
		err      error
		sentinel error
		kind     Kind
	}{
		{Validation("withdraw", "amount must be positive"), ErrValidation, KindValidation},
		{Unauthorized("withdraw", "caller is not a party"), ErrUnauthorized, KindAuthorization},
		{InsufficientFunds("withdraw", "want %d have %d", 5, 3), ErrInsufficientFunds, KindInsufficientFunds},
		{NotFound("get", "stream %d", 9), ErrNotFound, KindNotFound},
	}
	for _, c := range cases {
		wrapped := fmt.Errorf("outer: %w", c.err)
		if !errors.Is(wrapped, c.sentinel) {
			t.Fatalf("%v should match %v", c.err, c.sentinel)
		}
		if KindOf(wrapped) != c.kind {
			t.Fatalf("KindOf(%v) = %v", c.err, KindOf(wrapped))
		}
		for _, other := range []error{ErrValidation, ErrUnauthorized, ErrInsufficientFunds, ErrNotFound} {
			if other != c.sentinel && errors.Is(c.err, other) {
				t.Fatalf("%v wrongly matches %v", c.err, other)
			}
		}
	}
}

func TestErrorMessage(t *testing.T) {
	err := InsufficientFunds("withdraw", "want %d have %d", 5, 3)
	if err.Error() != "withdraw: insufficient funds: want 5 have 3" {
		t.Fatalf("message: %q", err.Error())
	}
	if KindOf(errors.New("plain")) != KindUnknown {
		t.Fatalf("plain error should be unknown")
	}
}
