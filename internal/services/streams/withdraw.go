package streamsvc

import (
	"context"
	"fmt"

	"github.com/rzbill/sluice/internal/ledger"
	"github.com/rzbill/sluice/internal/metrics"
	logpkg "github.com/rzbill/sluice/pkg/log"
)

// Withdraw pays amount of the vested value of stream id to its recipient.
// The stream is deleted once nothing remains.
func (s *Service) Withdraw(ctx context.Context, id uint64, amount int64) (err error) {
	end := observe("withdraw")
	defer func() { end(err) }()

	const op = "withdraw"
	if amount <= 0 {
		return ledger.Validation(op, "amount must be positive, got %d", amount)
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	st, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	requester, err := s.authorize(ctx, op, st, s.policy.AllowSenderWithdraw)
	if err != nil {
		return err
	}
	available := ledger.Available(st, s.clock.Now())
	if amount > available {
		return ledger.InsufficientFunds(op, "stream %d: requested %d, available %d", id, amount, available)
	}

	if err := s.rail.Transfer(ctx, st.Recipient, amount); err != nil {
		return fmt.Errorf("withdraw stream %d: transfer: %w", id, err)
	}
	st.Remaining -= amount
	completed := st.Remaining == 0
	if completed {
		err = s.store.Delete(ctx, id)
	} else {
		err = s.store.Update(ctx, st)
	}
	if err != nil {
		return s.compensate(ctx, op, st.Recipient, amount, fmt.Errorf("withdraw stream %d: persist: %w", id, err))
	}

	metrics.AddValueMoved("to_recipient", amount)
	s.logger.Info("streams.withdraw",
		logpkg.Uint64("stream_id", id),
		logpkg.Str("requester", requester.String()),
		logpkg.Int64("amount", amount),
		logpkg.Int64("remaining", st.Remaining))
	if completed {
		s.notify(ctx, ledger.StreamCompleted(id))
	}
	s.notify(ctx, ledger.Withdrawal(id, requester, amount))
	return nil
}

// CancelStream settles stream id: the vested part goes to the recipient,
// the rest back to the sender, and the stream is deleted.
func (s *Service) CancelStream(ctx context.Context, id uint64) (out Settlement, err error) {
	end := observe("cancel")
	defer func() { end(err) }()

	const op = "cancel"
	unlock := s.locks.Lock(id)
	defer unlock()

	st, err := s.store.Get(ctx, id)
	if err != nil {
		return Settlement{}, err
	}
	requester, err := s.authorize(ctx, op, st, true)
	if err != nil {
		return Settlement{}, err
	}
	available := ledger.Available(st, s.clock.Now())
	out = Settlement{StreamID: id, Available: available, Leftover: st.Remaining - available}

	if out.Available > 0 {
		if err := s.rail.Transfer(ctx, st.Recipient, out.Available); err != nil {
			return Settlement{}, fmt.Errorf("cancel stream %d: pay recipient: %w", id, err)
		}
	}
	undoRecipient := func(cause error) error {
		if out.Available > 0 {
			return s.compensate(ctx, op, st.Recipient, out.Available, cause)
		}
		return cause
	}
	if out.Leftover > 0 {
		if err := s.rail.Transfer(ctx, st.Sender, out.Leftover); err != nil {
			return Settlement{}, undoRecipient(fmt.Errorf("cancel stream %d: refund sender: %w", id, err))
		}
	}
	if err := s.store.Delete(ctx, id); err != nil {
		cause := fmt.Errorf("cancel stream %d: delete: %w", id, err)
		if out.Leftover > 0 {
			cause = s.compensate(ctx, op, st.Sender, out.Leftover, cause)
		}
		return Settlement{}, undoRecipient(cause)
	}

	if out.Available > 0 {
		metrics.AddValueMoved("to_recipient", out.Available)
	}
	if out.Leftover > 0 {
		metrics.AddValueMoved("to_sender", out.Leftover)
	}
	s.logger.Info("streams.canceled",
		logpkg.Uint64("stream_id", id),
		logpkg.Str("requester", requester.String()),
		logpkg.Int64("available", out.Available),
		logpkg.Int64("leftover", out.Leftover))
	s.notify(ctx, ledger.StreamCanceled(id, requester))
	return out, nil
}
