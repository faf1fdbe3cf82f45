package streamsvc

import (
	"context"

	"github.com/rzbill/sluice/internal/ledger"
)

func (s *Service) GetStream(ctx context.Context, id uint64) (ledger.Stream, error) {
	return s.store.Get(ctx, id)
}

// GetStreamRecord returns the stream in its persisted record format.
func (s *Service) GetStreamRecord(ctx context.Context, id uint64) ([]byte, error) {
	st, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return ledger.EncodeRecord(st)
}

// View returns the stream with its vested and available amounts now.
func (s *Service) View(ctx context.Context, id uint64) (StreamView, error) {
	st, err := s.store.Get(ctx, id)
	if err != nil {
		return StreamView{}, err
	}
	return viewAt(st, s.clock.Now()), nil
}

func viewAt(st ledger.Stream, now int64) StreamView {
	return StreamView{Stream: st, Vested: ledger.Vested(st, now), Available: ledger.Available(st, now), AtMs: now}
}

// Available is the amount withdrawable from stream id right now.
func (s *Service) Available(ctx context.Context, id uint64) (int64, error) {
	st, err := s.store.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	return ledger.Available(st, s.clock.Now()), nil
}

func (s *Service) StreamsBySender(ctx context.Context, sender ledger.Address) (ledger.Cursor, error) {
	return s.store.BySender(ctx, sender)
}

func (s *Service) StreamsByRecipient(ctx context.Context, recipient ledger.Address) (ledger.Cursor, error) {
	return s.store.ByRecipient(ctx, recipient)
}

// ListStreams returns the streams of one party, in creation order,
// optionally narrowed by a CEL filter.
func (s *Service) ListStreams(ctx context.Context, opts ListOptions) ([]StreamView, error) {
	const op = "list"
	var (
		cur ledger.Cursor
		err error
	)
	switch {
	case opts.Sender != nil && opts.Recipient != nil:
		return nil, ledger.Validation(op, "choose one of sender or recipient")
	case opts.Sender != nil:
		cur, err = s.store.BySender(ctx, *opts.Sender)
	case opts.Recipient != nil:
		cur, err = s.store.ByRecipient(ctx, *opts.Recipient)
	default:
		return nil, ledger.Validation(op, "sender or recipient is required")
	}
	if err != nil {
		return nil, err
	}
	defer cur.Close()

	filter, err := newStreamFilter(opts.Filter)
	if err != nil {
		return nil, ledger.Validation(op, "bad filter: %v", err)
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = s.policy.ListLimit
	}

	now := s.clock.Now()
	var out []StreamView
	for cur.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		st, err := s.store.Get(ctx, cur.ID())
		if ledger.KindOf(err) == ledger.KindNotFound {
			// deleted after the cursor's view was taken
			continue
		}
		if err != nil {
			return nil, err
		}
		v := viewAt(st, now)
		if !filter.Eval(v) {
			continue
		}
		out = append(out, v)
		if len(out) >= limit {
			break
		}
	}
	return out, cur.Err()
}
